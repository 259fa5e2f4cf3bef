package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedJSONBlock   = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
	trailingComma     = regexp.MustCompile(`,\s*([}\]])`)
	unquotedObjectKey = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)(\s*:)`)
	controlChars      = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseAIJSON decodes JSON produced by a language model into target.
// Model output is often wrapped in a markdown fence, surrounded by prose,
// or slightly malformed (trailing commas, bare keys), so each candidate
// extraction is tried in turn until one decodes.
func ParseAIJSON(input string, target interface{}) error {
	input = strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if input == "" {
		return fmt.Errorf("empty input")
	}

	candidates := []string{
		input,
		extractFromMarkdown(input),
		extractJSONFromText(input),
		repairJSON(input),
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if err := json.Unmarshal([]byte(candidate), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// extractFromMarkdown returns the body of the first fenced code block that looks like JSON
func extractFromMarkdown(input string) string {
	matches := fencedJSONBlock.FindStringSubmatch(input)
	if len(matches) < 2 {
		return ""
	}
	body := strings.TrimSpace(matches[1])
	if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[") {
		return body
	}
	return ""
}

// extractJSONFromText finds the first balanced object, or failing that array, in free text
func extractJSONFromText(input string) string {
	if start := strings.IndexByte(input, '{'); start >= 0 {
		if obj := extractBalancedBraces(input[start:], '{', '}'); obj != "" {
			return obj
		}
	}
	if start := strings.IndexByte(input, '['); start >= 0 {
		return extractBalancedBraces(input[start:], '[', ']')
	}
	return ""
}

// extractBalancedBraces returns the prefix of input up to the brace that closes
// the first opening one, ignoring braces inside string literals
func extractBalancedBraces(input string, open, close rune) string {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, ch := range input {
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			if depth == 0 {
				start = i
			}
			depth++
		case ch == close && depth > 0:
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// repairJSON fixes the malformations models produce most often
func repairJSON(input string) string {
	s := extractJSONFromText(input)
	if s == "" {
		s = input
	}
	s = trailingComma.ReplaceAllString(s, "$1")
	s = unquotedObjectKey.ReplaceAllString(s, `$1"$2"$3`)
	return controlChars.ReplaceAllString(s, "")
}

// truncateString truncates a string to maxLen bytes
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
