package utils

import (
	"testing"
)

type labelScores struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

func TestParseAIJSON(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantLabels int
		wantErr    bool
	}{
		{
			name:       "Pure JSON",
			input:      `{"labels": ["a", "b"], "scores": [0.7, 0.3]}`,
			wantLabels: 2,
		},
		{
			name: "JSON in markdown code block",
			input: "```json\n" +
				`{"labels": ["a"], "scores": [1.0]}` + "\n```",
			wantLabels: 1,
		},
		{
			name:       "JSON in untagged code block",
			input:      "```\n{\"labels\": [\"a\", \"b\", \"c\"], \"scores\": [0.5, 0.3, 0.2]}\n```",
			wantLabels: 3,
		},
		{
			name:       "JSON with surrounding text",
			input:      `Here is my answer: {"labels": ["a", "b"], "scores": [0.6, 0.4]} hope it helps.`,
			wantLabels: 2,
		},
		{
			name:       "JSON with trailing comma",
			input:      `{"labels": ["a", "b",], "scores": [0.6, 0.4],}`,
			wantLabels: 2,
		},
		{
			name:       "JSON with unquoted keys",
			input:      `{labels: ["a"], scores: [1]}`,
			wantLabels: 1,
		},
		{
			name:    "Empty string",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "Invalid JSON",
			input:   "not json at all",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got labelScores
			err := ParseAIJSON(tt.input, &got)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAIJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got.Labels) != tt.wantLabels {
				t.Errorf("ParseAIJSON() labels = %v, want %d entries", got.Labels, tt.wantLabels)
			}
			if len(got.Scores) != len(got.Labels) {
				t.Errorf("ParseAIJSON() scores = %v, want one per label", got.Scores)
			}
		})
	}
}

func TestExtractFromMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "JSON code block with json tag",
			input: "```json\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "JSON code block without tag",
			input: "```\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "Code block that is not JSON",
			input: "```\nplain words\n```",
			want:  "",
		},
		{
			name:  "No code block",
			input: `{"test": true}`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractFromMarkdown(tt.input)
			if got != tt.want {
				t.Errorf("extractFromMarkdown() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractBalancedBraces(t *testing.T) {
	tests := []struct {
		name  string
		input string
		open  rune
		close rune
		want  string
	}{
		{
			name:  "Simple object",
			input: `{"a": 1} trailing`,
			open:  '{',
			close: '}',
			want:  `{"a": 1}`,
		},
		{
			name:  "Nested objects",
			input: `{"a": {"b": 2}}`,
			open:  '{',
			close: '}',
			want:  `{"a": {"b": 2}}`,
		},
		{
			name:  "Object with string containing braces",
			input: `{"text": "Hello {world}"}`,
			open:  '{',
			close: '}',
			want:  `{"text": "Hello {world}"}`,
		},
		{
			name:  "Array",
			input: `[1, 2, 3]`,
			open:  '[',
			close: ']',
			want:  `[1, 2, 3]`,
		},
		{
			name:  "Unbalanced",
			input: `{"a": {"b": 2}`,
			open:  '{',
			close: '}',
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractBalancedBraces(tt.input, tt.open, tt.close)
			if got != tt.want {
				t.Errorf("extractBalancedBraces() = %v, want %v", got, tt.want)
			}
		})
	}
}
