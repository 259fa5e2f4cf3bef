package service

import (
	"context"
	"fmt"
	"strings"

	"medtriage/internal/utils"
)

const llmClassifierPrompt = `You are a zero-shot text classifier for a medical self-triage service.
Rate how well the patient's description fits each candidate category.

Rules:
- Use only the candidate categories listed below, spelled exactly as given
- Give every category a score between 0 and 1; the scores must sum to 1
- Respond ONLY with valid JSON of the form {"labels": [...], "scores": [...]}
- Order labels from the best to the worst fit

Candidate categories:
%s`

// LLMClassifier performs zero-shot classification with a chat model
type LLMClassifier struct {
	client *OpenAIClient
}

// NewLLMClassifier wraps an OpenAI-compatible client.
// A client without an API key makes the classifier unavailable.
func NewLLMClassifier(client *OpenAIClient) (*LLMClassifier, error) {
	if client == nil || !client.IsEnabled() {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrClassifierUnavailable)
	}
	return &LLMClassifier{client: client}, nil
}

// Name identifies the backend
func (c *LLMClassifier) Name() string {
	return "openai:" + c.client.Model()
}

// llmClassification is the JSON shape the model is asked to produce
type llmClassification struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Classify asks the chat model to rank the candidate labels
func (c *LLMClassifier) Classify(ctx context.Context, text string, labels []string) ([]LabelScore, error) {
	var candidates strings.Builder
	for _, label := range labels {
		candidates.WriteString("- ")
		candidates.WriteString(label)
		candidates.WriteString("\n")
	}

	content, err := c.client.CompleteJSON(ctx, fmt.Sprintf(llmClassifierPrompt, candidates.String()), text)
	if err != nil {
		return nil, err
	}

	var parsed llmClassification
	if err := utils.ParseAIJSON(content, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse classifier response: %w", err)
	}

	return normalizeLabelScores(parsed.Labels, parsed.Scores, labels)
}

// normalizeLabelScores keeps only known candidate labels, drops duplicates and
// negative scores, rescales to a total of 1 and sorts descending.
// An answer whose kept scores are all zero carries no ranking and is rejected.
func normalizeLabelScores(labels []string, scores []float64, candidates []string) ([]LabelScore, error) {
	if len(labels) != len(scores) {
		return nil, fmt.Errorf("classifier returned %d labels but %d scores", len(labels), len(scores))
	}

	known := make(map[string]string, len(candidates))
	for _, candidate := range candidates {
		known[strings.ToLower(candidate)] = candidate
	}

	seen := make(map[string]bool, len(labels))
	result := make([]LabelScore, 0, len(labels))
	total := 0.0
	for i, label := range labels {
		canonical, ok := known[strings.ToLower(strings.TrimSpace(label))]
		if !ok || seen[canonical] || scores[i] < 0 {
			continue
		}
		seen[canonical] = true
		result = append(result, LabelScore{Label: canonical, Score: scores[i]})
		total += scores[i]
	}

	if len(result) == 0 || total <= 0 {
		return nil, ErrEmptyClassification
	}

	for i := range result {
		result[i].Score /= total
	}

	sortLabelScores(result)
	return result, nil
}
