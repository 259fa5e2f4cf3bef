package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"medtriage/internal/config"
)

// HuggingFaceClassifier calls a hosted zero-shot classification model
// (facebook/bart-large-mnli by default) through the inference API
type HuggingFaceClassifier struct {
	config     *config.HuggingFaceConfig
	httpClient *http.Client
}

// NewHuggingFaceClassifier creates a client for the configured model.
// Without an API key the classifier is unavailable.
func NewHuggingFaceClassifier(cfg *config.HuggingFaceConfig, timeoutSeconds int) (*HuggingFaceClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: HF_API_KEY is not set", ErrClassifierUnavailable)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: HF_MODEL is empty", ErrClassifierUnavailable)
	}

	return &HuggingFaceClassifier{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}, nil
}

// Name identifies the backend
func (c *HuggingFaceClassifier) Name() string {
	return "huggingface:" + c.config.Model
}

// zeroShotRequest is the inference API request body
type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

// zeroShotResponse is the pipeline-style answer: parallel label and score arrays
type zeroShotResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// Classify ranks labels for text
func (c *HuggingFaceClassifier) Classify(ctx context.Context, text string, labels []string) ([]LabelScore, error) {
	reqBody, err := json.Marshal(zeroShotRequest{
		Inputs:     text,
		Parameters: zeroShotParameters{CandidateLabels: labels},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.config.APIBase, c.config.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference request failed with status %d: %s", resp.StatusCode, truncate(string(body), 300))
	}

	return decodeZeroShotResponse(body)
}

// decodeZeroShotResponse accepts both answer shapes served by the inference API:
// {"labels": [...], "scores": [...]} and [{"label": ..., "score": ...}, ...]
func decodeZeroShotResponse(body []byte) ([]LabelScore, error) {
	var parallel zeroShotResponse
	if err := json.Unmarshal(body, &parallel); err == nil && len(parallel.Labels) > 0 {
		if len(parallel.Labels) != len(parallel.Scores) {
			return nil, fmt.Errorf("inference response has %d labels but %d scores", len(parallel.Labels), len(parallel.Scores))
		}
		result := make([]LabelScore, len(parallel.Labels))
		for i, label := range parallel.Labels {
			result[i] = LabelScore{Label: label, Score: parallel.Scores[i]}
		}
		sortLabelScores(result)
		return result, nil
	}

	var pairs []LabelScore
	if err := json.Unmarshal(body, &pairs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inference response: %w", err)
	}
	if len(pairs) == 0 {
		return nil, ErrEmptyClassification
	}
	sortLabelScores(pairs)
	return pairs, nil
}
