package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"medtriage/internal/config"
)

var (
	// ErrClassifierUnavailable is returned when no zero-shot backend could be constructed
	ErrClassifierUnavailable = errors.New("zero-shot classifier unavailable")

	// ErrClassificationFailed is returned when a single classification call fails
	ErrClassificationFailed = errors.New("zero-shot classification failed")

	// ErrEmptyClassification is returned when a backend answers without any label
	ErrEmptyClassification = errors.New("zero-shot classification returned no labels")
)

// Candidate urgency categories, most urgent first
const (
	LabelLifeThreatening = "life-threatening emergency requiring immediate medical attention"
	LabelSerious         = "serious medical condition requiring urgent care"
	LabelModerate        = "moderate health concern requiring medical consultation"
	LabelMild            = "mild symptoms that can wait for routine care"
	LabelGeneralInquiry  = "general health inquiry or non-urgent matter"
)

// UrgencyLabels returns the candidate labels offered to the classifier
func UrgencyLabels() []string {
	return []string{
		LabelLifeThreatening,
		LabelSerious,
		LabelModerate,
		LabelMild,
		LabelGeneralInquiry,
	}
}

// LabelScore is one ranked answer of a zero-shot classifier
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ZeroShotClassifier ranks candidate labels for a text.
// Implementations return scores summing to 1, sorted descending.
type ZeroShotClassifier interface {
	Classify(ctx context.Context, text string, labels []string) ([]LabelScore, error)

	// Name identifies the backend in logs and status reports
	Name() string
}

// Ensure both backends implement ZeroShotClassifier
var (
	_ ZeroShotClassifier = (*HuggingFaceClassifier)(nil)
	_ ZeroShotClassifier = (*LLMClassifier)(nil)
)

// NewZeroShotClassifier builds the backend selected by configuration.
// Missing credentials or provider "none" yield ErrClassifierUnavailable.
func NewZeroShotClassifier(cfg *config.Config) (ZeroShotClassifier, error) {
	switch cfg.Classifier.Provider {
	case "huggingface":
		classifier, err := NewHuggingFaceClassifier(&cfg.HuggingFace, cfg.Classifier.Timeout)
		if err != nil {
			return nil, err
		}
		return classifier, nil
	case "openai":
		classifier, err := NewLLMClassifier(NewOpenAIClient(&cfg.OpenAI, cfg.Classifier.Timeout))
		if err != nil {
			return nil, err
		}
		return classifier, nil
	case "none", "":
		return nil, fmt.Errorf("%w: classifier provider disabled", ErrClassifierUnavailable)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrClassifierUnavailable, cfg.Classifier.Provider)
	}
}

// sortLabelScores orders answers by descending score, keeping input order on ties
func sortLabelScores(scores []LabelScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
}
