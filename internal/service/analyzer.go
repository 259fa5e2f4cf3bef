package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"medtriage/internal/model"
	"medtriage/internal/utils"
)

// UrgencyAnalyzer scores free-text patient descriptions for urgency.
//
// The zero-shot classifier is built once and held for the analyzer's lifetime.
// Without one the analyzer stays in keyword-fallback mode permanently. The
// analyzer holds no mutable state, so one instance can serve concurrent callers.
type UrgencyAnalyzer struct {
	classifier ZeroShotClassifier
	labels     []string
}

// NewUrgencyAnalyzer creates an analyzer around an already constructed classifier.
// A nil classifier yields an analyzer that always uses the keyword fallback.
func NewUrgencyAnalyzer(classifier ZeroShotClassifier) *UrgencyAnalyzer {
	return &UrgencyAnalyzer{
		classifier: classifier,
		labels:     UrgencyLabels(),
	}
}

// NewUrgencyAnalyzerWithFactory constructs the classifier through factory.
// Construction failure is logged and leaves the analyzer in fallback mode.
func NewUrgencyAnalyzerWithFactory(factory func() (ZeroShotClassifier, error)) *UrgencyAnalyzer {
	classifier, err := factory()
	if err != nil {
		log.Printf("⚠️  Zero-shot classifier unavailable, using keyword fallback: %v", err)
		return NewUrgencyAnalyzer(nil)
	}
	return NewUrgencyAnalyzer(classifier)
}

// Available reports whether a zero-shot classifier is attached
func (a *UrgencyAnalyzer) Available() bool {
	return a.classifier != nil
}

// ProviderName returns the classifier backend name, or "keyword-fallback"
func (a *UrgencyAnalyzer) ProviderName() string {
	if a.classifier == nil {
		return "keyword-fallback"
	}
	return a.classifier.Name()
}

// Analyze scores a transcript. It always returns a well-formed result:
// classifier failures are logged and answered by the keyword fallback.
func (a *UrgencyAnalyzer) Analyze(ctx context.Context, text string) *model.UrgencyResult {
	if strings.TrimSpace(text) == "" {
		return EmptyResult()
	}

	if a.classifier == nil {
		return fallbackAnalysis(text)
	}

	result, err := a.analyzeWithClassifier(ctx, text)
	if err != nil {
		log.Printf("Error in AI analysis, using keyword fallback: %v", err)
		return fallbackAnalysis(text)
	}

	return result
}

// analyzeWithClassifier maps the classifier's top label onto the urgency scale
func (a *UrgencyAnalyzer) analyzeWithClassifier(ctx context.Context, text string) (*model.UrgencyResult, error) {
	scores, err := a.classify(ctx, text)
	if err != nil {
		return nil, err
	}

	top := scores[0]
	log.Printf("[DEBUG] 🤖 %s top label %q (%.3f)", a.classifier.Name(), top.Label, top.Score)

	score, rank, severity := scoreFromClassification(top.Label, top.Score)
	symptoms := DetectSymptoms(text)

	return &model.UrgencyResult{
		UrgencyScore:     roundTo2(score),
		UrgencyRank:      rank,
		Severity:         severity,
		DetectedSymptoms: symptoms,
		Recommendation:   GenerateRecommendation(score, symptoms),
		Confidence:       roundTo2(clamp(top.Score, 0, 1) * 100),
		AIClassification: top.Label,
	}, nil
}

// classify calls the backend and returns its answers sorted by score.
// A panicking backend is treated like a failing one.
func (a *UrgencyAnalyzer) classify(ctx context.Context, text string) (scores []LabelScore, err error) {
	defer func() {
		if r := recover(); r != nil {
			scores = nil
			err = fmt.Errorf("%w: %s panicked: %v", ErrClassificationFailed, a.classifier.Name(), r)
		}
	}()

	raw, err := a.classifier.Classify(ctx, text, a.labels)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyClassification
	}

	scores = make([]LabelScore, len(raw))
	copy(scores, raw)
	sortLabelScores(scores)
	return scores, nil
}

// fallbackAnalysis scores a transcript by keyword counts alone
func fallbackAnalysis(text string) *model.UrgencyResult {
	lower := utils.NormalizeText(text)
	score, rank, severity := fallbackScore(lower)
	symptoms := DetectSymptoms(text)

	log.Printf("[DEBUG] 🔑 Keyword fallback: score=%.2f critical=%v high=%v",
		score,
		utils.MatchedPhrases(lower, fallbackCriticalKeywords),
		utils.MatchedPhrases(lower, fallbackHighKeywords))

	return &model.UrgencyResult{
		UrgencyScore:     roundTo2(score),
		UrgencyRank:      rank,
		Severity:         severity,
		DetectedSymptoms: symptoms,
		Recommendation:   GenerateRecommendation(score, symptoms),
		Confidence:       fallbackConfidence,
		AIClassification: FallbackClassification,
	}
}

// EmptyResult is returned for empty or whitespace-only transcripts
func EmptyResult() *model.UrgencyResult {
	return &model.UrgencyResult{
		UrgencyScore:     0,
		UrgencyRank:      model.RankRoutine,
		Severity:         model.SeverityLow,
		DetectedSymptoms: []model.SymptomMatch{},
		Recommendation:   RecommendNoInput,
		Confidence:       0,
	}
}
