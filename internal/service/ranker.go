package service

import (
	"sort"
	"time"

	"medtriage/internal/model"
)

// Priority reason constants
const (
	ReasonLifeThreatening   = "Life-threatening classification"
	ReasonCriticalSymptom   = "Critical symptom reported"
	ReasonSeriousSymptom    = "Serious symptom reported"
	ReasonKeywordFallback   = "Scored by keyword fallback"
	ReasonLowConfidence     = "Low classifier confidence"
	ReasonRecentlySubmitted = "Submitted within the last hour"
	ReasonRoutinePriority   = "Routine priority"
)

// lowConfidenceThreshold is the zero-shot confidence (0-100) below which an entry is flagged
const lowConfidenceThreshold = 50.0

// EmergencyRanker orders stored submissions for the emergency view
type EmergencyRanker struct {
	now func() time.Time
}

// NewEmergencyRanker creates a new ranker
func NewEmergencyRanker() *EmergencyRanker {
	return &EmergencyRanker{now: time.Now}
}

// Rank sorts submissions by urgency rank ascending, then score descending,
// then newest first, and annotates each entry with its priority reasons
func (r *EmergencyRanker) Rank(submissions []model.Submission) []model.RankedSubmission {
	sorted := make([]model.Submission, len(submissions))
	copy(sorted, submissions)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.UrgencyRank != b.UrgencyRank {
			return a.UrgencyRank < b.UrgencyRank
		}
		if a.UrgencyScore != b.UrgencyScore {
			return a.UrgencyScore > b.UrgencyScore
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	results := make([]model.RankedSubmission, 0, len(sorted))
	for i, submission := range sorted {
		results = append(results, model.RankedSubmission{
			Submission: submission,
			Position:   i + 1,
			Reasons:    r.generateReasons(submission),
		})
	}

	return results
}

// generateReasons explains where a submission sits in the ranking
func (r *EmergencyRanker) generateReasons(s model.Submission) []string {
	reasons := []string{}

	if s.AnalysisMethod == model.MethodZeroShot && s.AIClassification == LabelLifeThreatening {
		reasons = append(reasons, ReasonLifeThreatening)
	}

	result := s.Result()
	if result.HasSymptom(model.SymptomCritical) {
		reasons = append(reasons, ReasonCriticalSymptom)
	}
	if result.HasSymptom(model.SymptomSerious) {
		reasons = append(reasons, ReasonSeriousSymptom)
	}

	switch s.AnalysisMethod {
	case model.MethodKeywordFallback:
		reasons = append(reasons, ReasonKeywordFallback)
	case model.MethodZeroShot:
		if s.Confidence < lowConfidenceThreshold {
			reasons = append(reasons, ReasonLowConfidence)
		}
	}

	if !s.CreatedAt.IsZero() && r.now().Sub(s.CreatedAt) < time.Hour {
		reasons = append(reasons, ReasonRecentlySubmitted)
	}

	if s.UrgencyRank == model.RankRoutine {
		reasons = append(reasons, ReasonRoutinePriority)
	}

	return reasons
}
