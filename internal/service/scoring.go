package service

import (
	"math"
	"strings"

	"medtriage/internal/model"
	"medtriage/internal/utils"
)

// Recommendations, from most to least urgent
const (
	RecommendEmergency = "CALL EMERGENCY SERVICES IMMEDIATELY — this requires emergency medical attention"
	RecommendUrgent    = "Seek urgent care immediately — visit an emergency room or urgent-care clinic"
	RecommendConsult   = "Schedule a medical consultation soon — contact your doctor within 24–48 hours"
	RecommendMonitor   = "Monitor symptoms — schedule a routine appointment if symptoms persist"
	RecommendGeneral   = "General health inquiry — no immediate medical attention required"
	RecommendNoInput   = "No symptoms described"
)

// FallbackClassification marks results produced by the keyword fallback
const FallbackClassification = "Fallback keyword analysis"

const (
	minUrgencyScore = 0.0
	maxUrgencyScore = 10.0

	fallbackConfidence = 50.0
)

// urgencyBand describes how a classifier label maps onto the 0-10 scale
type urgencyBand struct {
	marker   string
	base     float64
	width    float64
	rank     int
	severity model.Severity
}

// classificationBands are checked in order; the last one catches every other label.
var classificationBands = []urgencyBand{
	{"life-threatening", 9, 1, model.RankImmediate, model.SeverityCritical},
	{"serious medical", 7, 2, model.RankImmediate, model.SeverityHigh},
	{"moderate health", 4, 3, model.RankSoon, model.SeverityMedium},
	{"mild symptoms", 1, 3, model.RankRoutine, model.SeverityLow},
	{"", 0, 1, model.RankRoutine, model.SeverityMinimal},
}

// scoreFromClassification maps the top classifier label and its confidence
// (0-1) to a score, interpolating linearly inside the label's band.
// The score is not rounded; callers round it for display only.
func scoreFromClassification(label string, confidence float64) (float64, int, model.Severity) {
	confidence = clamp(confidence, 0, 1)

	for _, band := range classificationBands {
		if band.marker == "" || strings.Contains(label, band.marker) {
			score := roundTo2(clamp(band.base+confidence*band.width, minUrgencyScore, maxUrgencyScore))
			return score, band.rank, band.severity
		}
	}

	// unreachable: the last band matches every label
	return minUrgencyScore, model.RankRoutine, model.SeverityMinimal
}

// fallbackScore scores lower-cased text by keyword counts; the first tier with a hit wins.
// Like scoreFromClassification it returns the unrounded score.
func fallbackScore(lower string) (float64, int, model.Severity) {
	criticalCount := utils.CountMatches(lower, fallbackCriticalKeywords)
	highCount := utils.CountMatches(lower, fallbackHighKeywords)
	mediumCount := utils.CountMatches(lower, fallbackMediumKeywords)

	var (
		score    float64
		rank     int
		severity model.Severity
	)

	switch {
	case criticalCount > 0:
		score = 8 + math.Min(float64(criticalCount), 2)
		rank, severity = model.RankImmediate, model.SeverityCritical
	case highCount > 0:
		score = 5 + math.Min(float64(highCount)*0.5, 3)
		rank, severity = model.RankSoon, model.SeverityHigh
	case mediumCount > 0:
		score = 2 + math.Min(float64(mediumCount)*0.3, 3)
		rank, severity = model.RankSoon, model.SeverityMedium
	default:
		score = 1
		rank, severity = model.RankRoutine, model.SeverityLow
	}

	return clamp(score, minUrgencyScore, maxUrgencyScore), rank, severity
}

// GenerateRecommendation maps an unrounded urgency score to an action directive.
// symptoms does not influence the outcome today.
func GenerateRecommendation(score float64, symptoms []model.SymptomMatch) string {
	switch {
	case score >= 8:
		return RecommendEmergency
	case score >= 6:
		return RecommendUrgent
	case score >= 4:
		return RecommendConsult
	case score >= 2:
		return RecommendMonitor
	default:
		return RecommendGeneral
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
