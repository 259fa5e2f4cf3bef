package model

// Severity is the human label attached to an urgency score
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityMinimal  Severity = "minimal"
)

// SymptomSeverity is the tier a detected symptom was matched in
type SymptomSeverity string

const (
	SymptomCritical SymptomSeverity = "critical"
	SymptomSerious  SymptomSeverity = "serious"
	SymptomModerate SymptomSeverity = "moderate"
)

// Urgency ranks, 1 is the highest priority
const (
	RankImmediate = 1
	RankSoon      = 2
	RankRoutine   = 3
)

// SymptomMatch is a canonical symptom found in a transcript
type SymptomMatch struct {
	Symptom  string          `json:"symptom"`
	Severity SymptomSeverity `json:"severity"`
}

// UrgencyResult is the outcome of analysing one transcript.
// It is built fresh per call and never mutated afterwards.
type UrgencyResult struct {
	UrgencyScore     float64        `json:"urgencyScore"`
	UrgencyRank      int            `json:"urgencyRank"`
	Severity         Severity       `json:"severity"`
	DetectedSymptoms []SymptomMatch `json:"detectedSymptoms"`
	Recommendation   string         `json:"recommendation"`
	Confidence       float64        `json:"confidence"`
	AIClassification string         `json:"aiClassification,omitempty"`
}

// HasSymptom reports whether any detected symptom is in the given tier
func (r *UrgencyResult) HasSymptom(severity SymptomSeverity) bool {
	for _, s := range r.DetectedSymptoms {
		if s.Severity == severity {
			return true
		}
	}
	return false
}
