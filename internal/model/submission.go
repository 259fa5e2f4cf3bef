package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AnalysisMethod records which path produced a stored analysis
type AnalysisMethod string

const (
	MethodZeroShot        AnalysisMethod = "zero_shot"
	MethodKeywordFallback AnalysisMethod = "keyword_fallback"
	MethodNone            AnalysisMethod = "none"
)

// Submission is a patient transcript stored together with its urgency analysis
type Submission struct {
	ID               int64          `json:"id" db:"id"`
	Name             string         `json:"name" db:"name"`
	Email            string         `json:"email" db:"email"`
	Transcript       string         `json:"transcript" db:"transcript"`
	UrgencyScore     float64        `json:"urgencyScore" db:"urgency_score"`
	UrgencyRank      int            `json:"urgencyRank" db:"urgency_rank"`
	Severity         Severity       `json:"severity" db:"severity"`
	DetectedSymptoms SymptomList    `json:"detectedSymptoms" db:"detected_symptoms"`
	Recommendation   string         `json:"recommendation" db:"recommendation"`
	Confidence       float64        `json:"confidence" db:"confidence"`
	AIClassification string         `json:"aiClassification" db:"ai_classification"`
	AnalysisMethod   AnalysisMethod `json:"analysisMethod" db:"analysis_method"`
	CreatedAt        time.Time      `json:"createdAt" db:"created_at"`
}

// Result rebuilds the urgency result carried by the submission
func (s *Submission) Result() *UrgencyResult {
	symptoms := []SymptomMatch(s.DetectedSymptoms)
	if symptoms == nil {
		symptoms = []SymptomMatch{}
	}
	return &UrgencyResult{
		UrgencyScore:     s.UrgencyScore,
		UrgencyRank:      s.UrgencyRank,
		Severity:         s.Severity,
		DetectedSymptoms: symptoms,
		Recommendation:   s.Recommendation,
		Confidence:       s.Confidence,
		AIClassification: s.AIClassification,
	}
}

// RankedSubmission is an entry of the emergency ranking
type RankedSubmission struct {
	Submission
	Position int      `json:"position"`
	Reasons  []string `json:"reasons"`
}

// UrgentAlert is published when a stored submission needs immediate attention
type UrgentAlert struct {
	SubmissionID   int64          `json:"submissionId"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	UrgencyScore   float64        `json:"urgencyScore"`
	Severity       Severity       `json:"severity"`
	Symptoms       []SymptomMatch `json:"symptoms"`
	Recommendation string         `json:"recommendation"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// SymptomList is a JSONB column of symptom matches
type SymptomList []SymptomMatch

// Value implements driver.Valuer interface
func (l SymptomList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner interface
func (l *SymptomList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = SymptomList{}
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into SymptomList", value)
	}
}
