package model

// AnalyzeRequest is the body of a stateless analysis call
type AnalyzeRequest struct {
	Transcript string `json:"transcript"`
}

// SubmissionRequest represents a patient submission to analyse and store
type SubmissionRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Transcript string `json:"transcript"`
}

// SubmissionListResponse represents a page of stored submissions
type SubmissionListResponse struct {
	Results []Submission `json:"results"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
	Count   int          `json:"count"`
}

// RankingResponse represents the emergency ranking view
type RankingResponse struct {
	Results []RankedSubmission `json:"results"`
	Count   int                `json:"count"`
	Took    int64              `json:"took_ms"`
}

// ClassifierStatus reports how transcripts are currently being analysed
type ClassifierStatus struct {
	Provider     string `json:"provider"`
	Available    bool   `json:"available"`
	AnalysisMode string `json:"analysisMode"`
}
