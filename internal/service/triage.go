package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"medtriage/internal/model"
)

const alertPublishTimeout = 5 * time.Second

// ErrInvalidSubmission is returned when a submission fails validation after trimming
var ErrInvalidSubmission = errors.New("invalid submission")

// SubmissionStore persists analysed submissions
type SubmissionStore interface {
	// Save inserts the submission and fills in its ID and CreatedAt
	Save(ctx context.Context, submission *model.Submission) error
	Get(ctx context.Context, id int64) (*model.Submission, error)
	ListRecent(ctx context.Context, limit, offset int) ([]model.Submission, error)
	ListByUrgency(ctx context.Context, limit int) ([]model.Submission, error)
}

// AlertPublisher delivers urgent-submission alerts to downstream consumers
type AlertPublisher interface {
	PublishUrgent(ctx context.Context, alert *model.UrgentAlert) error
}

// TriageService handles submission business logic
type TriageService struct {
	analyzer *UrgencyAnalyzer
	store    SubmissionStore
	alerts   AlertPublisher
	ranker   *EmergencyRanker
}

// NewTriageService creates a new triage service. alerts may be nil.
func NewTriageService(
	analyzer *UrgencyAnalyzer,
	store SubmissionStore,
	alerts AlertPublisher,
	ranker *EmergencyRanker,
) *TriageService {
	return &TriageService{
		analyzer: analyzer,
		store:    store,
		alerts:   alerts,
		ranker:   ranker,
	}
}

// Analyze scores a transcript without storing it
func (s *TriageService) Analyze(ctx context.Context, transcript string) *model.UrgencyResult {
	return s.analyzer.Analyze(ctx, transcript)
}

// Submit analyses a patient submission, stores it, and raises an alert for rank 1 results
func (s *TriageService) Submit(ctx context.Context, req *model.SubmissionRequest) (*model.Submission, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidSubmission)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidSubmission)
	}

	result := s.analyzer.Analyze(ctx, req.Transcript)

	submission := &model.Submission{
		Name:             name,
		Email:            email,
		Transcript:       req.Transcript,
		UrgencyScore:     result.UrgencyScore,
		UrgencyRank:      result.UrgencyRank,
		Severity:         result.Severity,
		DetectedSymptoms: model.SymptomList(result.DetectedSymptoms),
		Recommendation:   result.Recommendation,
		Confidence:       result.Confidence,
		AIClassification: result.AIClassification,
		AnalysisMethod:   analysisMethod(req.Transcript, result),
	}

	if err := s.store.Save(ctx, submission); err != nil {
		return nil, err
	}

	log.Printf("[DEBUG] 📝 Stored submission %d: score=%.2f rank=%d method=%s",
		submission.ID, submission.UrgencyScore, submission.UrgencyRank, submission.AnalysisMethod)

	if submission.UrgencyRank == model.RankImmediate {
		s.publishAlert(ctx, submission)
	}

	return submission, nil
}

// publishAlert sends an urgent alert; failures are logged only
func (s *TriageService) publishAlert(ctx context.Context, submission *model.Submission) {
	if s.alerts == nil {
		return
	}

	alert := &model.UrgentAlert{
		SubmissionID:   submission.ID,
		Name:           submission.Name,
		Email:          submission.Email,
		UrgencyScore:   submission.UrgencyScore,
		Severity:       submission.Severity,
		Symptoms:       []model.SymptomMatch(submission.DetectedSymptoms),
		Recommendation: submission.Recommendation,
		CreatedAt:      submission.CreatedAt,
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertPublishTimeout)
	defer cancel()

	if err := s.alerts.PublishUrgent(publishCtx, alert); err != nil {
		log.Printf("⚠️  Failed to publish urgent alert for submission %d: %v", submission.ID, err)
		return
	}
	log.Printf("🚨 Urgent alert published for submission %d", submission.ID)
}

// List returns the most recent submissions
func (s *TriageService) List(ctx context.Context, limit, offset int) (*model.SubmissionListResponse, error) {
	submissions, err := s.store.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if submissions == nil {
		submissions = []model.Submission{}
	}

	return &model.SubmissionListResponse{
		Results: submissions,
		Limit:   limit,
		Offset:  offset,
		Count:   len(submissions),
	}, nil
}

// Get retrieves a single submission by ID
func (s *TriageService) Get(ctx context.Context, id int64) (*model.Submission, error) {
	return s.store.Get(ctx, id)
}

// Ranking returns the emergency view: most urgent submissions first
func (s *TriageService) Ranking(ctx context.Context, limit int) (*model.RankingResponse, error) {
	startTime := time.Now()

	submissions, err := s.store.ListByUrgency(ctx, limit)
	if err != nil {
		return nil, err
	}

	results := s.ranker.Rank(submissions)

	return &model.RankingResponse{
		Results: results,
		Count:   len(results),
		Took:    time.Since(startTime).Milliseconds(),
	}, nil
}

// Status reports which classifier backend is serving analyses
func (s *TriageService) Status() *model.ClassifierStatus {
	mode := string(model.MethodKeywordFallback)
	if s.analyzer.Available() {
		mode = string(model.MethodZeroShot)
	}

	return &model.ClassifierStatus{
		Provider:     s.analyzer.ProviderName(),
		Available:    s.analyzer.Available(),
		AnalysisMode: mode,
	}
}

// analysisMethod derives which path produced result
func analysisMethod(transcript string, result *model.UrgencyResult) model.AnalysisMethod {
	switch {
	case strings.TrimSpace(transcript) == "":
		return model.MethodNone
	case result.AIClassification == FallbackClassification:
		return model.MethodKeywordFallback
	default:
		return model.MethodZeroShot
	}
}
