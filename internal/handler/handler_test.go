package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"medtriage/internal/model"
	"medtriage/internal/repository"
	"medtriage/internal/service"

	"github.com/gin-gonic/gin"
)

// stubStore is an in-memory service.SubmissionStore
type stubStore struct {
	submissions []model.Submission
	lastLimit   int
	lastOffset  int
}

func (s *stubStore) Save(ctx context.Context, sub *model.Submission) error {
	sub.ID = int64(len(s.submissions) + 1)
	sub.CreatedAt = time.Now()
	s.submissions = append(s.submissions, *sub)
	return nil
}

func (s *stubStore) Get(ctx context.Context, id int64) (*model.Submission, error) {
	for _, sub := range s.submissions {
		if sub.ID == id {
			found := sub
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubStore) ListRecent(ctx context.Context, limit, offset int) ([]model.Submission, error) {
	s.lastLimit, s.lastOffset = limit, offset
	return s.submissions, nil
}

func (s *stubStore) ListByUrgency(ctx context.Context, limit int) ([]model.Submission, error) {
	s.lastLimit = limit
	return s.submissions, nil
}

func setupRouter(store *stubStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	triageService := service.NewTriageService(
		service.NewUrgencyAnalyzer(nil),
		store,
		nil,
		service.NewEmergencyRanker(),
	)
	triageHandler := NewTriageHandler(triageService)
	submissionHandler := NewSubmissionHandler(triageService, 20, 100)

	router := gin.New()
	apiV1 := router.Group("/api/v1")
	apiV1.GET("/config", triageHandler.Config)
	apiV1.POST("/triage/analyze", triageHandler.Analyze)
	apiV1.POST("/submissions", submissionHandler.Create)
	apiV1.GET("/submissions", submissionHandler.List)
	apiV1.GET("/submissions/:id", submissionHandler.Get)
	apiV1.GET("/emergency-ranking", submissionHandler.EmergencyRanking)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyze(t *testing.T) {
	router := setupRouter(&stubStore{})

	w := doRequest(router, http.MethodPost, "/api/v1/triage/analyze", `{"transcript": "I need help, this is an emergency"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var result model.UrgencyResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result.UrgencyScore != 10 || result.UrgencyRank != 1 || result.Severity != model.SeverityCritical {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestAnalyzeEmptyTranscript(t *testing.T) {
	router := setupRouter(&stubStore{})

	w := doRequest(router, http.MethodPost, "/api/v1/triage/analyze", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"recommendation":"No symptoms described"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"detectedSymptoms":[]`) {
		t.Errorf("expected an empty symptom array, got %s", w.Body.String())
	}
}

func TestAnalyzeInvalidJSON(t *testing.T) {
	router := setupRouter(&stubStore{})

	w := doRequest(router, http.MethodPost, "/api/v1/triage/analyze", `{"transcript": `)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"error"`) {
		t.Errorf("expected error payload, got %s", w.Body.String())
	}
}

func TestCreateSubmission(t *testing.T) {
	store := &stubStore{}
	router := setupRouter(store)

	w := doRequest(router, http.MethodPost, "/api/v1/submissions",
		`{"name": "Ana", "email": "ana@example.com", "transcript": "severe headache since yesterday"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var submission model.Submission
	if err := json.Unmarshal(w.Body.Bytes(), &submission); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if submission.ID != 1 || submission.AnalysisMethod != model.MethodKeywordFallback || submission.UrgencyScore != 5.5 {
		t.Errorf("unexpected submission %+v", submission)
	}
	if len(store.submissions) != 1 {
		t.Errorf("expected submission to be stored")
	}
}

func TestCreateSubmissionValidation(t *testing.T) {
	store := &stubStore{}
	router := setupRouter(store)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email": "a@example.com", "transcript": "cough"}`},
		{"missing email", `{"name": "A", "transcript": "cough"}`},
		{"invalid email", `{"name": "A", "email": "not-an-email", "transcript": "cough"}`},
		{"blank name", `{"name": "   ", "email": "a@example.com", "transcript": "cough"}`},
		{"tab name", `{"name": "\t\n", "email": "a@example.com", "transcript": "cough"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/api/v1/submissions", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}

	if len(store.submissions) != 0 {
		t.Errorf("invalid submissions were stored: %+v", store.submissions)
	}
}

func TestGetSubmission(t *testing.T) {
	store := &stubStore{}
	router := setupRouter(store)
	doRequest(router, http.MethodPost, "/api/v1/submissions", `{"name": "A", "email": "a@example.com", "transcript": "cough"}`)

	if w := doRequest(router, http.MethodGet, "/api/v1/submissions/1", ""); w.Code != http.StatusOK {
		t.Errorf("existing submission: status = %d", w.Code)
	}
	if w := doRequest(router, http.MethodGet, "/api/v1/submissions/99", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing submission: status = %d, want 404", w.Code)
	}
	if w := doRequest(router, http.MethodGet, "/api/v1/submissions/abc", ""); w.Code != http.StatusBadRequest {
		t.Errorf("invalid id: status = %d, want 400", w.Code)
	}
}

func TestListSubmissionsLimits(t *testing.T) {
	tests := []struct {
		query      string
		wantStatus int
		wantLimit  int
		wantOffset int
	}{
		{"", http.StatusOK, 20, 0},
		{"?limit=5&offset=10", http.StatusOK, 5, 10},
		{"?limit=500", http.StatusOK, 100, 0},
		{"?limit=0&offset=-3", http.StatusOK, 20, 0},
		{"?limit=ten", http.StatusBadRequest, 0, 0},
		{"?offset=x", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			store := &stubStore{}
			router := setupRouter(store)

			w := doRequest(router, http.MethodGet, "/api/v1/submissions"+tt.query, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if store.lastLimit != tt.wantLimit || store.lastOffset != tt.wantOffset {
				t.Errorf("limit/offset = %d/%d, want %d/%d", store.lastLimit, store.lastOffset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestEmergencyRanking(t *testing.T) {
	store := &stubStore{}
	router := setupRouter(store)
	doRequest(router, http.MethodPost, "/api/v1/submissions", `{"name": "A", "email": "a@example.com", "transcript": "good morning"}`)
	doRequest(router, http.MethodPost, "/api/v1/submissions", `{"name": "B", "email": "b@example.com", "transcript": "he is unconscious, emergency"}`)

	w := doRequest(router, http.MethodGet, "/api/v1/emergency-ranking?limit=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var ranking model.RankingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &ranking); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if ranking.Count != 2 || ranking.Results[0].Name != "B" || ranking.Results[0].Position != 1 {
		t.Errorf("unexpected ranking %+v", ranking)
	}
	if len(ranking.Results[0].Reasons) == 0 {
		t.Error("expected priority reasons")
	}
	if store.lastLimit != 10 {
		t.Errorf("limit = %d, want 10", store.lastLimit)
	}
}

func TestConfig(t *testing.T) {
	router := setupRouter(&stubStore{})

	w := doRequest(router, http.MethodGet, "/api/v1/config", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var status model.ClassifierStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if status.Available || status.AnalysisMode != "keyword_fallback" {
		t.Errorf("unexpected status %+v", status)
	}
}
