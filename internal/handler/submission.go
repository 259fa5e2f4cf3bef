package handler

import (
	"errors"
	"net/http"
	"strconv"

	"medtriage/internal/model"
	"medtriage/internal/repository"
	"medtriage/internal/service"

	"github.com/gin-gonic/gin"
)

// SubmissionHandler handles stored submission requests
type SubmissionHandler struct {
	triageService *service.TriageService
	defaultLimit  int
	maxLimit      int
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(triageService *service.TriageService, defaultLimit, maxLimit int) *SubmissionHandler {
	return &SubmissionHandler{
		triageService: triageService,
		defaultLimit:  defaultLimit,
		maxLimit:      maxLimit,
	}
}

// Create handles POST /api/v1/submissions
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req model.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	submission, err := h.triageService.Submit(c.Request.Context(), &req)
	if errors.Is(err, service.ErrInvalidSubmission) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store submission: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// List handles GET /api/v1/submissions
func (h *SubmissionHandler) List(c *gin.Context) {
	limit, ok := h.parseLimit(c)
	if !ok {
		return
	}

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset"})
			return
		}
		if value > 0 {
			offset = value
		}
	}

	response, err := h.triageService.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list submissions: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/v1/submissions/:id
func (h *SubmissionHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	submission, err := h.triageService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get submission: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, submission)
}

// EmergencyRanking handles GET /api/v1/emergency-ranking
func (h *SubmissionHandler) EmergencyRanking(c *gin.Context) {
	limit, ok := h.parseLimit(c)
	if !ok {
		return
	}

	response, err := h.triageService.Ranking(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rank submissions: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// parseLimit reads the limit query parameter, applying the default and cap.
// It writes a 400 response and returns false when the value is not a number.
func (h *SubmissionHandler) parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return h.defaultLimit, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return 0, false
	}

	// Validate and cap limits
	if limit <= 0 {
		limit = h.defaultLimit
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}
	return limit, true
}
