package handler

import (
	"net/http"

	"medtriage/internal/model"
	"medtriage/internal/service"

	"github.com/gin-gonic/gin"
)

// TriageHandler handles stateless analysis and status requests
type TriageHandler struct {
	triageService *service.TriageService
}

// NewTriageHandler creates a new triage handler
func NewTriageHandler(triageService *service.TriageService) *TriageHandler {
	return &TriageHandler{
		triageService: triageService,
	}
}

// Analyze handles POST /api/v1/triage/analyze
func (h *TriageHandler) Analyze(c *gin.Context) {
	var req model.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result := h.triageService.Analyze(c.Request.Context(), req.Transcript)
	c.JSON(http.StatusOK, result)
}

// Config handles GET /api/v1/config
func (h *TriageHandler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, h.triageService.Status())
}
