package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dustinober1/pmp-application-sub002/internal/logger"
	"github.com/dustinober1/pmp-application-sub002/internal/requestdata"
	"github.com/dustinober1/pmp-application-sub002/internal/services"
)

type InsightHandler struct {
	log        *logger.Logger
	insightSvc services.InsightService
}

func NewInsightHandler(log *logger.Logger, insightSvc services.InsightService) *InsightHandler {
	return &InsightHandler{
		log:        log.With("handler", "InsightHandler"),
		insightSvc: insightSvc,
	}
}

// GET /api/insights?limit=N
func (h *InsightHandler) GetRecent(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = n
	}
	insights, err := h.insightSvc.GetRecentInsights(c.Request.Context(), rd.UserID, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"insights": insights})
}

// POST /api/insights/generate
// Run insight generation for the authenticated user and return whatever is
// new.
func (h *InsightHandler) Generate(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	created, err := h.insightSvc.GenerateInsights(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"created": created})
}

// POST /api/insights/:id/read
func (h *InsightHandler) MarkRead(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	insightID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_insight_id", err)
		return
	}
	if err := h.insightSvc.MarkRead(c.Request.Context(), rd.UserID, insightID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
