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

type MasteryHandler struct {
	log        *logger.Logger
	masterySvc services.MasteryService
	gapSvc     services.GapService
}

func NewMasteryHandler(log *logger.Logger, masterySvc services.MasteryService, gapSvc services.GapService) *MasteryHandler {
	return &MasteryHandler{
		log:        log.With("handler", "MasteryHandler"),
		masterySvc: masterySvc,
		gapSvc:     gapSvc,
	}
}

// GET /api/mastery
// All mastery records for the authenticated user, one per active domain.
func (h *MasteryHandler) GetAllMastery(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	masteries, err := h.masterySvc.GetAllMasteryLevels(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"mastery": masteries})
}

// POST /api/mastery/:domainID/recalculate
// Force a mastery recomputation for one domain.
func (h *MasteryHandler) Recalculate(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	domainID, err := uuid.Parse(c.Param("domainID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_domain_id", err)
		return
	}
	mastery, err := h.masterySvc.CalculateDomainMastery(c.Request.Context(), rd.UserID, domainID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"mastery": mastery})
}

// GET /api/gaps?limit=N
// Prioritized knowledge gaps for the authenticated user.
func (h *MasteryHandler) GetGaps(c *gin.Context) {
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
	gaps, err := h.gapSvc.GetPrioritizedGaps(c.Request.Context(), rd.UserID, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"gaps": gaps})
}
