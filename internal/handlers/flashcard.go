package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dustinober1/pmp-application-sub002/internal/logger"
	"github.com/dustinober1/pmp-application-sub002/internal/requestdata"
	"github.com/dustinober1/pmp-application-sub002/internal/services"
	"github.com/dustinober1/pmp-application-sub002/internal/srs"
)

type FlashcardHandler struct {
	log          *logger.Logger
	flashcardSvc services.FlashcardService
}

func NewFlashcardHandler(log *logger.Logger, flashcardSvc services.FlashcardService) *FlashcardHandler {
	return &FlashcardHandler{
		log:          log.With("handler", "FlashcardHandler"),
		flashcardSvc: flashcardSvc,
	}
}

// GET /api/flashcards/due?limit=N
// Cards due for review plus never-seen cards topping the list up.
func (h *FlashcardHandler) GetDueCards(c *gin.Context) {
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
	cards, err := h.flashcardSvc.GetDueCards(c.Request.Context(), rd.UserID, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"cards": cards})
}

// POST /api/flashcards/:id/review
// Grade one recall: AGAIN, HARD, GOOD or EASY.
func (h *FlashcardHandler) SubmitReview(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	flashcardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_flashcard_id", err)
		return
	}

	var req struct {
		Quality string `json:"quality"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	quality, err := srs.ParseQuality(req.Quality)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_quality", err)
		return
	}

	review, err := h.flashcardSvc.SubmitReview(c.Request.Context(), rd.UserID, flashcardID, quality)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"review": review})
}
