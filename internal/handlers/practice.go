package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dustinober1/pmp-application-sub002/internal/logger"
	"github.com/dustinober1/pmp-application-sub002/internal/requestdata"
	"github.com/dustinober1/pmp-application-sub002/internal/services"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

type PracticeHandler struct {
	log         *logger.Logger
	selectorSvc services.SelectorService
	attemptSvc  services.AttemptService
}

func NewPracticeHandler(log *logger.Logger, selectorSvc services.SelectorService, attemptSvc services.AttemptService) *PracticeHandler {
	return &PracticeHandler{
		log:         log.With("handler", "PracticeHandler"),
		selectorSvc: selectorSvc,
		attemptSvc:  attemptSvc,
	}
}

// POST /api/practice/select
// Assemble a practice set for the authenticated user.
func (h *PracticeHandler) SelectQuestions(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	var req struct {
		Count             int      `json:"count"`
		DomainIDs         []string `json:"domain_ids"`
		MinDifficulty     string   `json:"min_difficulty"`
		MaxDifficulty     string   `json:"max_difficulty"`
		ExcludeRecentDays *int     `json:"exclude_recent_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	domainIDs := make([]uuid.UUID, 0, len(req.DomainIDs))
	for _, raw := range req.DomainIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_domain_id", err)
			return
		}
		domainIDs = append(domainIDs, id)
	}

	selected, err := h.selectorSvc.SelectQuestions(c.Request.Context(), rd.UserID, services.SelectQuestionsRequest{
		Count:             req.Count,
		DomainIDs:         domainIDs,
		MinDifficulty:     types.Difficulty(req.MinDifficulty),
		MaxDifficulty:     types.Difficulty(req.MaxDifficulty),
		ExcludeRecentDays: req.ExcludeRecentDays,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"questions": selected})
}

// POST /api/practice/answers
// Grade and record one answer.
func (h *PracticeHandler) SubmitAnswer(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	var req struct {
		QuestionID     string `json:"question_id"`
		SelectedChoice string `json:"selected_choice"`
		SessionID      string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_question_id", err)
		return
	}
	sessionID := uuid.Nil
	if req.SessionID != "" {
		sessionID, err = uuid.Parse(req.SessionID)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
			return
		}
	}

	res, err := h.attemptSvc.SubmitAnswer(c.Request.Context(), rd.UserID, services.SubmitAnswerInput{
		QuestionID:     questionID,
		SelectedChoice: req.SelectedChoice,
		SessionID:      sessionID,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, res)
}
