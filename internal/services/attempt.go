package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dustinober1/pmp-application-sub002/internal/apperrors"
	"github.com/dustinober1/pmp-application-sub002/internal/logger"
	"github.com/dustinober1/pmp-application-sub002/internal/repos"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

type SubmitAnswerInput struct {
	QuestionID     uuid.UUID
	SelectedChoice string
	// SessionID groups the answers of one sitting; a nil ID starts a new
	// session.
	SessionID uuid.UUID
}

type SubmitAnswerResult struct {
	Attempt       *types.QuestionAttempt `json:"attempt"`
	IsCorrect     bool                   `json:"is_correct"`
	CorrectChoice string                 `json:"correct_choice"`
	Explanation   string                 `json:"explanation,omitempty"`
	Mastery       *types.DomainMastery   `json:"mastery"`
}

type AttemptService interface {
	// SubmitAnswer grades the answer, appends it to the user's history,
	// maintains the study streak and recomputes the domain's mastery.
	SubmitAnswer(ctx context.Context, userID uuid.UUID, in SubmitAnswerInput) (*SubmitAnswerResult, error)
}

type attemptService struct {
	db           *gorm.DB
	log          *logger.Logger
	questionRepo repos.QuestionRepo
	attemptRepo  repos.AttemptRepo
	userRepo     repos.UserRepo
	masterySvc   MasteryService
}

func NewAttemptService(
	db *gorm.DB,
	log *logger.Logger,
	questionRepo repos.QuestionRepo,
	attemptRepo repos.AttemptRepo,
	userRepo repos.UserRepo,
	masterySvc MasteryService,
) AttemptService {
	return &attemptService{
		db:           db,
		log:          log.With("service", "AttemptService"),
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		userRepo:     userRepo,
		masterySvc:   masterySvc,
	}
}

func (as *attemptService) SubmitAnswer(ctx context.Context, userID uuid.UUID, in SubmitAnswerInput) (*SubmitAnswerResult, error) {
	if in.SelectedChoice == "" {
		return nil, fmt.Errorf("%w: selected choice required", apperrors.ErrInvalidInput)
	}
	question, err := as.questionRepo.GetByID(ctx, nil, in.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("load question: %w", err)
	}
	if !question.IsActive {
		return nil, apperrors.ErrNotFound
	}

	sessionID := in.SessionID
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	}

	now := time.Now().UTC()
	attempt := &types.QuestionAttempt{
		ID:             uuid.New(),
		UserID:         userID,
		QuestionID:     question.ID,
		DomainID:       question.DomainID,
		SessionID:      sessionID,
		SelectedChoice: in.SelectedChoice,
		IsCorrect:      in.SelectedChoice == question.CorrectChoice,
		Difficulty:     question.Difficulty,
		AnsweredAt:     now,
	}

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cErr := as.attemptRepo.Create(ctx, tx, attempt); cErr != nil {
			return fmt.Errorf("record attempt: %w", cErr)
		}
		if sErr := bumpStudyStreak(ctx, tx, as.userRepo, userID, now); sErr != nil {
			return fmt.Errorf("update study streak: %w", sErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	mastery, mErr := as.masterySvc.CalculateDomainMastery(ctx, userID, question.DomainID)
	if mErr != nil {
		// The answer is already recorded; a stale mastery is acceptable.
		as.log.Warn("Mastery recomputation failed after answer", "error", mErr, "user_id", userID, "domain_id", question.DomainID)
		mastery = types.NewDefaultDomainMastery(userID, question.DomainID)
	}

	return &SubmitAnswerResult{
		Attempt:       attempt,
		IsCorrect:     attempt.IsCorrect,
		CorrectChoice: question.CorrectChoice,
		Explanation:   question.Explanation,
		Mastery:       mastery,
	}, nil
}
