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
	"github.com/dustinober1/pmp-application-sub002/internal/srs"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

const defaultDueLimit = 20

type FlashcardService interface {
	// SubmitReview grades one flashcard recall and reschedules the card.
	// The review row is locked for the duration so two concurrent reviews
	// of the same card apply one after the other.
	SubmitReview(ctx context.Context, userID, flashcardID uuid.UUID, quality srs.Quality) (*types.FlashcardReview, error)
	// GetDueCards returns cards due for review, soonest first, topping the
	// list up with never-reviewed cards when fewer than limit are due.
	GetDueCards(ctx context.Context, userID uuid.UUID, limit int) ([]*types.DueCard, error)
}

type flashcardService struct {
	db            *gorm.DB
	log           *logger.Logger
	flashcardRepo repos.FlashcardRepo
	reviewRepo    repos.ReviewRepo
	userRepo      repos.UserRepo
}

func NewFlashcardService(
	db *gorm.DB,
	log *logger.Logger,
	flashcardRepo repos.FlashcardRepo,
	reviewRepo repos.ReviewRepo,
	userRepo repos.UserRepo,
) FlashcardService {
	return &flashcardService{
		db:            db,
		log:           log.With("service", "FlashcardService"),
		flashcardRepo: flashcardRepo,
		reviewRepo:    reviewRepo,
		userRepo:      userRepo,
	}
}

func (fs *flashcardService) SubmitReview(ctx context.Context, userID, flashcardID uuid.UUID, quality srs.Quality) (*types.FlashcardReview, error) {
	if quality < srs.Again || quality > srs.Easy {
		return nil, fmt.Errorf("%w: unknown review quality", apperrors.ErrInvalidInput)
	}
	if _, err := fs.flashcardRepo.GetByID(ctx, nil, flashcardID); err != nil {
		return nil, fmt.Errorf("load flashcard: %w", err)
	}

	now := time.Now().UTC()
	var out *types.FlashcardReview
	err := fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		review, gErr := fs.reviewRepo.GetOrCreateForUpdate(ctx, tx, userID, flashcardID, now)
		if gErr != nil {
			return fmt.Errorf("load review state: %w", gErr)
		}

		res, sErr := srs.Schedule(quality, srs.State{
			EaseFactor:   review.EaseFactor,
			IntervalDays: review.IntervalDays,
			Lapses:       review.Lapses,
		}, now)
		if sErr != nil {
			return sErr
		}

		review.EaseFactor = res.EaseFactor
		review.IntervalDays = res.IntervalDays
		review.Lapses = res.Lapses
		review.ReviewCount++
		review.NextReviewAt = res.NextReviewAt
		review.LastReviewedAt = &now

		if uErr := fs.reviewRepo.Update(ctx, tx, review); uErr != nil {
			return fmt.Errorf("persist review state: %w", uErr)
		}
		if bErr := bumpStudyStreak(ctx, tx, fs.userRepo, userID, now); bErr != nil {
			return fmt.Errorf("update study streak: %w", bErr)
		}
		out = review
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (fs *flashcardService) GetDueCards(ctx context.Context, userID uuid.UUID, limit int) ([]*types.DueCard, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", apperrors.ErrInvalidInput)
	}
	if limit == 0 {
		limit = defaultDueLimit
	}

	now := time.Now().UTC()
	reviews, err := fs.reviewRepo.GetDueByUser(ctx, nil, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("load due reviews: %w", err)
	}

	out := make([]*types.DueCard, 0, limit)
	if len(reviews) > 0 {
		ids := make([]uuid.UUID, 0, len(reviews))
		for _, r := range reviews {
			ids = append(ids, r.FlashcardID)
		}
		cards, cErr := fs.flashcardRepo.GetByIDs(ctx, nil, ids)
		if cErr != nil {
			return nil, fmt.Errorf("load due flashcards: %w", cErr)
		}
		cardByID := make(map[uuid.UUID]*types.Flashcard, len(cards))
		for _, c := range cards {
			cardByID[c.ID] = c
		}
		for _, r := range reviews {
			card := cardByID[r.FlashcardID]
			if card == nil || !card.IsActive {
				continue
			}
			out = append(out, &types.DueCard{Flashcard: card, Review: r})
		}
	}

	if remaining := limit - len(out); remaining > 0 {
		fresh, fErr := fs.flashcardRepo.GetUnreviewedByUser(ctx, nil, userID, remaining)
		if fErr != nil {
			return nil, fmt.Errorf("load unreviewed flashcards: %w", fErr)
		}
		for _, c := range fresh {
			out = append(out, &types.DueCard{Flashcard: c})
		}
	}
	return out, nil
}
