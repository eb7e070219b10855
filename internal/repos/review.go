package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dustinober1/pmp-application-sub002/internal/logger"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

type ReviewRepo interface {
	// GetOrCreateForUpdate returns the review row for (user, flashcard),
	// creating it with scheduler defaults if absent, and row-locks it so two
	// concurrent reviews of the same card serialize. Must run inside a
	// transaction.
	GetOrCreateForUpdate(ctx context.Context, tx *gorm.DB, userID, flashcardID uuid.UUID, now time.Time) (*types.FlashcardReview, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.FlashcardReview) error
	// GetDueByUser returns reviews with next_review_at <= now, soonest first.
	GetDueByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time, limit int) ([]*types.FlashcardReview, error)
}

type reviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	return &reviewRepo{db: db, log: baseLog.With("repo", "ReviewRepo")}
}

func (r *reviewRepo) GetOrCreateForUpdate(ctx context.Context, tx *gorm.DB, userID, flashcardID uuid.UUID, now time.Time) (*types.FlashcardReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	row := &types.FlashcardReview{
		ID:           uuid.New(),
		UserID:       userID,
		FlashcardID:  flashcardID,
		EaseFactor:   2.5,
		IntervalDays: 1,
		NextReviewAt: now,
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "flashcard_id"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}

	var locked types.FlashcardReview
	if err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND flashcard_id = ?", userID, flashcardID).
		First(&locked).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &locked, nil
}

func (r *reviewRepo) Update(ctx context.Context, tx *gorm.DB, row *types.FlashcardReview) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *reviewRepo) GetDueByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time, limit int) ([]*types.FlashcardReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.FlashcardReview
	query := transaction.WithContext(ctx).
		Where("user_id = ? AND next_review_at <= ?", userID, now).
		Order("next_review_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
