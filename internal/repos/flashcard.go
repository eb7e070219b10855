package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dustinober1/pmp-application-sub002/internal/apperrors"
	"github.com/dustinober1/pmp-application-sub002/internal/logger"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

type FlashcardRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Flashcard) ([]*types.Flashcard, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Flashcard, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Flashcard, error)
	// GetUnreviewedByUser returns active cards the user has never reviewed,
	// oldest first.
	GetUnreviewedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Flashcard, error)
}

type flashcardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlashcardRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardRepo {
	return &flashcardRepo{db: db, log: baseLog.With("repo", "FlashcardRepo")}
}

func (r *flashcardRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Flashcard) ([]*types.Flashcard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Flashcard{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *flashcardRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Flashcard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Flashcard
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *flashcardRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Flashcard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Flashcard
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *flashcardRepo) GetUnreviewedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Flashcard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Flashcard
	query := transaction.WithContext(ctx).
		Where("is_active = ?", true).
		Where("id NOT IN (?)", transaction.
			Model(&types.FlashcardReview{}).
			Select("flashcard_id").
			Where("user_id = ?", userID)).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
