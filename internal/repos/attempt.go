package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dustinober1/pmp-application-sub002/internal/logger"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

type AttemptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.QuestionAttempt) error
	// GetByUserAndDomainBetween returns attempts in [from, to), newest first,
	// capped at limit.
	GetByUserAndDomainBetween(ctx context.Context, tx *gorm.DB, userID, domainID uuid.UUID, from, to time.Time, limit int) ([]*types.QuestionAttempt, error)
	// GetRecentByUser returns the user's newest attempts across all domains.
	GetRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.QuestionAttempt, error)
	// GetAnsweredQuestionIDsSince returns the distinct question IDs the user
	// answered at or after the cutoff.
	GetAnsweredQuestionIDsSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]uuid.UUID, error)
	// CountByUserAndDomain counts the user's lifetime attempts in a domain.
	CountByUserAndDomain(ctx context.Context, tx *gorm.DB, userID, domainID uuid.UUID) (int64, error)
}

type attemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	return &attemptRepo{db: db, log: baseLog.With("repo", "AttemptRepo")}
}

func (r *attemptRepo) Create(ctx context.Context, tx *gorm.DB, row *types.QuestionAttempt) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *attemptRepo) GetByUserAndDomainBetween(ctx context.Context, tx *gorm.DB, userID, domainID uuid.UUID, from, to time.Time, limit int) ([]*types.QuestionAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuestionAttempt
	query := transaction.WithContext(ctx).
		Where("user_id = ? AND domain_id = ? AND answered_at >= ? AND answered_at < ?", userID, domainID, from, to).
		Order("answered_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attemptRepo) GetRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.QuestionAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuestionAttempt
	query := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("answered_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attemptRepo) GetAnsweredQuestionIDsSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.QuestionAttempt{}).
		Distinct("question_id").
		Where("user_id = ? AND answered_at >= ?", userID, since).
		Pluck("question_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *attemptRepo) CountByUserAndDomain(ctx context.Context, tx *gorm.DB, userID, domainID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.QuestionAttempt{}).
		Where("user_id = ? AND domain_id = ?", userID, domainID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
