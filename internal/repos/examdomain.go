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

type ExamDomainRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ExamDomain) ([]*types.ExamDomain, error)
	GetActive(ctx context.Context, tx *gorm.DB) ([]*types.ExamDomain, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ExamDomain, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.ExamDomain, error)
}

type examDomainRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExamDomainRepo(db *gorm.DB, baseLog *logger.Logger) ExamDomainRepo {
	return &examDomainRepo{db: db, log: baseLog.With("repo", "ExamDomainRepo")}
}

func (r *examDomainRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ExamDomain) ([]*types.ExamDomain, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.ExamDomain{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *examDomainRepo) GetActive(ctx context.Context, tx *gorm.DB) ([]*types.ExamDomain, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ExamDomain
	if err := transaction.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *examDomainRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ExamDomain, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ExamDomain
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

func (r *examDomainRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.ExamDomain, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.ExamDomain
	if err := transaction.WithContext(ctx).
		Where("slug = ?", slug).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}
