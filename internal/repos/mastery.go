package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dustinober1/pmp-application-sub002/internal/apperrors"
	"github.com/dustinober1/pmp-application-sub002/internal/logger"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

type MasteryRepo interface {
	// GetOrCreate returns the mastery row for (user, domain), creating the
	// neutral default row if none exists. The insert is an upsert on the
	// unique (user_id, domain_id) key, so concurrent first access cannot
	// produce duplicate rows.
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID, domainID uuid.UUID) (*types.DomainMastery, error)
	GetByUserAndDomain(ctx context.Context, tx *gorm.DB, userID, domainID uuid.UUID) (*types.DomainMastery, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.DomainMastery, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.DomainMastery) error
}

type masteryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMasteryRepo(db *gorm.DB, baseLog *logger.Logger) MasteryRepo {
	return &masteryRepo{db: db, log: baseLog.With("repo", "MasteryRepo")}
}

func (r *masteryRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID, domainID uuid.UUID) (*types.DomainMastery, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	row := types.NewDefaultDomainMastery(userID, domainID)
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "domain_id"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}

	// Reread so a lost conflict still returns the surviving row.
	return r.GetByUserAndDomain(ctx, transaction, userID, domainID)
}

func (r *masteryRepo) GetByUserAndDomain(ctx context.Context, tx *gorm.DB, userID, domainID uuid.UUID) (*types.DomainMastery, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.DomainMastery
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND domain_id = ?", userID, domainID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *masteryRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.DomainMastery, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.DomainMastery
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *masteryRepo) Update(ctx context.Context, tx *gorm.DB, row *types.DomainMastery) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}
