package types

import (
	"time"

	"github.com/google/uuid"
)

type MasteryTrend string

const (
	TrendImproving MasteryTrend = "improving"
	TrendDeclining MasteryTrend = "declining"
	TrendStable    MasteryTrend = "stable"
)

const (
	// NeutralScore is the score a domain starts at before any history exists.
	NeutralScore = 50.0
)

// DomainMastery is the per-(user, domain) aggregate over answer history.
// All bounded scores are clamped to [0,100]; PeakScore never decreases and
// is always >= Score after creation.
type DomainMastery struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_domain_mastery,unique,priority:1" json:"user_id"`
	// DomainID references exam_domain.
	DomainID uuid.UUID `gorm:"type:uuid;not null;index:idx_domain_mastery,unique,priority:2" json:"domain_id"`

	Score            float64      `gorm:"column:score;not null;default:50" json:"score"`
	AccuracyRate     float64      `gorm:"column:accuracy_rate;not null;default:0" json:"accuracy_rate"`
	ConsistencyScore float64      `gorm:"column:consistency_score;not null;default:50" json:"consistency_score"`
	DifficultyScore  float64      `gorm:"column:difficulty_score;not null;default:50" json:"difficulty_score"`
	Trend            MasteryTrend `gorm:"column:trend;not null;default:stable" json:"trend"`
	QuestionCount    int          `gorm:"column:question_count;not null;default:0" json:"question_count"`
	PeakScore        float64      `gorm:"column:peak_score;not null;default:50" json:"peak_score"`
	LastActivityAt   *time.Time   `gorm:"column:last_activity_at" json:"last_activity_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (DomainMastery) TableName() string { return "domain_mastery" }

// NewDefaultDomainMastery returns the neutral record a user starts with for
// a domain. Neither confident nor weak.
func NewDefaultDomainMastery(userID, domainID uuid.UUID) *DomainMastery {
	return &DomainMastery{
		ID:               uuid.New(),
		UserID:           userID,
		DomainID:         domainID,
		Score:            NeutralScore,
		AccuracyRate:     0,
		ConsistencyScore: NeutralScore,
		DifficultyScore:  NeutralScore,
		Trend:            TrendStable,
		QuestionCount:    0,
		PeakScore:        NeutralScore,
	}
}
