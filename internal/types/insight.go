package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type InsightPriority string

const (
	InsightPriorityLow    InsightPriority = "low"
	InsightPriorityMedium InsightPriority = "medium"
	InsightPriorityHigh   InsightPriority = "high"
)

const (
	InsightTypeAccuracyDrop    = "accuracy_drop"
	InsightTypeStreakMilestone = "streak_milestone"
	InsightTypeMasteryTier     = "mastery_tier"
)

// Insight is an append-only narrative alert or celebration. Only IsRead is
// ever mutated after creation. DedupeKey is unique per user and makes
// generation idempotent: re-running the generator cannot record the same
// milestone twice.
type Insight struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_insight_dedupe,unique,priority:1;index" json:"user_id"`

	Type      string          `gorm:"not null;column:type" json:"type"`
	Title     string          `gorm:"not null;column:title" json:"title"`
	Message   string          `gorm:"not null;column:message" json:"message"`
	Priority  InsightPriority `gorm:"not null;column:priority" json:"priority"`
	ActionURL string          `gorm:"column:action_url" json:"action_url,omitempty"`
	IsRead    bool            `gorm:"column:is_read;not null;default:false" json:"is_read"`
	Metadata  datatypes.JSON  `gorm:"column:metadata" json:"metadata,omitempty"`
	DedupeKey string          `gorm:"column:dedupe_key;not null;index:idx_insight_dedupe,unique,priority:2" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Insight) TableName() string { return "insight" }
