package types

import (
	"time"

	"github.com/google/uuid"
)

// ExamDomain is one weighted content area of the exam (e.g. People,
// Process, Business Environment). ExamWeight is the domain's share of
// exam content in [0,1]; weights across active domains sum to 1.
type ExamDomain struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	ExamWeight  float64   `gorm:"column:exam_weight;not null;default:0" json:"exam_weight"`
	Description string    `gorm:"column:description" json:"description"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ExamDomain) TableName() string { return "exam_domain" }
