package types

import (
	"time"

	"github.com/google/uuid"
)

type Flashcard struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DomainID  uuid.UUID `gorm:"type:uuid;not null;index" json:"domain_id"`
	Front     string    `gorm:"not null;column:front" json:"front"`
	Back      string    `gorm:"not null;column:back" json:"back"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Flashcard) TableName() string { return "flashcard" }

// FlashcardReview is the per-(user, flashcard) spaced-repetition state.
// Created on first review, updated in place on every subsequent review.
type FlashcardReview struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_flashcard_review,unique,priority:1" json:"user_id"`
	FlashcardID uuid.UUID `gorm:"type:uuid;not null;index:idx_flashcard_review,unique,priority:2" json:"flashcard_id"`

	EaseFactor   float64   `gorm:"column:ease_factor;not null;default:2.5" json:"ease_factor"`
	IntervalDays int       `gorm:"column:interval_days;not null;default:1" json:"interval_days"`
	Lapses       int       `gorm:"column:lapses;not null;default:0" json:"lapses"`
	ReviewCount  int       `gorm:"column:review_count;not null;default:0" json:"review_count"`
	NextReviewAt time.Time `gorm:"column:next_review_at;not null;index" json:"next_review_at"`

	LastReviewedAt *time.Time `gorm:"column:last_reviewed_at" json:"last_reviewed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (FlashcardReview) TableName() string { return "flashcard_review" }

// DueCard pairs a flashcard with its review state for the review queue.
// Review is nil for cards the user has never seen.
type DueCard struct {
	Flashcard *Flashcard       `json:"flashcard"`
	Review    *FlashcardReview `json:"review,omitempty"`
}
