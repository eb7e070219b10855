package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// DifficultyRank orders difficulties EASY < MEDIUM < HARD. Unknown values
// rank below EASY so malformed rows never win a "harder" comparison.
func DifficultyRank(d Difficulty) int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	}
	return 0
}

type Question struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DomainID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"domain_id"`
	Text          string         `gorm:"not null;column:text" json:"text"`
	Choices       datatypes.JSON `gorm:"column:choices" json:"choices"`
	CorrectChoice string         `gorm:"not null;column:correct_choice" json:"-"`
	Difficulty    Difficulty     `gorm:"not null;column:difficulty;index" json:"difficulty"`
	Explanation   string         `gorm:"column:explanation" json:"explanation"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Question) TableName() string { return "question" }

// QuestionAttempt is one row of append-only answer history.
type QuestionAttempt struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_attempt_user_domain,priority:1" json:"user_id"`
	QuestionID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"question_id"`
	DomainID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_attempt_user_domain,priority:2" json:"domain_id"`
	SessionID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"session_id"`
	SelectedChoice string     `gorm:"not null;column:selected_choice" json:"selected_choice"`
	IsCorrect      bool       `gorm:"not null;column:is_correct" json:"is_correct"`
	Difficulty     Difficulty `gorm:"not null;column:difficulty" json:"difficulty"`
	AnsweredAt     time.Time  `gorm:"not null;index;column:answered_at" json:"answered_at"`
	CreatedAt      time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (QuestionAttempt) TableName() string { return "question_attempt" }
