package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedDomain(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string, weight float64) *types.ExamDomain {
	tb.Helper()
	d := &types.ExamDomain{
		ID:         uuid.New(),
		Name:       slug,
		Slug:       slug,
		ExamWeight: weight,
		IsActive:   true,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed domain: %v", err)
	}
	return d
}

func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, domainID uuid.UUID, difficulty types.Difficulty) *types.Question {
	tb.Helper()
	q := &types.Question{
		ID:            uuid.New(),
		DomainID:      domainID,
		Text:          fmt.Sprintf("question %s", uuid.New()),
		Choices:       datatypes.JSON([]byte(`["a","b","c","d"]`)),
		CorrectChoice: "a",
		Difficulty:    difficulty,
		IsActive:      true,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

func SeedAttempt(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, q *types.Question, correct bool, answeredAt time.Time) *types.QuestionAttempt {
	tb.Helper()
	choice := "a"
	if !correct {
		choice = "b"
	}
	a := &types.QuestionAttempt{
		ID:             uuid.New(),
		UserID:         userID,
		QuestionID:     q.ID,
		DomainID:       q.DomainID,
		SessionID:      uuid.New(),
		SelectedChoice: choice,
		IsCorrect:      correct,
		Difficulty:     q.Difficulty,
		AnsweredAt:     answeredAt,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed attempt: %v", err)
	}
	return a
}

func SeedFlashcard(tb testing.TB, ctx context.Context, tx *gorm.DB, domainID uuid.UUID) *types.Flashcard {
	tb.Helper()
	f := &types.Flashcard{
		ID:       uuid.New(),
		DomainID: domainID,
		Front:    "front",
		Back:     "back",
		IsActive: true,
	}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed flashcard: %v", err)
	}
	return f
}
