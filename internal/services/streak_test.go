package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

func TestBumpStudyStreak(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	seed := func(streak int, lastStudy *time.Time) (*fakeUserRepo, uuid.UUID) {
		users := newFakeUserRepo()
		id := uuid.New()
		users.users[id] = &types.User{ID: id, StudyStreakDays: streak, LastStudyDate: lastStudy}
		return users, id
	}
	day := func(offset int) *time.Time {
		d := time.Date(2026, 3, 10+offset, 8, 30, 0, 0, time.UTC)
		return &d
	}

	t.Run("first activity starts at one", func(t *testing.T) {
		users, id := seed(0, nil)
		if err := bumpStudyStreak(ctx, nil, users, id, now); err != nil {
			t.Fatalf("bumpStudyStreak: %v", err)
		}
		if got := users.users[id].StudyStreakDays; got != 1 {
			t.Fatalf("streak = %d, want 1", got)
		}
	})

	t.Run("same day does not double count", func(t *testing.T) {
		users, id := seed(4, day(0))
		if err := bumpStudyStreak(ctx, nil, users, id, now); err != nil {
			t.Fatalf("bumpStudyStreak: %v", err)
		}
		if got := users.users[id].StudyStreakDays; got != 4 {
			t.Fatalf("streak = %d, want unchanged 4", got)
		}
	})

	t.Run("next day extends", func(t *testing.T) {
		users, id := seed(4, day(-1))
		if err := bumpStudyStreak(ctx, nil, users, id, now); err != nil {
			t.Fatalf("bumpStudyStreak: %v", err)
		}
		if got := users.users[id].StudyStreakDays; got != 5 {
			t.Fatalf("streak = %d, want 5", got)
		}
	})

	t.Run("gap resets to one", func(t *testing.T) {
		users, id := seed(12, day(-3))
		if err := bumpStudyStreak(ctx, nil, users, id, now); err != nil {
			t.Fatalf("bumpStudyStreak: %v", err)
		}
		if got := users.users[id].StudyStreakDays; got != 1 {
			t.Fatalf("streak = %d, want reset to 1", got)
		}
	})
}
