package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dustinober1/pmp-application-sub002/internal/repos"
)

// bumpStudyStreak advances the user's consecutive-day study streak for
// activity happening at now. Activity on the same calendar day is a no-op,
// the next day extends the streak, and any gap resets it to one.
func bumpStudyStreak(ctx context.Context, tx *gorm.DB, users repos.UserRepo, userID uuid.UUID, now time.Time) error {
	user, err := users.GetByID(ctx, tx, userID)
	if err != nil {
		return err
	}

	today := dateOnly(now)
	streak := 1
	if user.LastStudyDate != nil {
		last := dateOnly(*user.LastStudyDate)
		switch {
		case last.Equal(today):
			return nil
		case today.Sub(last) == 24*time.Hour:
			streak = user.StudyStreakDays + 1
		}
	}
	return users.UpdateStudyStreak(ctx, tx, userID, streak, today)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
