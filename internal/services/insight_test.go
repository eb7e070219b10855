package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/dustinober1/pmp-application-sub002/internal/clients/redis"
	"github.com/dustinober1/pmp-application-sub002/internal/repos/testutil"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

type insightFixture struct {
	svc      InsightService
	userID   uuid.UUID
	domain   *types.ExamDomain
	users    *fakeUserRepo
	attempts *fakeAttemptRepo
	mastery  *fakeMasteryRepo
	insights *fakeInsightRepo
}

func newInsightFixture(t *testing.T) *insightFixture {
	t.Helper()
	log := testutil.Logger(t)
	p := types.DefaultPracticePolicy()

	userID := uuid.New()
	users := newFakeUserRepo()
	users.users[userID] = &types.User{ID: userID, Email: "pm@example.com"}

	domain := &types.ExamDomain{ID: uuid.New(), Name: "Process", Slug: "process", ExamWeight: 0.50, IsActive: true}
	domains := &fakeDomainRepo{domains: []*types.ExamDomain{domain}}

	attempts := &fakeAttemptRepo{}
	mastery := newFakeMasteryRepo()
	insights := &fakeInsightRepo{}

	svc := NewInsightService(log, p, users, domains, attempts, mastery, insights, redisclient.NewNoopInsightBus())
	return &insightFixture{
		svc:      svc,
		userID:   userID,
		domain:   domain,
		users:    users,
		attempts: attempts,
		mastery:  mastery,
		insights: insights,
	}
}

func (fx *insightFixture) seedWeek(t *testing.T, daysAgo int, correct, total int) {
	t.Helper()
	now := time.Now().UTC()
	for i := 0; i < total; i++ {
		fx.attempts.attempts = append(fx.attempts.attempts, &types.QuestionAttempt{
			ID:         uuid.New(),
			UserID:     fx.userID,
			QuestionID: uuid.New(),
			DomainID:   fx.domain.ID,
			SessionID:  uuid.New(),
			IsCorrect:  i < correct,
			Difficulty: types.DifficultyMedium,
			AnsweredAt: now.AddDate(0, 0, -daysAgo).Add(time.Duration(i) * time.Minute),
		})
	}
}

func TestGenerateInsightsAccuracyDrop(t *testing.T) {
	fx := newInsightFixture(t)
	fx.seedWeek(t, 10, 5, 5) // last week: 100%
	fx.seedWeek(t, 2, 1, 5)  // this week: 20%

	created, err := fx.svc.GenerateInsights(context.Background(), fx.userID)
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	var drop *types.Insight
	for _, ins := range created {
		if ins.Type == types.InsightTypeAccuracyDrop {
			drop = ins
		}
	}
	if drop == nil {
		t.Fatalf("no accuracy_drop insight created")
	}
	if drop.Priority != types.InsightPriorityHigh {
		t.Fatalf("priority = %s, want high", drop.Priority)
	}
}

func TestGenerateInsightsAccuracyDropNeedsEnoughAttempts(t *testing.T) {
	fx := newInsightFixture(t)
	fx.seedWeek(t, 10, 2, 2) // below the minimum sample
	fx.seedWeek(t, 2, 0, 2)

	created, err := fx.svc.GenerateInsights(context.Background(), fx.userID)
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	for _, ins := range created {
		if ins.Type == types.InsightTypeAccuracyDrop {
			t.Fatalf("accuracy_drop fired on a %d-attempt sample", 2)
		}
	}
}

func TestGenerateInsightsMilestonesAreIdempotent(t *testing.T) {
	fx := newInsightFixture(t)
	fx.users.users[fx.userID].StudyStreakDays = 30

	m := types.NewDefaultDomainMastery(fx.userID, fx.domain.ID)
	m.Score = 90
	fx.mastery.put(m)

	first, err := fx.svc.GenerateInsights(context.Background(), fx.userID)
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	// 7- and 30-day streak milestones plus proficient and expert tiers.
	if len(first) != 4 {
		t.Fatalf("first run created %d insights, want 4", len(first))
	}
	for _, ins := range first {
		if ins.Priority != types.InsightPriorityMedium {
			t.Fatalf("%s milestone priority = %q, want medium", ins.Type, ins.Priority)
		}
	}

	second, err := fx.svc.GenerateInsights(context.Background(), fx.userID)
	if err != nil {
		t.Fatalf("GenerateInsights rerun: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("rerun created %d insights, want 0", len(second))
	}
}

func TestGenerateInsightsForAllUsers(t *testing.T) {
	fx := newInsightFixture(t)
	fx.users.users[fx.userID].StudyStreakDays = 7

	other := uuid.New()
	fx.users.users[other] = &types.User{ID: other, Email: "other@example.com", StudyStreakDays: 7}

	count, err := fx.svc.GenerateInsightsForAllUsers(context.Background())
	if err != nil {
		t.Fatalf("GenerateInsightsForAllUsers: %v", err)
	}
	if count != 2 {
		t.Fatalf("created %d insights, want one 7-day milestone per user", count)
	}
}

func TestMarkRead(t *testing.T) {
	fx := newInsightFixture(t)
	fx.users.users[fx.userID].StudyStreakDays = 7

	created, err := fx.svc.GenerateInsights(context.Background(), fx.userID)
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created %d insights, want 1", len(created))
	}

	if err := fx.svc.MarkRead(context.Background(), fx.userID, created[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !created[0].IsRead {
		t.Fatalf("insight not marked read")
	}

	if err := fx.svc.MarkRead(context.Background(), uuid.New(), created[0].ID); err == nil {
		t.Fatalf("MarkRead for another user succeeded, want not-found error")
	}
}

func TestGetRecentInsightsValidation(t *testing.T) {
	fx := newInsightFixture(t)
	if _, err := fx.svc.GetRecentInsights(context.Background(), fx.userID, -1); err == nil {
		t.Fatalf("negative limit accepted")
	}
}
