package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/dustinober1/pmp-application-sub002/internal/apperrors"
	redisclient "github.com/dustinober1/pmp-application-sub002/internal/clients/redis"
	"github.com/dustinober1/pmp-application-sub002/internal/logger"
	"github.com/dustinober1/pmp-application-sub002/internal/repos"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

const defaultInsightLimit = 20

type InsightService interface {
	// GenerateInsights scans the user's recent activity for accuracy drops,
	// streak milestones and mastery-tier crossings, records each finding at
	// most once, and returns the newly created insights. Individual signal
	// failures are logged and skipped so one bad query cannot starve the
	// rest.
	GenerateInsights(ctx context.Context, userID uuid.UUID) ([]*types.Insight, error)
	// GenerateInsightsForAllUsers runs generation for every user; per-user
	// failures are logged and skipped. Returns how many insights were
	// created.
	GenerateInsightsForAllUsers(ctx context.Context) (int, error)
	GetRecentInsights(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Insight, error)
	MarkRead(ctx context.Context, userID, insightID uuid.UUID) error
}

type insightService struct {
	log         *logger.Logger
	policy      types.PracticePolicy
	userRepo    repos.UserRepo
	domainRepo  repos.ExamDomainRepo
	attemptRepo repos.AttemptRepo
	masteryRepo repos.MasteryRepo
	insightRepo repos.InsightRepo
	bus         redisclient.InsightBus
}

func NewInsightService(
	log *logger.Logger,
	policy types.PracticePolicy,
	userRepo repos.UserRepo,
	domainRepo repos.ExamDomainRepo,
	attemptRepo repos.AttemptRepo,
	masteryRepo repos.MasteryRepo,
	insightRepo repos.InsightRepo,
	bus redisclient.InsightBus,
) InsightService {
	return &insightService{
		log:         log.With("service", "InsightService"),
		policy:      policy,
		userRepo:    userRepo,
		domainRepo:  domainRepo,
		attemptRepo: attemptRepo,
		masteryRepo: masteryRepo,
		insightRepo: insightRepo,
		bus:         bus,
	}
}

func (is *insightService) GenerateInsights(ctx context.Context, userID uuid.UUID) ([]*types.Insight, error) {
	user, err := is.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	domains, err := is.domainRepo.GetActive(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load exam domains: %w", err)
	}

	now := time.Now().UTC()
	var created []*types.Insight

	for _, d := range domains {
		ins, aErr := is.accuracyDropInsight(ctx, userID, d, now)
		if aErr != nil {
			is.log.Warn("Accuracy-drop scan failed", "error", aErr, "user_id", userID, "domain_id", d.ID)
			continue
		}
		if ins != nil {
			created = append(created, is.record(ctx, ins)...)
		}
	}

	for _, days := range is.policy.StreakMilestones {
		if user.StudyStreakDays < days {
			continue
		}
		ins := &types.Insight{
			ID:        uuid.New(),
			UserID:    userID,
			Type:      types.InsightTypeStreakMilestone,
			Title:     fmt.Sprintf("%d-day study streak", days),
			Message:   fmt.Sprintf("You've studied %d days in a row. Consistency like this is what passes exams.", days),
			Priority:  types.InsightPriorityMedium,
			DedupeKey: fmt.Sprintf("streak_milestone:%d", days),
			Metadata:  marshalMetadata(map[string]any{"streak_days": days}),
		}
		created = append(created, is.record(ctx, ins)...)
	}

	masteries, mErr := is.masteryRepo.GetByUserID(ctx, nil, userID)
	if mErr != nil {
		is.log.Warn("Mastery-tier scan failed", "error", mErr, "user_id", userID)
		return created, nil
	}
	domainByID := make(map[uuid.UUID]*types.ExamDomain, len(domains))
	for _, d := range domains {
		domainByID[d.ID] = d
	}
	for _, m := range masteries {
		d := domainByID[m.DomainID]
		if d == nil {
			continue
		}
		for tier, bound := range is.policy.MasteryTiers {
			if m.Score < bound {
				continue
			}
			ins := &types.Insight{
				ID:        uuid.New(),
				UserID:    userID,
				Type:      types.InsightTypeMasteryTier,
				Title:     fmt.Sprintf("Reached %s in %s", tier, d.Name),
				Message:   fmt.Sprintf("Your %s mastery crossed %.0f. Keep it warm with occasional maintenance sets.", d.Name, bound),
				Priority:  types.InsightPriorityMedium,
				DedupeKey: fmt.Sprintf("mastery_tier:%s:%s", m.DomainID, tier),
				Metadata:  marshalMetadata(map[string]any{"domain_id": m.DomainID, "tier": tier, "score": m.Score}),
			}
			created = append(created, is.record(ctx, ins)...)
		}
	}

	return created, nil
}

// accuracyDropInsight compares this week's accuracy in a domain to last
// week's and flags a drop past the alert threshold. Both weeks need a
// minimum number of attempts before the signal is trusted. The dedupe key
// carries the ISO week so the same slump can resurface in a later week.
func (is *insightService) accuracyDropInsight(ctx context.Context, userID uuid.UUID, d *types.ExamDomain, now time.Time) (*types.Insight, error) {
	weekAgo := now.AddDate(0, 0, -7)
	thisWeek, err := is.attemptRepo.GetByUserAndDomainBetween(ctx, nil, userID, d.ID, weekAgo, now.Add(time.Second), 0)
	if err != nil {
		return nil, err
	}
	lastWeek, err := is.attemptRepo.GetByUserAndDomainBetween(ctx, nil, userID, d.ID, now.AddDate(0, 0, -14), weekAgo, 0)
	if err != nil {
		return nil, err
	}
	if len(thisWeek) < is.policy.AccuracyDropMinAttempts || len(lastWeek) < is.policy.AccuracyDropMinAttempts {
		return nil, nil
	}

	currentAcc := accuracyOf(thisWeek)
	previousAcc := accuracyOf(lastWeek)
	if previousAcc-currentAcc <= is.policy.AccuracyDropAlert {
		return nil, nil
	}

	year, week := now.ISOWeek()
	return &types.Insight{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      types.InsightTypeAccuracyDrop,
		Title:     fmt.Sprintf("Accuracy dip in %s", d.Name),
		Message:   fmt.Sprintf("Your %s accuracy fell from %.0f%% to %.0f%% this week. A focused review session can help you recover.", d.Name, previousAcc, currentAcc),
		Priority:  types.InsightPriorityHigh,
		DedupeKey: fmt.Sprintf("accuracy_drop:%s:%d-W%02d", d.ID, year, week),
		Metadata:  marshalMetadata(map[string]any{"domain_id": d.ID, "previous_accuracy": previousAcc, "current_accuracy": currentAcc}),
	}, nil
}

// record writes the insight unless its dedupe key already exists, and
// publishes every insight that was actually written. Returns a slice so
// callers can append the outcome directly.
func (is *insightService) record(ctx context.Context, ins *types.Insight) []*types.Insight {
	wrote, err := is.insightRepo.CreateIfAbsent(ctx, nil, ins)
	if err != nil {
		is.log.Warn("Failed to record insight", "error", err, "user_id", ins.UserID, "dedupe_key", ins.DedupeKey)
		return nil
	}
	if !wrote {
		return nil
	}
	if is.bus != nil {
		if pErr := is.bus.PublishInsight(ctx, ins); pErr != nil {
			is.log.Warn("Failed to publish insight", "error", pErr, "insight_id", ins.ID)
		}
	}
	return []*types.Insight{ins}
}

func (is *insightService) GenerateInsightsForAllUsers(ctx context.Context) (int, error) {
	ids, err := is.userRepo.GetAllIDs(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("load user ids: %w", err)
	}
	count := 0
	for _, id := range ids {
		created, gErr := is.GenerateInsights(ctx, id)
		if gErr != nil {
			is.log.Warn("Insight generation failed for user", "error", gErr, "user_id", id)
			continue
		}
		count += len(created)
	}
	return count, nil
}

func (is *insightService) GetRecentInsights(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Insight, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", apperrors.ErrInvalidInput)
	}
	if limit == 0 {
		limit = defaultInsightLimit
	}
	return is.insightRepo.GetRecentByUser(ctx, nil, userID, limit)
}

func (is *insightService) MarkRead(ctx context.Context, userID, insightID uuid.UUID) error {
	ok, err := is.insightRepo.MarkRead(ctx, nil, userID, insightID)
	if err != nil {
		return fmt.Errorf("mark insight read: %w", err)
	}
	if !ok {
		return apperrors.ErrNotFound
	}
	return nil
}

func accuracyOf(rows []*types.QuestionAttempt) float64 {
	if len(rows) == 0 {
		return 0
	}
	correct := 0
	for _, a := range rows {
		if a.IsCorrect {
			correct++
		}
	}
	return 100 * float64(correct) / float64(len(rows))
}

func marshalMetadata(m map[string]any) datatypes.JSON {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
