package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dustinober1/pmp-application-sub002/internal/logger"
	"github.com/dustinober1/pmp-application-sub002/internal/repos"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

type MasteryService interface {
	// CalculateDomainMastery recomputes the user's mastery for one domain
	// from the rolling answer-history window and persists the result. If
	// the history cannot be read, it returns the neutral default record
	// instead of an error so callers always get a usable mastery.
	CalculateDomainMastery(ctx context.Context, userID, domainID uuid.UUID) (*types.DomainMastery, error)
	// GetAllMasteryLevels returns one persisted mastery record per active
	// exam domain, lazily creating the neutral default for domains the
	// user has never touched.
	GetAllMasteryLevels(ctx context.Context, userID uuid.UUID) ([]*types.DomainMastery, error)
}

type masteryService struct {
	db          *gorm.DB
	log         *logger.Logger
	policy      types.PracticePolicy
	domainRepo  repos.ExamDomainRepo
	masteryRepo repos.MasteryRepo
	attemptRepo repos.AttemptRepo
}

func NewMasteryService(
	db *gorm.DB,
	log *logger.Logger,
	policy types.PracticePolicy,
	domainRepo repos.ExamDomainRepo,
	masteryRepo repos.MasteryRepo,
	attemptRepo repos.AttemptRepo,
) MasteryService {
	return &masteryService{
		db:          db,
		log:         log.With("service", "MasteryService"),
		policy:      policy,
		domainRepo:  domainRepo,
		masteryRepo: masteryRepo,
		attemptRepo: attemptRepo,
	}
}

func (ms *masteryService) CalculateDomainMastery(ctx context.Context, userID, domainID uuid.UUID) (*types.DomainMastery, error) {
	now := time.Now().UTC()
	windowStart := now.AddDate(0, 0, -ms.policy.WindowDays)

	current, err := ms.attemptRepo.GetByUserAndDomainBetween(ctx, nil, userID, domainID, windowStart, now.Add(time.Second), ms.policy.WindowMaxAttempts)
	if err != nil {
		ms.log.Warn("Answer history unavailable, returning neutral mastery", "error", err, "user_id", userID, "domain_id", domainID)
		return types.NewDefaultDomainMastery(userID, domainID), nil
	}
	previous, err := ms.attemptRepo.GetByUserAndDomainBetween(ctx, nil, userID, domainID, windowStart.AddDate(0, 0, -ms.policy.WindowDays), windowStart, ms.policy.WindowMaxAttempts)
	if err != nil {
		ms.log.Warn("Previous-window history unavailable, returning neutral mastery", "error", err, "user_id", userID, "domain_id", domainID)
		return types.NewDefaultDomainMastery(userID, domainID), nil
	}

	stats := aggregateAttempts(current)
	score := types.NeutralScore
	if len(current) > 0 {
		score = ms.composite(stats)
	}

	trend := types.TrendStable
	if len(current) > 0 && len(previous) > 0 {
		prevScore := ms.composite(aggregateAttempts(previous))
		delta := score - prevScore
		switch {
		case delta >= ms.policy.TrendDelta:
			trend = types.TrendImproving
		case delta <= -ms.policy.TrendDelta:
			trend = types.TrendDeclining
		}
	}

	total, err := ms.attemptRepo.CountByUserAndDomain(ctx, nil, userID, domainID)
	if err != nil {
		ms.log.Warn("Lifetime attempt count unavailable, using window count", "error", err, "user_id", userID, "domain_id", domainID)
		total = int64(len(current))
	}

	var row *types.DomainMastery
	txErr := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, gErr := ms.masteryRepo.GetOrCreate(ctx, tx, userID, domainID)
		if gErr != nil {
			return fmt.Errorf("load mastery record: %w", gErr)
		}
		existing.Score = score
		existing.AccuracyRate = stats.accuracy
		existing.ConsistencyScore = stats.consistency
		existing.DifficultyScore = stats.difficulty
		existing.Trend = trend
		existing.QuestionCount = int(total)
		if score > existing.PeakScore {
			existing.PeakScore = score
		}
		if len(current) > 0 {
			t := current[0].AnsweredAt
			existing.LastActivityAt = &t
		}
		if uErr := ms.masteryRepo.Update(ctx, tx, existing); uErr != nil {
			return fmt.Errorf("persist mastery record: %w", uErr)
		}
		row = existing
		return nil
	})
	if txErr != nil {
		// Return the freshly computed values even when the write fails;
		// the next recomputation will catch the store up.
		ms.log.Warn("Failed to persist recomputed mastery", "error", txErr, "user_id", userID, "domain_id", domainID)
		detached := types.NewDefaultDomainMastery(userID, domainID)
		detached.Score = score
		detached.AccuracyRate = stats.accuracy
		detached.ConsistencyScore = stats.consistency
		detached.DifficultyScore = stats.difficulty
		detached.Trend = trend
		detached.QuestionCount = int(total)
		if score > detached.PeakScore {
			detached.PeakScore = score
		}
		return detached, nil
	}
	return row, nil
}

func (ms *masteryService) GetAllMasteryLevels(ctx context.Context, userID uuid.UUID) ([]*types.DomainMastery, error) {
	domains, err := ms.domainRepo.GetActive(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load exam domains: %w", err)
	}
	existing, err := ms.masteryRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load mastery records: %w", err)
	}

	byDomain := make(map[uuid.UUID]*types.DomainMastery, len(existing))
	for _, m := range existing {
		byDomain[m.DomainID] = m
	}

	out := make([]*types.DomainMastery, 0, len(domains))
	for _, d := range domains {
		if m, ok := byDomain[d.ID]; ok {
			out = append(out, m)
			continue
		}
		m, cErr := ms.masteryRepo.GetOrCreate(ctx, nil, userID, d.ID)
		if cErr != nil {
			return nil, fmt.Errorf("create default mastery for domain %s: %w", d.ID, cErr)
		}
		out = append(out, m)
	}
	return out, nil
}

func (ms *masteryService) composite(st masteryStats) float64 {
	p := ms.policy
	return clampScore(p.AccuracyWeight*st.accuracy + p.ConsistencyWeight*st.consistency + p.DifficultyWeight*st.difficulty)
}

type masteryStats struct {
	accuracy    float64
	consistency float64
	difficulty  float64
}

// aggregateAttempts reduces a window of attempts to the three component
// scores. An empty window yields the neutral components.
func aggregateAttempts(rows []*types.QuestionAttempt) masteryStats {
	if len(rows) == 0 {
		return masteryStats{accuracy: 0, consistency: types.NeutralScore, difficulty: types.NeutralScore}
	}

	correct := 0
	diffSum := 0.0
	type sessionTally struct{ total, correct int }
	sessions := map[uuid.UUID]*sessionTally{}
	for _, a := range rows {
		if a.IsCorrect {
			correct++
		}
		diffSum += difficultyValue(a.Difficulty)
		s := sessions[a.SessionID]
		if s == nil {
			s = &sessionTally{}
			sessions[a.SessionID] = s
		}
		s.total++
		if a.IsCorrect {
			s.correct++
		}
	}

	accuracies := make([]float64, 0, len(sessions))
	for _, s := range sessions {
		accuracies = append(accuracies, 100*float64(s.correct)/float64(s.total))
	}
	sort.Float64s(accuracies)

	return masteryStats{
		accuracy:    100 * float64(correct) / float64(len(rows)),
		consistency: consistencyScore(accuracies),
		difficulty:  diffSum / float64(len(rows)),
	}
}

// consistencyScore maps the spread of per-session accuracies to [0,100]:
// zero spread scores 100, and every point of standard deviation costs two
// points. Fewer than two sessions gives no spread evidence and scores 100.
func consistencyScore(sessionAccuracies []float64) float64 {
	if len(sessionAccuracies) < 2 {
		return 100
	}
	mean := 0.0
	for _, v := range sessionAccuracies {
		mean += v
	}
	mean /= float64(len(sessionAccuracies))

	variance := 0.0
	for _, v := range sessionAccuracies {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(sessionAccuracies))

	return clampScore(100 - 2*math.Sqrt(variance))
}

func difficultyValue(d types.Difficulty) float64 {
	switch d {
	case types.DifficultyEasy:
		return 33
	case types.DifficultyMedium:
		return 67
	case types.DifficultyHard:
		return 100
	}
	return 50
}

func clampScore(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
