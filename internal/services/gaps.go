package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/dustinober1/pmp-application-sub002/internal/apperrors"
	"github.com/dustinober1/pmp-application-sub002/internal/logger"
	"github.com/dustinober1/pmp-application-sub002/internal/repos"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

type GapService interface {
	// GetPrioritizedGaps derives the user's knowledge gaps from the current
	// mastery records, ordered by descending priority. A limit of 0 returns
	// every gap.
	GetPrioritizedGaps(ctx context.Context, userID uuid.UUID, limit int) ([]*types.KnowledgeGap, error)
}

type gapService struct {
	log        *logger.Logger
	policy     types.PracticePolicy
	domainRepo repos.ExamDomainRepo
	masterySvc MasteryService
}

func NewGapService(log *logger.Logger, policy types.PracticePolicy, domainRepo repos.ExamDomainRepo, masterySvc MasteryService) GapService {
	return &gapService{
		log:        log.With("service", "GapService"),
		policy:     policy,
		domainRepo: domainRepo,
		masterySvc: masterySvc,
	}
}

func (gs *gapService) GetPrioritizedGaps(ctx context.Context, userID uuid.UUID, limit int) ([]*types.KnowledgeGap, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", apperrors.ErrInvalidInput)
	}

	masteries, err := gs.masterySvc.GetAllMasteryLevels(ctx, userID)
	if err != nil {
		return nil, err
	}
	domains, err := gs.domainRepo.GetActive(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load exam domains: %w", err)
	}
	domainByID := make(map[uuid.UUID]*types.ExamDomain, len(domains))
	for _, d := range domains {
		domainByID[d.ID] = d
	}

	gaps := make([]*types.KnowledgeGap, 0, len(masteries))
	for _, m := range masteries {
		d := domainByID[m.DomainID]
		if d == nil {
			continue
		}
		if g := classifyGap(m, d, gs.policy); g != nil {
			gaps = append(gaps, g)
		}
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].PriorityScore != gaps[j].PriorityScore {
			return gaps[i].PriorityScore > gaps[j].PriorityScore
		}
		return severityRank(gaps[i].Severity) > severityRank(gaps[j].Severity)
	})

	if limit > 0 && len(gaps) > limit {
		gaps = gaps[:limit]
	}
	return gaps, nil
}

// classifyGap decides whether a mastery record is a gap and of which kind.
// Returns nil for healthy domains. Untouched domains are never_learned; a
// declining domain that fell well below its peak is a regression even when
// it is still above target; anything under target is a weak_area.
func classifyGap(m *types.DomainMastery, d *types.ExamDomain, p types.PracticePolicy) *types.KnowledgeGap {
	var gapType types.GapType
	switch {
	case m.QuestionCount == 0:
		gapType = types.GapTypeNeverLearned
	case m.Trend == types.TrendDeclining && m.Score <= m.PeakScore-p.RegressionMargin:
		gapType = types.GapTypeRegression
	case m.Score < p.TargetThreshold:
		gapType = types.GapTypeWeakArea
	default:
		return nil
	}

	var severity types.GapSeverity
	switch {
	case m.Score < 50:
		severity = types.GapSeverityCritical
	case m.Score < p.TargetThreshold:
		severity = types.GapSeverityWarning
	default:
		severity = types.GapSeverityInfo
	}

	priority := (p.TargetThreshold - m.Score) * d.ExamWeight
	if priority < 0 {
		priority = 0
	}

	return &types.KnowledgeGap{
		DomainID:        d.ID,
		DomainName:      d.Name,
		CurrentMastery:  m.Score,
		TargetThreshold: p.TargetThreshold,
		Severity:        severity,
		GapType:         gapType,
		ExamWeight:      d.ExamWeight,
		Recommendation:  gapRecommendation(gapType, d.Name),
		PriorityScore:   priority,
	}
}

func gapRecommendation(gapType types.GapType, domainName string) string {
	switch gapType {
	case types.GapTypeNeverLearned:
		return fmt.Sprintf("You haven't practiced %s yet. Start with a short introductory session to establish a baseline.", domainName)
	case types.GapTypeRegression:
		return fmt.Sprintf("Your %s score has slipped from its peak. Schedule a refresher session before the decline compounds.", domainName)
	}
	return fmt.Sprintf("Keep drilling %s questions to close the gap to your target score.", domainName)
}

func severityRank(s types.GapSeverity) int {
	switch s {
	case types.GapSeverityCritical:
		return 3
	case types.GapSeverityWarning:
		return 2
	case types.GapSeverityInfo:
		return 1
	}
	return 0
}
