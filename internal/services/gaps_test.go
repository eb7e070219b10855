package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/dustinober1/pmp-application-sub002/internal/repos/testutil"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

func TestClassifyGap(t *testing.T) {
	p := types.DefaultPracticePolicy()
	userID := uuid.New()
	domain := &types.ExamDomain{ID: uuid.New(), Name: "Process", ExamWeight: 0.50}

	mastery := func(score, peak float64, count int, trend types.MasteryTrend) *types.DomainMastery {
		m := types.NewDefaultDomainMastery(userID, domain.ID)
		m.Score = score
		m.PeakScore = peak
		m.QuestionCount = count
		m.Trend = trend
		return m
	}

	t.Run("healthy domain is not a gap", func(t *testing.T) {
		if g := classifyGap(mastery(78, 80, 40, types.TrendStable), domain, p); g != nil {
			t.Fatalf("got gap %+v, want nil", g)
		}
	})

	t.Run("untouched domain is never_learned", func(t *testing.T) {
		g := classifyGap(mastery(types.NeutralScore, types.NeutralScore, 0, types.TrendStable), domain, p)
		if g == nil || g.GapType != types.GapTypeNeverLearned {
			t.Fatalf("got %+v, want never_learned gap", g)
		}
		if g.Severity != types.GapSeverityWarning {
			t.Fatalf("severity = %s, want warning", g.Severity)
		}
	})

	t.Run("decline from peak is regression even above target", func(t *testing.T) {
		g := classifyGap(mastery(75, 90, 60, types.TrendDeclining), domain, p)
		if g == nil || g.GapType != types.GapTypeRegression {
			t.Fatalf("got %+v, want regression gap", g)
		}
		if g.Severity != types.GapSeverityInfo {
			t.Fatalf("severity = %s, want info", g.Severity)
		}
		if g.PriorityScore != 0 {
			t.Fatalf("priority above target = %v, want 0", g.PriorityScore)
		}
	})

	t.Run("below target is weak_area", func(t *testing.T) {
		g := classifyGap(mastery(40, 55, 30, types.TrendStable), domain, p)
		if g == nil || g.GapType != types.GapTypeWeakArea {
			t.Fatalf("got %+v, want weak_area gap", g)
		}
		if g.Severity != types.GapSeverityCritical {
			t.Fatalf("severity = %s, want critical", g.Severity)
		}
		want := (p.TargetThreshold - 40) * domain.ExamWeight
		if g.PriorityScore != want {
			t.Fatalf("priority = %v, want %v", g.PriorityScore, want)
		}
	})

	t.Run("small dip while declining is still weak_area", func(t *testing.T) {
		g := classifyGap(mastery(65, 70, 30, types.TrendDeclining), domain, p)
		if g == nil || g.GapType != types.GapTypeWeakArea {
			t.Fatalf("got %+v, want weak_area gap", g)
		}
	})
}

func TestGetPrioritizedGapsOrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	log := testutil.Logger(t)
	p := types.DefaultPracticePolicy()
	userID := uuid.New()

	heavyWeak := &types.ExamDomain{ID: uuid.New(), Name: "Process", Slug: "process", ExamWeight: 0.50, IsActive: true}
	lightWeak := &types.ExamDomain{ID: uuid.New(), Name: "Business Environment", Slug: "business-environment", ExamWeight: 0.08, IsActive: true}
	healthy := &types.ExamDomain{ID: uuid.New(), Name: "People", Slug: "people", ExamWeight: 0.42, IsActive: true}
	domains := &fakeDomainRepo{domains: []*types.ExamDomain{heavyWeak, lightWeak, healthy}}

	mk := func(domainID uuid.UUID, score float64, count int) *types.DomainMastery {
		m := types.NewDefaultDomainMastery(userID, domainID)
		m.Score = score
		m.PeakScore = score
		m.QuestionCount = count
		return m
	}
	masterySvc := &fakeMasteryService{masteries: []*types.DomainMastery{
		mk(heavyWeak.ID, 45, 20),
		mk(lightWeak.ID, 45, 20),
		mk(healthy.ID, 88, 50),
	}}

	gs := NewGapService(log, p, domains, masterySvc)

	gaps, err := gs.GetPrioritizedGaps(ctx, userID, 0)
	if err != nil {
		t.Fatalf("GetPrioritizedGaps: %v", err)
	}
	if len(gaps) != 2 {
		t.Fatalf("len = %d, want 2 (healthy domain excluded)", len(gaps))
	}
	if gaps[0].DomainID != heavyWeak.ID {
		t.Fatalf("first gap = %s, want heavier-weighted domain first", gaps[0].DomainName)
	}
	for _, g := range gaps {
		if g.DomainID == healthy.ID {
			t.Fatalf("healthy domain surfaced as a gap")
		}
	}

	limited, err := gs.GetPrioritizedGaps(ctx, userID, 1)
	if err != nil {
		t.Fatalf("GetPrioritizedGaps limit=1: %v", err)
	}
	if len(limited) != 1 || limited[0].DomainID != heavyWeak.ID {
		t.Fatalf("limit=1 returned %d gaps, want the top gap only", len(limited))
	}

	if _, err := gs.GetPrioritizedGaps(ctx, userID, -1); err == nil {
		t.Fatalf("negative limit accepted, want error")
	}
}
