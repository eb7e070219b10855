package types

// PracticePolicy holds every tunable constant of the practice engine.
// It is loaded from the environment at boot and injected into the
// services so thresholds can be tuned without touching engine logic.
type PracticePolicy struct {
	// Mastery at or above TargetThreshold is considered healthy; below it a
	// domain becomes a knowledge gap candidate.
	TargetThreshold float64
	// Mastery at or above StretchThreshold moves a domain into the stretch
	// bucket during question selection.
	StretchThreshold float64

	// Bucket allocation ratios for a practice set. The stretch bucket
	// absorbs the rounding remainder.
	GapRatio         float64
	MaintenanceRatio float64

	// Composite mastery score weights. Expected to sum to 1.
	AccuracyWeight    float64
	ConsistencyWeight float64
	DifficultyWeight  float64

	// Rolling window over answer history used for mastery aggregation.
	WindowDays        int
	WindowMaxAttempts int

	// Minimum score delta between consecutive windows before the trend
	// leaves "stable".
	TrendDelta float64
	// How far below PeakScore a declining domain must fall before it is
	// classified as a regression.
	RegressionMargin float64

	// Consecutive same-outcome answers needed to trigger the difficulty
	// override during selection.
	StreakLength int

	// Questions answered within this many days are excluded from selection
	// unless the caller overrides it.
	ExcludeRecentDays int

	// Week-over-week accuracy drop, in percentage points, that triggers a
	// high-priority insight.
	AccuracyDropAlert float64
	// Minimum attempts in the comparison week before an accuracy-drop alert
	// can fire; avoids alerting on noise.
	AccuracyDropMinAttempts int

	// Study-streak day counts that earn a milestone insight.
	StreakMilestones []int
	// Mastery scores that mark a tier boundary, keyed by tier name.
	MasteryTiers map[string]float64
}

// DefaultPracticePolicy mirrors the production defaults; tests start from it.
func DefaultPracticePolicy() PracticePolicy {
	return PracticePolicy{
		TargetThreshold:         70,
		StretchThreshold:        85,
		GapRatio:                0.60,
		MaintenanceRatio:        0.25,
		AccuracyWeight:          0.60,
		ConsistencyWeight:       0.25,
		DifficultyWeight:        0.15,
		WindowDays:              30,
		WindowMaxAttempts:       100,
		TrendDelta:              5,
		RegressionMargin:        10,
		StreakLength:            3,
		ExcludeRecentDays:       7,
		AccuracyDropAlert:       10,
		AccuracyDropMinAttempts: 4,
		StreakMilestones:        []int{7, 30, 100},
		MasteryTiers: map[string]float64{
			"proficient": 70,
			"expert":     85,
		},
	}
}
