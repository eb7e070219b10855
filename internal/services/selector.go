package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dustinober1/pmp-application-sub002/internal/apperrors"
	"github.com/dustinober1/pmp-application-sub002/internal/logger"
	"github.com/dustinober1/pmp-application-sub002/internal/repos"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

const (
	// MaxSelectionCount bounds a single practice set.
	MaxSelectionCount = 50
	// candidateFetchLimit bounds the per-bucket working set pulled from the
	// store, not the final selection.
	candidateFetchLimit = 200
	// streakLookback is how many recent attempts feed streak detection.
	streakLookback = 200
)

// SelectQuestionsRequest narrows a practice-set selection. Difficulty
// bounds must be set together; DomainIDs restricts the eligible domains and
// an unknown ID simply matches nothing.
type SelectQuestionsRequest struct {
	Count             int
	DomainIDs         []uuid.UUID
	MinDifficulty     types.Difficulty
	MaxDifficulty     types.Difficulty
	ExcludeRecentDays *int
}

type SelectorService interface {
	// SelectQuestions assembles a practice set for the user, prioritizing
	// knowledge gaps over maintenance over stretch material. The result is
	// shorter than requested when not enough unseen questions exist.
	SelectQuestions(ctx context.Context, userID uuid.UUID, req SelectQuestionsRequest) ([]*types.SelectedQuestion, error)
}

type selectorService struct {
	log          *logger.Logger
	policy       types.PracticePolicy
	questionRepo repos.QuestionRepo
	attemptRepo  repos.AttemptRepo
	masterySvc   MasteryService
	gapSvc       GapService
}

func NewSelectorService(
	log *logger.Logger,
	policy types.PracticePolicy,
	questionRepo repos.QuestionRepo,
	attemptRepo repos.AttemptRepo,
	masterySvc MasteryService,
	gapSvc GapService,
) SelectorService {
	return &selectorService{
		log:          log.With("service", "SelectorService"),
		policy:       policy,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		masterySvc:   masterySvc,
		gapSvc:       gapSvc,
	}
}

func (ss *selectorService) SelectQuestions(ctx context.Context, userID uuid.UUID, req SelectQuestionsRequest) ([]*types.SelectedQuestion, error) {
	if req.Count <= 0 || req.Count > MaxSelectionCount {
		return nil, fmt.Errorf("%w: count must be in [1,%d]", apperrors.ErrInvalidInput, MaxSelectionCount)
	}
	minRank, maxRank, err := difficultyBounds(req.MinDifficulty, req.MaxDifficulty)
	if err != nil {
		return nil, err
	}
	if req.ExcludeRecentDays != nil && *req.ExcludeRecentDays < 0 {
		return nil, fmt.Errorf("%w: exclude_recent_days must not be negative", apperrors.ErrInvalidInput)
	}

	masteries, err := ss.masterySvc.GetAllMasteryLevels(ctx, userID)
	if err != nil {
		return nil, err
	}
	gaps, err := ss.gapSvc.GetPrioritizedGaps(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	gapSet := make(map[uuid.UUID]bool, len(gaps))
	for _, g := range gaps {
		gapSet[g.DomainID] = true
	}

	var filter map[uuid.UUID]bool
	if len(req.DomainIDs) > 0 {
		filter = make(map[uuid.UUID]bool, len(req.DomainIDs))
		for _, id := range req.DomainIDs {
			filter[id] = true
		}
	}

	var buckets [3][]uuid.UUID
	for _, m := range masteries {
		if filter != nil && !filter[m.DomainID] {
			continue
		}
		switch {
		case gapSet[m.DomainID]:
			buckets[0] = append(buckets[0], m.DomainID)
		case m.Score >= ss.policy.StretchThreshold:
			buckets[2] = append(buckets[2], m.DomainID)
		case m.Score >= ss.policy.TargetThreshold:
			buckets[1] = append(buckets[1], m.DomainID)
		default:
			buckets[0] = append(buckets[0], m.DomainID)
		}
	}

	now := time.Now().UTC()
	excludeDays := ss.policy.ExcludeRecentDays
	if req.ExcludeRecentDays != nil {
		excludeDays = *req.ExcludeRecentDays
	}
	var excludeIDs []uuid.UUID
	if excludeDays > 0 {
		excludeIDs, err = ss.attemptRepo.GetAnsweredQuestionIDsSince(ctx, nil, userID, now.AddDate(0, 0, -excludeDays))
		if err != nil {
			return nil, fmt.Errorf("load recently answered questions: %w", err)
		}
	}

	recent, err := ss.attemptRepo.GetRecentByUser(ctx, nil, userID, streakLookback)
	if err != nil {
		return nil, fmt.Errorf("load recent attempts: %w", err)
	}
	streaks := headStreaks(recent)

	var candidates [3][]*types.Question
	g, gctx := errgroup.WithContext(ctx)
	for i := range buckets {
		if len(buckets[i]) == 0 {
			continue
		}
		i := i
		g.Go(func() error {
			rows, fErr := ss.questionRepo.GetCandidates(gctx, nil, buckets[i], excludeIDs, candidateFetchLimit)
			if fErr != nil {
				return fErr
			}
			candidates[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load candidate questions: %w", err)
	}

	counts := bucketCounts(req.Count, ss.policy)
	reasons := [3]types.SelectionReason{types.SelectionReasonGap, types.SelectionReasonMaintenance, types.SelectionReasonStretch}

	var pools [3][]*types.Question
	for i := range candidates {
		pools[i] = ss.orderPool(ss.admitCandidates(candidates[i], streaks, minRank, maxRank), streaks)
	}

	chosen := make([]*types.SelectedQuestion, 0, req.Count)
	claimed := make(map[uuid.UUID]bool)
	take := func(i, want int) int {
		taken := 0
		for _, q := range pools[i] {
			if taken == want {
				break
			}
			if claimed[q.ID] {
				continue
			}
			claimed[q.ID] = true
			chosen = append(chosen, &types.SelectedQuestion{
				Question:        q,
				SelectionReason: reasons[i],
				Difficulty:      q.Difficulty,
			})
			taken++
		}
		return taken
	}

	for i := range pools {
		take(i, counts[i])
	}
	// A starved bucket shorts its share; refill from the other buckets in
	// priority order so the set only comes up short when the store does.
	for i := range pools {
		if len(chosen) >= req.Count {
			break
		}
		take(i, req.Count-len(chosen))
	}
	return chosen, nil
}

// admitCandidates drops claimed-ineligible questions: those outside the
// requested difficulty bounds, or any non-EASY question from a domain whose
// losing streak forces easy material. The streak override outranks the
// caller's bounds.
func (ss *selectorService) admitCandidates(pool []*types.Question, streaks map[uuid.UUID]answerStreak, minRank, maxRank int) []*types.Question {
	out := make([]*types.Question, 0, len(pool))
	for _, q := range pool {
		if forcesEasy(streaks[q.DomainID], ss.policy.StreakLength) {
			if q.Difficulty == types.DifficultyEasy {
				out = append(out, q)
			}
			continue
		}
		if minRank > 0 {
			r := types.DifficultyRank(q.Difficulty)
			if r < minRank || r > maxRank {
				continue
			}
		}
		out = append(out, q)
	}
	return out
}

// orderPool shuffles the pool, then floats questions matching each domain's
// preferred difficulty to the front. The shuffle keeps repeat requests from
// serving identical sets; the stable sort keeps the difficulty bias.
func (ss *selectorService) orderPool(pool []*types.Question, streaks map[uuid.UUID]answerStreak) []*types.Question {
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	sort.SliceStable(pool, func(i, j int) bool {
		return ss.prefersQuestion(pool[i], streaks) && !ss.prefersQuestion(pool[j], streaks)
	})
	return pool
}

func (ss *selectorService) prefersQuestion(q *types.Question, streaks map[uuid.UUID]answerStreak) bool {
	s := streaks[q.DomainID]
	preferred := types.DifficultyMedium
	if prefersHarder(s, ss.policy.StreakLength) {
		preferred = nextHarder(s.topRank)
	}
	return q.Difficulty == preferred
}

// nextHarder maps the difficulty a winning streak was earned at to the tier
// the next set should nudge toward. A streak earned on EASY material steps
// up to MEDIUM rather than jumping straight to HARD.
func nextHarder(rank int) types.Difficulty {
	if rank <= types.DifficultyRank(types.DifficultyEasy) {
		return types.DifficultyMedium
	}
	return types.DifficultyHard
}

// bucketCounts splits a requested set size into gap, maintenance and
// stretch shares. Rounding remainders land in the stretch bucket; if
// rounding overshoots the total, the excess is shaved from maintenance
// first so the gap share is preserved.
func bucketCounts(count int, p types.PracticePolicy) [3]int {
	g := int(math.Round(p.GapRatio * float64(count)))
	m := int(math.Round(p.MaintenanceRatio * float64(count)))
	s := count - g - m
	if s < 0 {
		m += s
		s = 0
		if m < 0 {
			g += m
			m = 0
		}
	}
	return [3]int{g, m, s}
}

func difficultyBounds(min, max types.Difficulty) (int, int, error) {
	if min == "" && max == "" {
		return 0, 0, nil
	}
	if min == "" || max == "" {
		return 0, 0, fmt.Errorf("%w: difficulty bounds must be set together", apperrors.ErrInvalidInput)
	}
	minRank := types.DifficultyRank(min)
	maxRank := types.DifficultyRank(max)
	if minRank == 0 || maxRank == 0 {
		return 0, 0, fmt.Errorf("%w: unknown difficulty bound", apperrors.ErrInvalidInput)
	}
	if minRank > maxRank {
		return 0, 0, fmt.Errorf("%w: min difficulty above max difficulty", apperrors.ErrInvalidInput)
	}
	return minRank, maxRank, nil
}

// answerStreak is the run of identical outcomes at the head of a domain's
// attempt history. topRank records the hardest difficulty answered within
// the run so a winning streak steps up from where it was earned.
type answerStreak struct {
	correct   int
	incorrect int
	topRank   int
}

// headStreaks walks attempts newest-first and measures, per domain, how
// many consecutive answers share the latest outcome.
func headStreaks(rows []*types.QuestionAttempt) map[uuid.UUID]answerStreak {
	out := map[uuid.UUID]answerStreak{}
	broken := map[uuid.UUID]bool{}
	for _, a := range rows {
		if broken[a.DomainID] {
			continue
		}
		s := out[a.DomainID]
		switch {
		case s.correct == 0 && s.incorrect == 0:
			if a.IsCorrect {
				s.correct = 1
			} else {
				s.incorrect = 1
			}
		case a.IsCorrect && s.correct > 0:
			s.correct++
		case !a.IsCorrect && s.incorrect > 0:
			s.incorrect++
		default:
			broken[a.DomainID] = true
			continue
		}
		if r := types.DifficultyRank(a.Difficulty); r > s.topRank {
			s.topRank = r
		}
		out[a.DomainID] = s
	}
	return out
}

func forcesEasy(s answerStreak, streakLength int) bool {
	return streakLength > 0 && s.incorrect >= streakLength
}

func prefersHarder(s answerStreak, streakLength int) bool {
	return streakLength > 0 && s.correct >= streakLength
}
