package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dustinober1/pmp-application-sub002/internal/apperrors"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

// In-memory repo stand-ins for service tests. They ignore the tx argument;
// transactional behavior is covered by the repo integration tests.

type fakeDomainRepo struct {
	domains []*types.ExamDomain
}

func (f *fakeDomainRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ExamDomain) ([]*types.ExamDomain, error) {
	f.domains = append(f.domains, rows...)
	return rows, nil
}

func (f *fakeDomainRepo) GetActive(ctx context.Context, tx *gorm.DB) ([]*types.ExamDomain, error) {
	var out []*types.ExamDomain
	for _, d := range f.domains {
		if d.IsActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDomainRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ExamDomain, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []*types.ExamDomain
	for _, d := range f.domains {
		if want[d.ID] {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDomainRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.ExamDomain, error) {
	for _, d := range f.domains {
		if d.Slug == slug {
			return d, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type fakeAttemptRepo struct {
	attempts []*types.QuestionAttempt
}

func (f *fakeAttemptRepo) Create(ctx context.Context, tx *gorm.DB, row *types.QuestionAttempt) error {
	f.attempts = append(f.attempts, row)
	return nil
}

func (f *fakeAttemptRepo) GetByUserAndDomainBetween(ctx context.Context, tx *gorm.DB, userID, domainID uuid.UUID, from, to time.Time, limit int) ([]*types.QuestionAttempt, error) {
	var out []*types.QuestionAttempt
	for _, a := range f.attempts {
		if a.UserID == userID && a.DomainID == domainID && !a.AnsweredAt.Before(from) && a.AnsweredAt.Before(to) {
			out = append(out, a)
		}
	}
	sortAttemptsNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAttemptRepo) GetRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.QuestionAttempt, error) {
	var out []*types.QuestionAttempt
	for _, a := range f.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sortAttemptsNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAttemptRepo) GetAnsweredQuestionIDsSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, a := range f.attempts {
		if a.UserID == userID && !a.AnsweredAt.Before(since) && !seen[a.QuestionID] {
			seen[a.QuestionID] = true
			out = append(out, a.QuestionID)
		}
	}
	return out, nil
}

func (f *fakeAttemptRepo) CountByUserAndDomain(ctx context.Context, tx *gorm.DB, userID, domainID uuid.UUID) (int64, error) {
	var n int64
	for _, a := range f.attempts {
		if a.UserID == userID && a.DomainID == domainID {
			n++
		}
	}
	return n, nil
}

func sortAttemptsNewestFirst(rows []*types.QuestionAttempt) {
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].AnsweredAt.After(rows[j-1].AnsweredAt); j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
}

type fakeQuestionRepo struct {
	questions []*types.Question
}

func (f *fakeQuestionRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Question) ([]*types.Question, error) {
	f.questions = append(f.questions, rows...)
	return rows, nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Question, error) {
	for _, q := range f.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeQuestionRepo) GetCandidates(ctx context.Context, tx *gorm.DB, domainIDs []uuid.UUID, excludeIDs []uuid.UUID, limit int) ([]*types.Question, error) {
	inDomain := map[uuid.UUID]bool{}
	for _, id := range domainIDs {
		inDomain[id] = true
	}
	excluded := map[uuid.UUID]bool{}
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	var out []*types.Question
	for _, q := range f.questions {
		if !q.IsActive || !inDomain[q.DomainID] || excluded[q.ID] {
			continue
		}
		out = append(out, q)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*types.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, tx, email)
	return err == nil, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, tx *gorm.DB, user *types.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdateStudyStreak(ctx context.Context, tx *gorm.DB, id uuid.UUID, streakDays int, lastStudyDate time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.StudyStreakDays = streakDays
	u.LastStudyDate = &lastStudyDate
	return nil
}

func (f *fakeUserRepo) GetAllIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id := range f.users {
		out = append(out, id)
	}
	return out, nil
}

type fakeMasteryRepo struct {
	rows map[uuid.UUID]map[uuid.UUID]*types.DomainMastery
}

func newFakeMasteryRepo() *fakeMasteryRepo {
	return &fakeMasteryRepo{rows: map[uuid.UUID]map[uuid.UUID]*types.DomainMastery{}}
}

func (f *fakeMasteryRepo) put(m *types.DomainMastery) {
	if f.rows[m.UserID] == nil {
		f.rows[m.UserID] = map[uuid.UUID]*types.DomainMastery{}
	}
	f.rows[m.UserID][m.DomainID] = m
}

func (f *fakeMasteryRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID, domainID uuid.UUID) (*types.DomainMastery, error) {
	if m, ok := f.rows[userID][domainID]; ok {
		return m, nil
	}
	m := types.NewDefaultDomainMastery(userID, domainID)
	f.put(m)
	return m, nil
}

func (f *fakeMasteryRepo) GetByUserAndDomain(ctx context.Context, tx *gorm.DB, userID, domainID uuid.UUID) (*types.DomainMastery, error) {
	if m, ok := f.rows[userID][domainID]; ok {
		return m, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeMasteryRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.DomainMastery, error) {
	var out []*types.DomainMastery
	for _, m := range f.rows[userID] {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMasteryRepo) Update(ctx context.Context, tx *gorm.DB, row *types.DomainMastery) error {
	f.put(row)
	return nil
}

type fakeInsightRepo struct {
	rows []*types.Insight
}

func (f *fakeInsightRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, row *types.Insight) (bool, error) {
	for _, r := range f.rows {
		if r.UserID == row.UserID && r.DedupeKey == row.DedupeKey {
			return false, nil
		}
	}
	f.rows = append(f.rows, row)
	return true, nil
}

func (f *fakeInsightRepo) GetRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Insight, error) {
	var out []*types.Insight
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			out = append(out, f.rows[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeInsightRepo) MarkRead(ctx context.Context, tx *gorm.DB, userID, insightID uuid.UUID) (bool, error) {
	for _, r := range f.rows {
		if r.ID == insightID && r.UserID == userID {
			r.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

// fakeMasteryService serves canned mastery records, bypassing the window
// math so selector and gap tests control scores directly.
type fakeMasteryService struct {
	masteries []*types.DomainMastery
}

func (f *fakeMasteryService) CalculateDomainMastery(ctx context.Context, userID, domainID uuid.UUID) (*types.DomainMastery, error) {
	for _, m := range f.masteries {
		if m.UserID == userID && m.DomainID == domainID {
			return m, nil
		}
	}
	return types.NewDefaultDomainMastery(userID, domainID), nil
}

func (f *fakeMasteryService) GetAllMasteryLevels(ctx context.Context, userID uuid.UUID) ([]*types.DomainMastery, error) {
	var out []*types.DomainMastery
	for _, m := range f.masteries {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}
