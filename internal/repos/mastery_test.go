package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/dustinober1/pmp-application-sub002/internal/apperrors"
	"github.com/dustinober1/pmp-application-sub002/internal/repos/testutil"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
)

func TestMasteryRepoGetOrCreateDefaults(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewMasteryRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "masteryrepo@example.com")
	d := testutil.SeedDomain(t, ctx, tx, "people", 0.42)

	row, err := repo.GetOrCreate(ctx, tx, u.ID, d.ID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if row.Score != types.NeutralScore || row.Trend != types.TrendStable || row.QuestionCount != 0 {
		t.Fatalf("default row: score=%v trend=%v count=%d", row.Score, row.Trend, row.QuestionCount)
	}

	// Second call must return the same row, not a duplicate.
	again, err := repo.GetOrCreate(ctx, tx, u.ID, d.ID)
	if err != nil {
		t.Fatalf("GetOrCreate again: %v", err)
	}
	if again.ID != row.ID {
		t.Fatalf("expected same row, got %s then %s", row.ID, again.ID)
	}

	rows, err := repo.GetByUserID(ctx, tx, u.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByUserID: err=%v len=%d", err, len(rows))
	}
}

func TestMasteryRepoUpdate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewMasteryRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "masteryrepoupdate@example.com")
	d := testutil.SeedDomain(t, ctx, tx, "process", 0.5)

	row, err := repo.GetOrCreate(ctx, tx, u.ID, d.ID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	row.Score = 72.5
	row.PeakScore = 72.5
	row.QuestionCount = 12
	row.Trend = types.TrendImproving
	if err := repo.Update(ctx, tx, row); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByUserAndDomain(ctx, tx, u.ID, d.ID)
	if err != nil {
		t.Fatalf("GetByUserAndDomain: %v", err)
	}
	if got.Score != 72.5 || got.QuestionCount != 12 || got.Trend != types.TrendImproving {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestMasteryRepoGetByUserAndDomainNotFound(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewMasteryRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "masteryreponotfound@example.com")

	_, err := repo.GetByUserAndDomain(ctx, tx, u.ID, uuid.New())
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing row error = %v, want apperrors.ErrNotFound", err)
	}
}
