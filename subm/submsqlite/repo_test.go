package submsqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/eventform/backend/migrate"
	"github.com/eventform/backend/subm"
	"github.com/eventform/backend/subm/submsqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRepo returns a repo over a fresh, fully migrated database file.
func newTestRepo(t *testing.T) subm.SubmRepo {
	t.Helper()
	path := filepath.Join(t.TempDir(), "submissions.db")
	require.NoError(t, migrate.Up(migrate.DialectSqlite, submsqlite.DSN(path)))

	db, err := submsqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return submsqlite.NewSqliteSubmRepo(db)
}

func sampleSubm(name string, submittedAt time.Time) subm.NewSubm {
	return subm.NewSubm{
		UserName:    name,
		UserAge:     33,
		EventDate:   time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC),
		SubmittedAt: submittedAt,
	}
}

func TestStoreAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 10, 30, 15, 123456789, time.UTC)

	stored, err := repo.StoreSubm(ctx, sampleSubm("Ann", now))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ID)
	assert.Equal(t, now.Truncate(time.Microsecond), stored.SubmittedAt)

	got, err := repo.GetSubm(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestGetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetSubm(context.Background(), 42)
	assert.ErrorIs(t, err, subm.ErrSubmNotFound)
}

func TestListOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	empty, err := repo.ListSubms(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	_, err = repo.StoreSubm(ctx, sampleSubm("A", base))
	require.NoError(t, err)
	_, err = repo.StoreSubm(ctx, sampleSubm("B", base.Add(time.Second)))
	require.NoError(t, err)
	// same instant as B, later id wins
	_, err = repo.StoreSubm(ctx, sampleSubm("C", base.Add(time.Second)))
	require.NoError(t, err)

	list, err := repo.ListSubms(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "C", list[0].UserName)
	assert.Equal(t, "B", list[1].UserName)
	assert.Equal(t, "A", list[2].UserName)
}

func TestIDsIncrease(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 10; i++ {
		s, err := repo.StoreSubm(ctx, sampleSubm("X", time.Now()))
		require.NoError(t, err)
		assert.Greater(t, s.ID, last)
		last = s.ID
	}
}

func TestCheckConstraintRollsBack(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	bad := sampleSubm("Ann", time.Now())
	bad.UserAge = 500
	_, err := repo.StoreSubm(ctx, bad)
	require.Error(t, err)

	list, err := repo.ListSubms(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := submsqlite.Open("  ")
	assert.Error(t, err)
}

func TestOpenUsesSingleConnectionInWAL(t *testing.T) {
	db, err := submsqlite.Open(filepath.Join(t.TempDir(), "submissions.db"))
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}
