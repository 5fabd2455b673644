package submpgrepo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/eventform/backend/subm"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/peterldowns/pgtestdb"
	"github.com/peterldowns/pgtestdb/migrators/golangmigrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewDB returns a connection pool to a unique and isolated test database,
// fully migrated and ready for testing
func NewDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("SUBM_PG_TESTS") == "" {
		t.Skip("set SUBM_PG_TESTS=1 with a local postgres on :5433 to run")
	}
	ctx := context.Background()
	conf := pgtestdb.Config{
		DriverName: "pgx",
		User:       "subm", // local dev pg user
		Password:   "subm", // local dev pg password
		Host:       "localhost",
		Port:       "5433",
		Options:    "sslmode=disable",
	}
	gm := golangmigrator.New("../../migrate/postgres")
	config := pgtestdb.Custom(t, conf, gm)

	pool, err := pgxpool.New(ctx, config.URL())
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}

func TestPgDbSchemaVersion(t *testing.T) {
	t.Parallel()
	db := NewDB(t)

	var version int
	var dirty bool
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := db.QueryRow(ctx, "SELECT version, dirty FROM schema_migrations").Scan(&version, &dirty)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.False(t, dirty)
}

func getSampleSubm(name string, submittedAt time.Time) subm.NewSubm {
	return subm.NewSubm{
		UserName:    name,
		UserAge:     27,
		EventDate:   time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		SubmittedAt: submittedAt,
	}
}

func TestSubmRepo_StoreAndGet(t *testing.T) {
	t.Parallel()
	repo := NewPgSubmRepo(NewDB(t))
	ctx := context.Background()

	sample := getSampleSubm("Ann", time.Now().UTC())
	stored, err := repo.StoreSubm(ctx, sample)
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)
	assert.Equal(t, sample.UserName, stored.UserName)
	assert.Equal(t, sample.EventDate, stored.EventDate)
	// compare submission time with a 1ms precision
	require.WithinDuration(t, sample.SubmittedAt, stored.SubmittedAt, time.Millisecond)

	got, err := repo.GetSubm(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestSubmRepo_GetMissing(t *testing.T) {
	t.Parallel()
	repo := NewPgSubmRepo(NewDB(t))

	_, err := repo.GetSubm(context.Background(), 12345)
	assert.ErrorIs(t, err, subm.ErrSubmNotFound)
}

func TestSubmRepo_ListNewestFirst(t *testing.T) {
	t.Parallel()
	repo := NewPgSubmRepo(NewDB(t))
	ctx := context.Background()

	base := time.Now().UTC()
	var lastID int64
	for i, name := range []string{"A", "B", "C"} {
		s, err := repo.StoreSubm(ctx, getSampleSubm(name, base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
		assert.Greater(t, s.ID, lastID)
		lastID = s.ID
	}

	list, err := repo.ListSubms(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"C", "B", "A"}, []string{list[0].UserName, list[1].UserName, list[2].UserName})
}
