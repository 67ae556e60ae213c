package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayang/library-lending/internal/auth"
	"github.com/ayang/library-lending/internal/books"
	"github.com/ayang/library-lending/internal/config"
)

// setupTestStore connects using the regular DB_* env config and skips the
// test if no database is reachable.
func setupTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, config.Load().PostgresDSN())
	if err != nil {
		t.Skipf("skipping: could not configure postgres pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Skipf("skipping: could not connect to postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	s := NewPostgresStore(pool)
	require.NoError(t, s.Migrate(ctx))
	return s
}

// testBook inserts an available book with a unique name and returns the name.
func testBook(t *testing.T, s *PostgresStore) string {
	t.Helper()
	name := "test-book-" + uuid.NewString()
	_, err := s.pool.Exec(context.Background(),
		`INSERT INTO books (name) VALUES ($1)`, name)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.pool.Exec(context.Background(), `DELETE FROM books WHERE name = $1`, name)
	})
	return name
}

func findBook(t *testing.T, s *PostgresStore, name string) (bool, *time.Time, *time.Time) {
	t.Helper()
	var isLent bool
	var lendout, ret *time.Time
	err := s.pool.QueryRow(context.Background(),
		`SELECT is_lent, lendout_time, return_time FROM books WHERE name = $1`, name,
	).Scan(&isLent, &lendout, &ret)
	require.NoError(t, err)
	return isLent, lendout, ret
}

func TestMarkBorrowed_TransitionAndGuard(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	name := testBook(t, s)
	today := time.Now()

	require.NoError(t, s.MarkBorrowed(ctx, name, today))

	isLent, lendout, ret := findBook(t, s, name)
	assert.True(t, isLent)
	require.NotNil(t, lendout)
	assert.Nil(t, ret)

	// second borrow of the same single copy must lose
	err := s.MarkBorrowed(ctx, name, today)
	assert.ErrorIs(t, err, books.ErrNoneAvailable)
}

func TestMarkReturned_TransitionAndGuard(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	name := testBook(t, s)
	today := time.Now()

	// returning an available book fails and leaves it untouched
	err := s.MarkReturned(ctx, name, today)
	assert.ErrorIs(t, err, books.ErrNotLent)

	require.NoError(t, s.MarkBorrowed(ctx, name, today))
	require.NoError(t, s.MarkReturned(ctx, name, today))

	isLent, lendout, ret := findBook(t, s, name)
	assert.False(t, isLent)
	assert.Nil(t, lendout)
	require.NotNil(t, ret)
}

func TestMarkBorrowed_UnknownName(t *testing.T) {
	s := setupTestStore(t)

	err := s.MarkBorrowed(context.Background(), "no-such-book-"+uuid.NewString(), time.Now())
	assert.ErrorIs(t, err, books.ErrNoneAvailable)
}

func TestListOverdue_StrictBoundary(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	eightDays := testBook(t, s)
	sevenDays := testBook(t, s)
	require.NoError(t, s.MarkBorrowed(ctx, eightDays, time.Now().AddDate(0, 0, -8)))
	require.NoError(t, s.MarkBorrowed(ctx, sevenDays, time.Now().AddDate(0, 0, -7)))

	overdue, err := s.ListOverdue(ctx, 7)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, b := range overdue {
		names[b.Name] = true
	}
	assert.True(t, names[eightDays])
	assert.False(t, names[sevenDays])
}

func TestCreateManager_DuplicateUsername(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	username := fmt.Sprintf("mgr-%.8s", uuid.NewString())
	t.Cleanup(func() {
		s.pool.Exec(context.Background(), `DELETE FROM managers WHERE username = $1`, username)
	})

	m, err := s.CreateManager(ctx, username, "hash")
	require.NoError(t, err)
	assert.Equal(t, username, m.Username)

	_, err = s.CreateManager(ctx, username, "other-hash")
	assert.ErrorIs(t, err, auth.ErrDuplicateUsername)
}

func TestGetManagerByUsername_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetManagerByUsername(context.Background(), "ghost-"+uuid.NewString())
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
