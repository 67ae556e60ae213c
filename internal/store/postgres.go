package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayang/library-lending/internal/auth"
	"github.com/ayang/library-lending/internal/books"
	"github.com/ayang/library-lending/internal/models"
)

// PostgresStore handles book and manager persistence against PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the books and managers tables if they don't exist.
// Books themselves are seeded out-of-band; no endpoint creates them.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS books (
			id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name         TEXT NOT NULL,
			is_lent      BOOLEAN NOT NULL DEFAULT FALSE,
			lendout_time DATE,
			return_time  DATE
		)
	`)
	if err != nil {
		return fmt.Errorf("create books table: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS managers (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username   VARCHAR(50)  UNIQUE NOT NULL,
			password   VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ  DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("create managers table: %w", err)
	}
	return nil
}

// ── books ────────────────────────────────────────────────────

func (s *PostgresStore) ListAll(ctx context.Context) ([]models.Book, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, is_lent, lendout_time, return_time FROM books`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()
	return scanBooks(rows)
}

func (s *PostgresStore) ListOverdue(ctx context.Context, thresholdDays int) ([]models.Book, error) {
	// date subtraction yields whole days; strictly greater than the
	// threshold, so a book lent exactly thresholdDays ago is not overdue
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, is_lent, lendout_time, return_time
		 FROM books
		 WHERE is_lent AND (CURRENT_DATE - lendout_time) > $1`,
		thresholdDays)
	if err != nil {
		return nil, fmt.Errorf("list overdue books: %w", err)
	}
	defer rows.Close()
	return scanBooks(rows)
}

// MarkBorrowed flips one available book with the given name to lent in a
// single conditional update. Which row is picked when several share the
// name is storage-defined; the inner guard makes racing borrows lose
// rather than double-lend.
func (s *PostgresStore) MarkBorrowed(ctx context.Context, name string, day time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE books b
		SET is_lent = TRUE, lendout_time = $2, return_time = NULL
		FROM (SELECT id FROM books WHERE name = $1 AND NOT is_lent LIMIT 1) pick
		WHERE b.id = pick.id AND NOT b.is_lent
	`, name, day)
	if err != nil {
		return fmt.Errorf("mark borrowed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return books.ErrNoneAvailable
	}
	return nil
}

// MarkReturned is the mirror transition: one lent book back to available.
func (s *PostgresStore) MarkReturned(ctx context.Context, name string, day time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE books b
		SET is_lent = FALSE, return_time = $2, lendout_time = NULL
		FROM (SELECT id FROM books WHERE name = $1 AND is_lent LIMIT 1) pick
		WHERE b.id = pick.id AND b.is_lent
	`, name, day)
	if err != nil {
		return fmt.Errorf("mark returned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return books.ErrNotLent
	}
	return nil
}

func scanBooks(rows pgx.Rows) ([]models.Book, error) {
	var out []models.Book
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ID, &b.Name, &b.IsLent, &b.LendoutTime, &b.ReturnTime); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return out, nil
}

// ── managers ─────────────────────────────────────────────────

func (s *PostgresStore) CreateManager(ctx context.Context, username, hashedPassword string) (*models.Manager, error) {
	var m models.Manager
	err := s.pool.QueryRow(ctx,
		`INSERT INTO managers (username, password)
		 VALUES ($1, $2)
		 RETURNING id, username, created_at`,
		username, hashedPassword,
	).Scan(&m.ID, &m.Username, &m.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, auth.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create manager: %w", err)
	}
	return &m, nil
}

func (s *PostgresStore) GetManagerByUsername(ctx context.Context, username string) (*models.Manager, error) {
	var m models.Manager
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password, created_at FROM managers WHERE username = $1`,
		username,
	).Scan(&m.ID, &m.Username, &m.Password, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("get manager by username: %w", err)
	}
	return &m, nil
}

func (s *PostgresStore) GetManagerByID(ctx context.Context, id string) (*models.Manager, error) {
	var m models.Manager
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, created_at FROM managers WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.Username, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("get manager by id: %w", err)
	}
	return &m, nil
}
