package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by every repository when a lookup matches no row.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicate is returned when a write would break a uniqueness constraint.
var ErrDuplicate = errors.New("repository: duplicate")

// Store groups the repositories that share one connection or transaction.
type Store interface {
	Principals() PrincipalRepository
	Departments() DepartmentRepository
	Tickets() TicketRepository
	Comments() CommentRepository

	// WithTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgStore struct {
	pool *pgxpool.Pool
	db   DBTX
}

// NewPostgresStore returns a Store backed by the pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, db: pool}
}

func (s *pgStore) Principals() PrincipalRepository   { return NewPrincipalRepository(s.db) }
func (s *pgStore) Departments() DepartmentRepository { return NewDepartmentRepository(s.db) }
func (s *pgStore) Tickets() TicketRepository         { return NewTicketRepository(s.db) }
func (s *pgStore) Comments() CommentRepository       { return NewCommentRepository(s.db) }

func (s *pgStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if _, inTx := s.db.(pgx.Tx); inTx {
		return fn(s)
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("repository: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(&pgStore{pool: s.pool, db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: commit tx: %w", err)
	}
	return nil
}

const (
	uniqueViolation = "23505"
	// invalidTextRepresentation is raised when an id is not a valid uuid.
	invalidTextRepresentation = "22P02"
)

func duplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
		return ErrNotFound
	}
	return err
}
