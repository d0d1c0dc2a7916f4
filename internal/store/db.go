package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

var (
	ErrNotFound = fmt.Errorf("store: %w", domain.ErrNotFound)
	ErrConflict = fmt.Errorf("store: %w", domain.ErrConflict)
)

// DB is the subset of *pgxpool.Pool the stores use. pgxmock pools satisfy it.
type DB interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

func withTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// conn returns the transaction carried by ctx, or db when there is none.
func conn(ctx context.Context, db DB) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}

// Transactor implements domain.Transactor on top of a pool.
type Transactor struct {
	db DB
}

func NewTransactor(db DB) *Transactor {
	return &Transactor{db: db}
}

// InTx runs fn in a transaction. A ctx that already carries one is reused.
func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.run(ctx, nil, fn)
}

// InOwnerTx is InTx with the owner's profile row locked FOR UPDATE first, so
// rollup recomputes for one owner are serialized.
func (t *Transactor) InOwnerTx(ctx context.Context, ownerID uuid.UUID, fn func(ctx context.Context) error) error {
	return t.run(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `SELECT id FROM user_profiles WHERE id = $1 FOR UPDATE`, ownerID)
		if err != nil {
			return upstream(err, "store: lock owner profile")
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	}, fn)
}

func (t *Transactor) run(ctx context.Context, prepare func(context.Context, pgx.Tx) error, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		if prepare != nil {
			if err := prepare(ctx, tx); err != nil {
				return err
			}
		}
		return fn(ctx)
	}

	tx, err := t.db.Begin(ctx)
	if err != nil {
		return upstream(err, "store: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if prepare != nil {
		if err := prepare(ctx, tx); err != nil {
			return err
		}
	}
	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return upstream(err, "store: commit tx")
	}
	return nil
}

// upstream wraps a driver error with call-site context and joins it to the
// upstream-unavailable sentinel.
func upstream(err error, op string) error {
	return domain.Upstream(eris.Wrap(err, op))
}

// notFoundOr maps pgx.ErrNoRows to ErrNotFound and anything else to upstream.
func notFoundOr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return upstream(err, op)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
