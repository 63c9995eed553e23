package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventify/internal/domain"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

// withTx runs fn inside a transaction. The transaction is rolled back when fn
// returns an error and committed otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// pqCode returns the SQLSTATE of a Postgres error, or "" for other errors.
func pqCode(err error) string {
	var perr *pq.Error
	if errors.As(err, &perr) {
		return string(perr.Code)
	}
	return ""
}

// mapLookupError converts errors of single-row lookups by id into domain errors.
// A malformed UUID can never match a row, so it is reported as not found.
func mapLookupError(err error) error {
	if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pgerrcode.InvalidTextRepresentation {
		return domain.ErrNotFound
	}
	return err
}
