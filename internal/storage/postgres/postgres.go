// Package postgres is implementation of storage interface.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/photon/internal/storage"
)

var log = logrus.WithField("layer", "storage").WithField("package", "postgres")
var errBeginCalledWithinTx = errors.New("can not run InTx in tx")

const (
	foreignKeyViolation       = "23503"
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

type pg struct {
	ext sqlx.ExtContext
}

// New creates new instance of pg.
func New(db *sql.DB) storage.Storage {
	return pg{
		ext: sqlx.NewDb(db, "postgres"),
	}
}

func (s pg) InTx(ctx context.Context, f func(s storage.Storage) error) error {
	db, ok := s.ext.(*sqlx.DB)
	if !ok {
		return errBeginCalledWithinTx
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to create tx: %w", err)
	}

	if err := f(pg{ext: tx}); err != nil {
		if err := tx.Rollback(); err != nil {
			log.WithError(err).Error("failed to rollback tx")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}

	return nil
}

func (s pg) Ping(ctx context.Context) error {
	var i int
	if err := sqlx.GetContext(ctx, s.ext, &i, `SELECT 1`); err != nil {
		return fmt.Errorf("failed to ping: %w", err)
	}

	return nil
}

// wrapExecError converts constraint violations to storage errors.
func wrapExecError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return storage.ErrAlreadyExists
		case foreignKeyViolation, invalidTextRepresentation:
			return storage.ErrNotFound
		}
	}

	return fmt.Errorf("failed to exec: %w", err)
}

func wrapGetError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}

	// malformed uuid can not match any document
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation {
		return storage.ErrNotFound
	}

	return fmt.Errorf("failed to query: %w", err)
}

func affectedOrNotFound(res sql.Result) error {
	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// selectIn runs query with expanded IN clause.
func selectIn(ctx context.Context, ext sqlx.ExtContext, dest interface{}, query string, args ...interface{}) error {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return fmt.Errorf("failed to construct IN clause: %w", err)
	}

	if err := sqlx.SelectContext(ctx, ext, dest, ext.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to query: %w", err)
	}

	return nil
}

func stringsUnique(s []string) []string {
	m := make(map[string]struct{}, len(s))
	out := make([]string, 0, len(s))

	for _, v := range s {
		if _, ok := m[v]; !ok {
			m[v] = struct{}{}
			out = append(out, v)
		}
	}

	return out
}
