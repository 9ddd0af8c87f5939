// Package db — Postgres-хранилище процесса начисления баллов MyCSD.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/Spok95/mycsd-points/internal/ctxutil"
	"github.com/Spok95/mycsd-points/internal/mycsd"
)

const uniqueViolation = "23505"

type Store struct {
	db        *sql.DB
	txTimeout time.Duration
}

var _ mycsd.Store = (*Store)(nil)

// New оборачивает открытое соединение. txTimeout ограничивает одну транзакцию целиком.
func New(database *sql.DB, txTimeout time.Duration) *Store {
	if txTimeout <= 0 {
		txTimeout = 15 * time.Second
	}
	return &Store{db: database, txTimeout: txTimeout}
}

func (s *Store) DB() *sql.DB { return s.db }

// WithinTx: READ COMMITTED + блокировки строк (FOR UPDATE) и CAS-обновления.
// Любая ошибка fn или commit откатывает всё.
func (s *Store) WithinTx(ctx context.Context, fn func(tx mycsd.Tx) error) error {
	ctx, cancel := ctxutil.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(&tx{tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// mapErr переводит нарушение уникальности (pgx и lib/pq) в mycsd.ErrDuplicate.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, mycsd.ErrDuplicate)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%s: %w", pqErr.Constraint, mycsd.ErrDuplicate)
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}
