package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Spok95/practice-fund/internal/ctxutil"
)

// querier — общее у *sql.DB и *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Repo — запросы к таблицам команды. Внутри WithinTx работает поверх транзакции.
type Repo struct {
	q querier
}

// Store — репозиторий поверх пула соединений плюс транзакции.
type Store struct {
	Repo
	db *sql.DB
}

func NewStore(database *sql.DB) *Store {
	return &Store{Repo: Repo{q: database}, db: database}
}

func (s *Store) DB() *sql.DB { return s.db }

// writerLockKey — ключ advisory-lock, сериализующего все изменения.
const writerLockKey int64 = 0x7465616d66756e64 // "teamfund"

// WithinTx выполняет fn в одной транзакции под глобальным замком писателя.
// Любая ошибка fn откатывает всё: и изменение, и перезапись балансов.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx *Repo) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	lockCtx, cancel := ctxutil.WithDBTimeout(ctx)
	_, err = tx.ExecContext(lockCtx, `SELECT pg_advisory_xact_lock($1)`, writerLockKey)
	cancel()
	if err != nil {
		return fmt.Errorf("writer lock: %w", err)
	}

	if err := fn(ctx, &Repo{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// WithinReadTx даёт fn согласованный снимок (REPEATABLE READ, только чтение)
// без замка писателя: чтения не ждут идущий пересчёт.
func (s *Store) WithinReadTx(ctx context.Context, fn func(ctx context.Context, tx *Repo) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin read: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, &Repo{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit read: %w", err)
	}
	return nil
}
