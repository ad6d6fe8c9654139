package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("already exists")
	ErrReference  = errors.New("referenced row does not exist")
	ErrConstraint = errors.New("constraint violated")
)

// mapErr переводит ошибки драйвера в ошибки пакета, сохраняя исходную причину.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	code, constraint, ok := pgCode(err)
	if !ok {
		return err
	}
	switch code {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w (%s): %w", ErrDuplicate, constraint, err)
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w (%s): %w", ErrReference, constraint, err)
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return fmt.Errorf("%w (%s): %w", ErrConstraint, constraint, err)
	}
	return err
}

// pgCode достаёт SQLSTATE из ошибки любого из двух драйверов: pgx в сервисе, lib/pq в тестах.
func pgCode(err error) (code, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}
	return "", "", false
}

// expectOne — UPDATE/DELETE по id должен задеть ровно одну строку.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
