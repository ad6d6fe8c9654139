package db

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMapErr(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"no_rows", sql.ErrNoRows, ErrNotFound},
		{"pgx_unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "players_name_key"}, ErrDuplicate},
		{"pgx_fk", fmt.Errorf("exec: %w", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}), ErrReference},
		{"pq_unique", &pq.Error{Code: pq.ErrorCode(pgerrcode.UniqueViolation), Constraint: "practice_sessions_date_key"}, ErrDuplicate},
		{"pq_check", &pq.Error{Code: pq.ErrorCode(pgerrcode.CheckViolation)}, ErrConstraint},
	}
	for _, tc := range cases {
		if got := mapErr(tc.in); !errors.Is(got, tc.want) {
			t.Errorf("%s: mapErr = %v, want %v", tc.name, got, tc.want)
		}
	}

	other := errors.New("connection reset")
	if got := mapErr(other); got != other {
		t.Errorf("unknown error must pass through, got %v", got)
	}
	if mapErr(nil) != nil {
		t.Error("nil must stay nil")
	}
}
