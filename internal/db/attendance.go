package db

import (
	"context"

	"github.com/Spok95/practice-fund/internal/ctxutil"
	"github.com/Spok95/practice-fund/internal/models"
)

const attendanceCols = `id, session_id, player_id, status`

func scanAttendance(sc interface{ Scan(...any) error }) (models.AttendanceRecord, error) {
	var a models.AttendanceRecord
	var status string
	if err := sc.Scan(&a.ID, &a.SessionID, &a.PlayerID, &status); err != nil {
		return models.AttendanceRecord{}, err
	}
	a.Status = models.Status(status)
	return a, nil
}

// ListAttendance — все отметки за всю историю.
func (r *Repo) ListAttendance(ctx context.Context) ([]models.AttendanceRecord, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, `SELECT `+attendanceCols+` FROM attendance ORDER BY session_id, player_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.AttendanceRecord
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repo) GetAttendance(ctx context.Context, id int64) (models.AttendanceRecord, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	a, err := scanAttendance(r.q.QueryRowContext(ctx, `SELECT `+attendanceCols+` FROM attendance WHERE id = $1`, id))
	if err != nil {
		return models.AttendanceRecord{}, mapErr(err)
	}
	return a, nil
}

// ReplaceAttendance — удалить все отметки тренировки и записать новые.
// Вызывается только внутри WithinTx, иначе удаление без вставки станет видимым.
func (r *Repo) ReplaceAttendance(ctx context.Context, sessionID int64, marks []models.Mark) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if _, err := r.q.ExecContext(ctx, `DELETE FROM attendance WHERE session_id = $1`, sessionID); err != nil {
		return mapErr(err)
	}
	if len(marks) == 0 {
		return nil
	}

	stmt, err := r.q.PrepareContext(ctx, `
		INSERT INTO attendance (session_id, player_id, status)
		VALUES ($1, $2, $3)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, m := range marks {
		if _, err := stmt.ExecContext(ctx, sessionID, m.PlayerID, string(m.Status)); err != nil {
			return mapErr(err)
		}
	}
	return nil
}

func (r *Repo) UpdateAttendance(ctx context.Context, a models.AttendanceRecord) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return expectOne(r.q.ExecContext(ctx, `
		UPDATE attendance SET player_id = $1, status = $2
		WHERE id = $3`, a.PlayerID, string(a.Status), a.ID))
}

func (r *Repo) DeleteAttendance(ctx context.Context, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return expectOne(r.q.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id))
}
