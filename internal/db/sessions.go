package db

import (
	"context"
	"time"

	"github.com/Spok95/practice-fund/internal/ctxutil"
	"github.com/Spok95/practice-fund/internal/models"
)

const sessionCols = `id, date, is_online, is_settled, created_at`

func scanSession(sc interface{ Scan(...any) error }) (models.Session, error) {
	var s models.Session
	if err := sc.Scan(&s.ID, &s.Date, &s.IsOnline, &s.IsSettled, &s.CreatedAt); err != nil {
		return models.Session{}, err
	}
	s.Date = models.TruncateDay(s.Date)
	return s, nil
}

// ListSessions — все тренировки по возрастанию даты.
func (r *Repo) ListSessions(ctx context.Context) ([]models.Session, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, `SELECT `+sessionCols+` FROM practice_sessions ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) GetSession(ctx context.Context, id int64) (models.Session, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	s, err := scanSession(r.q.QueryRowContext(ctx, `SELECT `+sessionCols+` FROM practice_sessions WHERE id = $1`, id))
	if err != nil {
		return models.Session{}, mapErr(err)
	}
	return s, nil
}

// UpsertSessionByDate — одна тренировка на дату: повторная сдача за ту же дату
// обновляет формат и возвращает существующую запись.
func (r *Repo) UpsertSessionByDate(ctx context.Context, date time.Time, online bool) (models.Session, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	s, err := scanSession(r.q.QueryRowContext(ctx, `
		INSERT INTO practice_sessions (date, is_online)
		VALUES ($1, $2)
		ON CONFLICT (date) DO UPDATE SET is_online = EXCLUDED.is_online
		RETURNING `+sessionCols, models.TruncateDay(date), online))
	if err != nil {
		return models.Session{}, mapErr(err)
	}
	return s, nil
}

func (r *Repo) UpdateSession(ctx context.Context, s models.Session) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return expectOne(r.q.ExecContext(ctx, `
		UPDATE practice_sessions SET date = $1, is_online = $2, is_settled = $3
		WHERE id = $4`, models.TruncateDay(s.Date), s.IsOnline, s.IsSettled, s.ID))
}

// DeleteSession удаляет тренировку; отметки уходят каскадом.
func (r *Repo) DeleteSession(ctx context.Context, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return expectOne(r.q.ExecContext(ctx, `DELETE FROM practice_sessions WHERE id = $1`, id))
}

// ToggleSettled переключает административную отметку «рассчитано».
func (r *Repo) ToggleSettled(ctx context.Context, id int64) (models.Session, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	s, err := scanSession(r.q.QueryRowContext(ctx, `
		UPDATE practice_sessions SET is_settled = NOT is_settled
		WHERE id = $1
		RETURNING `+sessionCols, id))
	if err != nil {
		return models.Session{}, mapErr(err)
	}
	return s, nil
}
