package db

import (
	"context"

	"github.com/Spok95/practice-fund/internal/ctxutil"
	"github.com/Spok95/practice-fund/internal/models"
)

const paymentCols = `id, player_id, amount_cents, date, notes, created_at`

func scanPayment(sc interface{ Scan(...any) error }) (models.Payment, error) {
	var p models.Payment
	if err := sc.Scan(&p.ID, &p.PlayerID, &p.Amount, &p.Date, &p.Notes, &p.CreatedAt); err != nil {
		return models.Payment{}, err
	}
	p.Date = models.TruncateDay(p.Date)
	return p, nil
}

// ListPayments — все платежи, новые сверху.
func (r *Repo) ListPayments(ctx context.Context) ([]models.Payment, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, `SELECT `+paymentCols+` FROM payments ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetPayment(ctx context.Context, id int64) (models.Payment, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	p, err := scanPayment(r.q.QueryRowContext(ctx, `SELECT `+paymentCols+` FROM payments WHERE id = $1`, id))
	if err != nil {
		return models.Payment{}, mapErr(err)
	}
	return p, nil
}

func (r *Repo) CreatePayment(ctx context.Context, p models.Payment) (models.Payment, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	out, err := scanPayment(r.q.QueryRowContext(ctx, `
		INSERT INTO payments (player_id, amount_cents, date, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING `+paymentCols, p.PlayerID, int64(p.Amount), models.TruncateDay(p.Date), p.Notes))
	if err != nil {
		return models.Payment{}, mapErr(err)
	}
	return out, nil
}

func (r *Repo) UpdatePayment(ctx context.Context, p models.Payment) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return expectOne(r.q.ExecContext(ctx, `
		UPDATE payments SET player_id = $1, amount_cents = $2, date = $3, notes = $4
		WHERE id = $5`, p.PlayerID, int64(p.Amount), models.TruncateDay(p.Date), p.Notes, p.ID))
}

func (r *Repo) DeletePayment(ctx context.Context, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return expectOne(r.q.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id))
}
