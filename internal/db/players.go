package db

import (
	"context"
	"database/sql"

	"github.com/Spok95/practice-fund/internal/ctxutil"
	"github.com/Spok95/practice-fund/internal/models"
)

const playerCols = `id, name, group_id, role, balance_cents, created_at`

func scanPlayer(sc interface{ Scan(...any) error }) (models.Player, error) {
	var p models.Player
	var group sql.NullInt64
	var role string
	if err := sc.Scan(&p.ID, &p.Name, &group, &role, &p.Balance, &p.CreatedAt); err != nil {
		return models.Player{}, err
	}
	if group.Valid {
		g := group.Int64
		p.GroupID = &g
	}
	p.Role = models.Role(role)
	return p, nil
}

// ListPlayers — весь состав, упорядоченный по группе и имени.
func (r *Repo) ListPlayers(ctx context.Context) ([]models.Player, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, `SELECT `+playerCols+` FROM players ORDER BY group_id NULLS LAST, name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetPlayer(ctx context.Context, id int64) (models.Player, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	p, err := scanPlayer(r.q.QueryRowContext(ctx, `SELECT `+playerCols+` FROM players WHERE id = $1`, id))
	if err != nil {
		return models.Player{}, mapErr(err)
	}
	return p, nil
}

func (r *Repo) CreatePlayer(ctx context.Context, p models.Player) (models.Player, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	out, err := scanPlayer(r.q.QueryRowContext(ctx, `
		INSERT INTO players (name, group_id, role)
		VALUES ($1, $2, $3)
		RETURNING `+playerCols, p.Name, p.GroupID, string(p.Role)))
	if err != nil {
		return models.Player{}, mapErr(err)
	}
	return out, nil
}

// UpdatePlayer меняет имя, группу и роль. Баланс здесь не трогается — его пишет только пересчёт.
func (r *Repo) UpdatePlayer(ctx context.Context, p models.Player) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return expectOne(r.q.ExecContext(ctx, `
		UPDATE players SET name = $1, group_id = $2, role = $3
		WHERE id = $4`, p.Name, p.GroupID, string(p.Role), p.ID))
}

func (r *Repo) DeletePlayer(ctx context.Context, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return expectOne(r.q.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id))
}
