package db

import (
	"context"
	"fmt"
	"slices"

	"github.com/lib/pq"

	"github.com/Spok95/practice-fund/internal/ctxutil"
	"github.com/Spok95/practice-fund/internal/models"
)

// WriteBalances перезаписывает кэшированный баланс каждого игрока одним UPDATE.
// Значения не прибавляются к старым, поэтому повторный вызов безопасен.
func (r *Repo) WriteBalances(ctx context.Context, balances map[int64]models.Money) error {
	if len(balances) == 0 {
		return nil
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	ids := make([]int64, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	amounts := make([]int64, len(ids))
	for i, id := range ids {
		amounts[i] = int64(balances[id])
	}

	res, err := r.q.ExecContext(ctx, `
		UPDATE players AS p
		SET balance_cents = v.balance
		FROM unnest($1::bigint[], $2::bigint[]) AS v(id, balance)
		WHERE p.id = v.id
	`, pq.Array(ids), pq.Array(amounts))
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if int(n) != len(ids) {
		return fmt.Errorf("balances written for %d of %d players", n, len(ids))
	}
	return nil
}
