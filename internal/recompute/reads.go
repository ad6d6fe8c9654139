package recompute

import (
	"cmp"
	"context"
	"slices"

	"github.com/Spok95/practice-fund/internal/ledger"
	"github.com/Spok95/practice-fund/internal/models"
	"github.com/Spok95/practice-fund/internal/rules"
)

// Players — состав с сохранёнными балансами, по имени.
func (s *Service) Players(ctx context.Context) ([]models.Player, error) {
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, classify(err)
	}
	slices.SortFunc(players, func(a, b models.Player) int { return cmp.Compare(a.Name, b.Name) })
	return players, nil
}

// Balances — сохранённые балансы от большего к меньшему.
func (s *Service) Balances(ctx context.Context) ([]models.Player, error) {
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, classify(err)
	}
	slices.SortStableFunc(players, func(a, b models.Player) int {
		if c := cmp.Compare(b.Balance, a.Balance); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return players, nil
}

// Payments — платежи от новых к старым.
func (s *Service) Payments(ctx context.Context) ([]models.Payment, error) {
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, classify(err)
	}
	slices.SortFunc(payments, func(a, b models.Payment) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return payments, nil
}

func sortSessionsDesc(v []SessionView) {
	slices.SortFunc(v, func(a, b SessionView) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

// fold — свёртка согласованного снимка истории без записи.
func (s *Service) fold(ctx context.Context) (ledger.History, ledger.Result, error) {
	var h ledger.History
	err := s.store.WithinReadTx(ctx, func(ctx context.Context, tx Repo) error {
		var err error
		h, err = loadHistory(ctx, tx)
		return err
	})
	if err != nil {
		return h, ledger.Result{}, classify(err)
	}
	res, err := s.agg.RecomputeAll(h)
	if err != nil {
		return h, ledger.Result{}, classify(err)
	}
	return h, res, nil
}

// Ledger — журнал всех проводок, из которых складываются балансы.
func (s *Service) Ledger(ctx context.Context) ([]rules.Adjustment, error) {
	_, res, err := s.fold(ctx)
	if err != nil {
		return nil, err
	}
	return res.Entries, nil
}

// Check сверяет сохранённые балансы со свёрткой истории, ничего не меняя.
func (s *Service) Check(ctx context.Context) ([]ledger.Drift, error) {
	h, res, err := s.fold(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Diff(h.Players, res.Balances), nil
}
