// Package ledger сворачивает всю историю посещаемости и платежей в балансы.
//
// Балансы никогда не правятся точечно: любой результат RecomputeAll
// воспроизводится повторным запуском на тех же данных.
package ledger

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/Spok95/practice-fund/internal/models"
	"github.com/Spok95/practice-fund/internal/rules"
)

var ErrValidation = errors.New("invalid history")

// History — полный снимок данных, из которого выводятся балансы.
type History struct {
	Players  []models.Player
	Sessions []models.Session
	Records  []models.AttendanceRecord
	Payments []models.Payment
}

type Result struct {
	Balances map[int64]models.Money
	// Entries — все проводки в порядке применения: тренировки по датам, затем платежи.
	Entries []rules.Adjustment
}

type Aggregator struct {
	ev *rules.Evaluator
}

func New(ev *rules.Evaluator) *Aggregator {
	return &Aggregator{ev: ev}
}

func (a *Aggregator) RecomputeAll(h History) (Result, error) {
	roster, err := models.NewRoster(h.Players)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	balances := make(map[int64]models.Money, roster.Len())
	for _, id := range roster.IDs() {
		balances[id] = 0
	}

	sessions, err := orderSessions(h.Sessions)
	if err != nil {
		return Result{}, err
	}

	bySession := make(map[int64][]models.AttendanceRecord, len(sessions))
	known := make(map[int64]struct{}, len(sessions))
	for _, s := range sessions {
		known[s.ID] = struct{}{}
	}
	for _, r := range h.Records {
		if _, ok := known[r.SessionID]; !ok {
			return Result{}, fmt.Errorf("%w: record %d references unknown session %d", ErrValidation, r.ID, r.SessionID)
		}
		bySession[r.SessionID] = append(bySession[r.SessionID], r)
	}

	var entries []rules.Adjustment
	for _, s := range sessions {
		day, err := rules.DayFromRecords(bySession[s.ID])
		if err != nil {
			return Result{}, fmt.Errorf("%w: session %s: %w", ErrValidation, s.DayKey(), err)
		}
		adj, err := a.ev.ExplainDay(roster, s, day)
		if err != nil {
			return Result{}, fmt.Errorf("%w: session %s: %w", ErrValidation, s.DayKey(), err)
		}
		for _, x := range adj {
			balances[x.PlayerID] += x.Amount
		}
		entries = append(entries, adj...)
	}

	payments := slices.Clone(h.Payments)
	slices.SortStableFunc(payments, func(x, y models.Payment) int {
		if c := x.Date.Compare(y.Date); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})
	for _, p := range payments {
		player, ok := roster.Get(p.PlayerID)
		if !ok {
			return Result{}, fmt.Errorf("%w: payment %d references unknown player %d", ErrValidation, p.ID, p.PlayerID)
		}
		balances[p.PlayerID] += p.Amount
		entries = append(entries, rules.Adjustment{
			Date:     p.Date,
			PlayerID: p.PlayerID,
			Amount:   p.Amount,
			Kind:     rules.KindPayment,
			Reason:   fmt.Sprintf("Payment by %s", player.Name),
		})
	}

	return Result{Balances: balances, Entries: entries}, nil
}

// orderSessions сортирует тренировки по дате; две тренировки в один день — ошибка.
func orderSessions(in []models.Session) ([]models.Session, error) {
	out := slices.Clone(in)
	slices.SortFunc(out, func(x, y models.Session) int {
		if c := x.Date.Compare(y.Date); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})
	ids := make(map[int64]struct{}, len(out))
	for i, s := range out {
		if s.Date.IsZero() {
			return nil, fmt.Errorf("%w: session %d has no date", ErrValidation, s.ID)
		}
		if _, ok := ids[s.ID]; ok {
			return nil, fmt.Errorf("%w: session id %d listed twice", ErrValidation, s.ID)
		}
		ids[s.ID] = struct{}{}
		if i > 0 && out[i-1].DayKey() == s.DayKey() {
			return nil, fmt.Errorf("%w: two sessions on %s", ErrValidation, s.DayKey())
		}
	}
	return out, nil
}
