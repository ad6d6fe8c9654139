// Package recompute — единственная точка изменения данных команды.
//
// Каждая изменяющая операция выполняется в одной транзакции вместе с полным
// пересчётом балансов по всей истории и их перезаписью. Точечных поправок
// балансов нет: сохранённый баланс всегда равен свёртке истории.
package recompute

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/practice-fund/internal/auth"
	"github.com/Spok95/practice-fund/internal/ctxutil"
	"github.com/Spok95/practice-fund/internal/ledger"
	"github.com/Spok95/practice-fund/internal/metrics"
	"github.com/Spok95/practice-fund/internal/models"
	"github.com/Spok95/practice-fund/internal/observability"
)

type Service struct {
	store    Store
	agg      *ledger.Aggregator
	log      *zap.Logger
	notifier Notifier
	now      func() time.Time

	// один писатель на процесс; между процессами — advisory lock в хранилище
	mu sync.Mutex
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(store Store, agg *ledger.Aggregator, log *zap.Logger, opts ...Option) *Service {
	s := &Service{store: store, agg: agg, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// mutate — общий путь всех изменений: проверка права, изменение, пересчёт, перезапись.
func (s *Service) mutate(ctx context.Context, c *auth.Capability, op string, fn func(ctx context.Context, tx Repo) error) (ledger.Result, error) {
	if err := auth.Require(c, auth.ScopeWrite); err != nil {
		s.log.Warn("mutation rejected", zap.String("op", op), zap.Error(err))
		return ledger.Result{}, err
	}
	ctx = ctxutil.WithActor(ctxutil.WithOp(ctx, op), c.Subject)
	ctx, cancel := ctxutil.WithTimeout(ctx, ctxutil.RecomputeTimeout)
	defer cancel()

	res, players, err := s.commit(ctx, op, fn)
	if err != nil {
		return ledger.Result{}, err
	}

	// уведомление после коммита и вне замка писателя; его сбой не отменяет изменение
	if s.notifier != nil {
		if nerr := s.notifier.BalancesChanged(ctx, op, withBalances(players, res.Balances)); nerr != nil {
			s.logger(ctx).Warn("notify failed", zap.Error(nerr))
		}
	}
	return res, nil
}

// commit выполняет изменение и пересчёт под замком писателя.
func (s *Service) commit(ctx context.Context, op string, fn func(ctx context.Context, tx Repo) error) (ledger.Result, []models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	var (
		res     ledger.Result
		players []models.Player
		folded  int
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Repo) error {
		if fn != nil {
			if err := fn(ctx, tx); err != nil {
				return err
			}
		}
		var err error
		res, players, folded, err = s.rebuild(ctx, tx)
		return err
	})
	err = classify(err)
	metrics.ObserveRecompute(op, s.now().Sub(start), folded, err)

	log := s.logger(ctx)
	if err != nil {
		if errors.Is(err, ErrPersistence) {
			observability.CaptureErrCtx(ctx, err)
			log.Error("mutation failed, balances unchanged", zap.Error(err))
		} else {
			log.Info("mutation rejected", zap.Error(err))
		}
		return ledger.Result{}, nil, err
	}
	log.Info("balances recomputed",
		zap.Int("players", len(res.Balances)),
		zap.Int("sessions", folded),
		zap.Duration("took", s.now().Sub(start)))
	return res, players, nil
}

// rebuild читает всю историю внутри транзакции, сворачивает её и перезаписывает балансы.
func (s *Service) rebuild(ctx context.Context, tx Repo) (ledger.Result, []models.Player, int, error) {
	h, err := loadHistory(ctx, tx)
	if err != nil {
		return ledger.Result{}, nil, 0, err
	}
	res, err := s.agg.RecomputeAll(h)
	if err != nil {
		return ledger.Result{}, nil, 0, err
	}
	if len(h.Players) > 0 && !hasTreasurer(h.Players) {
		s.logger(ctx).Warn("roster has no treasurer: salary and fine counterparts are skipped")
	}
	if err := tx.WriteBalances(ctx, res.Balances); err != nil {
		return ledger.Result{}, nil, 0, err
	}
	return res, h.Players, len(h.Sessions), nil
}

func loadHistory(ctx context.Context, r Repo) (ledger.History, error) {
	var (
		h   ledger.History
		err error
	)
	if h.Players, err = r.ListPlayers(ctx); err != nil {
		return h, err
	}
	if h.Sessions, err = r.ListSessions(ctx); err != nil {
		return h, err
	}
	if h.Records, err = r.ListAttendance(ctx); err != nil {
		return h, err
	}
	if h.Payments, err = r.ListPayments(ctx); err != nil {
		return h, err
	}
	return h, nil
}

func (s *Service) logger(ctx context.Context) *zap.Logger {
	log := s.log
	if op, ok := ctxutil.Op(ctx); ok {
		log = log.With(zap.String("op", op))
	}
	if actor, ok := ctxutil.Actor(ctx); ok {
		log = log.With(zap.String("actor", actor))
	}
	if id, ok := ctxutil.RequestID(ctx); ok {
		log = log.With(zap.String("request_id", id))
	}
	return log
}

func hasTreasurer(players []models.Player) bool {
	for _, p := range players {
		if p.IsTreasurer() {
			return true
		}
	}
	return false
}

func withBalances(players []models.Player, balances map[int64]models.Money) []models.Player {
	out := make([]models.Player, len(players))
	for i, p := range players {
		p.Balance = balances[p.ID]
		out[i] = p
	}
	return out
}

// Recompute — ручной полный пересчёт («сброс по посещаемости»).
func (s *Service) Recompute(ctx context.Context, c *auth.Capability) (ledger.Result, error) {
	return s.mutate(ctx, c, "recompute", nil)
}
