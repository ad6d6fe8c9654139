// Package app собирает зависимости процесса: БД, оркестратор, уведомления, HTTP.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Spok95/practice-fund/internal/api"
	"github.com/Spok95/practice-fund/internal/auth"
	"github.com/Spok95/practice-fund/internal/config"
	"github.com/Spok95/practice-fund/internal/db"
	"github.com/Spok95/practice-fund/internal/ledger"
	"github.com/Spok95/practice-fund/internal/logging"
	"github.com/Spok95/practice-fund/internal/notify"
	"github.com/Spok95/practice-fund/internal/recompute"
	"github.com/Spok95/practice-fund/internal/rules"
)

type App struct {
	Cfg     *config.Config
	Log     *zap.Logger
	DB      *sql.DB
	Service *recompute.Service
	Issuer  *auth.Issuer
}

// txStore приводит транзакции db.Store к интерфейсу оркестратора.
type txStore struct {
	*db.Store
}

func (s txStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx recompute.Repo) error) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, tx *db.Repo) error {
		return fn(ctx, tx)
	})
}

func (s txStore) WithinReadTx(ctx context.Context, fn func(ctx context.Context, tx recompute.Repo) error) error {
	return s.Store.WithinReadTx(ctx, func(ctx context.Context, tx *db.Repo) error {
		return fn(ctx, tx)
	})
}

func NewTxStore(s *db.Store) recompute.Store {
	return txStore{Store: s}
}

// New подключается к БД (без миграций) и собирает сервис.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	var opts []recompute.Option
	if cfg.BotToken != "" {
		n, err := notify.NewTelegram(cfg.BotToken, cfg.NotifyChatIDs, log.Named("notify"))
		if err != nil {
			log.Warn("telegram notifications disabled", zap.Error(err))
		} else {
			opts = append(opts, recompute.WithNotifier(n))
		}
	}

	svc := recompute.New(
		NewTxStore(db.NewStore(database)),
		ledger.New(rules.New(cfg.Rates)),
		log.Named("recompute"),
		opts...,
	)
	if cfg.AdminPasswordHash == "" {
		log.Warn("ADMIN_PASSWORD_HASH is empty: API is read-only")
	}
	return &App{
		Cfg:     cfg,
		Log:     log,
		DB:      database,
		Service: svc,
		Issuer:  auth.NewIssuer(cfg.AdminPasswordHash, cfg.TokenSecret, cfg.TokenTTL),
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

// Serve держит HTTP API до отмены ctx.
func (a *App) Serve(ctx context.Context) error {
	mode := gin.DebugMode
	if logging.IsProd(a.Cfg.Env) {
		mode = gin.ReleaseMode
	}
	srv := api.NewServer(a.Service, a.Issuer, api.Options{
		Log:  a.Log.Named("http"),
		Ping: func(ctx context.Context) error { return db.Ping(ctx, a.DB) },
		Mode: mode,
	})
	return StartHTTP(ctx, a.Cfg.HTTPAddr, srv.Router, a.Log).Wait()
}
