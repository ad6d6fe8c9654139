// Package cli — команды teamfund: сервер, миграции, пересчёт, выгрузка.
package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Spok95/practice-fund/internal/config"
	"github.com/Spok95/practice-fund/internal/logging"
	"github.com/Spok95/practice-fund/internal/observability"
)

// Version подставляется при сборке через -ldflags.
var Version = "dev"

type RootOptions struct {
	EnvFile string
	Format  string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "teamfund",
		Short: "Штрафы и награды команды по посещаемости тренировок",
		Long: `teamfund ведёт посещаемость тренировок и выводит баланс каждого игрока
из полной истории: штрафы за опоздания и пропуски, награды лидерам, зарплата казначея.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "text" && opts.Format != "json" {
				return fmt.Errorf("invalid format %q: must be text or json", opts.Format)
			}
			if opts.EnvFile == "" {
				return nil
			}
			// .env необязателен: в контейнере переменные приходят из окружения
			if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load %s: %w", opts.EnvFile, err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "файл с переменными окружения")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "формат вывода: text|json")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewRecomputeCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewHashPasswordCommand(opts))

	return cmd
}

// deps — то, что нужно каждой команде, работающей с БД.
type deps struct {
	cfg     *config.Config
	log     *zap.Logger
	cleanup func()
}

func bootstrap() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, Version)
	if err != nil {
		lg.Base.Warn("sentry disabled", zap.Error(err))
		flush = func() {}
	}
	return &deps{
		cfg: cfg,
		log: lg.Base,
		cleanup: func() {
			flush()
			lg.Closer()
		},
	}, nil
}
