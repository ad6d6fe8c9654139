package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Spok95/practice-fund/internal/app"
	"github.com/Spok95/practice-fund/internal/db"
)

type ServeOptions struct {
	*RootOptions
	Migrate bool
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Migrate, "migrate", true, "применить миграции перед стартом")
	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.cleanup()

	a, err := app.New(ctx, rt.cfg, rt.log)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if opts.Migrate {
		if err := db.Migrate(ctx, a.DB, rt.log); err != nil {
			return err
		}
	}
	rt.log.Info("teamfund started", zap.String("addr", rt.cfg.HTTPAddr), zap.String("version", Version))
	return a.Serve(ctx)
}
