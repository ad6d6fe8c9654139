package cli

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/Spok95/practice-fund/internal/app"
	"github.com/Spok95/practice-fund/internal/auth"
	"github.com/Spok95/practice-fund/internal/ctxutil"
)

// ErrDrift — сохранённые балансы не совпадают с историей (recompute --check).
var ErrDrift = errors.New("stored balances drifted from history")

type RecomputeOptions struct {
	*RootOptions
	Check bool
	Actor string
}

func NewRecomputeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecomputeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Пересчитать все балансы из истории посещаемости",
		Long: `Пересчитывает балансы всех игроков с нуля по полной истории тренировок и платежей
и перезаписывает сохранённые значения. С --check только сверяет и ничего не пишет.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecompute(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Check, "check", false, "только сверить, без записи")
	cmd.Flags().StringVar(&opts.Actor, "actor", "cli", "имя оператора для журнала")
	return cmd
}

func runRecompute(ctx context.Context, out io.Writer, opts *RecomputeOptions) error {
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

	if opts.Check {
		drift, err := a.Service.Check(ctx)
		if err != nil {
			return err
		}
		if err := writeDrift(out, opts.Format, drift); err != nil {
			return err
		}
		if len(drift) > 0 {
			return ErrDrift
		}
		return nil
	}

	ctx = ctxutil.WithActor(ctx, opts.Actor)
	c := auth.Local(opts.Actor)
	if _, err := a.Service.Recompute(ctx, &c); err != nil {
		return err
	}
	players, err := a.Service.Balances(ctx)
	if err != nil {
		return err
	}
	return writeBalances(out, opts.Format, players)
}
