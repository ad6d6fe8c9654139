package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Spok95/practice-fund/internal/app"
	"github.com/Spok95/practice-fund/internal/export"
)

type ExportOptions struct {
	*RootOptions
	Out string
}

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Выгрузить балансы, проводки и платежи в Excel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "путь к .xlsx (по умолчанию имя с датой)")
	return cmd
}

func runExport(ctx context.Context, out io.Writer, opts *ExportOptions) error {
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

	players, err := a.Service.Balances(ctx)
	if err != nil {
		return err
	}
	entries, err := a.Service.Ledger(ctx)
	if err != nil {
		return err
	}
	payments, err := a.Service.Payments(ctx)
	if err != nil {
		return err
	}

	now := time.Now().In(rt.cfg.Location)
	wb, err := export.Build(export.Report{Players: players, Entries: entries, Payments: payments, Created: now})
	if err != nil {
		return err
	}
	defer func() { _ = wb.Close() }()

	path := opts.Out
	if path == "" {
		path = export.Filename(now)
	}
	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if opts.Format == "json" {
		return writeJSON(out, map[string]any{"file": path, "players": len(players), "entries": len(entries)})
	}
	_, err = fmt.Fprintf(out, "written %s (%d players, %d entries)\n", path, len(players), len(entries))
	return err
}
