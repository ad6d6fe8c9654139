package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Spok95/practice-fund/internal/ledger"
	"github.com/Spok95/practice-fund/internal/models"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeBalances(w io.Writer, format string, players []models.Player) error {
	if format == "json" {
		return writeJSON(w, players)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, p := range players {
		fmt.Fprintf(tw, "%s\t%s\t\n", p.Name, p.Balance)
	}
	return tw.Flush()
}

func writeDrift(w io.Writer, format string, drift []ledger.Drift) error {
	if format == "json" {
		return writeJSON(w, map[string]any{"consistent": len(drift) == 0, "drift": drift})
	}
	if len(drift) == 0 {
		_, err := fmt.Fprintln(w, "balances are consistent with history")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tSTORED\tCOMPUTED")
	for _, d := range drift {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Name, d.Stored, d.Computed)
	}
	return tw.Flush()
}
