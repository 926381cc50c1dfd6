package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vietddude/clipwatch/internal/control"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show retrieval statistics",
	Run:   runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) {
	withApp(func(ctx context.Context, app *control.App) {
		sources, err := app.Sources.List(ctx, false)
		if err != nil {
			slog.Error("Failed to list sources", "error", err)
			os.Exit(1)
		}
		enabled := 0
		for _, src := range sources {
			if src.Enabled {
				enabled++
			}
		}

		total, err := app.Items.Count(ctx)
		if err != nil {
			slog.Error("Failed to count items", "error", err)
			os.Exit(1)
		}
		perSource, err := app.Items.CountBySource(ctx)
		if err != nil {
			slog.Error("Failed to count items by source", "error", err)
			os.Exit(1)
		}
		pending, err := app.Failed.Count(ctx)
		if err != nil {
			slog.Error("Failed to count failed items", "error", err)
			os.Exit(1)
		}

		fmt.Printf("Sources: %d (%d enabled)\n", len(sources), enabled)
		fmt.Printf("Items retrieved: %d\n", total)
		fmt.Printf("Pending failures: %d\n", pending)

		if len(perSource) == 0 {
			return
		}
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
		_, _ = fmt.Fprintln(w, "SOURCE\tITEMS")
		for source, count := range perSource {
			_, _ = fmt.Fprintf(w, "%s\t%d\n", source, count)
		}
		_ = w.Flush()
	})
}
