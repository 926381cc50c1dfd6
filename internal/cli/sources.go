package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/vietddude/clipwatch/internal/control"
	"github.com/vietddude/clipwatch/internal/core/domain"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage monitored sources",
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add [source_id]",
	Short: "Add a source to the monitoring list (or re-enable an existing one)",
	Args:  cobra.ExactArgs(1),
	Run:   runSourcesAdd,
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove [source_id]",
	Short: "Disable a source without deleting its history",
	Args:  cobra.ExactArgs(1),
	Run:   runSourcesRemove,
}

var sourcesEnableCmd = &cobra.Command{
	Use:   "enable [source_id]",
	Short: "Re-enable a disabled source",
	Args:  cobra.ExactArgs(1),
	Run:   runSourcesEnable,
}

var sourcesDeleteCmd = &cobra.Command{
	Use:   "delete [source_id]",
	Short: "Delete a source and all of its recorded items",
	Args:  cobra.ExactArgs(1),
	Run:   runSourcesDelete,
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sources",
	Run:   runSourcesList,
}

func init() {
	sourcesCmd.AddCommand(sourcesAddCmd)
	sourcesCmd.AddCommand(sourcesRemoveCmd)
	sourcesCmd.AddCommand(sourcesEnableCmd)
	sourcesCmd.AddCommand(sourcesDeleteCmd)
	sourcesCmd.AddCommand(sourcesListCmd)
	rootCmd.AddCommand(sourcesCmd)
}

// withApp handles the boilerplate shared by every source subcommand.
func withApp(fn func(ctx context.Context, app *control.App)) {
	cfg := loadConfig()
	initLogging(cfg)

	ctx := context.Background()
	app := openApp(ctx, cfg)
	defer func() {
		_ = app.Close()
	}()

	fn(ctx, app)
}

func runSourcesAdd(cmd *cobra.Command, args []string) {
	withApp(func(ctx context.Context, app *control.App) {
		id := args[0]
		if existing, err := app.Sources.Get(ctx, id); err == nil {
			if existing.Enabled {
				fmt.Printf("Source %s is already being monitored\n", id)
				return
			}
			if err := app.Sources.SetEnabled(ctx, id, true); err != nil {
				slog.Error("Failed to re-enable source", "source", id, "error", err)
				os.Exit(1)
			}
			fmt.Printf("Source %s re-enabled\n", id)
			return
		}

		src := &domain.Source{
			ID:        id,
			Enabled:   true,
			CreatedAt: time.Now(),
		}
		if err := app.Sources.Upsert(ctx, src); err != nil {
			slog.Error("Failed to add source", "source", id, "error", err)
			os.Exit(1)
		}
		fmt.Printf("Source %s added\n", id)
	})
}

func runSourcesRemove(cmd *cobra.Command, args []string) {
	withApp(func(ctx context.Context, app *control.App) {
		if err := app.Sources.SetEnabled(ctx, args[0], false); err != nil {
			slog.Error("Failed to disable source", "source", args[0], "error", err)
			os.Exit(1)
		}
		fmt.Printf("Source %s disabled (history kept)\n", args[0])
	})
}

func runSourcesEnable(cmd *cobra.Command, args []string) {
	withApp(func(ctx context.Context, app *control.App) {
		if err := app.Sources.SetEnabled(ctx, args[0], true); err != nil {
			slog.Error("Failed to enable source", "source", args[0], "error", err)
			os.Exit(1)
		}
		fmt.Printf("Source %s enabled\n", args[0])
	})
}

func runSourcesDelete(cmd *cobra.Command, args []string) {
	withApp(func(ctx context.Context, app *control.App) {
		if err := app.Sources.Delete(ctx, args[0]); err != nil {
			slog.Error("Failed to delete source", "source", args[0], "error", err)
			os.Exit(1)
		}
		fmt.Printf("Source %s deleted along with its items\n", args[0])
	})
}

func runSourcesList(cmd *cobra.Command, args []string) {
	withApp(func(ctx context.Context, app *control.App) {
		sources, err := app.Sources.List(ctx, false)
		if err != nil {
			slog.Error("Failed to list sources", "error", err)
			os.Exit(1)
		}
		if len(sources) == 0 {
			fmt.Println("No sources configured")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
		_, _ = fmt.Fprintln(w, "SOURCE\tENABLED\tLAST CHECK\tWATERMARK\tRETRIEVED")
		for _, src := range sources {
			lastCheck := "never"
			if !src.LastCheckedAt.IsZero() {
				lastCheck = src.LastCheckedAt.Format(time.RFC3339)
			}
			_, _ = fmt.Fprintf(w, "%s\t%t\t%s\t%d\t%d\n",
				src.ID, src.Enabled, lastCheck, src.LastSeenWatermark, src.TotalRetrieved)
		}
		_ = w.Flush()
	})
}
