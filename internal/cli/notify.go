package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vietddude/clipwatch/internal/control"
	"github.com/vietddude/clipwatch/internal/notify"
)

var notifyCmd = &cobra.Command{
	Use:       "notify [on|off]",
	Short:     "Turn desktop notifications on or off",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	Run:       runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) {
	enabled := args[0] == "on"
	if !enabled && args[0] != "off" {
		fmt.Printf("Unknown argument %q, expected on or off\n", args[0])
		os.Exit(1)
	}

	withApp(func(ctx context.Context, app *control.App) {
		if err := notify.SetEnabled(ctx, app.Settings, enabled); err != nil {
			slog.Error("Failed to update notification setting", "error", err)
			os.Exit(1)
		}

		if enabled {
			// Fire a test toast so the user knows it works end to end.
			if err := notify.NewDesktop().Notify("Clipwatch", "Notifications enabled"); err != nil {
				slog.Warn("Notification test failed", "error", err)
			}
			fmt.Println("Notifications enabled")
			return
		}
		fmt.Println("Notifications disabled")
	})
}
