package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var resetBlocksCmd = &cobra.Command{
	Use:   "reset-blocks",
	Short: "Clear the recorded block history of the monitored network",
	Long:  `Clears stored block heights so the next check starts fresh, e.g. after a chain restart or network upgrade.`,
	Args:  cobra.NoArgs,
	Run:   runResetBlocks,
}

func init() {
	rootCmd.AddCommand(resetBlocksCmd)
}

func runResetBlocks(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	app := newApp(cfg)
	defer app.Close()

	if err := app.BlockHistory().Prune(context.Background(), 0); err != nil {
		slog.Error("Failed to reset block history", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully cleared block history for %s\n", cfg.Monitor.Network)
}
