package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one block health check and relay any alert",
	Run:   runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	app := newApp(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.StatusPage.Timeout+cfg.Webhooks.Timeout)
	defer cancel()

	res, err := app.Monitor().Run(ctx)
	app.Close()
	if err != nil {
		slog.Error("Block monitoring failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Network:  %s\n", cfg.Monitor.Network)
	fmt.Printf("Block:    %d (%s)\n", res.LatestBlock.Height, res.LatestBlock.Timestamp)
	fmt.Printf("Checked:  %s\n", res.Timestamp.Format(time.RFC3339))
	if res.HealthCheck.IsHealthy {
		fmt.Println("Health:   healthy")
		return
	}
	fmt.Println("Health:   UNHEALTHY")
	for _, alert := range res.HealthCheck.Alerts {
		fmt.Printf("  - %s\n", alert.Info)
	}
	os.Exit(2)
}
