package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/statusrelay/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the upstream status page summary",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	app := newApp(cfg)
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.StatusPage.Timeout)
	defer cancel()

	summary, err := app.StatusPage().FetchSummary(ctx)
	if err != nil {
		slog.Error("Failed to fetch status page", "error", err)
		os.Exit(1)
	}

	sent := app.Store().HasBeenSentAll(ctx, domain.IncidentIDs(summary.Incidents))
	renderStatus(os.Stdout, summary, sent)
}

// renderStatus prints the summary as tables, marking incidents already relayed.
func renderStatus(out io.Writer, summary *domain.StatusSummary, sent map[string]domain.SentStatus) {
	_, _ = fmt.Fprintf(out, "Overall: %s (%s)\n\n", summary.Status.Description, summary.Status.Indicator)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "COMPONENT\tSTATUS\tUPDATED")
	for _, c := range summary.Components {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Status, c.UpdatedAt)
	}
	_ = w.Flush()

	if len(summary.Incidents) == 0 {
		_, _ = fmt.Fprintln(out, "\nNo unresolved incidents")
		return
	}

	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "INCIDENT\tNAME\tSTATUS\tIMPACT\tSENT")
	for _, inc := range summary.Incidents {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n", inc.ID, inc.Name, inc.Status, inc.Impact, sent[inc.ID].Sent)
	}
	_ = w.Flush()
}
