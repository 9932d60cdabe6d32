package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var messagesLimit int

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "List recently relayed messages",
	Run:   runMessages,
}

func init() {
	messagesCmd.Flags().IntVarP(&messagesLimit, "limit", "n", 20, "number of messages to show (0 = all)")
	rootCmd.AddCommand(messagesCmd)
}

func runMessages(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	app := newApp(cfg)
	defer app.Close()

	msgs := app.Store().GetRecentMessages(context.Background())
	if messagesLimit > 0 && len(msgs) > messagesLimit {
		msgs = msgs[:messagesLimit]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "TIME\tPLATFORM\tSOURCE\tTRIGGER\tCONTENT")
	for _, m := range msgs {
		trigger := "-"
		if m.Trigger != nil {
			trigger = m.Trigger.Type
			if m.Trigger.IncidentID != "" {
				trigger += ":" + m.Trigger.IncidentID
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.Timestamp, m.Platform, m.Source, trigger, preview(m.Content, 60))
	}
	_ = w.Flush()
}

// preview returns the first line of s, cut to limit runes.
func preview(s string, limit int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	r := []rune(s)
	if len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return s
}
