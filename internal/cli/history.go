package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

const (
	defaultHistoryLimit = 20
	maxAddressDisplay   = 40
)

// newHistoryCmd creates the history command
func newHistoryCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear recent midpoint searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCLI(flags, func(c *CLI) error {
				return runHistory(cmd, c)
			})
		},
	}
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Number of searches to show")
	cmd.Flags().Bool("clear", false, "Delete every stored search")
	return cmd
}

func runHistory(cmd *cobra.Command, c *CLI) error {
	ctx := backgroundContext(cmd)
	limit, _ := cmd.Flags().GetInt("limit")
	clearAll, _ := cmd.Flags().GetBool("clear")
	out := cmd.OutOrStdout()

	store, err := c.History()
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Fprintln(out, "History is disabled in config.")
		return nil
	}

	if clearAll {
		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "History cleared.")
		return nil
	}

	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No searches yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, tabSpacing, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "WHEN\tFROM\tTO\tPLACES")
	fmt.Fprintln(w, "----\t----\t--\t------")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			formatWhen(e.At),
			truncateString(e.AddressA, maxAddressDisplay),
			truncateString(e.AddressB, maxAddressDisplay),
			e.PlaceCount)
	}
	return nil
}

// formatWhen shows the clock time for today's searches and the date otherwise
func formatWhen(t time.Time) string {
	if time.Since(t) < 24*time.Hour {
		return t.Format("15:04")
	}
	return t.Format("Jan 02")
}

// truncateString shortens s to at most n runes, marking the cut with "..."
func truncateString(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
