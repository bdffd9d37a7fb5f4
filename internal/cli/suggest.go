package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"midlo/internal/api"
)

const tabSpacing = 2

// newSuggestCmd creates the suggest command
func newSuggestCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <text>",
		Short: "Show address suggestions for partial input",
		Long: `Ask the backend for address completions of a partial address.
Input shorter than three characters returns nothing.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCLI(flags, func(c *CLI) error {
				return runSuggest(cmd, c, strings.Join(args, " "))
			})
		},
	}
	cmd.Flags().Bool("json", false, "Print suggestions as JSON")
	return cmd
}

func runSuggest(cmd *cobra.Command, c *CLI, text string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	lookup := api.SuggestionLookup{Client: c.Client}
	suggestions, err := lookup.Lookup(backgroundContext(cmd), text)
	if err != nil {
		return fmt.Errorf("failed to load suggestions: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(suggestions)
	}

	if len(suggestions) == 0 {
		fmt.Fprintln(out, "No suggestions found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, tabSpacing, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "#\tADDRESS\tPLACE ID")
	for i, s := range suggestions {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, s.Label, s.ID)
	}
	return nil
}
