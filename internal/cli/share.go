package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"midlo/internal/share"
)

// newShareCmd creates the share command and its link builders. They only
// format URLs, so no backend is contacted.
func newShareCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Build share links for a search or a place",
	}

	midpointCmd := &cobra.Command{
		Use:   "midpoint <address-a> <address-b>",
		Short: "Print the share link for a midpoint search",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCLI(flags, func(c *CLI) error {
				places, _ := cmd.Flags().GetString("places")
				batch, _ := cmd.Flags().GetInt("batch")
				if batch < 0 {
					batch = share.NoBatch
				}
				link := share.MidpointURL(c.Config.WebBaseURL, args[0], args[1], share.ParsePlaceBatches(places), batch)
				fmt.Fprintln(cmd.OutOrStdout(), link)
				return nil
			})
		},
	}
	midpointCmd.Flags().StringP("places", "p", "", `Place id batches, ids separated by "," and batches by "|"`)
	midpointCmd.Flags().Int("batch", share.NoBatch, "Batch the page opens on (omitted when negative)")

	placeCmd := &cobra.Command{
		Use:   "place <place-id>",
		Short: "Print the share link for a place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCLI(flags, func(c *CLI) error {
				id := strings.TrimSpace(args[0])
				if id == "" {
					return fmt.Errorf("place id is required")
				}
				fmt.Fprintln(cmd.OutOrStdout(), share.PlaceURL(c.Config.WebBaseURL, id))
				return nil
			})
		},
	}

	cmd.AddCommand(midpointCmd)
	cmd.AddCommand(placeCmd)
	return cmd
}
