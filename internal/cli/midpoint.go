package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"midlo/internal/domain"
	"midlo/internal/maps"
	"midlo/internal/share"
	"midlo/internal/ui"
)

// shareBatchSize is how many place ids go into the first batch of a share link
const shareBatchSize = 10

// newMidpointCmd creates the midpoint command
func newMidpointCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "midpoint <address-a> <address-b>",
		Short: "Find the midpoint of two addresses and the places around it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCLI(flags, func(c *CLI) error {
				return runMidpoint(cmd, c, args[0], args[1])
			})
		},
	}
	cmd.Flags().IntP("limit", "n", 0, "Number of places to show (0 shows all)")
	cmd.Flags().Bool("links", false, "Print map links for the midpoint")
	cmd.Flags().Bool("share", false, "Print a share link for the search")
	return cmd
}

func runMidpoint(cmd *cobra.Command, c *CLI, addressA, addressB string) error {
	ctx := backgroundContext(cmd)
	limit, _ := cmd.Flags().GetInt("limit")
	showLinks, _ := cmd.Flags().GetBool("links")
	showShare, _ := cmd.Flags().GetBool("share")

	m, err := c.Client.Midpoint(ctx, addressA, addressB)
	if err != nil {
		return fmt.Errorf("failed to find midpoint: %w", err)
	}
	raw, err := c.Client.Places(ctx, m.Lat, m.Lng)
	if err != nil {
		return fmt.Errorf("failed to load places: %w", err)
	}

	midpoint := domain.Coordinate{Lat: m.Lat, Lng: m.Lng}
	places := make([]domain.Place, 0, len(raw))
	for _, p := range raw {
		places = append(places, domain.Place{
			ID:       p.PlaceID,
			Name:     p.Name,
			Distance: p.Distance,
			Location: domain.Coordinate{Lat: p.Lat, Lng: p.Lng},
		})
	}

	if store, err := c.History(); err != nil {
		c.Logger.Warn("history unavailable", zap.Error(err))
	} else if store != nil {
		search := domain.Search{
			AddressA:   addressA,
			AddressB:   addressB,
			Midpoint:   midpoint,
			PlaceCount: len(places),
			At:         time.Now(),
		}
		if err := store.Record(ctx, search); err != nil {
			c.Logger.Warn("failed to record search", zap.Error(err))
		}
	}

	shown := places
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, ui.PlacesText(addressA, addressB, &midpoint, shown))
	if len(places) == 0 {
		fmt.Fprintln(out, "No places found near the midpoint.")
	}

	if showLinks {
		links := maps.LinksFor(m.Lat, m.Lng)
		fmt.Fprintln(out)
		for _, p := range maps.Providers {
			fmt.Fprintf(out, "%-7s %s\n", p, links.For(p))
		}
	}

	if showShare {
		ids := make([]string, 0, shareBatchSize)
		for _, p := range places {
			if len(ids) == shareBatchSize {
				break
			}
			ids = append(ids, p.ID)
		}
		var batches [][]string
		if len(ids) > 0 {
			batches = [][]string{ids}
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, share.MidpointURL(c.Config.WebBaseURL, addressA, addressB, batches, 0))
	}

	return nil
}
