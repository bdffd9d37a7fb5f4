package api

import (
	"context"

	"midlo/internal/suggest"
)

// SuggestionLookup adapts the client to the autocomplete fetcher
type SuggestionLookup struct {
	Client *Client
}

// Lookup implements suggest.Lookup
func (l SuggestionLookup) Lookup(ctx context.Context, query string) ([]suggest.Suggestion, error) {
	results, err := l.Client.Autocomplete(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]suggest.Suggestion, 0, len(results))
	for _, r := range results {
		out = append(out, suggest.Suggestion{ID: r.PlaceID, Label: r.Description})
	}
	return out, nil
}
