package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"midlo/internal/api"
)

// PlaceSummary is the subset of place data a preview needs
type PlaceSummary struct {
	Name             string
	FormattedAddress string
	Rating           *float64
	UserRatingCount  *int
	PhotoName        string
	WebsiteURI       string
	GoogleMapsURI    string
}

// PlaceSource looks up place summaries. A nil summary with a nil error means
// the place is unknown.
type PlaceSource interface {
	PlaceSummary(ctx context.Context, placeID string) (*PlaceSummary, error)
}

// APISource reads summaries from the backend, trying each known place route
type APISource struct {
	Client *api.Client
	Logger *zap.Logger
}

var placeRoutes = []string{"/places/", "/place/"}

// PlaceSummary implements PlaceSource
func (s APISource) PlaceSummary(ctx context.Context, placeID string) (*PlaceSummary, error) {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var lastErr error
	for _, route := range placeRoutes {
		var raw json.RawMessage
		err := s.Client.GetJSON(ctx, route+url.PathEscape(placeID), &raw)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			logger.Debug("place route failed", zap.String("route", route), zap.Error(err))
			lastErr = err
			continue
		}
		summary, err := decodeSummary(raw)
		if err != nil {
			lastErr = err
			continue
		}
		return summary, nil
	}

	var apiErr *api.Error
	if errors.As(lastErr, &apiErr) && apiErr.NotFound() {
		return nil, nil
	}
	return nil, lastErr
}

// decodeSummary accepts either a bare place or one wrapped in {"place": ...},
// plus the older field names some backends still send
func decodeSummary(raw json.RawMessage) (*PlaceSummary, error) {
	var envelope struct {
		Place json.RawMessage `json:"place"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Place) > 0 && string(envelope.Place) != "null" {
		raw = envelope.Place
	}

	var p struct {
		Name             *string  `json:"name"`
		FormattedAddress *string  `json:"formattedAddress"`
		Address          *string  `json:"address"`
		Rating           *float64 `json:"rating"`
		UserRatingCount  *int     `json:"userRatingCount"`
		PhotoName        *string  `json:"photoName"`
		Photos           []struct {
			Name string `json:"name"`
		} `json:"photos"`
		WebsiteURI    *string `json:"websiteUri"`
		GoogleMapsURI *string `json:"googleMapsUri"`
		GoogleMapsURL *string `json:"googleMapsUrl"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode place: %w", err)
	}

	out := &PlaceSummary{
		Name:             deref(p.Name),
		FormattedAddress: firstNonEmpty(deref(p.FormattedAddress), deref(p.Address)),
		Rating:           p.Rating,
		UserRatingCount:  p.UserRatingCount,
		WebsiteURI:       deref(p.WebsiteURI),
		GoogleMapsURI:    firstNonEmpty(deref(p.GoogleMapsURI), deref(p.GoogleMapsURL)),
	}
	if len(p.Photos) > 0 {
		out.PhotoName = p.Photos[0].Name
	}
	out.PhotoName = firstNonEmpty(out.PhotoName, deref(p.PhotoName))
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// CachedSource keeps found summaries for a while; place data changes rarely
type CachedSource struct {
	next  PlaceSource
	cache *expirable.LRU[string, *PlaceSummary]
}

// NewCachedSource wraps next with an expiring LRU cache
func NewCachedSource(next PlaceSource, size int, ttl time.Duration) *CachedSource {
	if size <= 0 {
		size = 512
	}
	return &CachedSource{
		next:  next,
		cache: expirable.NewLRU[string, *PlaceSummary](size, nil, ttl),
	}
}

// PlaceSummary implements PlaceSource
func (c *CachedSource) PlaceSummary(ctx context.Context, placeID string) (*PlaceSummary, error) {
	if summary, ok := c.cache.Get(placeID); ok {
		metricCacheHits.Inc()
		return summary, nil
	}
	summary, err := c.next.PlaceSummary(ctx, placeID)
	if err != nil || summary == nil {
		return summary, err
	}
	c.cache.Add(placeID, summary)
	return summary, nil
}
