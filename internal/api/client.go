// Package api is the HTTP client for the Midlo backend: address autocomplete,
// midpoint computation, place search and place details.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is used when no valid base URL is configured
	DefaultBaseURL = "http://localhost:8080"

	// MinAutocompleteLength is the shortest input worth sending to the backend
	MinAutocompleteLength = 3

	// MaxAutocompleteResults caps the suggestions returned to callers
	MaxAutocompleteResults = 8

	// DefaultPhotoWidth is the photo proxy width used when none is given
	DefaultPhotoWidth = 1200

	maxErrorBody = 4 << 10
)

// Config holds client settings
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
	UserAgent string

	// HTTPClient overrides the transport; Timeout is ignored when set
	HTTPClient *http.Client
}

// Client talks to the backend over HTTP
type Client struct {
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	log       *zap.Logger
}

// NewClient creates a new backend client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "midlo"
	}

	return &Client{
		baseURL:   ResolveBaseURL(cfg.BaseURL),
		http:      httpClient,
		limiter:   limiter,
		userAgent: userAgent,
		log:       logger.Named("api"),
	}
}

// BaseURL returns the normalized backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NormalizeBaseURL validates an http(s) base URL and strips trailing slashes
func NormalizeBaseURL(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if strings.TrimSpace(u.Hostname()) == "" {
		return "", false
	}
	return strings.TrimRight(u.String(), "/"), true
}

// ResolveBaseURL returns the normalized raw URL or DefaultBaseURL
func ResolveBaseURL(raw string) string {
	if normalized, ok := NormalizeBaseURL(raw); ok {
		return normalized
	}
	return DefaultBaseURL
}

// Autocomplete returns up to MaxAutocompleteResults suggestions for a partial address.
// Inputs shorter than MinAutocompleteLength return nothing without a request.
func (c *Client) Autocomplete(ctx context.Context, input string) ([]AutocompleteSuggestion, error) {
	trimmed := strings.TrimSpace(input)
	if len([]rune(trimmed)) < MinAutocompleteLength {
		return nil, nil
	}

	var raw []AutocompleteSuggestion
	path := "/autocomplete?input=" + url.QueryEscape(trimmed)
	if err := c.GetJSON(ctx, path, &raw); err != nil {
		return nil, err
	}

	out := make([]AutocompleteSuggestion, 0, min(len(raw), MaxAutocompleteResults))
	for _, s := range raw {
		if strings.TrimSpace(s.Description) == "" {
			continue
		}
		out = append(out, s)
		if len(out) == MaxAutocompleteResults {
			break
		}
	}
	return out, nil
}

// Midpoint asks the backend for the fair midpoint between two addresses
func (c *Client) Midpoint(ctx context.Context, addressA, addressB string) (Midpoint, error) {
	var m Midpoint
	err := c.PostJSON(ctx, "/midpoint", midpointRequest{AddressA: addressA, AddressB: addressB}, &m)
	return m, err
}

// Places lists venues around a coordinate
func (c *Client) Places(ctx context.Context, lat, lng float64) ([]Place, error) {
	var places []Place
	if err := c.PostJSON(ctx, "/places", placesRequest{Lat: lat, Lng: lng}, &places); err != nil {
		return nil, err
	}
	return places, nil
}

// PlaceDetails fetches the full record for placeID
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (PlaceDetails, error) {
	var d PlaceDetails
	err := c.GetJSON(ctx, "/places/"+url.PathEscape(placeID), &d)
	return d, err
}

// PlacePhotoURL builds the photo proxy URL for a photo name
func (c *Client) PlacePhotoURL(photoName string, maxWidthPx int) string {
	return PlacePhotoURL(c.baseURL, photoName, maxWidthPx)
}

// PlacePhotoURL builds the photo proxy URL against an arbitrary backend base URL
func PlacePhotoURL(baseURL, photoName string, maxWidthPx int) string {
	if maxWidthPx <= 0 {
		maxWidthPx = DefaultPhotoWidth
	}
	q := url.Values{}
	q.Set("name", photoName)
	q.Set("maxWidthPx", strconv.Itoa(maxWidthPx))
	return ResolveBaseURL(baseURL) + "/place-photo?" + q.Encode()
}

// GetJSON issues a GET for path and decodes the JSON body into out
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// PostJSON posts body as JSON to path and decodes the JSON answer into out
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
