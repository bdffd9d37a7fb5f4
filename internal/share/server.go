package share

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"midlo/internal/api"
)

const (
	placeCacheControl    = "public, max-age=0, s-maxage=600, stale-while-revalidate=86400"
	midpointCacheControl = "no-store"

	maxTitle       = 70
	maxDescription = 160

	// topPicks is how many places from the first batch name a midpoint preview
	topPicks      = 3
	lookupTimeout = 3 * time.Second
)

// ServerConfig configures the preview server
type ServerConfig struct {
	// Source resolves place summaries; nil renders generic previews
	Source PlaceSource
	// APIBaseURL is used to build photo proxy URLs
	APIBaseURL string
}

// Server renders share previews over HTTP
type Server struct {
	source     PlaceSource
	apiBaseURL string
	log        *zap.Logger
	router     chi.Router
}

// NewServer creates the preview server and its routes
func NewServer(cfg ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		source:     cfg.Source,
		apiBaseURL: api.ResolveBaseURL(cfg.APIBaseURL),
		log:        logger.Named("share"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/share/place/{placeID}", s.handlePlace)
	r.Get("/share/midpoint", s.handleMidpoint)

	s.router = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("share server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("share server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("share server shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metricRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		metricLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())

		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeID")
	if unescaped, err := url.PathUnescape(placeID); err == nil {
		placeID = unescaped
	}
	placeID = strings.TrimSpace(placeID)
	origin := requestOrigin(r)
	if placeID == "" {
		http.Redirect(w, r, origin+"/", http.StatusFound)
		return
	}

	summary := s.lookup(r.Context(), placeID)

	title := "Restaurant • Midlo"
	description := "Open this place in Midlo."
	image := origin + "/og/place.png"
	if summary != nil {
		if name := strings.TrimSpace(summary.Name); name != "" {
			title = Clamp(name+" • Midlo", maxTitle)
		}
		if d := placeDescription(summary); d != "" {
			description = Clamp(d, maxDescription)
		}
		if summary.PhotoName != "" {
			image = api.PlacePhotoURL(s.apiBaseURL, summary.PhotoName, api.DefaultPhotoWidth)
		}
	}

	query := ""
	if r.URL.RawQuery != "" {
		query = "?" + r.URL.RawQuery
	}
	escaped := url.PathEscape(placeID)
	canonical := origin + "/p/" + escaped

	s.render(w, placeCacheControl, Preview{
		Title:        title,
		Description:  description,
		ImageURL:     image,
		CanonicalURL: canonical,
		ShareURL:     origin + "/share/place/" + escaped + query,
		RedirectTo:   canonical + query,
	})
}

func (s *Server) handleMidpoint(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a := strings.TrimSpace(q.Get("a"))
	b := strings.TrimSpace(q.Get("b"))
	origin := requestOrigin(r)

	description := "Find a friendly halfway point that feels fair to both sides."
	if a != "" && b != "" {
		description = fmt.Sprintf("A fair place to meet between %s and %s.", a, b)
	}
	if picks := s.topPickNames(r.Context(), q.Get("p")); len(picks) > 0 {
		description += " Top picks: " + strings.Join(picks, ", ") + "."
	}

	canonical := origin + "/"
	if qs := queryString([]param{{"a", a}, {"b", b}}); qs != "" {
		canonical += "?" + qs
	}
	query := ""
	if r.URL.RawQuery != "" {
		query = "?" + r.URL.RawQuery
	}

	s.render(w, midpointCacheControl, Preview{
		Title:        "Meet in the middle • Midlo",
		Description:  Clamp(description, maxDescription),
		ImageURL:     origin + "/og/midpoint.png",
		CanonicalURL: canonical,
		ShareURL:     origin + "/share/midpoint" + query,
		RedirectTo:   origin + "/" + query,
	})
}

func (s *Server) render(w http.ResponseWriter, cacheControl string, p Preview) {
	var buf bytes.Buffer
	if err := RenderPreview(&buf, p); err != nil {
		s.log.Error("failed to render preview", zap.Error(err))
		http.Error(w, "failed to render preview", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheControl)
	_, _ = w.Write(buf.Bytes())
}

// lookup returns nil when the place is unknown or the source fails
func (s *Server) lookup(ctx context.Context, placeID string) *PlaceSummary {
	if s.source == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	summary, err := s.source.PlaceSummary(ctx, placeID)
	if err != nil {
		metricSourceErrors.Inc()
		s.log.Warn("place lookup failed", zap.String("place_id", placeID), zap.Error(err))
		return nil
	}
	return summary
}

// topPickNames resolves the names of the first few places in the first batch,
// keeping batch order and skipping places that could not be resolved
func (s *Server) topPickNames(ctx context.Context, rawBatches string) []string {
	if s.source == nil {
		return nil
	}
	batches := ParsePlaceBatches(rawBatches)
	if len(batches) == 0 {
		return nil
	}
	ids := batches[0]
	if len(ids) > topPicks {
		ids = ids[:topPicks]
	}

	names := make([]string, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			if summary := s.lookup(gctx, id); summary != nil {
				names[i] = strings.TrimSpace(summary.Name)
			}
			return nil
		})
	}
	_ = g.Wait()

	out := names[:0]
	for _, name := range names {
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

func placeDescription(p *PlaceSummary) string {
	var parts []string
	if addr := strings.TrimSpace(p.FormattedAddress); addr != "" {
		parts = append(parts, addr)
	}
	if p.Rating != nil {
		rating := fmt.Sprintf("⭐ %.1f", *p.Rating)
		if p.UserRatingCount != nil {
			rating += fmt.Sprintf(" (%d)", *p.UserRatingCount)
		}
		parts = append(parts, rating)
	}
	return strings.Join(parts, " • ")
}

func requestOrigin(r *http.Request) string {
	proto := "http"
	if r.TLS != nil {
		proto = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		proto = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return proto + "://" + host
}
