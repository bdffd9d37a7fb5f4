// Package planner runs midpoint searches for the UI. It listens for requests
// on the event bus, calls the backend and publishes the results.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"midlo/internal/api"
	"midlo/internal/domain"
	"midlo/internal/eventbus"
)

const (
	// prefetchCount is how many of the nearest places get their details loaded
	// ahead of time
	prefetchCount = 3
	detailsTTL    = 10 * time.Minute
)

// ErrStopped is returned for requests made after Stop
var ErrStopped = errors.New("planner stopped")

// Backend is the part of the api client the planner needs
type Backend interface {
	Midpoint(ctx context.Context, addressA, addressB string) (api.Midpoint, error)
	Places(ctx context.Context, lat, lng float64) ([]api.Place, error)
	PlaceDetails(ctx context.Context, placeID string) (api.PlaceDetails, error)
	PlacePhotoURL(photoName string, maxWidthPx int) string
}

// Recorder stores completed searches
type Recorder interface {
	Record(ctx context.Context, search domain.Search) error
}

// PlannerService resolves midpoints and place details
type PlannerService interface {
	FindMidpoint(ctx context.Context, addressA, addressB string) error
	LoadDetails(ctx context.Context, placeID string) error
	Stop()
}

// plannerService is the concrete implementation
type plannerService struct {
	bus      eventbus.EventBus
	backend  Backend
	recorder Recorder
	log      *zap.Logger
	details  *expirable.LRU[string, domain.PlaceDetails]

	mu            sync.Mutex
	cancelSearch  context.CancelFunc
	searchToken   uint64
	wg            sync.WaitGroup
	stopped       bool
	unsubscribers []func()
}

// NewPlannerService creates the planner and subscribes it to the bus.
// recorder may be nil when history is disabled.
func NewPlannerService(bus eventbus.EventBus, backend Backend, recorder Recorder, logger *zap.Logger) PlannerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ps := &plannerService{
		bus:      bus,
		backend:  backend,
		recorder: recorder,
		log:      logger.Named("planner"),
		details:  expirable.NewLRU[string, domain.PlaceDetails](64, nil, detailsTTL),
	}

	ps.unsubscribers = append(ps.unsubscribers,
		bus.Subscribe(eventbus.EventMidpointRequested, func(e eventbus.DomainEvent) {
			if event, ok := e.(eventbus.MidpointRequestedEvent); ok {
				_ = ps.FindMidpoint(context.Background(), event.AddressA, event.AddressB)
			}
		}),
		bus.Subscribe(eventbus.EventPlaceDetailsRequested, func(e eventbus.DomainEvent) {
			if event, ok := e.(eventbus.PlaceDetailsRequestedEvent); ok {
				_ = ps.LoadDetails(context.Background(), event.PlaceID)
			}
		}),
	)

	return ps
}

// FindMidpoint resolves the midpoint of two addresses and the places around
// it. A newer search cancels an older one still running.
func (ps *plannerService) FindMidpoint(ctx context.Context, addressA, addressB string) error {
	addressA = strings.TrimSpace(addressA)
	addressB = strings.TrimSpace(addressB)
	if addressA == "" || addressB == "" {
		err := errors.New("both addresses are required")
		ps.bus.Publish(eventbus.ErrorEvent{Message: err.Error(), Err: err})
		return err
	}

	ps.mu.Lock()
	if ps.stopped {
		ps.mu.Unlock()
		return ErrStopped
	}
	if ps.cancelSearch != nil {
		ps.cancelSearch()
	}
	searchCtx, cancel := context.WithCancel(ctx)
	ps.cancelSearch = cancel
	ps.searchToken++
	token := ps.searchToken
	ps.wg.Add(1)
	ps.mu.Unlock()

	defer ps.wg.Done()
	defer func() {
		ps.mu.Lock()
		if ps.searchToken == token {
			ps.cancelSearch = nil
		}
		ps.mu.Unlock()
		cancel()
	}()

	ps.log.Info("finding midpoint", zap.String("a", addressA), zap.String("b", addressB))

	m, err := ps.backend.Midpoint(searchCtx, addressA, addressB)
	if err != nil {
		return ps.fail("Failed to find midpoint", err)
	}
	midpoint := domain.Coordinate{Lat: m.Lat, Lng: m.Lng}
	ps.bus.Publish(eventbus.MidpointResolvedEvent{AddressA: addressA, AddressB: addressB, Midpoint: midpoint})

	raw, err := ps.backend.Places(searchCtx, m.Lat, m.Lng)
	if err != nil {
		return ps.fail("Failed to load places", err)
	}
	places := make([]domain.Place, 0, len(raw))
	for _, p := range raw {
		places = append(places, domain.Place{
			ID:       p.PlaceID,
			Name:     p.Name,
			Distance: p.Distance,
			Location: domain.Coordinate{Lat: p.Lat, Lng: p.Lng},
		})
	}
	ps.bus.Publish(eventbus.PlacesLoadedEvent{AddressA: addressA, AddressB: addressB, Midpoint: midpoint, Places: places})

	search := domain.Search{
		AddressA:   addressA,
		AddressB:   addressB,
		Midpoint:   midpoint,
		PlaceCount: len(places),
		At:         time.Now(),
	}
	if ps.recorder != nil {
		if err := ps.recorder.Record(searchCtx, search); err != nil {
			ps.log.Warn("failed to record search", zap.Error(err))
		} else {
			ps.bus.Publish(eventbus.SearchRecordedEvent{Search: search})
		}
	}

	ps.prefetch(searchCtx, places)
	return nil
}

// LoadDetails publishes the details of placeID, from cache when prefetched
func (ps *plannerService) LoadDetails(ctx context.Context, placeID string) error {
	if details, ok := ps.details.Get(placeID); ok {
		ps.bus.Publish(eventbus.PlaceDetailsLoadedEvent{Details: details})
		return nil
	}

	ps.mu.Lock()
	if ps.stopped {
		ps.mu.Unlock()
		return ErrStopped
	}
	ps.wg.Add(1)
	ps.mu.Unlock()
	defer ps.wg.Done()

	details, err := ps.fetchDetails(ctx, placeID)
	if err != nil {
		return ps.fail("Failed to load place details", err)
	}
	ps.bus.Publish(eventbus.PlaceDetailsLoadedEvent{Details: details})
	return nil
}

// Stop cancels a running search, unsubscribes from the bus and waits for
// running requests. Later requests fail with ErrStopped.
func (ps *plannerService) Stop() {
	ps.mu.Lock()
	ps.stopped = true
	if ps.cancelSearch != nil {
		ps.cancelSearch()
	}
	unsubscribers := ps.unsubscribers
	ps.unsubscribers = nil
	ps.mu.Unlock()

	for _, unsubscribe := range unsubscribers {
		unsubscribe()
	}
	ps.wg.Wait()
}

// prefetch warms the details cache for the nearest places. Failures are only
// logged; LoadDetails retries them on demand.
func (ps *plannerService) prefetch(ctx context.Context, places []domain.Place) {
	if len(places) > prefetchCount {
		places = places[:prefetchCount]
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchCount)
	for _, p := range places {
		if p.ID == "" {
			continue
		}
		if _, ok := ps.details.Peek(p.ID); ok {
			continue
		}
		g.Go(func() error {
			if _, err := ps.fetchDetails(gctx, p.ID); err != nil {
				ps.log.Debug("prefetch failed", zap.String("place_id", p.ID), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (ps *plannerService) fetchDetails(ctx context.Context, placeID string) (domain.PlaceDetails, error) {
	d, err := ps.backend.PlaceDetails(ctx, placeID)
	if err != nil {
		return domain.PlaceDetails{}, err
	}

	details := domain.PlaceDetails{
		ID:          d.PlaceID,
		Name:        d.DisplayName(),
		Location:    domain.Coordinate{Lat: d.Lat, Lng: d.Lng},
		Rating:      d.Rating,
		RatingCount: d.UserRatingCount,
		OpenNow:     d.OpenNow,
		Hours:       d.WeekdayDescriptions,
	}
	if details.ID == "" {
		details.ID = placeID
	}
	if d.FormattedAddress != nil {
		details.Address = *d.FormattedAddress
	}
	if d.InternationalPhoneNumber != nil {
		details.Phone = *d.InternationalPhoneNumber
	}
	if d.WebsiteURI != nil {
		details.Website = *d.WebsiteURI
	}
	if d.GoogleMapsURI != nil {
		details.MapsURI = *d.GoogleMapsURI
	}
	if len(d.Photos) > 0 && d.Photos[0].Name != "" {
		details.PhotoURL = ps.backend.PlacePhotoURL(d.Photos[0].Name, api.DefaultPhotoWidth)
	}

	ps.details.Add(placeID, details)
	return details, nil
}

// fail publishes err unless it is a cancellation, which stays silent
func (ps *plannerService) fail(message string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	ps.log.Warn(message, zap.Error(err))
	ps.bus.Publish(eventbus.ErrorEvent{Message: fmt.Sprintf("%s: %v", message, err), Err: err})
	return err
}
