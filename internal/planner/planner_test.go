package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"midlo/internal/api"
	"midlo/internal/domain"
	"midlo/internal/eventbus"
)

type fakeBackend struct {
	mu           sync.Mutex
	midpointErr  error
	midpointWait chan struct{}
	places       []api.Place
	details      map[string]api.PlaceDetails
	detailCalls  map[string]int
}

func (f *fakeBackend) Midpoint(ctx context.Context, a, b string) (api.Midpoint, error) {
	if f.midpointWait != nil {
		select {
		case <-f.midpointWait:
		case <-ctx.Done():
			return api.Midpoint{}, ctx.Err()
		}
	}
	if f.midpointErr != nil {
		return api.Midpoint{}, f.midpointErr
	}
	return api.Midpoint{Lat: 45.5, Lng: 4.5}, nil
}

func (f *fakeBackend) Places(ctx context.Context, lat, lng float64) ([]api.Place, error) {
	return f.places, nil
}

func (f *fakeBackend) PlaceDetails(ctx context.Context, placeID string) (api.PlaceDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detailCalls == nil {
		f.detailCalls = map[string]int{}
	}
	f.detailCalls[placeID]++
	d, ok := f.details[placeID]
	if !ok {
		return api.PlaceDetails{}, &api.Error{Status: 404, Body: "not found"}
	}
	return d, nil
}

func (f *fakeBackend) PlacePhotoURL(name string, width int) string {
	return api.PlacePhotoURL("https://api.test", name, width)
}

func (f *fakeBackend) calls(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailCalls[id]
}

type fakeRecorder struct {
	mu       sync.Mutex
	searches []domain.Search
}

func (r *fakeRecorder) Record(_ context.Context, s domain.Search) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches = append(r.searches, s)
	return nil
}

func collect(t *testing.T, bus eventbus.EventBus, types ...eventbus.EventType) <-chan eventbus.DomainEvent {
	t.Helper()
	ch := make(chan eventbus.DomainEvent, 16)
	for _, et := range types {
		bus.Subscribe(et, func(e eventbus.DomainEvent) { ch <- e })
	}
	return ch
}

func next(t *testing.T, ch <-chan eventbus.DomainEvent) eventbus.DomainEvent {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func ptr[T any](v T) *T { return &v }

func TestFindMidpoint(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()
	backend := &fakeBackend{
		places: []api.Place{
			{PlaceID: "p1", Name: "Cafe", Distance: "120 m", Lat: 45.51, Lng: 4.51},
			{PlaceID: "p2", Name: "Bar"},
		},
		details: map[string]api.PlaceDetails{"p1": {PlaceID: "p1", Name: ptr("Cafe")}},
	}
	recorder := &fakeRecorder{}
	ps := NewPlannerService(bus, backend, recorder, nil)
	defer ps.Stop()

	resolved := collect(t, bus, eventbus.EventMidpointResolved)
	loaded := collect(t, bus, eventbus.EventPlacesLoaded)

	require.NoError(t, ps.FindMidpoint(context.Background(), " Paris ", "Lyon"))

	mr := next(t, resolved).(eventbus.MidpointResolvedEvent)
	assert.Equal(t, "Paris", mr.AddressA)
	assert.Equal(t, domain.Coordinate{Lat: 45.5, Lng: 4.5}, mr.Midpoint)

	pl := next(t, loaded).(eventbus.PlacesLoadedEvent)
	require.Len(t, pl.Places, 2)
	assert.Equal(t, "p1", pl.Places[0].ID)
	assert.Equal(t, "120 m", pl.Places[0].Distance)

	require.Len(t, recorder.searches, 1)
	assert.Equal(t, 2, recorder.searches[0].PlaceCount)
	assert.Equal(t, 1, backend.calls("p1"))
	assert.Equal(t, 1, backend.calls("p2"))
}

func TestFindMidpointRequiresBothAddresses(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()
	ps := NewPlannerService(bus, &fakeBackend{}, nil, nil)
	defer ps.Stop()
	errs := collect(t, bus, eventbus.EventError)

	assert.Error(t, ps.FindMidpoint(context.Background(), "Paris", "  "))
	ev := next(t, errs).(eventbus.ErrorEvent)
	assert.Equal(t, "both addresses are required", ev.Message)
}

func TestFindMidpointPublishesErrors(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()
	ps := NewPlannerService(bus, &fakeBackend{midpointErr: &api.Error{Status: 502}}, nil, nil)
	defer ps.Stop()
	errs := collect(t, bus, eventbus.EventError)

	err := ps.FindMidpoint(context.Background(), "Paris", "Lyon")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)

	ev := next(t, errs).(eventbus.ErrorEvent)
	assert.Contains(t, ev.Message, "Failed to find midpoint")
}

func TestNewerSearchCancelsOlder(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()
	backend := &fakeBackend{midpointWait: make(chan struct{})}
	ps := NewPlannerService(bus, backend, nil, nil)
	defer ps.Stop()
	errs := collect(t, bus, eventbus.EventError)

	first := make(chan error, 1)
	go func() { first <- ps.FindMidpoint(context.Background(), "a", "b") }()

	// wait until the first search is registered before superseding it
	require.Eventually(t, func() bool {
		p := ps.(*plannerService)
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.cancelSearch != nil
	}, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- ps.FindMidpoint(context.Background(), "c", "d") }()

	err := <-first
	assert.True(t, errors.Is(err, context.Canceled))

	close(backend.midpointWait)
	assert.NoError(t, <-second)

	select {
	case e := <-errs:
		t.Fatalf("cancellation must be silent, got %v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLoadDetailsUsesPrefetch(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()
	backend := &fakeBackend{
		places: []api.Place{{PlaceID: "p1"}},
		details: map[string]api.PlaceDetails{"p1": {
			PlaceID:          "p1",
			Name:             ptr("Cafe"),
			FormattedAddress: ptr("1 Main St"),
			WebsiteURI:       ptr("https://cafe.test"),
			Photos:           []api.PlacePhoto{{Name: "places/p1/photos/a"}},
		}},
	}
	ps := NewPlannerService(bus, backend, nil, nil)
	defer ps.Stop()
	loaded := collect(t, bus, eventbus.EventPlaceDetailsLoaded)

	require.NoError(t, ps.FindMidpoint(context.Background(), "a", "b"))
	require.NoError(t, ps.LoadDetails(context.Background(), "p1"))

	ev := next(t, loaded).(eventbus.PlaceDetailsLoadedEvent)
	assert.Equal(t, "Cafe", ev.Details.Name)
	assert.Equal(t, "1 Main St", ev.Details.Address)
	assert.Equal(t, "https://cafe.test", ev.Details.Website)
	assert.Equal(t, api.PlacePhotoURL("https://api.test", "places/p1/photos/a", 1200), ev.Details.PhotoURL)
	assert.Equal(t, 1, backend.calls("p1"))
}

func TestPlaceDetailsRequestedOverBus(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()
	backend := &fakeBackend{details: map[string]api.PlaceDetails{"x": {}}}
	ps := NewPlannerService(bus, backend, nil, nil)
	defer ps.Stop()
	loaded := collect(t, bus, eventbus.EventPlaceDetailsLoaded)

	bus.Publish(eventbus.PlaceDetailsRequestedEvent{PlaceID: "x"})

	ev := next(t, loaded).(eventbus.PlaceDetailsLoadedEvent)
	assert.Equal(t, "x", ev.Details.ID)
	assert.Equal(t, "Point of interest", ev.Details.Name)
}

func TestLoadDetailsNotFound(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()
	ps := NewPlannerService(bus, &fakeBackend{}, nil, nil)
	defer ps.Stop()
	errs := collect(t, bus, eventbus.EventError)

	assert.Error(t, ps.LoadDetails(context.Background(), "missing"))
	ev := next(t, errs).(eventbus.ErrorEvent)
	assert.Contains(t, ev.Message, "Failed to load place details")
}

func TestRequestsAfterStopAreRejected(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()
	backend := &fakeBackend{details: map[string]api.PlaceDetails{"p1": {PlaceID: "p1"}}}
	ps := NewPlannerService(bus, backend, nil, nil)
	ps.Stop()

	assert.ErrorIs(t, ps.FindMidpoint(context.Background(), "Paris", "Lyon"), ErrStopped)
	assert.ErrorIs(t, ps.LoadDetails(context.Background(), "p1"), ErrStopped)
	assert.Equal(t, 0, backend.calls("p1"))
	ps.Stop()
}

func TestStopRacesDetailRequests(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()
	backend := &fakeBackend{details: map[string]api.PlaceDetails{}}
	ps := NewPlannerService(bus, backend, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := ps.LoadDetails(context.Background(), fmt.Sprintf("p%d", i))
			assert.Error(t, err)
		}(i)
	}
	ps.Stop()
	wg.Wait()
	assert.ErrorIs(t, ps.LoadDetails(context.Background(), "late"), ErrStopped)
}
