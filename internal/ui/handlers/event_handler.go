package handlers

import (
	"fmt"

	"midlo/internal/eventbus"
	"midlo/internal/ui/state"
)

// EventHandler handles domain events and updates state
type EventHandler struct {
	state *state.AppState
}

// NewEventHandler creates a new event handler
func NewEventHandler(appState *state.AppState) *EventHandler {
	return &EventHandler{state: appState}
}

// HandleEvent applies a domain event to the state. Results for a search or
// place the user has since left are ignored.
func (h *EventHandler) HandleEvent(event eventbus.DomainEvent) {
	s := h.state
	switch e := event.(type) {
	case eventbus.MidpointResolvedEvent:
		if !h.currentSearch(e.AddressA, e.AddressB) {
			return
		}
		midpoint := e.Midpoint
		s.Midpoint = &midpoint

	// bus handlers run concurrently, so places may arrive before the midpoint
	case eventbus.PlacesLoadedEvent:
		if !s.Searching || !h.currentSearch(e.AddressA, e.AddressB) {
			return
		}
		midpoint := e.Midpoint
		s.Midpoint = &midpoint
		s.Places = e.Places
		s.Cursor = 0
		s.Searching = false
		s.StatusMessage = fmt.Sprintf("%d places near the midpoint", len(e.Places))

	case eventbus.PlaceDetailsLoadedEvent:
		if s.Screen != state.ScreenDetails || s.PendingPlaceID != e.Details.ID {
			return
		}
		details := e.Details
		s.Details = &details
		s.LoadingDetails = false

	case eventbus.SearchRecordedEvent:
		if h.currentSearch(e.Search.AddressA, e.Search.AddressB) {
			s.StatusMessage = fmt.Sprintf("%d places near the midpoint · saved to history", e.Search.PlaceCount)
		}

	case eventbus.ErrorEvent:
		if !s.Searching && !s.LoadingDetails {
			return
		}
		s.Searching = false
		s.LoadingDetails = false
		s.ErrorMessage = e.Message
	}
}

func (h *EventHandler) currentSearch(a, b string) bool {
	return h.state.Screen != state.ScreenSearch && h.state.AddressA == a && h.state.AddressB == b
}
