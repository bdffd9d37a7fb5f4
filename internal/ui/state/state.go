package state

import (
	"midlo/internal/domain"
)

// Screen identifies what the TUI is showing
type Screen int

const (
	ScreenSearch Screen = iota
	ScreenPlaces
	ScreenDetails
)

// AppState contains all the application state outside the address fields
type AppState struct {
	Screen Screen

	// Last submitted search
	AddressA string
	AddressB string
	Midpoint *domain.Coordinate
	Places   []domain.Place
	Cursor   int

	// Details screen
	Details        *domain.PlaceDetails
	PendingPlaceID string

	// Operation states
	Searching      bool
	LoadingDetails bool

	StatusMessage string
	ErrorMessage  string
}

// NewAppState creates a new application state
func NewAppState() *AppState {
	return &AppState{}
}

// BeginSearch resets results for a new midpoint search
func (s *AppState) BeginSearch(addressA, addressB string) {
	s.Screen = ScreenPlaces
	s.AddressA = addressA
	s.AddressB = addressB
	s.Midpoint = nil
	s.Places = nil
	s.Cursor = 0
	s.Details = nil
	s.PendingPlaceID = ""
	s.Searching = true
	s.LoadingDetails = false
	s.StatusMessage = ""
	s.ErrorMessage = ""
}

// BeginDetails switches to the details screen for placeID
func (s *AppState) BeginDetails(placeID string) {
	s.Screen = ScreenDetails
	s.PendingPlaceID = placeID
	s.Details = nil
	s.LoadingDetails = true
	s.ErrorMessage = ""
}

// Back returns to the previous screen
func (s *AppState) Back() {
	switch s.Screen {
	case ScreenDetails:
		s.Screen = ScreenPlaces
		s.PendingPlaceID = ""
		s.Details = nil
		s.LoadingDetails = false
	case ScreenPlaces:
		s.Screen = ScreenSearch
		s.Searching = false
	}
	s.ErrorMessage = ""
}

// MoveCursor moves the place cursor, clamped to the list
func (s *AppState) MoveCursor(delta int) {
	if len(s.Places) == 0 {
		s.Cursor = 0
		return
	}
	s.Cursor = max(0, min(len(s.Places)-1, s.Cursor+delta))
}

// SelectedPlace returns the place under the cursor
func (s *AppState) SelectedPlace() (domain.Place, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Places) {
		return domain.Place{}, false
	}
	return s.Places[s.Cursor], true
}

// PlaceIDs returns the ids of the listed places in order
func (s *AppState) PlaceIDs() []string {
	ids := make([]string, 0, len(s.Places))
	for _, p := range s.Places {
		if p.ID != "" {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
