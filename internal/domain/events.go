package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventMidpointRequested     EventType = "MidpointRequested"
	EventMidpointResolved      EventType = "MidpointResolved"
	EventPlacesLoaded          EventType = "PlacesLoaded"
	EventPlaceDetailsRequested EventType = "PlaceDetailsRequested"
	EventPlaceDetailsLoaded    EventType = "PlaceDetailsLoaded"
	EventSearchRecorded        EventType = "SearchRecorded"
	EventError                 EventType = "Error"
	EventConfigLoaded          EventType = "ConfigLoaded"
	EventConfigSaved           EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// MidpointRequestedEvent asks for the midpoint between two addresses
type MidpointRequestedEvent struct {
	AddressA string
	AddressB string
}

func (e MidpointRequestedEvent) Type() EventType { return EventMidpointRequested }

// MidpointResolvedEvent is emitted once the backend returned a midpoint
type MidpointResolvedEvent struct {
	AddressA string
	AddressB string
	Midpoint Coordinate
}

func (e MidpointResolvedEvent) Type() EventType { return EventMidpointResolved }

// PlacesLoadedEvent carries the venues found around a midpoint
type PlacesLoadedEvent struct {
	AddressA string
	AddressB string
	Midpoint Coordinate
	Places   []Place
}

func (e PlacesLoadedEvent) Type() EventType { return EventPlacesLoaded }

// PlaceDetailsRequestedEvent asks for the details of one place
type PlaceDetailsRequestedEvent struct {
	PlaceID string
}

func (e PlaceDetailsRequestedEvent) Type() EventType { return EventPlaceDetailsRequested }

// PlaceDetailsLoadedEvent carries the details of one place
type PlaceDetailsLoadedEvent struct {
	Details PlaceDetails
}

func (e PlaceDetailsLoadedEvent) Type() EventType { return EventPlaceDetailsLoaded }

// SearchRecordedEvent is emitted after a search was saved to history
type SearchRecordedEvent struct {
	Search Search
}

func (e SearchRecordedEvent) Type() EventType { return EventSearchRecorded }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path       string
	APIBaseURL string
	WebBaseURL string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
