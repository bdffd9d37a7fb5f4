package domain

import "time"

// Coordinate is a latitude/longitude pair
type Coordinate struct {
	Lat float64
	Lng float64
}

// Place is a venue near a midpoint
type Place struct {
	ID       string
	Name     string
	Distance string // human readable, as reported by the backend
	Location Coordinate
}

// PlaceDetails is the detail view of a single place. Pointer fields are nil
// when the backend did not report them.
type PlaceDetails struct {
	ID          string
	Name        string
	Address     string
	Location    Coordinate
	Rating      *float64
	RatingCount *int
	Phone       string
	Website     string
	MapsURI     string
	OpenNow     *bool
	Hours       []string
	PhotoURL    string
}

// Search is one resolved midpoint search
type Search struct {
	AddressA   string
	AddressB   string
	Midpoint   Coordinate
	PlaceCount int
	At         time.Time
}
