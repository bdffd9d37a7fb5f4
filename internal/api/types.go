package api

// AutocompleteSuggestion is one partial-address match
type AutocompleteSuggestion struct {
	PlaceID     string `json:"placeId"`
	Description string `json:"description"`
}

// Midpoint is the fair meeting coordinate between two addresses
type Midpoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a venue near the midpoint
type Place struct {
	PlaceID  string  `json:"placeId"`
	Name     string  `json:"name"`
	Distance string  `json:"distance"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// PlacePhoto references a photo served through the backend photo proxy
type PlacePhoto struct {
	Name     string `json:"name"`
	WidthPx  *int   `json:"widthPx"`
	HeightPx *int   `json:"heightPx"`
}

// PlaceDetails is the full record for a single place. Optional fields are nil
// when the backend did not return them.
type PlaceDetails struct {
	PlaceID                  string       `json:"placeId"`
	Name                     *string      `json:"name"`
	FormattedAddress         *string      `json:"formattedAddress"`
	Lat                      float64      `json:"lat"`
	Lng                      float64      `json:"lng"`
	Rating                   *float64     `json:"rating"`
	UserRatingCount          *int         `json:"userRatingCount"`
	GoogleMapsURI            *string      `json:"googleMapsUri"`
	WebsiteURI               *string      `json:"websiteUri"`
	InternationalPhoneNumber *string      `json:"internationalPhoneNumber"`
	OpenNow                  *bool        `json:"openNow"`
	WeekdayDescriptions      []string     `json:"weekdayDescriptions"`
	Photos                   []PlacePhoto `json:"photos"`
}

// DisplayName returns the place name or a placeholder
func (d PlaceDetails) DisplayName() string {
	if d.Name != nil && *d.Name != "" {
		return *d.Name
	}
	return "Point of interest"
}

type midpointRequest struct {
	AddressA string `json:"addressA"`
	AddressB string `json:"addressB"`
}

type placesRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
