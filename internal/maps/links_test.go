package maps

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCoord(t *testing.T) {
	assert.Equal(t, "41.500000", FormatCoord(41.5))
	assert.Equal(t, "-71.123457", FormatCoord(-71.1234567))
	assert.Equal(t, "0", FormatCoord(math.NaN()))
	assert.Equal(t, "0", FormatCoord(math.Inf(1)))
}

func TestLinksFor(t *testing.T) {
	l := LinksFor(41.5, -71.25)
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=41.500000%2C-71.250000", l.Google)
	assert.Equal(t, "http://maps.apple.com/?ll=41.500000%2C-71.250000", l.Apple)
	assert.Equal(t, "https://waze.com/ul?ll=41.500000%2C-71.250000&navigate=yes", l.Waze)
	assert.Equal(t, l.Waze, l.For(Waze))
}

func TestLinksWithPlaceID(t *testing.T) {
	l := LinksWithPlaceID(1, 2, "ChIJ a/b")
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=1.000000%2C2.000000&query_place_id=ChIJ%20a%2Fb", l.Google)
	assert.Equal(t, LinksFor(1, 2).Apple, l.Apple)
	assert.Equal(t, LinksFor(1, 2).Waze, l.Waze)
}

func TestPlaceURLs(t *testing.T) {
	args := PlaceArgs{PlaceID: "p1", Name: " Joe's Cafe ", Lat: 1, Lng: 2}

	google := PlaceURLs(Google, args)
	assert.Equal(t, []string{
		"comgooglemaps://?q=Joe%27s%20Cafe&center=1.000000%2C2.000000",
		"https://www.google.com/maps/search/?api=1&query=Joe%27s%20Cafe&query_place_id=p1",
		"https://www.google.com/maps/search/?api=1&query=Joe%27s%20Cafe",
	}, google)

	waze := PlaceURLs(Waze, PlaceArgs{Lat: 1, Lng: 2})
	assert.Equal(t, "waze://?q=Point%20of%20interest&navigate=yes", waze[0])
	assert.Equal(t, "https://waze.com/ul?ll=1.000000%2C2.000000&navigate=yes", waze[2])

	apple := PlaceURLs(Apple, args)
	assert.Equal(t, []string{"https://maps.apple.com/?q=Joe%27s%20Cafe&ll=1.000000%2C2.000000&z=18"}, apple)
}

func TestGoogleFallsBackToAddressThenCoordinates(t *testing.T) {
	withAddress := PlaceURLs(Google, PlaceArgs{FormattedAddress: "1 Main St", Lat: 1, Lng: 2})
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=1%20Main%20St", withAddress[len(withAddress)-1])

	bare := PlaceURLs(Google, PlaceArgs{Lat: 1, Lng: 2})
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=1.000000%2C2.000000", bare[len(bare)-1])
}

func TestWebURL(t *testing.T) {
	args := PlaceArgs{PlaceID: "p1", Name: "Cafe", Lat: 1, Lng: 2}
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=Cafe&query_place_id=p1", WebURL(Google, args))
	assert.Equal(t, "https://waze.com/ul?q=Cafe&navigate=yes", WebURL(Waze, args))
}
