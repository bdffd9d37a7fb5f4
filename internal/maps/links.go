// Package maps builds links that open a coordinate or a place in the common
// map providers.
package maps

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Provider identifies a map application
type Provider string

const (
	Google Provider = "google"
	Apple  Provider = "apple"
	Waze   Provider = "waze"
)

// Providers lists every supported provider in display order
var Providers = []Provider{Google, Apple, Waze}

// Links holds one URL per provider
type Links struct {
	Google string
	Apple  string
	Waze   string
}

// For returns the link for p
func (l Links) For(p Provider) string {
	switch p {
	case Apple:
		return l.Apple
	case Waze:
		return l.Waze
	default:
		return l.Google
	}
}

// FormatCoord renders a coordinate with six decimals. Non-finite values render as "0".
func FormatCoord(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "0"
	}
	return strconv.FormatFloat(n, 'f', 6, 64)
}

func latLng(lat, lng float64) string {
	return FormatCoord(lat) + "," + FormatCoord(lng)
}

// encode matches encodeURIComponent for the characters that show up in addresses
func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// LinksFor returns search links centred on a coordinate
func LinksFor(lat, lng float64) Links {
	q := encode(latLng(lat, lng))
	return Links{
		Google: "https://www.google.com/maps/search/?api=1&query=" + q,
		Apple:  "http://maps.apple.com/?ll=" + q,
		Waze:   "https://waze.com/ul?ll=" + q + "&navigate=yes",
	}
}

// LinksWithPlaceID adds an explicit place id to the Google link. Apple and Waze
// have no place id parameter and keep the coordinate links.
func LinksWithPlaceID(lat, lng float64, placeID string) Links {
	links := LinksFor(lat, lng)
	if placeID != "" {
		links.Google += "&query_place_id=" + encode(placeID)
	}
	return links
}

// PlaceArgs describes a place to open by name
type PlaceArgs struct {
	PlaceID          string
	Name             string
	FormattedAddress string
	Lat              float64
	Lng              float64
}

// PlaceURLs returns candidate URLs for opening a place in p, best first.
// Native app schemes come before web fallbacks.
func PlaceURLs(p Provider, args PlaceArgs) []string {
	name := strings.TrimSpace(args.Name)
	label := name
	if label == "" {
		label = "Point of interest"
	}
	ll := encode(latLng(args.Lat, args.Lng))

	switch p {
	case Apple:
		return []string{
			"https://maps.apple.com/?q=" + encode(label) + "&ll=" + ll + "&z=18",
		}
	case Waze:
		return []string{
			"waze://?q=" + encode(label) + "&navigate=yes",
			"https://waze.com/ul?q=" + encode(label) + "&navigate=yes",
			"https://waze.com/ul?ll=" + ll + "&navigate=yes",
		}
	}

	query := name
	if query == "" {
		query = strings.TrimSpace(args.FormattedAddress)
	}
	if query == "" {
		query = latLng(args.Lat, args.Lng)
	}
	urls := []string{"comgooglemaps://?q=" + encode(query) + "&center=" + ll}
	if args.PlaceID != "" {
		urls = append(urls, "https://www.google.com/maps/search/?api=1&query="+encode(query)+"&query_place_id="+encode(args.PlaceID))
	}
	return append(urls, "https://www.google.com/maps/search/?api=1&query="+encode(query))
}

// WebURL returns the first http(s) candidate from PlaceURLs, which is what a
// desktop browser can open
func WebURL(p Provider, args PlaceArgs) string {
	for _, u := range PlaceURLs(p, args) {
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			return u
		}
	}
	return LinksFor(args.Lat, args.Lng).For(p)
}
