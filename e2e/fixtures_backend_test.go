//go:build e2e && unix

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// fakeBackend answers the endpoints the app calls with fixed data
type fakeBackend struct {
	*httptest.Server
	autocompleteHits atomic.Int32
	midpointHits     atomic.Int32
}

var addressBook = []struct {
	ID, Description string
}{
	{"a1", "1 Main St, Springfield"},
	{"a2", "12 Main St, Springfield"},
	{"b1", "9 Elm St, Shelbyville"},
	{"b2", "90 Elm St, Shelbyville"},
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}

	mux := http.NewServeMux()
	mux.HandleFunc("/autocomplete", func(w http.ResponseWriter, r *http.Request) {
		fb.autocompleteHits.Add(1)
		input := strings.ToLower(r.URL.Query().Get("input"))
		type suggestion struct {
			PlaceID     string `json:"placeId"`
			Description string `json:"description"`
		}
		out := []suggestion{}
		for _, a := range addressBook {
			if strings.Contains(strings.ToLower(a.Description), input) {
				out = append(out, suggestion{PlaceID: a.ID, Description: a.Description})
			}
		}
		writeJSON(w, out)
	})
	mux.HandleFunc("/midpoint", func(w http.ResponseWriter, r *http.Request) {
		fb.midpointHits.Add(1)
		writeJSON(w, map[string]float64{"lat": 40.5, "lng": -73.25})
	})
	mux.HandleFunc("/places", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{"placeId": "cafe", "name": "Corner Cafe", "distance": "0.2 mi", "lat": 40.501, "lng": -73.251},
			{"placeId": "deli", "name": "Halfway Deli", "distance": "0.4 mi", "lat": 40.502, "lng": -73.252},
		})
	})
	mux.HandleFunc("/places/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/places/")
		if id != "cafe" && id != "deli" {
			http.NotFound(w, r)
			return
		}
		name := map[string]string{"cafe": "Corner Cafe", "deli": "Halfway Deli"}[id]
		writeJSON(w, map[string]any{
			"placeId":          id,
			"name":             name,
			"formattedAddress": "5 Middle Rd, Midtown",
			"lat":              40.501,
			"lng":              -73.251,
			"rating":           4.6,
			"userRatingCount":  87,
			"openNow":          true,
		})
	})

	fb.Server = httptest.NewServer(mux)
	t.Cleanup(fb.Close)
	return fb
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
