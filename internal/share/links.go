// Package share builds public share links and renders the Open Graph preview
// pages that messaging apps scrape when a link is pasted.
package share

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultWebBaseURL is the production web front end
const DefaultWebBaseURL = "https://midlo.ai"

// NormalizeWebBaseURL accepts an http(s) URL with a host and strips trailing slashes
func NormalizeWebBaseURL(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return "", false
	}
	withoutSlash := strings.TrimRight(trimmed, "/")
	u, err := url.Parse(withoutSlash)
	if err != nil || strings.TrimSpace(u.Hostname()) == "" {
		return "", false
	}
	return withoutSlash, true
}

// ResolveWebBaseURL returns the normalized URL or DefaultWebBaseURL
func ResolveWebBaseURL(raw string) string {
	if normalized, ok := NormalizeWebBaseURL(raw); ok {
		return normalized
	}
	return DefaultWebBaseURL
}

func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

type param struct {
	key, value string
}

func queryString(params []param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p.value == "" {
			continue
		}
		parts = append(parts, encode(p.key)+"="+encode(p.value))
	}
	return strings.Join(parts, "&")
}

// NoBatch leaves the starting batch out of a midpoint link
const NoBatch = -1

// MidpointURL links to a shared midpoint search. placeIDBatches carries every
// batch of places scanned so far, encoded as ids joined by "," within a batch
// and "|" between batches. startBatch opens the page on that batch; pass NoBatch
// to omit it.
func MidpointURL(baseURL, locationA, locationB string, placeIDBatches [][]string, startBatch int) string {
	base := ResolveWebBaseURL(baseURL) + "/share/midpoint"

	params := []param{{"a", locationA}, {"b", locationB}}
	if startBatch != NoBatch {
		params = append(params, param{"bi", strconv.Itoa(max(0, startBatch))})
	}

	var batches []string
	for _, batch := range placeIDBatches {
		ids := make([]string, 0, len(batch))
		for _, id := range batch {
			if id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			batches = append(batches, strings.Join(ids, ","))
		}
	}
	if len(batches) > 0 {
		params = append(params, param{"p", strings.Join(batches, "|")})
	}

	if qs := queryString(params); qs != "" {
		return base + "?" + qs
	}
	return base
}

// PlaceURL links to a shared place
func PlaceURL(baseURL, placeID string) string {
	return ResolveWebBaseURL(baseURL) + "/share/place/" + url.PathEscape(placeID)
}

// ParsePlaceBatches decodes the "p" parameter of a midpoint link
func ParsePlaceBatches(raw string) [][]string {
	var out [][]string
	for _, chunk := range strings.Split(raw, "|") {
		var ids []string
		for _, id := range strings.Split(chunk, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			out = append(out, ids)
		}
	}
	return out
}
