package share

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWebBaseURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"https", "https://midlo.ai", "https://midlo.ai", true},
		{"trailing slashes", "https://midlo.ai///", "https://midlo.ai", true},
		{"whitespace", "  http://localhost:3000/ ", "http://localhost:3000", true},
		{"upper scheme", "HTTPS://midlo.ai", "HTTPS://midlo.ai", true},
		{"no host", "https://", "", false},
		{"other scheme", "ftp://midlo.ai", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeWebBaseURL(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, DefaultWebBaseURL, ResolveWebBaseURL("not a url"))
}

func TestMidpointURL(t *testing.T) {
	got := MidpointURL("https://x.test/", "A St", "B&C", [][]string{{"1", "", "2"}, {}, {"3"}}, 2)
	assert.Equal(t, "https://x.test/share/midpoint?a=A%20St&b=B%26C&bi=2&p=1%2C2%7C3", got)
}

func TestMidpointURLOmitsEmptyParts(t *testing.T) {
	assert.Equal(t, "https://midlo.ai/share/midpoint", MidpointURL("", "", "", nil, NoBatch))
	assert.Equal(t, "https://midlo.ai/share/midpoint?a=Paris", MidpointURL("", "Paris", "", [][]string{{""}}, NoBatch))
	assert.Equal(t, "https://midlo.ai/share/midpoint?bi=0", MidpointURL("", "", "", nil, -7))
}

func TestPlaceURL(t *testing.T) {
	assert.Equal(t, "https://midlo.ai/share/place/abc%20def", PlaceURL("", "abc def"))
	assert.Equal(t, "http://localhost:3000/share/place/ChIJ", PlaceURL("http://localhost:3000/", "ChIJ"))
}

func TestParsePlaceBatches(t *testing.T) {
	assert.Equal(t, [][]string{{"1", "2"}, {"3"}}, ParsePlaceBatches("1, 2,|| 3"))
	assert.Nil(t, ParsePlaceBatches(""))
}
