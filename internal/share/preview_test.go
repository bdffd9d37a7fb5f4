package share

import (
	"bytes"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPreview(t *testing.T) {
	var buf bytes.Buffer
	err := RenderPreview(&buf, Preview{
		Title:        "<b>Tom</b> & Co",
		Description:  "Pasta • ⭐ 4.5",
		ImageURL:     "https://api.test/place-photo?maxWidthPx=1200&name=x",
		CanonicalURL: "https://midlo.ai/p/abc",
		ShareURL:     "https://midlo.ai/share/place/abc",
		RedirectTo:   "https://midlo.ai/p/abc?x=1",
	})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "<b>Tom</b>")

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	meta := func(attr, key string) string {
		v, _ := doc.Find(`meta[` + attr + `="` + key + `"]`).Attr("content")
		return v
	}
	assert.Equal(t, "<b>Tom</b> & Co", doc.Find("title").Text())
	assert.Equal(t, "<b>Tom</b> & Co", meta("property", "og:title"))
	assert.Equal(t, "Pasta • ⭐ 4.5", meta("property", "og:description"))
	assert.Equal(t, "https://api.test/place-photo?maxWidthPx=1200&name=x", meta("property", "og:image"))
	assert.Equal(t, "https://midlo.ai/share/place/abc", meta("property", "og:url"))
	assert.Equal(t, "summary_large_image", meta("name", "twitter:card"))
	assert.Equal(t, "0;url=https://midlo.ai/p/abc?x=1", meta("http-equiv", "refresh"))

	href, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	assert.Equal(t, "https://midlo.ai/p/abc", href)
	assert.Contains(t, doc.Find("script").Text(), "window.location.replace(")
}

func TestClamp(t *testing.T) {
	assert.Equal(t, "hi", Clamp("  hi ", 5))
	assert.Equal(t, "hell…", Clamp("hello world", 5))
	assert.Equal(t, "héllo…", Clamp("héllo wörld", 7))
	assert.Equal(t, "…", Clamp("abc", 0))
}
