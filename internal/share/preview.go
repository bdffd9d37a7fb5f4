package share

import (
	"html/template"
	"io"
	"strings"
	"unicode/utf8"
)

// Preview holds the values rendered into a share page
type Preview struct {
	Title        string
	Description  string
	ImageURL     string
	CanonicalURL string
	ShareURL     string
	RedirectTo   string
}

var previewTemplate = template.Must(template.New("preview").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width,initial-scale=1" />
    <title>{{.Title}}</title>

    <link rel="canonical" href="{{.CanonicalURL}}" />

    <meta property="og:site_name" content="Midlo" />
    <meta property="og:type" content="website" />
    <meta property="og:title" content="{{.Title}}" />
    <meta property="og:description" content="{{.Description}}" />
    <meta property="og:image" content="{{.ImageURL}}" />
    <meta property="og:url" content="{{.ShareURL}}" />

    <meta name="twitter:card" content="summary_large_image" />
    <meta name="twitter:title" content="{{.Title}}" />
    <meta name="twitter:description" content="{{.Description}}" />
    <meta name="twitter:image" content="{{.ImageURL}}" />

    <meta http-equiv="refresh" content="0;url={{.RedirectTo}}" />
    <script>
      window.location.replace({{.RedirectTo}});
    </script>
    <style>
      body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Helvetica,Arial,sans-serif;margin:0;padding:24px;background:#0b1f12;color:#eaffef}
      a{color:#b6ffcc}
      .card{max-width:560px;margin:0 auto;background:rgba(255,255,255,.06);border:1px solid rgba(255,255,255,.12);border-radius:16px;padding:18px}
      .muted{opacity:.8;font-size:14px;line-height:1.4}
    </style>
  </head>
  <body>
    <div class="card">
      <div class="title" style="font-weight:700;letter-spacing:.2px">{{.Title}}</div>
      <div class="muted description" style="margin-top:6px">{{.Description}}</div>
      <div class="muted" style="margin-top:12px">Redirecting… If nothing happens, <a href="{{.CanonicalURL}}">tap here</a>.</div>
    </div>
  </body>
</html>
`))

// RenderPreview writes the HTML page for p. Crawlers read the meta tags;
// browsers follow the redirect.
func RenderPreview(w io.Writer, p Preview) error {
	return previewTemplate.Execute(w, p)
}

// Clamp trims s and shortens it to max runes, ending with an ellipsis when cut
func Clamp(s string, max int) string {
	trimmed := strings.TrimSpace(s)
	if utf8.RuneCountInString(trimmed) <= max {
		return trimmed
	}
	runes := []rune(trimmed)
	cut := max - 1
	if cut < 0 {
		cut = 0
	}
	return strings.TrimSpace(string(runes[:cut])) + "…"
}
