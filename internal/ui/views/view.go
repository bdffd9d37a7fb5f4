// Package views renders the midlo screens. Everything here is a pure function
// of its inputs so it can be tested without a running program.
package views

import (
	"fmt"
	"strings"

	"midlo/internal/domain"
	"midlo/internal/suggest"
)

// RenderDropdown renders the suggestion list under an address field. It
// returns "" when the dropdown is hidden.
func RenderDropdown(s *Styles, v suggest.View, highlight int, width int) string {
	if !v.DropdownVisible() {
		return ""
	}

	var b strings.Builder
	switch {
	case v.State == suggest.StateLoading && len(v.Suggestions) == 0:
		b.WriteString(s.StatusLoading.Render("Searching…"))
	case v.State == suggest.StateError:
		b.WriteString(s.StatusError.Render(v.Err))
	default:
		for i, sug := range v.Suggestions {
			if i > 0 {
				b.WriteString("\n")
			}
			if i == highlight {
				b.WriteString(s.Highlight.Render("› " + sug.Label))
			} else {
				b.WriteString(s.Suggestion.Render("  " + sug.Label))
			}
		}
		if v.State == suggest.StateLoading {
			b.WriteString("\n" + s.StatusLoading.Render("Searching…"))
		}
	}

	style := s.Dropdown
	if width > 4 {
		style = style.Width(width - 2)
	}
	return style.Render(b.String())
}

// RenderPlaces renders the places around a midpoint with the cursor row marked
func RenderPlaces(s *Styles, midpoint *domain.Coordinate, places []domain.Place, cursor int, height int) string {
	var b strings.Builder
	if midpoint != nil {
		b.WriteString(s.Section.Render(fmt.Sprintf("Midpoint %.5f, %.5f", midpoint.Lat, midpoint.Lng)))
		b.WriteString("\n\n")
	}
	if len(places) == 0 {
		b.WriteString(s.Dim.Render("No places found near the midpoint."))
		return b.String()
	}

	// keep the cursor in view
	visible := height
	if visible < 3 {
		visible = len(places)
	}
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := min(len(places), start+visible)

	for i := start; i < end; i++ {
		p := places[i]
		line := p.Name
		if p.Distance != "" {
			line += s.Dim.Render("  " + p.Distance)
		}
		if i == cursor {
			b.WriteString(s.Cursor.Render("› " + line))
		} else {
			b.WriteString("  " + line)
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	if end < len(places) {
		b.WriteString("\n" + s.Dim.Render(fmt.Sprintf("… %d more", len(places)-end)))
	}
	return b.String()
}

// RenderDetails renders one place
func RenderDetails(s *Styles, d domain.PlaceDetails) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(d.Name))
	b.WriteString("\n")
	if d.Address != "" {
		b.WriteString(d.Address + "\n")
	}
	if r := RatingLine(d); r != "" {
		b.WriteString(s.Rating.Render(r) + "\n")
	}
	if d.OpenNow != nil {
		if *d.OpenNow {
			b.WriteString(s.StatusSuccess.Render("Open now") + "\n")
		} else {
			b.WriteString(s.StatusError.Render("Closed") + "\n")
		}
	}
	if d.Phone != "" {
		b.WriteString("Phone   " + d.Phone + "\n")
	}
	if d.Website != "" {
		b.WriteString("Website " + d.Website + "\n")
	}
	if len(d.Hours) > 0 {
		b.WriteString("\n" + s.Section.Render("Hours") + "\n")
		for _, h := range d.Hours {
			b.WriteString("  " + h + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RatingLine formats the rating as "★ 4.5 (120)", or "" without a rating
func RatingLine(d domain.PlaceDetails) string {
	if d.Rating == nil {
		return ""
	}
	line := fmt.Sprintf("★ %.1f", *d.Rating)
	if d.RatingCount != nil {
		line += fmt.Sprintf(" (%d)", *d.RatingCount)
	}
	return line
}
