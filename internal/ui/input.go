package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"midlo/internal/suggest"
	"midlo/internal/ui/views"
)

// AddressInput is a text field with an autocomplete dropdown
type AddressInput struct {
	field     int
	label     string
	input     textinput.Model
	fetcher   *suggest.Fetcher
	view      suggest.View
	highlight int
}

// NewAddressInput wires a text field to its own fetcher. Snapshots produced
// off the UI goroutine are posted to msgs; a full channel drops them, and the
// next synchronous call picks up the latest state.
func NewAddressInput(field int, label, placeholder string, lookup suggest.Lookup, opts suggest.Options, msgs chan<- tea.Msg, logger *zap.Logger) *AddressInput {
	if logger == nil {
		logger = zap.NewNop()
	}
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 200

	opts.OnChange = func(v suggest.View) {
		select {
		case msgs <- SuggestionsMsg{Field: field, View: v}:
		default:
			logger.Debug("ui message channel full, dropping snapshot", zap.Int("field", field))
		}
	}

	return &AddressInput{
		field:     field,
		label:     label,
		input:     ti,
		fetcher:   suggest.New(lookup, opts),
		highlight: -1,
	}
}

// Focus gives the field keyboard focus
func (a *AddressInput) Focus() tea.Cmd {
	cmd := a.input.Focus()
	a.fetcher.OnFocus()
	a.sync()
	return cmd
}

// Blur removes keyboard focus; the dropdown closes after the grace delay
func (a *AddressInput) Blur() {
	a.input.Blur()
	a.fetcher.OnBlur()
	a.sync()
}

// Focused reports whether the field has focus
func (a *AddressInput) Focused() bool {
	return a.input.Focused()
}

// Update forwards a key to the text field and notifies the fetcher when the
// text changed
func (a *AddressInput) Update(msg tea.Msg) tea.Cmd {
	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if after := a.input.Value(); after != before {
		a.fetcher.OnTextChanged(after)
		a.sync()
	}
	return cmd
}

// SetValue replaces the text as if typed
func (a *AddressInput) SetValue(s string) {
	a.input.SetValue(s)
	a.input.CursorEnd()
	a.fetcher.OnTextChanged(s)
	a.sync()
}

// Apply stores a snapshot unless a newer one was already seen. It reports
// whether the snapshot was used.
func (a *AddressInput) Apply(v suggest.View) bool {
	if v.Revision <= a.view.Revision {
		return false
	}
	changed := !slices.Equal(v.Suggestions, a.view.Suggestions)
	a.view = v
	if changed || a.highlight >= len(v.Suggestions) {
		a.highlight = -1
		if len(v.Suggestions) > 0 {
			a.highlight = 0
		}
	}
	return true
}

func (a *AddressInput) sync() {
	a.Apply(a.fetcher.View())
}

// DropdownVisible reports whether suggestions, a spinner or an error show
func (a *AddressInput) DropdownVisible() bool {
	return a.view.DropdownVisible()
}

// MoveHighlight moves the highlighted suggestion, wrapping at the ends
func (a *AddressInput) MoveHighlight(delta int) {
	n := len(a.view.Suggestions)
	if n == 0 || !a.view.DropdownVisible() {
		return
	}
	a.highlight = ((a.highlight+delta)%n + n) % n
}

// Highlighted returns the highlighted suggestion, if any
func (a *AddressInput) Highlighted() (suggest.Suggestion, bool) {
	if !a.view.DropdownVisible() || a.highlight < 0 || a.highlight >= len(a.view.Suggestions) {
		return suggest.Suggestion{}, false
	}
	return a.view.Suggestions[a.highlight], true
}

// Select commits s as the field value
func (a *AddressInput) Select(s suggest.Suggestion) {
	a.input.SetValue(strings.TrimSpace(s.Label))
	a.input.CursorEnd()
	a.fetcher.OnSuggestionSelected(s)
	a.sync()
}

// CloseDropdown hides the dropdown immediately
func (a *AddressInput) CloseDropdown() {
	a.fetcher.Close()
	a.sync()
}

// Value returns the trimmed text
func (a *AddressInput) Value() string {
	return strings.TrimSpace(a.input.Value())
}

// Snapshot returns the last applied fetcher snapshot
func (a *AddressInput) Snapshot() suggest.View {
	return a.view
}

// Dispose stops the fetcher
func (a *AddressInput) Dispose() {
	a.fetcher.Dispose()
}

// View renders the label, the field and the dropdown
func (a *AddressInput) View(s *views.Styles, width int) string {
	label := s.Label.Render(a.label)
	box := s.Input
	if a.input.Focused() {
		label = s.LabelFocused.Render(a.label)
		box = s.InputFocused
	}
	if width > 4 {
		box = box.Width(width - 2)
	}

	out := label + "\n" + box.Render(a.input.View())
	if dropdown := views.RenderDropdown(s, a.view, a.highlight, width); dropdown != "" {
		out += "\n" + dropdown
	}
	return out
}
