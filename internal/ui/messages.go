package ui

import (
	"midlo/internal/eventbus"
	"midlo/internal/suggest"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// SuggestionsMsg carries a fetcher snapshot for one address field
type SuggestionsMsg struct {
	Field int
	View  suggest.View
}

// pagerDoneMsg is sent when the ov pager returns control
type pagerDoneMsg struct {
	err error
}

// clipboardMsg contains the result of a copy to the clipboard
type clipboardMsg struct {
	text string
	err  error
}

// openURLMsg contains the result of opening a link in the browser
type openURLMsg struct {
	url string
	err error
}
