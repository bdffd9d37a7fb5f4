package api

import (
	"fmt"
	"net/http"
)

// Error is returned for any non-2xx backend response
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	text := e.Body
	if text == "" {
		text = http.StatusText(e.Status)
	}
	return fmt.Sprintf("API error %d: %s", e.Status, text)
}

// NotFound reports whether the backend answered 404
func (e *Error) NotFound() bool {
	return e.Status == http.StatusNotFound
}
