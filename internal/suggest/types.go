package suggest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"midlo/internal/debounce"
)

// Suggestion is one autocomplete candidate returned by the backend
type Suggestion struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// State is the rendering state of a fetcher
type State int

const (
	StateIdle State = iota
	StateLoading
	StateError
	StateResults
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateResults:
		return "results"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// View is a point-in-time snapshot of a fetcher
type View struct {
	State       State
	Query       string // trimmed text last seen by the fetcher
	Committed   string // label of the selected suggestion, "" when unlocked
	Suggestions []Suggestion
	Err         string // set only in StateError
	Open        bool   // dropdown requested open
	Revision    uint64 // increases on every change; drop snapshots older than the last one seen
}

// DropdownVisible reports whether there is anything worth showing under the input
func (v View) DropdownVisible() bool {
	if !v.Open {
		return false
	}
	return v.State == StateLoading || v.State == StateError || len(v.Suggestions) > 0
}

// Lookup performs a partial-text address search. Implementations must abort
// when ctx is cancelled and return an error matching context.Canceled.
type Lookup interface {
	Lookup(ctx context.Context, query string) ([]Suggestion, error)
}

// LookupFunc adapts a function to the Lookup interface
type LookupFunc func(ctx context.Context, query string) ([]Suggestion, error)

// Lookup implements Lookup
func (fn LookupFunc) Lookup(ctx context.Context, query string) ([]Suggestion, error) {
	return fn(ctx, query)
}

// Options tune a fetcher. Zero values fall back to DefaultOptions.
type Options struct {
	Debounce       time.Duration
	BlurGrace      time.Duration
	MinQueryLength int
	MaxSuggestions int
	Clock          debounce.Clock
	Logger         *zap.Logger

	// OnChange receives every new snapshot in revision order.
	// It must not call back into the fetcher.
	OnChange func(View)
}

const (
	DefaultDebounce       = 250 * time.Millisecond
	DefaultBlurGrace      = 150 * time.Millisecond
	DefaultMinQueryLength = 3
	DefaultMaxSuggestions = 8
)

// DefaultOptions returns the production tuning
func DefaultOptions() Options {
	return Options{
		Debounce:       DefaultDebounce,
		BlurGrace:      DefaultBlurGrace,
		MinQueryLength: DefaultMinQueryLength,
		MaxSuggestions: DefaultMaxSuggestions,
		Clock:          debounce.RealClock{},
		Logger:         zap.NewNop(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Debounce <= 0 {
		o.Debounce = d.Debounce
	}
	if o.BlurGrace <= 0 {
		o.BlurGrace = d.BlurGrace
	}
	if o.MinQueryLength <= 0 {
		o.MinQueryLength = d.MinQueryLength
	}
	if o.MaxSuggestions <= 0 {
		o.MaxSuggestions = d.MaxSuggestions
	}
	if o.Clock == nil {
		o.Clock = d.Clock
	}
	if o.Logger == nil {
		o.Logger = d.Logger
	}
	return o
}
