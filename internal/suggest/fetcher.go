// Package suggest turns keystrokes in an address field into debounced,
// cancellable autocomplete lookups.
//
// A Fetcher is created once per input field and driven by explicit calls from
// the UI layer. At most one lookup is in flight per fetcher; issuing a new one
// cancels the previous one, and responses from superseded lookups are dropped.
// Lookup failures never reach the caller, they are reported through View.
package suggest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"midlo/internal/debounce"
)

const fallbackErrorMessage = "Failed to load suggestions"

// Fetcher is the controller behind one autocomplete input
type Fetcher struct {
	lookup Lookup
	opts   Options
	log    *zap.Logger

	debouncer *debounce.Debouncer
	blur      *debounce.Debouncer

	mu          sync.Mutex
	query       string
	committed   string
	state       State
	suggestions []Suggestion
	errMsg      string
	open        bool
	revision    uint64
	disposed    bool

	// scheduled is the query whose debounce timer is armed or firing; cleared
	// once fire holds mu. The debouncer drops its timer before fire runs.
	scheduled string

	// token identifies the current lookup; responses carrying another token are stale
	token  uint64
	cancel context.CancelFunc

	// notifyMu keeps OnChange calls in revision order and lets Dispose wait for
	// a delivery that is already running
	notifyMu sync.Mutex
}

// New creates a fetcher over lookup
func New(lookup Lookup, opts Options) *Fetcher {
	opts = opts.withDefaults()
	return &Fetcher{
		lookup:    lookup,
		opts:      opts,
		log:       opts.Logger.Named("suggest"),
		debouncer: debounce.New(opts.Clock, opts.Debounce),
		blur:      debounce.New(opts.Clock, opts.BlurGrace),
	}
}

// OnTextChanged notifies the fetcher of the field's new raw value
func (f *Fetcher) OnTextChanged(text string) {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return
	}
	f.blur.Cancel()

	query := strings.TrimSpace(text)
	previous := f.query
	f.query = query

	if f.committed != "" && query == f.committed {
		f.resetLocked()
		f.unlockAndPublish()
		return
	}
	f.committed = ""

	if utf8.RuneCountInString(query) < f.opts.MinQueryLength {
		f.resetLocked()
		f.unlockAndPublish()
		return
	}

	f.open = true

	// Whitespace-only edits keep the current cycle
	if query == previous && f.currentLocked() {
		f.unlockAndPublish()
		return
	}

	// A newer keystroke supersedes whatever is still in flight
	f.cancelLookupLocked()
	f.scheduled = query
	f.debouncer.Debounce(func() { f.fire(query) })
	f.unlockAndPublish()
}

// OnSuggestionSelected commits s as the field value and closes the dropdown
func (f *Fetcher) OnSuggestionSelected(s Suggestion) {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return
	}
	f.blur.Cancel()
	f.committed = strings.TrimSpace(s.Label)
	f.query = f.committed
	f.resetLocked()
	f.log.Debug("suggestion committed", zap.String("id", s.ID), zap.String("label", f.committed))
	f.unlockAndPublish()
}

// OnFocus cancels a pending blur close and reopens the dropdown when the
// current text is still searchable
func (f *Fetcher) OnFocus() {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return
	}
	f.blur.Cancel()
	if f.searchableLocked() {
		f.open = true
	}
	f.unlockAndPublish()
}

// OnBlur closes the dropdown after the blur grace delay unless focus returns first
func (f *Fetcher) OnBlur() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed {
		return
	}
	f.blur.Debounce(func() {
		f.mu.Lock()
		if f.disposed {
			f.mu.Unlock()
			return
		}
		f.open = false
		f.unlockAndPublish()
	})
}

// Close hides the dropdown immediately, keeping the current suggestions
func (f *Fetcher) Close() {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return
	}
	f.blur.Cancel()
	f.open = false
	f.unlockAndPublish()
}

// Dispose cancels pending timers and the in-flight lookup. Once it returns no
// further state changes or OnChange calls happen. Safe to call more than once.
func (f *Fetcher) Dispose() {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return
	}
	f.disposed = true
	f.debouncer.Cancel()
	f.blur.Cancel()
	f.cancelLookupLocked()
	f.mu.Unlock()

	// wait out a delivery that started before we flipped disposed
	f.notifyMu.Lock()
	f.notifyMu.Unlock() //nolint:staticcheck // barrier
}

// View returns the current snapshot
func (f *Fetcher) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

// fire runs when the debounce timer elapses for query
func (f *Fetcher) fire(query string) {
	f.mu.Lock()
	if f.scheduled == query {
		f.scheduled = ""
	}
	if f.disposed || query != f.query {
		f.mu.Unlock()
		return
	}

	f.cancelLookupLocked()
	ctx, cancel := context.WithCancel(context.Background())
	f.token++
	token := f.token
	f.cancel = cancel
	f.state = StateLoading
	f.errMsg = ""
	f.log.Debug("lookup issued", zap.String("query", query), zap.Uint64("token", token))
	f.unlockAndPublish()

	go f.run(ctx, cancel, token, query)
}

func (f *Fetcher) run(ctx context.Context, cancel context.CancelFunc, token uint64, query string) {
	defer cancel()

	results, err := f.lookup.Lookup(ctx, query)

	f.mu.Lock()
	if f.disposed || token != f.token {
		f.mu.Unlock()
		f.log.Debug("stale lookup dropped", zap.String("query", query), zap.Uint64("token", token))
		return
	}
	f.cancel = nil

	if err != nil {
		if errors.Is(err, context.Canceled) {
			f.mu.Unlock()
			return
		}
		msg := err.Error()
		if msg == "" {
			msg = fallbackErrorMessage
		}
		f.log.Warn("lookup failed", zap.String("query", query), zap.Error(err))
		f.state = StateError
		f.errMsg = msg
		f.suggestions = nil
		f.open = true
		f.unlockAndPublish()
		return
	}

	f.suggestions = f.trim(results)
	if len(f.suggestions) > 0 {
		f.state = StateResults
		f.open = true
	} else {
		f.state = StateEmpty
		f.open = false
	}
	f.unlockAndPublish()
}

// trim keeps the first MaxSuggestions entries that have a label
func (f *Fetcher) trim(results []Suggestion) []Suggestion {
	out := make([]Suggestion, 0, min(len(results), f.opts.MaxSuggestions))
	for _, s := range results {
		if strings.TrimSpace(s.Label) == "" {
			continue
		}
		out = append(out, s)
		if len(out) == f.opts.MaxSuggestions {
			break
		}
	}
	return out
}

// currentLocked reports whether a lookup for f.query is pending, running or answered
func (f *Fetcher) currentLocked() bool {
	if (f.scheduled != "" && f.scheduled == f.query) || f.cancel != nil {
		return true
	}
	return f.state == StateResults || f.state == StateEmpty
}

func (f *Fetcher) searchableLocked() bool {
	if utf8.RuneCountInString(f.query) < f.opts.MinQueryLength {
		return false
	}
	return f.committed == "" || f.query != f.committed
}

// resetLocked drops timers, the in-flight lookup and any results
func (f *Fetcher) resetLocked() {
	f.debouncer.Cancel()
	f.scheduled = ""
	f.cancelLookupLocked()
	f.suggestions = nil
	f.errMsg = ""
	f.state = StateIdle
	f.open = false
}

func (f *Fetcher) cancelLookupLocked() {
	if f.cancel == nil {
		return
	}
	f.cancel()
	f.cancel = nil
	// anything still answering for the old token is now stale
	f.token++
}

func (f *Fetcher) viewLocked() View {
	var suggestions []Suggestion
	if len(f.suggestions) > 0 {
		suggestions = make([]Suggestion, len(f.suggestions))
		copy(suggestions, f.suggestions)
	}
	return View{
		State:       f.state,
		Query:       f.query,
		Committed:   f.committed,
		Suggestions: suggestions,
		Err:         f.errMsg,
		Open:        f.open,
		Revision:    f.revision,
	}
}

// unlockAndPublish bumps the revision, releases f.mu and hands the snapshot to
// OnChange. Must be called with f.mu held.
func (f *Fetcher) unlockAndPublish() {
	f.revision++
	v := f.viewLocked()
	f.notifyMu.Lock()
	f.mu.Unlock()
	defer f.notifyMu.Unlock()

	if f.opts.OnChange != nil {
		f.opts.OnChange(v)
	}
}
