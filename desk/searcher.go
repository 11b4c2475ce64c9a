// Package desk holds the front-desk interaction state: debounced
// autocomplete search with stale-response supersession, the borrow workflow
// state machine, the per-row return action, and the container that composes
// them around a selected customer and book.
package desk

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"library-desk/library"
)

// DefaultDebounce is the quiet interval before a lookup is dispatched.
const DefaultDebounce = 300 * time.Millisecond

// LookupFunc issues an autocomplete search for a query.
type LookupFunc func(ctx context.Context, q string) ([]library.Suggestion, error)

// ResolveFunc fetches the full entity behind a suggestion.
type ResolveFunc[T any] func(ctx context.Context, id int64) (*T, error)

// Searcher is one search widget instance: it debounces a stream of input
// changes into at most one lookup per quiet interval, and guarantees that
// only the result matching the most recent input is ever applied.
//
// The state that the original UI kept in closure scope is explicit here:
// the pending timer, the monotonically increasing sequence number, and the
// current-query marker. In-flight lookups are never aborted at the transport
// level; a stale one is recognized on arrival and silently dropped.
type Searcher[T any] struct {
	lookup   LookupFunc
	resolve  ResolveFunc[T]
	display  func(*T) string
	onSelect func(*T)
	interval time.Duration
	logger   *slog.Logger

	mu          sync.Mutex
	timer       *time.Timer
	seq         uint64
	query       string
	input       string
	suggestions []library.Suggestion
	open        bool
	loading     bool
	selected    *T
}

// SearcherOption configures a Searcher.
type SearcherOption[T any] func(*Searcher[T])

// WithDebounce sets the quiet interval.
func WithDebounce[T any](d time.Duration) SearcherOption[T] {
	return func(s *Searcher[T]) {
		s.interval = d
	}
}

// WithSearcherLogger sets the logger.
func WithSearcherLogger[T any](logger *slog.Logger) SearcherOption[T] {
	return func(s *Searcher[T]) {
		s.logger = logger
	}
}

// OnSelect registers the parent callback. It fires with the resolved entity
// after a successful selection and with nil whenever the selection is
// cleared or invalidated.
func OnSelect[T any](fn func(*T)) SearcherOption[T] {
	return func(s *Searcher[T]) {
		s.onSelect = fn
	}
}

// NewSearcher builds a search widget. display renders an entity the way its
// suggestion text reads, so edits away from it invalidate the selection.
func NewSearcher[T any](lookup LookupFunc, resolve ResolveFunc[T], display func(*T) string, opts ...SearcherOption[T]) *Searcher[T] {
	s := &Searcher[T]{
		lookup:   lookup,
		resolve:  resolve,
		display:  display,
		interval: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetInput feeds one text-input change into the widget.
//
// A non-empty input resets the debounce timer; the lookup fires only after
// the quiet interval passes with no further changes. An empty input skips
// debouncing entirely: suggestions clear, the popup closes, and the parent
// is told synchronously that nothing is selected.
func (s *Searcher[T]) SetInput(text string) {
	s.mu.Lock()

	s.input = text
	notifyCleared := false

	// Edits away from the selected entity's display text invalidate the
	// selection before any network round trip.
	if s.selected != nil && text != s.display(s.selected) {
		s.selected = nil
		notifyCleared = true
	}

	// Any new input supersedes whatever is pending or in flight.
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if text == "" {
		s.query = ""
		s.suggestions = nil
		s.open = false
		notifyCleared = true
		s.mu.Unlock()
		if notifyCleared && s.onSelect != nil {
			s.onSelect(nil)
		}
		return
	}

	s.query = text
	tag := s.seq
	s.timer = time.AfterFunc(s.interval, func() {
		s.fire(tag, text)
	})
	s.mu.Unlock()

	if notifyCleared && s.onSelect != nil {
		s.onSelect(nil)
	}
}

// fire dispatches the lookup scheduled for (tag, q). The tag is re-checked
// before the call because timer.Stop cannot cancel a callback that already
// started, and again after the call because a newer input may have arrived
// while the request was in flight.
func (s *Searcher[T]) fire(tag uint64, q string) {
	s.mu.Lock()
	if tag != s.seq || s.query != q {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	suggestions, err := s.lookup(context.Background(), q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if tag != s.seq || s.query != q {
		// Stale response: a newer input superseded this lookup.
		return
	}
	if err != nil {
		s.logger.Debug("suggestion lookup failed", "query", q, "error", err)
		s.suggestions = nil
		s.open = false
		return
	}
	s.suggestions = suggestions
	s.open = len(suggestions) > 0
}

// Select resolves a suggestion into the full entity. The pending debounce
// timer is cancelled, the popup closes, and the loading flag is set for the
// duration of the detail fetch. On failure the selection reverts to none;
// the error is only logged.
func (s *Searcher[T]) Select(sug library.Suggestion) {
	s.mu.Lock()
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.suggestions = nil
	s.open = false
	s.loading = true
	s.input = sug.Text
	s.query = sug.Text
	s.mu.Unlock()

	entity, err := s.resolve(context.Background(), sug.ID)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.logger.Error("detail fetch failed", "id", sug.ID, "error", err)
		s.selected = nil
		s.mu.Unlock()
		if s.onSelect != nil {
			s.onSelect(nil)
		}
		return
	}
	s.selected = entity
	s.mu.Unlock()

	if s.onSelect != nil {
		s.onSelect(entity)
	}
}

// Input returns the current input text.
func (s *Searcher[T]) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Suggestions returns the currently visible suggestions.
func (s *Searcher[T]) Suggestions() []library.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestions
}

// PopupOpen reports whether the suggestion popup is showing.
func (s *Searcher[T]) PopupOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Loading reports whether a detail fetch is in flight.
func (s *Searcher[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Selected returns the currently selected entity, or nil.
func (s *Searcher[T]) Selected() *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}
