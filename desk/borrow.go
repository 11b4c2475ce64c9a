package desk

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"library-desk/library"
)

// BorrowState is the borrow workflow's current phase.
type BorrowState int

// Borrow workflow states.
const (
	BorrowIdle BorrowState = iota
	BorrowSearching
	BorrowFound
	BorrowErrored
	BorrowBorrowing
)

func (s BorrowState) String() string {
	switch s {
	case BorrowIdle:
		return "idle"
	case BorrowSearching:
		return "searching"
	case BorrowFound:
		return "found"
	case BorrowErrored:
		return "error"
	case BorrowBorrowing:
		return "borrowing"
	default:
		return "unknown"
	}
}

// BorrowClient is the slice of the API the borrow workflow needs.
type BorrowClient interface {
	GetBook(ctx context.Context, id int64) (*library.Book, error)
	SearchBooks(ctx context.Context, q string) ([]library.Suggestion, error)
	Borrow(ctx context.Context, customerID, bookID int64) (*library.BorrowResult, error)
}

// BorrowFlow drives borrowing one book for one customer:
//
//	idle -> searching -> found | errored
//	found -> borrowing -> idle (success) | found (server rejected)
//	found/errored -> idle (cancel)
//
// The server, not the flow, selects which physical copy to allocate.
type BorrowFlow struct {
	client     BorrowClient
	customerID int64
	onSuccess  func()
	logger     *slog.Logger

	mu      sync.Mutex
	state   BorrowState
	bookRef string
	book    *library.Book
	errMsg  string
}

// NewBorrowFlow creates a borrow workflow for one customer. onSuccess fires
// exactly once per completed borrow so the parent can refresh its
// borrowed-list view; it may be nil.
func NewBorrowFlow(client BorrowClient, customerID int64, onSuccess func(), logger *slog.Logger) *BorrowFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &BorrowFlow{
		client:     client,
		customerID: customerID,
		onSuccess:  onSuccess,
		logger:     logger,
		state:      BorrowIdle,
	}
}

// Submit resolves a book reference (numeric id, unique id, or title search)
// and moves the flow to found or errored. A book with no available copies is
// an error state with a message naming the title and copy counts; no borrow
// mutation is ever attempted for it.
func (f *BorrowFlow) Submit(ctx context.Context, ref string) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return
	}

	f.mu.Lock()
	f.state = BorrowSearching
	f.bookRef = ref
	f.book = nil
	f.errMsg = ""
	f.mu.Unlock()

	book, err := f.findBook(ctx, ref)

	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case err != nil && library.IsNotFound(err):
		f.state = BorrowErrored
		f.errMsg = fmt.Sprintf("Book %q not found", ref)
	case err != nil:
		f.state = BorrowErrored
		f.errMsg = err.Error()
	case book == nil:
		f.state = BorrowErrored
		f.errMsg = fmt.Sprintf("Book %q not found", ref)
	case book.AvailableCopies <= 0:
		f.state = BorrowErrored
		f.book = book
		f.errMsg = fmt.Sprintf("No available copies of %q (%d of %d copies out)",
			book.Title, book.CopiesCount-book.AvailableCopies, book.CopiesCount)
	default:
		f.state = BorrowFound
		f.book = book
	}
}

// findBook resolves a reference to a full book record: numeric ids fetch
// directly, anything else goes through the search endpoint and takes the
// first suggestion.
func (f *BorrowFlow) findBook(ctx context.Context, ref string) (*library.Book, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return f.client.GetBook(ctx, id)
	}

	suggestions, err := f.client.SearchBooks(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(suggestions) == 0 {
		return nil, nil
	}
	return f.client.GetBook(ctx, suggestions[0].ID)
}

// Confirm issues the borrow mutation. On success every transient field
// resets and the parent refresh callback fires once. On failure the server's
// message is shown and the flow stays in found; retry is a fresh Confirm.
func (f *BorrowFlow) Confirm(ctx context.Context) {
	f.mu.Lock()
	if f.state != BorrowFound || f.book == nil {
		f.mu.Unlock()
		return
	}
	f.state = BorrowBorrowing
	bookID := f.book.ID
	f.mu.Unlock()

	result, err := f.client.Borrow(ctx, f.customerID, bookID)

	f.mu.Lock()
	if err != nil {
		f.state = BorrowFound
		f.errMsg = err.Error()
		f.mu.Unlock()
		return
	}

	f.logger.Debug("borrow succeeded",
		"customer_id", f.customerID,
		"book_id", bookID,
		"borrow_event_id", result.BorrowEventID)

	f.state = BorrowIdle
	f.bookRef = ""
	f.book = nil
	f.errMsg = ""
	f.mu.Unlock()

	if f.onSuccess != nil {
		f.onSuccess()
	}
}

// Cancel clears every transient field and returns to idle. It has no server
// side effects and is a no-op while a borrow is in flight.
func (f *BorrowFlow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == BorrowBorrowing {
		return
	}
	f.state = BorrowIdle
	f.bookRef = ""
	f.book = nil
	f.errMsg = ""
}

// State returns the current workflow state.
func (f *BorrowFlow) State() BorrowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Book returns the resolved book, if any.
func (f *BorrowFlow) Book() *library.Book {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.book
}

// ErrorMessage returns the current user-visible error text.
func (f *BorrowFlow) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}
