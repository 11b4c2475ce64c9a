package desk

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"library-desk/library"
)

// Tab identifies which pane of the desk is visible.
type Tab int

// Desk tabs.
const (
	TabCustomers Tab = iota
	TabBooks
)

func (t Tab) String() string {
	if t == TabBooks {
		return "books"
	}
	return "customers"
}

// Client is the full API surface the desk needs. *library.Client satisfies
// it; tests substitute fakes.
type Client interface {
	SearchCustomers(ctx context.Context, q string) ([]library.Suggestion, error)
	GetCustomer(ctx context.Context, id int64) (*library.Customer, error)
	SearchBooks(ctx context.Context, q string) ([]library.Suggestion, error)
	GetBook(ctx context.Context, id int64) (*library.Book, error)
	Borrow(ctx context.Context, customerID, bookID int64) (*library.BorrowResult, error)
	Return(ctx context.Context, customerID, borrowEventID int64) (*library.ReturnResult, error)
	Borrowed(ctx context.Context, customerID int64) ([]library.BorrowRecord, error)
}

// Desk is the container: it owns which customer and book are selected and
// which tab is visible, and composes the searchers, the borrow flow, and the
// return action. All other state lives in the components themselves.
type Desk struct {
	client Client
	logger *slog.Logger

	// OnAlert receives blocking, alert-style notifications (failed
	// returns). Inline errors stay inside the components.
	OnAlert func(msg string)

	Customers *Searcher[library.Customer]
	Books     *Searcher[library.Book]

	mu       sync.Mutex
	tab      Tab
	customer *library.Customer
	book     *library.Book
	borrow   *BorrowFlow
	returner *Returner
}

// DeskOption configures a Desk.
type DeskOption func(*Desk)

// WithLogger sets the desk logger.
func WithLogger(logger *slog.Logger) DeskOption {
	return func(d *Desk) {
		d.logger = logger
	}
}

// WithAlert sets the alert-style notification sink.
func WithAlert(fn func(msg string)) DeskOption {
	return func(d *Desk) {
		d.OnAlert = fn
	}
}

// New creates a desk over the given client, with search widgets debounced at
// the given interval.
func New(client Client, debounce time.Duration, opts ...DeskOption) *Desk {
	d := &Desk{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.Customers = NewSearcher(
		client.SearchCustomers,
		client.GetCustomer,
		func(c *library.Customer) string { return c.DisplayName() },
		WithDebounce[library.Customer](debounce),
		WithSearcherLogger[library.Customer](d.logger),
		OnSelect(d.setCustomer),
	)
	d.Books = NewSearcher(
		client.SearchBooks,
		client.GetBook,
		func(b *library.Book) string { return b.Title },
		WithDebounce[library.Book](debounce),
		WithSearcherLogger[library.Book](d.logger),
		OnSelect(d.setBook),
	)
	return d
}

// setCustomer is the customer searcher's parent callback. Selecting a
// customer rebinds the borrow flow and the return action to them and loads
// their borrowed list; clearing the selection drops both.
func (d *Desk) setCustomer(c *library.Customer) {
	d.mu.Lock()
	d.customer = c
	if c == nil {
		d.borrow = nil
		d.returner = nil
		d.mu.Unlock()
		return
	}

	returner := NewReturner(d.client, c.ID, d.alert, d.logger)
	d.returner = returner
	d.borrow = NewBorrowFlow(d.client, c.ID, func() {
		// Borrow success refreshes the borrowed-list view.
		if err := returner.Refresh(context.Background()); err != nil {
			d.logger.Error("borrowed list refresh failed", "error", err)
		}
	}, d.logger)
	d.mu.Unlock()

	if err := returner.Refresh(context.Background()); err != nil {
		d.logger.Error("borrowed list fetch failed", "customer_id", c.ID, "error", err)
	}
}

// setBook is the book searcher's parent callback.
func (d *Desk) setBook(b *library.Book) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.book = b
}

func (d *Desk) alert(msg string) {
	if d.OnAlert != nil {
		d.OnAlert(msg)
	}
}

// SetTab switches the visible pane.
func (d *Desk) SetTab(tab Tab) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tab = tab
}

// ActiveTab returns the visible pane.
func (d *Desk) ActiveTab() Tab {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tab
}

// Customer returns the selected customer, or nil.
func (d *Desk) Customer() *library.Customer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.customer
}

// Book returns the selected book, or nil.
func (d *Desk) Book() *library.Book {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.book
}

// Borrow returns the borrow flow for the selected customer, or nil when no
// customer is selected.
func (d *Desk) Borrow() *BorrowFlow {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.borrow
}

// Returner returns the return action for the selected customer, or nil when
// no customer is selected.
func (d *Desk) Returner() *Returner {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.returner
}
