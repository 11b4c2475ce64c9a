package desk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"library-desk/library"
)

// ReturnClient is the slice of the API the return action needs.
type ReturnClient interface {
	Return(ctx context.Context, customerID, borrowEventID int64) (*library.ReturnResult, error)
	Borrowed(ctx context.Context, customerID int64) ([]library.BorrowRecord, error)
}

// Returner handles returning borrowed books for one customer. Each return is
// tracked by its borrow-event id so only that row's control is disabled
// while the request is in flight. The borrowed list is never trimmed
// locally: success triggers a full refetch so the final state is server
// truth.
type Returner struct {
	client     ReturnClient
	customerID int64
	onError    func(msg string)
	logger     *slog.Logger

	mu       sync.Mutex
	inFlight map[int64]bool
	records  []library.BorrowRecord
}

// NewReturner creates a return action bound to one customer. onError is the
// alert-style notification for failed returns; it may be nil.
func NewReturner(client ReturnClient, customerID int64, onError func(msg string), logger *slog.Logger) *Returner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Returner{
		client:     client,
		customerID: customerID,
		onError:    onError,
		logger:     logger,
		inFlight:   make(map[int64]bool),
	}
}

// Refresh refetches the customer's borrowed list in full.
func (r *Returner) Refresh(ctx context.Context) error {
	records, err := r.client.Borrowed(ctx, r.customerID)
	if err != nil {
		return fmt.Errorf("fetch borrowed list: %w", err)
	}
	r.mu.Lock()
	r.records = records
	r.mu.Unlock()
	return nil
}

// Return issues the return mutation for one borrow record. While in flight
// the record is marked busy; other rows stay interactive. On success the
// borrowed list is refetched. On failure the list is left unchanged and the
// server's message goes to the alert callback.
func (r *Returner) Return(ctx context.Context, borrowEventID int64) {
	r.mu.Lock()
	if r.inFlight[borrowEventID] {
		r.mu.Unlock()
		return
	}
	r.inFlight[borrowEventID] = true
	r.mu.Unlock()

	result, err := r.client.Return(ctx, r.customerID, borrowEventID)

	r.mu.Lock()
	delete(r.inFlight, borrowEventID)
	r.mu.Unlock()

	if err != nil {
		if r.onError != nil {
			r.onError(err.Error())
		}
		return
	}

	r.logger.Debug("return succeeded",
		"customer_id", r.customerID,
		"borrow_event_id", borrowEventID,
		"release_event_id", result.ReleaseEventID)

	if err := r.Refresh(ctx); err != nil {
		r.logger.Error("borrowed list refresh failed", "error", err)
	}
}

// Busy reports whether a return for the given record is in flight.
func (r *Returner) Busy(borrowEventID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inFlight[borrowEventID]
}

// Records returns the current borrowed list.
func (r *Returner) Records() []library.BorrowRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records
}
