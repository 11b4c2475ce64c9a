package library

import (
	"context"
	"fmt"
)

// ListCustomers fetches all customers.
func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	var customers []Customer
	if err := c.get(ctx, "/customers/", nil, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// SearchCustomers runs the autocomplete search over names, phone and
// passport.
func (c *Client) SearchCustomers(ctx context.Context, q string) ([]Suggestion, error) {
	return c.search(ctx, "/customers/search/", q)
}

// GetCustomer fetches one customer by id.
func (c *Client) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	var customer Customer
	if err := c.get(ctx, fmt.Sprintf("/customers/%d/", id), nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateCustomer creates a customer and returns the stored record.
func (c *Client) CreateCustomer(ctx context.Context, customer *Customer) (*Customer, error) {
	var created Customer
	if err := c.post(ctx, "/customers/", customer, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateCustomer replaces a customer record (PUT).
func (c *Client) UpdateCustomer(ctx context.Context, id int64, customer *Customer) (*Customer, error) {
	var updated Customer
	if err := c.put(ctx, fmt.Sprintf("/customers/%d/", id), customer, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// PatchCustomer applies a partial update (PATCH) from the given fields.
func (c *Client) PatchCustomer(ctx context.Context, id int64, fields map[string]any) (*Customer, error) {
	var updated Customer
	if err := c.patch(ctx, fmt.Sprintf("/customers/%d/", id), fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCustomer deletes a customer.
func (c *Client) DeleteCustomer(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/customers/%d/", id))
}

// Borrowed lists the customer's currently borrowed books (borrows without a
// later release).
func (c *Client) Borrowed(ctx context.Context, customerID int64) ([]BorrowRecord, error) {
	var envelope resultsEnvelope[BorrowRecord]
	if err := c.get(ctx, fmt.Sprintf("/customers/%d/borrowed/", customerID), nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}

// History lists the customer's complete borrowing history, newest first.
func (c *Client) History(ctx context.Context, customerID int64) ([]HistoryEntry, error) {
	var envelope resultsEnvelope[HistoryEntry]
	if err := c.get(ctx, fmt.Sprintf("/customers/%d/history/", customerID), nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}

// Borrow borrows one copy of the given book for the customer. The server
// picks which physical copy to allocate.
func (c *Client) Borrow(ctx context.Context, customerID, bookID int64) (*BorrowResult, error) {
	body := map[string]int64{"book_id": bookID}
	var result BorrowResult
	if err := c.post(ctx, fmt.Sprintf("/customers/%d/borrow/", customerID), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Return returns a borrowed book identified by its borrow event.
func (c *Client) Return(ctx context.Context, customerID, borrowEventID int64) (*ReturnResult, error) {
	body := map[string]int64{"borrow_event_id": borrowEventID}
	var result ReturnResult
	if err := c.post(ctx, fmt.Sprintf("/customers/%d/return/", customerID), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
