package library

import (
	"context"
	"fmt"
)

// ListBookCopies fetches all book copies.
func (c *Client) ListBookCopies(ctx context.Context) ([]BookCopy, error) {
	var copies []BookCopy
	if err := c.get(ctx, "/book-copies/", nil, &copies); err != nil {
		return nil, err
	}
	return copies, nil
}

// SearchBookCopies runs the autocomplete search over call number and title.
func (c *Client) SearchBookCopies(ctx context.Context, q string) ([]Suggestion, error) {
	return c.search(ctx, "/book-copies/search/", q)
}

// GetBookCopy fetches one copy by id.
func (c *Client) GetBookCopy(ctx context.Context, id int64) (*BookCopy, error) {
	var copy BookCopy
	if err := c.get(ctx, fmt.Sprintf("/book-copies/%d/", id), nil, &copy); err != nil {
		return nil, err
	}
	return &copy, nil
}

// CreateBookCopy registers a physical copy of a book.
func (c *Client) CreateBookCopy(ctx context.Context, copy *BookCopy) (*BookCopy, error) {
	var created BookCopy
	if err := c.post(ctx, "/book-copies/", copy, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateBookCopy replaces a copy record (PUT).
func (c *Client) UpdateBookCopy(ctx context.Context, id int64, copy *BookCopy) (*BookCopy, error) {
	var updated BookCopy
	if err := c.put(ctx, fmt.Sprintf("/book-copies/%d/", id), copy, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// PatchBookCopy applies a partial update (PATCH) from the given fields.
func (c *Client) PatchBookCopy(ctx context.Context, id int64, fields map[string]any) (*BookCopy, error) {
	var updated BookCopy
	if err := c.patch(ctx, fmt.Sprintf("/book-copies/%d/", id), fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteBookCopy deletes a copy.
func (c *Client) DeleteBookCopy(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/book-copies/%d/", id))
}
