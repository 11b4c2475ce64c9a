package library

import (
	"context"
	"fmt"
)

// ListBooks fetches all books.
func (c *Client) ListBooks(ctx context.Context) ([]Book, error) {
	var books []Book
	if err := c.get(ctx, "/books/", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// SearchBooks runs the autocomplete search over title, author and unique id.
func (c *Client) SearchBooks(ctx context.Context, q string) ([]Suggestion, error) {
	return c.search(ctx, "/books/search/", q)
}

// GetBook fetches one book by id, including the aggregated copy counts.
func (c *Client) GetBook(ctx context.Context, id int64) (*Book, error) {
	var book Book
	if err := c.get(ctx, fmt.Sprintf("/books/%d/", id), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// CreateBook creates a book and returns the stored record.
func (c *Client) CreateBook(ctx context.Context, book *Book) (*Book, error) {
	var created Book
	if err := c.post(ctx, "/books/", book, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateBook replaces a book record (PUT).
func (c *Client) UpdateBook(ctx context.Context, id int64, book *Book) (*Book, error) {
	var updated Book
	if err := c.put(ctx, fmt.Sprintf("/books/%d/", id), book, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// PatchBook applies a partial update (PATCH) from the given fields.
func (c *Client) PatchBook(ctx context.Context, id int64, fields map[string]any) (*Book, error) {
	var updated Book
	if err := c.patch(ctx, fmt.Sprintf("/books/%d/", id), fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteBook deletes a book.
func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/books/%d/", id))
}
