package library

import (
	"context"
	"fmt"
)

// ListEvents fetches circulation events, newest first (server ordering).
func (c *Client) ListEvents(ctx context.Context) ([]LibraryEvent, error) {
	var events []LibraryEvent
	if err := c.get(ctx, "/events/", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetEvent fetches one event by id.
func (c *Client) GetEvent(ctx context.Context, id int64) (*LibraryEvent, error) {
	var event LibraryEvent
	if err := c.get(ctx, fmt.Sprintf("/events/%d/", id), nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEvent records a circulation event directly. Used by the log
// importer; the desk itself goes through the borrow/return actions.
func (c *Client) CreateEvent(ctx context.Context, event *LibraryEvent) (*LibraryEvent, error) {
	var created LibraryEvent
	if err := c.post(ctx, "/events/", event, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateEvent replaces an event record (PUT).
func (c *Client) UpdateEvent(ctx context.Context, id int64, event *LibraryEvent) (*LibraryEvent, error) {
	var updated LibraryEvent
	if err := c.put(ctx, fmt.Sprintf("/events/%d/", id), event, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// PatchEvent applies a partial update (PATCH) from the given fields.
func (c *Client) PatchEvent(ctx context.Context, id int64, fields map[string]any) (*LibraryEvent, error) {
	var updated LibraryEvent
	if err := c.patch(ctx, fmt.Sprintf("/events/%d/", id), fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteEvent deletes an event.
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/events/%d/", id))
}
