package library_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-desk/library"
)

func TestClient_GetCustomer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/customers/7/", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":         7,
			"first_name": "Ada",
			"last_name":  "Lovelace",
			"passport":   "P-1001",
			"email":      "ada@example.com",
		})
	}))
	defer server.Close()

	client := library.NewClient(server.URL, library.WithAPIKey("sekrit"))

	customer, err := client.GetCustomer(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), customer.ID)
	assert.Equal(t, "Lovelace Ada", customer.DisplayName())
	assert.Equal(t, "P-1001", customer.Passport)
}

func TestClient_SearchUnwrapsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/search/", r.URL.Path)
		assert.Equal(t, "dune", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"suggestions": []map[string]any{
				{"id": 3, "text": "Dune", "author_name": "Frank Herbert", "unique_id": "B-3"},
			},
			"count": 1,
		})
	}))
	defer server.Close()

	client := library.NewClient(server.URL)

	suggestions, err := client.SearchBooks(context.Background(), "dune")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Dune", suggestions[0].Text)
	assert.Equal(t, "Frank Herbert", suggestions[0].AuthorName)
}

func TestClient_SearchBlankQuerySkipsRequest(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := library.NewClient(server.URL)

	suggestions, err := client.SearchCustomers(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
	assert.Equal(t, int64(0), calls.Load())
}

func TestClient_ErrorWithDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "No available copies of 'Dune'"})
	}))
	defer server.Close()

	client := library.NewClient(server.URL)

	_, err := client.Borrow(context.Background(), 1, 3)
	require.Error(t, err)

	apiErr, ok := library.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "No available copies of 'Dune'", err.Error())
}

func TestClient_ErrorWithoutParseableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>boom</html>"))
	}))
	defer server.Close()

	client := library.NewClient(server.URL)

	_, err := client.GetBook(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "HTTP error, status 500", err.Error())
}

func TestClient_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Not found."})
	}))
	defer server.Close()

	client := library.NewClient(server.URL)

	_, err := client.GetCustomer(context.Background(), 9999)
	require.Error(t, err)
	assert.True(t, library.IsNotFound(err))
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Refuse all connections.

	client := library.NewClient(server.URL)

	_, err := client.ListBooks(context.Background())
	require.Error(t, err)
	_, ok := library.AsAPIError(err)
	assert.False(t, ok, "transport failures are not API errors")
}

func TestClient_BorrowSendsBookID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/customers/4/borrow/", r.URL.Path)

		var body map[string]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(12), body["book_id"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"status":          "ok",
			"borrow_event_id": 55,
			"book_title":      "Dune",
		})
	}))
	defer server.Close()

	client := library.NewClient(server.URL)

	result, err := client.Borrow(context.Background(), 4, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(55), result.BorrowEventID)
	assert.Equal(t, "Dune", result.BookTitle)
}

func TestClient_ReturnSendsBorrowEventID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customers/4/return/", r.URL.Path)

		var body map[string]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(55), body["borrow_event_id"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"status": "ok", "release_event_id": 56})
	}))
	defer server.Close()

	client := library.NewClient(server.URL)

	result, err := client.Return(context.Background(), 4, 55)
	require.NoError(t, err)
	assert.Equal(t, int64(56), result.ReleaseEventID)
}

func TestClient_BorrowedUnwrapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customers/4/borrowed/", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{
					"event_id":     55,
					"borrowed_on":  "2026-08-01T10:00:00Z",
					"id":           12,
					"title":        "Dune",
					"author":       "Frank Herbert",
					"book_copy_id": 31,
				},
			},
			"count": 1,
		})
	}))
	defer server.Close()

	client := library.NewClient(server.URL)

	records, err := client.Borrowed(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(55), records[0].EventID)
	assert.Equal(t, "Dune", records[0].Title)
	assert.Equal(t, int64(31), records[0].BookCopyID)
}

func TestClient_HistoryIncludesReturns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customers/4/history/", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{
					"borrow_event_id": 55,
					"borrowed_on":     "2026-08-01T10:00:00Z",
					"returned_on":     "2026-08-10T09:00:00Z",
					"book_id":         12,
					"title":           "Dune",
					"author":          "Frank Herbert",
					"book_copy_id":    31,
					"status":          "returned",
				},
				{
					"borrow_event_id": 60,
					"borrowed_on":     "2026-08-12T10:00:00Z",
					"book_id":         13,
					"title":           "Hyperion",
					"author":          "Dan Simmons",
					"book_copy_id":    40,
					"status":          "currently borrowed",
				},
			},
			"count": 2,
		})
	}))
	defer server.Close()

	client := library.NewClient(server.URL)

	entries, err := client.History(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NotNil(t, entries[0].ReturnedOn)
	assert.Nil(t, entries[1].ReturnedOn)
	assert.Equal(t, "currently borrowed", entries[1].Status)
}

func TestClient_DeleteBookCopy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/book-copies/9/", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := library.NewClient(server.URL)

	require.NoError(t, client.DeleteBookCopy(context.Background(), 9))
}
