package library

import "time"

// Suggestion is a lightweight search-result entry shown before full details
// are fetched. The optional fields depend on the entity kind: customer
// suggestions carry phone/passport, book suggestions carry author/unique id,
// copy suggestions carry call number and book title.
type Suggestion struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`

	Phone      string `json:"phone,omitempty"`
	Passport   string `json:"passport,omitempty"`
	AuthorName string `json:"author_name,omitempty"`
	UniqueID   string `json:"unique_id,omitempty"`
	CallNumber string `json:"call_number,omitempty"`
	BookTitle  string `json:"book_title,omitempty"`
}

// Customer is a registered library customer. Fetched whole; never partially
// mutated by the desk.
type Customer struct {
	ID        int64      `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone,omitempty"`
	Passport  string     `json:"passport"`
	Email     string     `json:"email,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Address   string     `json:"address,omitempty"`
	CityRaw   string     `json:"city_raw,omitempty"`
	Zip       string     `json:"zip,omitempty"`
	CreatedAt time.Time  `json:"created_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at,omitempty"`
}

// DisplayName renders a customer the way search suggestions do: "Last First".
func (c *Customer) DisplayName() string {
	return c.LastName + " " + c.FirstName
}

// Book is a title in the catalog. Availability is tracked in aggregate over
// its copies; the specific copy is chosen server-side on borrow.
type Book struct {
	ID              int64      `json:"id"`
	UniqueID        string     `json:"unique_id"`
	Title           string     `json:"title"`
	AuthorName      string     `json:"author_name,omitempty"`
	DescriptionHTML string     `json:"description_html,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	ImageURL        string     `json:"image_url,omitempty"`
	CopiesCount     int        `json:"copies_count"`
	AvailableCopies int        `json:"available_copies"`
	TotalBorrowed   int        `json:"total_borrowed"`
	CreatedAt       time.Time  `json:"created_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at,omitempty"`
}

// BookCopy is a physical, allocatable instance of a book.
type BookCopy struct {
	ID         int64     `json:"id"`
	BookID     int64     `json:"book"`
	CallNumber string    `json:"call_number"`
	BookTitle  string    `json:"book_title,omitempty"`
	BookAuthor string    `json:"book_author,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// Event types recorded in the circulation log.
const (
	EventBorrow  = "BORROW"
	EventRelease = "RELEASE"
)

// LibraryEvent is one circulation log entry (borrow or release).
type LibraryEvent struct {
	ID           int64     `json:"id,omitempty"`
	EventType    string    `json:"event_type"`
	ActionDT     time.Time `json:"action_dt"`
	CustomerID   int64     `json:"customer"`
	CustomerName string    `json:"customer_name,omitempty"`
	BookCopyID   int64     `json:"book_copy"`
	BookTitle    string    `json:"book_title,omitempty"`
	SourceHash   string    `json:"source_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// BorrowRecord is one entry of a customer's active borrows. It disappears
// from the list only when the server says so, never by local guessing.
type BorrowRecord struct {
	EventID    int64     `json:"event_id"`
	BorrowedOn time.Time `json:"borrowed_on"`
	BookID     int64     `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	BookCopyID int64     `json:"book_copy_id"`
}

// HistoryEntry is one entry of a customer's full borrowing history.
type HistoryEntry struct {
	BorrowEventID int64      `json:"borrow_event_id"`
	BorrowedOn    time.Time  `json:"borrowed_on"`
	ReturnedOn    *time.Time `json:"returned_on,omitempty"`
	BookID        int64      `json:"book_id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	BookCopyID    int64      `json:"book_copy_id"`
	Status        string     `json:"status"`
}

// BorrowResult is the server's answer to a borrow request.
type BorrowResult struct {
	Status        string `json:"status"`
	BorrowEventID int64  `json:"borrow_event_id"`
	BookTitle     string `json:"book_title"`
}

// ReturnResult is the server's answer to a return request.
type ReturnResult struct {
	Status         string `json:"status"`
	ReleaseEventID int64  `json:"release_event_id"`
}

// suggestionsEnvelope wraps the search endpoints' response shape.
type suggestionsEnvelope struct {
	Suggestions []Suggestion `json:"suggestions"`
	Count       int          `json:"count"`
}

// resultsEnvelope wraps the borrowed/history endpoints' response shape.
type resultsEnvelope[T any] struct {
	Results []T `json:"results"`
	Count   int `json:"count"`
}
