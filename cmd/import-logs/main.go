// Command import-logs batch-imports historical circulation logs through the
// library API. It accepts JSON Lines, a JSON array, or a single JSON object,
// ensures the referenced customers, books and copies exist, and records one
// event per log entry. Records with a stable source hash the server already
// knows are counted as skipped.
package main

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"library-desk/library"
)

type logRecord struct {
	Type           string      `json:"Type"`
	ActionDateTime string      `json:"ActionDateTime"`
	Customer       logCustomer `json:"Customer"`
	Book           logBook     `json:"Book"`
}

type logCustomer struct {
	FirstName   string `json:"FirstName"`
	LastName    string `json:"LastName"`
	PhoneNumber string `json:"PhoneNumber"`
	Email       string `json:"Email"`
	BirthDate   string `json:"BirthDate"`
	Address     string `json:"Address"`
	City        string `json:"City"`
	Zip         string `json:"Zip"`
	Passport    string `json:"Passport"`
}

type logBook struct {
	LibraryCallNumber string      `json:"LibraryCallNumber"`
	PublicationDate   string      `json:"PublicationDate"`
	ImageURL          string      `json:"Image_url"`
	Creation          logCreation `json:"LiteraryCreation"`
	// Some exports spell the key with a space.
	CreationSpaced logCreation `json:"Literary Creation"`
}

func (b *logBook) creation() logCreation {
	if b.Creation.UniqueID != "" || b.Creation.Title != "" {
		return b.Creation
	}
	return b.CreationSpaced
}

type logCreation struct {
	UniqueID    string    `json:"UniqueID"`
	Title       string    `json:"Title"`
	Description string    `json:"Description"`
	Author      logAuthor `json:"Author"`
}

type logAuthor struct {
	Name string `json:"Name"`
}

func main() {
	var (
		baseURL = flag.String("base-url", "http://localhost:8000/api", "API base URL")
		timeout = flag.Duration("timeout", 30*time.Second, "request timeout")
		dryRun  = flag.Bool("dry-run", false, "parse and analyze but do not write")
		limit   = flag.Int("limit", 0, "process only the first N records (0 = all)")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: import-logs [flags] <file>")
		os.Exit(2)
	}
	filePath := flag.Arg(0)

	records, err := readRecords(filepath.Clean(filePath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", filePath, err)
		os.Exit(1)
	}

	fmt.Printf("Importing logs from: %s (%d records)\n", filePath, len(records))
	if *dryRun {
		fmt.Println("DRY RUN: no writes")
	}

	errorCallNumbers, availability, borrowCounts := analyzeEvents(records)
	if len(errorCallNumbers) > 0 {
		fmt.Printf("Found %d copies with logic errors (will be excluded)\n", len(errorCallNumbers))
	}
	stillOut := 0
	for _, available := range availability {
		if !available {
			stillOut++
		}
	}
	fmt.Printf("Calculated borrow counts for %d books; %d copies end the log still borrowed\n",
		len(borrowCounts), stillOut)

	client := library.NewClient(*baseURL, library.WithTimeout(*timeout))
	importer := &importer{
		client:       client,
		borrowCounts: borrowCounts,
		customers:    make(map[string]int64),
		books:        make(map[string]int64),
		copies:       make(map[string]int64),
	}

	ctx := context.Background()
	processed, created, skipped, excluded := 0, 0, 0, 0

	for _, record := range records {
		processed++
		if *limit > 0 && processed > *limit {
			break
		}

		entry, err := normalizeRecord(record)
		if err != nil {
			skipped++
			continue
		}
		if errorCallNumbers[entry.callNumber] {
			excluded++
			continue
		}
		if *dryRun {
			continue
		}

		ok, err := importer.importEntry(ctx, entry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR %s: %v\n", entry.callNumber, err)
			skipped++
			continue
		}
		if ok {
			created++
		} else {
			skipped++
		}
	}

	fmt.Printf("\nDone. processed=%d, created_events=%d, skipped_events=%d, excluded_errors=%d\n",
		processed, created, skipped, excluded)
}

// readRecords loads records from JSON Lines, a JSON array, or a single JSON
// object.
func readRecords(path string) ([]logRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil, nil
	}

	if content[0] == '[' {
		var records []logRecord
		if err := json.Unmarshal([]byte(content), &records); err != nil {
			return nil, fmt.Errorf("invalid JSON array: %w", err)
		}
		return records, nil
	}

	// Either a single object or JSON Lines; try the object first.
	var single logRecord
	if err := json.Unmarshal([]byte(content), &single); err == nil && !strings.Contains(content, "\n") {
		return []logRecord{single}, nil
	}

	var records []logRecord
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var record logRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("invalid JSON line: %w", err)
		}
		records = append(records, record)
	}
	return records, scanner.Err()
}

// entry is one validated, normalized log record ready to import.
type entry struct {
	eventType  string
	actionDT   time.Time
	customer   logCustomer
	book       logBook
	creation   logCreation
	callNumber string
	sourceHash string
}

func normalizeRecord(record logRecord) (*entry, error) {
	passport := strings.TrimSpace(record.Customer.Passport)
	if passport == "" {
		return nil, fmt.Errorf("missing passport")
	}

	creation := record.Book.creation()
	uniqueID := strings.TrimSpace(creation.UniqueID)
	title := strings.TrimSpace(creation.Title)
	if uniqueID == "" || title == "" {
		return nil, fmt.Errorf("missing book identity")
	}

	callNumber := strings.TrimSpace(record.Book.LibraryCallNumber)
	if callNumber == "" {
		return nil, fmt.Errorf("missing call number")
	}

	eventType, err := normalizeEventType(record.Type)
	if err != nil {
		return nil, err
	}

	actionDT, ok := parseTimestamp(record.ActionDateTime)
	if !ok {
		return nil, fmt.Errorf("unparseable timestamp %q", record.ActionDateTime)
	}

	hashInput := fmt.Sprintf("%s|%s|%s|%s",
		eventType, actionDT.UTC().Format(time.RFC3339), passport, callNumber)
	sum := sha256.Sum256([]byte(hashInput))

	return &entry{
		eventType:  eventType,
		actionDT:   actionDT,
		customer:   record.Customer,
		book:       record.Book,
		creation:   creation,
		callNumber: callNumber,
		sourceHash: hex.EncodeToString(sum[:]),
	}, nil
}

func normalizeEventType(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "borrow":
		return library.EventBorrow, nil
	case "release":
		return library.EventRelease, nil
	default:
		return "", fmt.Errorf("unknown event type %q", value)
	}
}

// timestampLayouts are the formats the historical exports have used.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// typedEvent is the per-copy event shape used during analysis.
type typedEvent struct {
	eventType string
	at        time.Time
}

// analyzeEvents makes one pass over the records: copies whose log has two
// consecutive events of the same type are flagged as logic errors, the final
// availability of each copy comes from its last event, and borrow counts are
// totaled per book unique id.
func analyzeEvents(records []logRecord) (map[string]bool, map[string]bool, map[string]int) {
	copyEvents := make(map[string][]typedEvent)
	borrowCounts := make(map[string]int)

	for _, record := range records {
		callNumber := strings.TrimSpace(record.Book.LibraryCallNumber)
		if callNumber == "" {
			continue
		}
		eventType, err := normalizeEventType(record.Type)
		if err != nil {
			continue
		}
		actionDT, ok := parseTimestamp(record.ActionDateTime)
		if !ok {
			continue
		}

		if uniqueID := strings.TrimSpace(record.Book.creation().UniqueID); uniqueID != "" && eventType == library.EventBorrow {
			borrowCounts[uniqueID]++
		}
		copyEvents[callNumber] = append(copyEvents[callNumber], typedEvent{eventType, actionDT})
	}

	errorCallNumbers := make(map[string]bool)
	availability := make(map[string]bool)

	for callNumber, events := range copyEvents {
		sort.Slice(events, func(i, j int) bool { return events[i].at.Before(events[j].at) })

		for i := 1; i < len(events); i++ {
			if events[i-1].eventType == events[i].eventType {
				errorCallNumbers[callNumber] = true
				break
			}
		}
		availability[callNumber] = events[len(events)-1].eventType == library.EventRelease
	}

	return errorCallNumbers, availability, borrowCounts
}

// importer writes one normalized entry at a time through the API, caching
// the ids it has already resolved.
type importer struct {
	client       *library.Client
	borrowCounts map[string]int

	customers map[string]int64 // passport -> id
	books     map[string]int64 // unique_id -> id
	copies    map[string]int64 // call_number -> id
}

// importEntry ensures the customer, book and copy exist, then records the
// event. Returns false without error when the server already has an event
// with the same source hash.
func (im *importer) importEntry(ctx context.Context, e *entry) (bool, error) {
	customerID, err := im.ensureCustomer(ctx, e.customer)
	if err != nil {
		return false, fmt.Errorf("customer: %w", err)
	}
	bookID, err := im.ensureBook(ctx, e)
	if err != nil {
		return false, fmt.Errorf("book: %w", err)
	}
	copyID, err := im.ensureCopy(ctx, e.callNumber, bookID)
	if err != nil {
		return false, fmt.Errorf("copy: %w", err)
	}

	_, err = im.client.CreateEvent(ctx, &library.LibraryEvent{
		EventType:  e.eventType,
		ActionDT:   e.actionDT,
		CustomerID: customerID,
		BookCopyID: copyID,
		SourceHash: e.sourceHash,
	})
	if err != nil {
		// The source hash is unique server-side; a rejected duplicate is
		// a skip, not a failure.
		if apiErr, ok := library.AsAPIError(err); ok && apiErr.Status == 400 {
			return false, nil
		}
		return false, fmt.Errorf("event: %w", err)
	}
	return true, nil
}

func (im *importer) ensureCustomer(ctx context.Context, c logCustomer) (int64, error) {
	passport := strings.TrimSpace(c.Passport)
	if id, ok := im.customers[passport]; ok {
		return id, nil
	}

	suggestions, err := im.client.SearchCustomers(ctx, passport)
	if err != nil {
		return 0, err
	}
	for _, s := range suggestions {
		if s.Passport == passport {
			im.customers[passport] = s.ID
			return s.ID, nil
		}
	}

	customer := &library.Customer{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.PhoneNumber,
		Passport:  passport,
		Email:     c.Email,
		Address:   c.Address,
		CityRaw:   c.City,
		Zip:       c.Zip,
	}
	if birth, ok := parseTimestamp(c.BirthDate); ok {
		customer.BirthDate = &birth
	}
	created, err := im.client.CreateCustomer(ctx, customer)
	if err != nil {
		return 0, err
	}
	im.customers[passport] = created.ID
	return created.ID, nil
}

func (im *importer) ensureBook(ctx context.Context, e *entry) (int64, error) {
	uniqueID := strings.TrimSpace(e.creation.UniqueID)
	if id, ok := im.books[uniqueID]; ok {
		return id, nil
	}

	suggestions, err := im.client.SearchBooks(ctx, uniqueID)
	if err != nil {
		return 0, err
	}
	for _, s := range suggestions {
		if s.UniqueID == uniqueID {
			im.books[uniqueID] = s.ID
			// Keep the borrow counter in line with the log totals.
			if count, ok := im.borrowCounts[uniqueID]; ok {
				if _, err := im.client.PatchBook(ctx, s.ID, map[string]any{"total_borrowed": count}); err != nil {
					return 0, err
				}
			}
			return s.ID, nil
		}
	}

	book := &library.Book{
		UniqueID:        uniqueID,
		Title:           e.creation.Title,
		AuthorName:      e.creation.Author.Name,
		DescriptionHTML: e.creation.Description,
		ImageURL:        e.book.ImageURL,
		TotalBorrowed:   im.borrowCounts[uniqueID],
	}
	if pub, ok := parseTimestamp(e.book.PublicationDate); ok {
		book.PublicationDate = &pub
	}
	created, err := im.client.CreateBook(ctx, book)
	if err != nil {
		return 0, err
	}
	im.books[uniqueID] = created.ID
	return created.ID, nil
}

func (im *importer) ensureCopy(ctx context.Context, callNumber string, bookID int64) (int64, error) {
	if id, ok := im.copies[callNumber]; ok {
		return id, nil
	}

	suggestions, err := im.client.SearchBookCopies(ctx, callNumber)
	if err != nil {
		return 0, err
	}
	for _, s := range suggestions {
		if s.CallNumber == callNumber {
			im.copies[callNumber] = s.ID
			return s.ID, nil
		}
	}

	created, err := im.client.CreateBookCopy(ctx, &library.BookCopy{
		BookID:     bookID,
		CallNumber: callNumber,
	})
	if err != nil {
		return 0, err
	}
	im.copies[callNumber] = created.ID
	return created.ID, nil
}
