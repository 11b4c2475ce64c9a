package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"library-desk/desk"
	"library-desk/library"
)

// runDesk drives the interactive front-desk session: one desk container,
// two search widgets, and the borrow/return workflows for whichever
// customer is selected.
func runDesk(ctx context.Context) error {
	d := desk.New(client, cfg.Search.Debounce,
		desk.WithAlert(func(msg string) {
			fmt.Printf("\n*** %s ***\n", msg)
		}),
	)

	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Library front desk. Available commands:")
	fmt.Println("  Lookup: find customer, find book, show")
	fmt.Println("  Circulation: borrow, return, borrowed, history")
	fmt.Println("  System: tab, exit")

	for {
		fmt.Printf("\n[%s] > ", d.ActiveTab())
		if !scanner.Scan() {
			return nil
		}
		cmd := strings.TrimSpace(scanner.Text())

		switch cmd {
		case "find customer":
			d.SetTab(desk.TabCustomers)
			handleFind(ctx, scanner, searchPane[library.Customer]{
				searcher: d.Customers,
				describe: func(s library.Suggestion) string {
					return fmt.Sprintf("%s  phone=%s passport=%s", s.Text, s.Phone, s.Passport)
				},
			})
			if c := d.Customer(); c != nil {
				printCustomer(c)
				if r := d.Returner(); r != nil {
					printBorrowed(r.Records())
				}
			}
		case "find book":
			d.SetTab(desk.TabBooks)
			handleFind(ctx, scanner, searchPane[library.Book]{
				searcher: d.Books,
				describe: func(s library.Suggestion) string {
					return fmt.Sprintf("%s  author=%s uid=%s", s.Text, s.AuthorName, s.UniqueID)
				},
			})
			if b := d.Book(); b != nil {
				printBook(b)
			}
		case "show":
			handleShow(d)
		case "borrow":
			handleBorrow(ctx, scanner, d)
		case "return":
			handleReturn(ctx, scanner, d)
		case "borrowed":
			if r := d.Returner(); r != nil {
				if err := r.Refresh(ctx); err != nil {
					fmt.Printf("Error: %v\n", err)
					continue
				}
				printBorrowed(r.Records())
			} else {
				fmt.Println("Select a customer first ('find customer').")
			}
		case "history":
			handleHistory(ctx, d)
		case "tab":
			if d.ActiveTab() == desk.TabCustomers {
				d.SetTab(desk.TabBooks)
			} else {
				d.SetTab(desk.TabCustomers)
			}
		case "exit":
			fmt.Println("Goodbye!")
			return nil
		case "":
			continue
		default:
			fmt.Println("Unknown command. Type one of the available commands listed above.")
		}
	}
}

// searchPane pairs a search widget with its suggestion formatting.
type searchPane[T any] struct {
	searcher *desk.Searcher[T]
	describe func(library.Suggestion) string
}

// handleFind runs one incremental search interaction: every entered line is
// fed to the widget as an input change, suggestions are shown once the
// debounce window passes, and entering a number picks one. An empty line
// clears the search and leaves.
func handleFind[T any](ctx context.Context, sc *bufio.Scanner, pane searchPane[T]) {
	fmt.Println("Type to search, a number to pick, empty line to finish.")

	for {
		fmt.Print("search> ")
		if !sc.Scan() {
			return
		}
		text := strings.TrimSpace(sc.Text())

		if text == "" {
			if pane.searcher.Selected() == nil {
				pane.searcher.SetInput("")
				fmt.Println("Search cleared.")
			}
			return
		}

		if n, err := strconv.Atoi(text); err == nil {
			suggestions := pane.searcher.Suggestions()
			if n < 1 || n > len(suggestions) {
				fmt.Printf("Pick a number between 1 and %d.\n", len(suggestions))
				continue
			}
			pane.searcher.Select(suggestions[n-1])
			if pane.searcher.Selected() == nil {
				fmt.Println("Could not load details; selection cleared.")
				continue
			}
			return
		}

		pane.searcher.SetInput(text)
		suggestions := awaitSuggestions(ctx, pane.searcher)
		if len(suggestions) == 0 {
			fmt.Printf("No matches for %q.\n", text)
			continue
		}
		for i, s := range suggestions {
			fmt.Printf("%3d. %s\n", i+1, pane.describe(s))
		}
	}
}

// awaitSuggestions waits out the debounce window plus the lookup itself.
// The widget applies results on its own; this only polls for them so the
// REPL has something to print.
func awaitSuggestions[T any](ctx context.Context, s *desk.Searcher[T]) []library.Suggestion {
	time.Sleep(cfg.Search.Debounce)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return nil
		}
		if suggestions := s.Suggestions(); len(suggestions) > 0 {
			return suggestions
		}
		time.Sleep(25 * time.Millisecond)
	}
	return s.Suggestions()
}

func handleShow(d *desk.Desk) {
	if c := d.Customer(); c != nil {
		printCustomer(c)
	} else {
		fmt.Println("No customer selected.")
	}
	if b := d.Book(); b != nil {
		printBook(b)
	} else {
		fmt.Println("No book selected.")
	}
}

func handleBorrow(ctx context.Context, sc *bufio.Scanner, d *desk.Desk) {
	flow := d.Borrow()
	if flow == nil {
		fmt.Println("Select a customer first ('find customer').")
		return
	}

	fmt.Print("Book id or title: ")
	if !sc.Scan() {
		return
	}
	ref := strings.TrimSpace(sc.Text())
	if ref == "" {
		return
	}

	flow.Submit(ctx, ref)
	if flow.State() == desk.BorrowErrored {
		fmt.Printf("Error: %s\n", flow.ErrorMessage())
		flow.Cancel()
		return
	}

	book := flow.Book()
	fmt.Printf("Found '%s' by %s (%d of %d copies available). Borrow? [y/N] ",
		book.Title, book.AuthorName, book.AvailableCopies, book.CopiesCount)
	if !sc.Scan() {
		return
	}
	if answer := strings.ToLower(strings.TrimSpace(sc.Text())); answer != "y" && answer != "yes" {
		flow.Cancel()
		fmt.Println("Cancelled.")
		return
	}

	flow.Confirm(ctx)
	if flow.State() == desk.BorrowIdle {
		fmt.Printf("Borrowed '%s'.\n", book.Title)
		if r := d.Returner(); r != nil {
			printBorrowed(r.Records())
		}
	} else {
		fmt.Printf("Error: %s\n", flow.ErrorMessage())
		flow.Cancel()
	}
}

func handleReturn(ctx context.Context, sc *bufio.Scanner, d *desk.Desk) {
	r := d.Returner()
	if r == nil {
		fmt.Println("Select a customer first ('find customer').")
		return
	}
	if err := r.Refresh(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	records := r.Records()
	if len(records) == 0 {
		fmt.Println("Nothing is borrowed.")
		return
	}
	printBorrowed(records)

	fmt.Print("Borrow event id to return: ")
	if !sc.Scan() {
		return
	}
	eventID, err := parseID(sc.Text())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	r.Return(ctx, eventID)
	printBorrowed(r.Records())
}

func handleHistory(ctx context.Context, d *desk.Desk) {
	c := d.Customer()
	if c == nil {
		fmt.Println("Select a customer first ('find customer').")
		return
	}
	entries, err := client.History(ctx, c.ID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printHistory(entries)
}

// ------------------ Output helpers ------------------

func printCustomer(c *library.Customer) {
	fmt.Printf("Customer #%d: %s\n", c.ID, c.DisplayName())
	fmt.Printf("  passport: %s  phone: %s  email: %s\n", c.Passport, c.Phone, c.Email)
	if c.BirthDate != nil {
		fmt.Printf("  born: %s\n", c.BirthDate.Format("2006-01-02"))
	}
	if c.Address != "" || c.CityRaw != "" || c.Zip != "" {
		fmt.Printf("  address: %s %s %s\n", c.Address, c.CityRaw, c.Zip)
	}
}

func printBook(b *library.Book) {
	fmt.Printf("Book #%d: %s by %s (uid %s)\n", b.ID, b.Title, b.AuthorName, b.UniqueID)
	fmt.Printf("  copies: %d total, %d available, borrowed %d times\n",
		b.CopiesCount, b.AvailableCopies, b.TotalBorrowed)
}

func printSuggestions(suggestions []library.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Println("No matches.")
		return
	}
	fmt.Printf("%-5s %-35s %s\n", "ID", "Text", "Extra")
	fmt.Println(strings.Repeat("-", 70))
	for _, s := range suggestions {
		extra := s.Passport
		if extra == "" {
			extra = s.UniqueID
		}
		if extra == "" {
			extra = s.CallNumber
		}
		fmt.Printf("%-5d %-35s %s\n", s.ID, truncateString(s.Text, 35), extra)
	}
}

func printBorrowed(records []library.BorrowRecord) {
	if len(records) == 0 {
		fmt.Println("No active borrows.")
		return
	}
	fmt.Printf("%-8s %-35s %-25s %s\n", "Event", "Title", "Author", "Borrowed on")
	fmt.Println(strings.Repeat("-", 90))
	for _, rec := range records {
		fmt.Printf("%-8d %-35s %-25s %s\n",
			rec.EventID,
			truncateString(rec.Title, 35),
			truncateString(rec.Author, 25),
			rec.BorrowedOn.Format("2006-01-02 15:04"))
	}
}

func printHistory(entries []library.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Println("No history.")
		return
	}
	fmt.Printf("%-8s %-35s %-12s %-12s %s\n", "Event", "Title", "Borrowed", "Returned", "Status")
	fmt.Println(strings.Repeat("-", 95))
	for _, e := range entries {
		returned := "-"
		if e.ReturnedOn != nil {
			returned = e.ReturnedOn.Format("2006-01-02")
		}
		fmt.Printf("%-8d %-35s %-12s %-12s %s\n",
			e.BorrowEventID,
			truncateString(e.Title, 35),
			e.BorrowedOn.Format("2006-01-02"),
			returned,
			e.Status)
	}
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
