// Command librarydesk is the front-desk tool for the library-management
// API: customer and book lookup with incremental search, borrow and return
// workflows, and raw access to the underlying endpoints.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"library-desk/config"
	"library-desk/library"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagBaseURL string
	flagTimeout time.Duration
	flagConfig  string
	flagVerbose bool

	cfg    *config.Config
	client *library.Client
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "librarydesk",
		Short:         "Front desk for the library-management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}

	root.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "API base URL (overrides config)")
	root.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "request timeout (overrides config)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a config file")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(deskCmd())
	root.AddCommand(customerCmd())
	root.AddCommand(bookCmd())
	root.AddCommand(borrowCmd())
	root.AddCommand(returnCmd())
	root.AddCommand(loginCmd())
	return root
}

// setup loads the layered configuration, applies flag overrides, and builds
// the shared API client.
func setup() error {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagBaseURL != "" {
		loaded.BaseURL = flagBaseURL
	}
	if flagTimeout > 0 {
		loaded.Timeout = flagTimeout
	}

	cfg = loaded
	client = library.NewClient(cfg.BaseURL,
		library.WithTimeout(cfg.Timeout),
		library.WithAPIKey(cfg.APIKey),
		library.WithLogger(logger),
	)
	return nil
}

func deskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "desk",
		Short: "Interactive front-desk session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDesk(cmd.Context())
		},
	}
}

func customerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Customer lookups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			customer, err := client.GetCustomer(cmd.Context(), id)
			if err != nil {
				return err
			}
			printCustomer(customer)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "search <query>",
		Short: "Autocomplete search over names, phone and passport",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suggestions, err := client.SearchCustomers(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printSuggestions(suggestions)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "borrowed <id>",
		Short: "List the customer's active borrows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			records, err := client.Borrowed(cmd.Context(), id)
			if err != nil {
				return err
			}
			printBorrowed(records)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "history <id>",
		Short: "Show the customer's full borrowing history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			entries, err := client.History(cmd.Context(), id)
			if err != nil {
				return err
			}
			printHistory(entries)
			return nil
		},
	})

	return cmd
}

func bookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book lookups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one book with its copy counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			book, err := client.GetBook(cmd.Context(), id)
			if err != nil {
				return err
			}
			printBook(book)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "search <query>",
		Short: "Autocomplete search over title, author and unique id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suggestions, err := client.SearchBooks(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printSuggestions(suggestions)
			return nil
		},
	})

	return cmd
}

func borrowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <customer-id> <book-id>",
		Short: "Borrow one copy of a book for a customer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			customerID, err := parseID(args[0])
			if err != nil {
				return err
			}
			bookID, err := parseID(args[1])
			if err != nil {
				return err
			}
			result, err := client.Borrow(cmd.Context(), customerID, bookID)
			if err != nil {
				return err
			}
			fmt.Printf("Borrowed '%s' (event %d)\n", result.BookTitle, result.BorrowEventID)
			return nil
		},
	}
}

func returnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return <customer-id> <borrow-event-id>",
		Short: "Return a borrowed book by its borrow event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			customerID, err := parseID(args[0])
			if err != nil {
				return err
			}
			eventID, err := parseID(args[1])
			if err != nil {
				return err
			}
			result, err := client.Return(cmd.Context(), customerID, eventID)
			if err != nil {
				return err
			}
			fmt.Printf("Returned (release event %d)\n", result.ReleaseEventID)
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store the API key in the user config",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := readSecret("API key: ")
			if err != nil {
				return fmt.Errorf("failed to read API key: %w", err)
			}
			if key == "" {
				return fmt.Errorf("API key cannot be empty")
			}

			path := config.UserConfigPath()
			if path == "" {
				return fmt.Errorf("cannot determine home directory")
			}
			cfg.APIKey = key
			if err := cfg.SaveToFile(path); err != nil {
				return err
			}
			fmt.Printf("API key saved to %s\n", path)
			return nil
		},
	}
}

// readSecret reads a value with terminal echo disabled.
func readSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(raw)), nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id: %s", s)
	}
	return id, nil
}
