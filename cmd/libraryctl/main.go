// libraryctl is the console shell over the same lending engine the HTTP
// service uses. It always talks to the JSON snapshot file directly.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"Gin_postgres_redis_library_tool/engine"
	"Gin_postgres_redis_library_tool/models"
	"Gin_postgres_redis_library_tool/storage"
)

var dataFile string

func newEngine(ctx context.Context) (*engine.Engine, error) {
	gw := storage.NewFileGateway(dataFile)
	return engine.New(ctx, gw, engine.Options{CommitTimeout: 5 * time.Second})
}

func parseBookID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid book id %q", arg)
	}
	return id, nil
}

func main() {
	root := &cobra.Command{
		Use:           "libraryctl",
		Short:         "Manage the library inventory and loans",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultData := os.Getenv("DATA_FILE")
	if defaultData == "" {
		defaultData = "library_data.json"
	}
	root.PersistentFlags().StringVar(&dataFile, "data", defaultData, "path to the snapshot file")

	root.AddCommand(
		newAddCmd(),
		newListCmd(),
		newSearchCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newBorrowCmd(),
		newReturnCmd(),
		newLoansCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newAddCmd() *cobra.Command {
	var author, isbn, category string
	var copies int
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a book to the inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			book, err := eng.AddBook(cmd.Context(), args[0], author, copies, isbn, category)
			if err != nil {
				return err
			}
			fmt.Printf("added #%d %q (%d copies)\n", book.ID, book.Title, book.TotalCopies)
			return nil
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "book author")
	cmd.Flags().IntVar(&copies, "copies", 1, "total copies in stock")
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN")
	cmd.Flags().StringVar(&category, "category", "", "category")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			printBooks(eng.ListBooks())
			return nil
		},
	}
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search books by title or author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			printBooks(eng.SearchBooks(args[0]))
			return nil
		},
	}
}

func newUpdateCmd() *cobra.Command {
	var title, author, isbn, category string
	var copies, available int
	cmd := &cobra.Command{
		Use:   "update <book-id>",
		Short: "Edit a book's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			var changes engine.BookChanges
			if cmd.Flags().Changed("title") {
				changes.Title = &title
			}
			if cmd.Flags().Changed("author") {
				changes.Author = &author
			}
			if cmd.Flags().Changed("isbn") {
				changes.ISBN = &isbn
			}
			if cmd.Flags().Changed("category") {
				changes.Category = &category
			}
			if cmd.Flags().Changed("copies") {
				changes.TotalCopies = &copies
			}
			if cmd.Flags().Changed("available") {
				changes.AvailableCopies = &available
			}

			eng, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			book, err := eng.UpdateBook(cmd.Context(), id, changes)
			if err != nil {
				return err
			}
			fmt.Printf("updated #%d %q (%d/%d available)\n",
				book.ID, book.Title, book.AvailableCopies, book.TotalCopies)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&author, "author", "", "new author")
	cmd.Flags().StringVar(&isbn, "isbn", "", "new ISBN")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().IntVar(&copies, "copies", 0, "new total copies")
	cmd.Flags().IntVar(&available, "available", 0, "explicit available copies")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <book-id>",
		Short: "Delete a book and its outstanding loans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			eng, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			deleted, err := eng.DeleteBook(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d book(s)\n", deleted)
			return nil
		},
	}
}

func newBorrowCmd() *cobra.Command {
	var borrower, due string
	cmd := &cobra.Command{
		Use:   "borrow <book-id>",
		Short: "Issue one copy to a borrower",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			eng, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			loan, err := eng.BorrowBook(cmd.Context(), id, borrower, due)
			if err != nil {
				return err
			}
			fmt.Printf("issued book #%d to %s", loan.BookID, loan.Borrower)
			if loan.Due != "" {
				fmt.Printf(" (due %s)", loan.Due)
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().StringVar(&borrower, "borrower", "", "who is borrowing")
	cmd.Flags().StringVar(&due, "due", "", "due date, free-form")
	return cmd
}

func newReturnCmd() *cobra.Command {
	var borrower string
	cmd := &cobra.Command{
		Use:   "return <book-id>",
		Short: "Return one copy; oldest loan first when no borrower is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			eng, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := eng.ReturnBook(cmd.Context(), id, borrower); err != nil {
				return err
			}
			fmt.Printf("returned book #%d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&borrower, "borrower", "", "match this borrower's loan")
	return cmd
}

func newLoansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "loans",
		Short: "List outstanding loans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			loans := eng.ListOpenLoans()
			if len(loans) == 0 {
				fmt.Println("no outstanding loans")
				return nil
			}
			fmt.Printf("%-6s %-30s %-20s %-12s %s\n", "BOOK", "TITLE", "BORROWER", "DUE", "ISSUED")
			for _, l := range loans {
				issued := time.UnixMilli(l.IssuedAt).Format("2006-01-02 15:04")
				fmt.Printf("%-6d %-30s %-20s %-12s %s\n", l.BookID, l.Title, l.Borrower, l.Due, issued)
			}
			return nil
		},
	}
}

func printBooks(books []models.Book) {
	if len(books) == 0 {
		fmt.Println("no books")
		return
	}
	fmt.Printf("%-6s %-30s %-25s %-15s %s\n", "ID", "TITLE", "AUTHOR", "CATEGORY", "AVAILABLE")
	for _, b := range books {
		fmt.Printf("%-6d %-30s %-25s %-15s %d/%d\n",
			b.ID, b.Title, b.Author, b.Category, b.AvailableCopies, b.TotalCopies)
	}
}
