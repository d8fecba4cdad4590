// engine/engine.go
package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"Gin_postgres_redis_library_tool/models"
	"Gin_postgres_redis_library_tool/storage"
)

// Engine owns the in-memory inventory snapshot and is the only component
// allowed to mutate it. Every mutating operation runs behind one write lock:
// it clones the current snapshot, applies the change to the clone, commits
// the clone through the gateway, and only then publishes it. A failed commit
// discards the clone, so callers never observe a half-applied operation.
type Engine struct {
	mu      sync.RWMutex
	gateway storage.Gateway
	snap    models.Snapshot

	commitTimeout time.Duration
	now           func() time.Time
}

// Options tunes the engine. The zero value is usable.
type Options struct {
	// CommitTimeout bounds each gateway commit. Zero means no bound.
	CommitTimeout time.Duration
}

// New loads the last committed snapshot and returns a ready engine. A load
// failure (including corrupt state) is returned as-is so the caller can
// refuse to start instead of silently running on an empty inventory.
func New(ctx context.Context, gw storage.Gateway, opts Options) (*Engine, error) {
	snap, err := gw.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{
		gateway:       gw,
		snap:          snap,
		commitTimeout: opts.CommitTimeout,
		now:           time.Now,
	}, nil
}

// commit persists next and publishes it as the current snapshot. Must be
// called with the write lock held.
func (e *Engine) commit(ctx context.Context, next models.Snapshot) error {
	if e.commitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.commitTimeout)
		defer cancel()
	}
	if err := e.gateway.Commit(ctx, next); err != nil {
		return &PersistenceError{Err: err}
	}
	e.snap = next
	return nil
}

// AddBook creates a book with a fresh id and all copies available.
func (e *Engine) AddBook(ctx context.Context, title, author string, totalCopies int, isbn, category string) (models.Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Book{}, &ValidationError{Field: "title", Reason: "required"}
	}
	if totalCopies < 0 {
		return models.Book{}, &ValidationError{Field: "total_copies", Reason: "must be a non-negative integer"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.snap.Clone()
	book := models.Book{
		ID:              allocateID(&next),
		Title:           title,
		Author:          strings.TrimSpace(author),
		ISBN:            isbn,
		Category:        category,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
		AddedAt:         e.now().UnixMilli(),
	}
	next.Books = append(next.Books, book)

	if err := e.commit(ctx, next); err != nil {
		return models.Book{}, err
	}
	return book, nil
}

// BookChanges carries the optional field edits for UpdateBook. Nil means
// "leave unchanged".
type BookChanges struct {
	Title    *string `json:"title"`
	Author   *string `json:"author"`
	ISBN     *string `json:"isbn"`
	Category *string `json:"category"`
	Borrower *string `json:"borrower"`
	Due      *string `json:"due"`

	TotalCopies     *int `json:"total_copies"`
	AvailableCopies *int `json:"available_copies"`
}

// UpdateBook applies field edits. Free-text fields are overwritten verbatim.
// Resizing total_copies shifts available_copies by the same delta, clamped
// to [0, new total] so active loans never push availability out of range. An
// explicit available_copies outside that range is rejected rather than
// silently clamped.
func (e *Engine) UpdateBook(ctx context.Context, id int64, changes BookChanges) (models.Book, error) {
	if changes.TotalCopies != nil && *changes.TotalCopies < 0 {
		return models.Book{}, &ValidationError{Field: "total_copies", Reason: "must be a non-negative integer"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.snap.Clone()
	book := findBook(&next, id)
	if book == nil {
		return models.Book{}, &NotFoundError{Entity: "book", ID: id}
	}

	if changes.Title != nil {
		book.Title = *changes.Title
	}
	if changes.Author != nil {
		book.Author = *changes.Author
	}
	if changes.ISBN != nil {
		book.ISBN = *changes.ISBN
	}
	if changes.Category != nil {
		book.Category = *changes.Category
	}
	if changes.Borrower != nil {
		book.Borrower = *changes.Borrower
	}
	if changes.Due != nil {
		book.Due = *changes.Due
	}

	if changes.TotalCopies != nil {
		delta := *changes.TotalCopies - book.TotalCopies
		book.TotalCopies = *changes.TotalCopies
		book.AvailableCopies = clamp(book.AvailableCopies+delta, 0, book.TotalCopies)
	}
	if changes.AvailableCopies != nil {
		if *changes.AvailableCopies < 0 || *changes.AvailableCopies > book.TotalCopies {
			return models.Book{}, &ValidationError{
				Field:  "available_copies",
				Reason: "out of range [0, total_copies]",
			}
		}
		book.AvailableCopies = *changes.AvailableCopies
	}

	if err := e.commit(ctx, next); err != nil {
		return models.Book{}, err
	}
	return *book, nil
}

// DeleteBook removes a book and every outstanding loan for it in one commit.
// Removing a missing id is not an error; the returned count is 0.
func (e *Engine) DeleteBook(ctx context.Context, id int64) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.snap.Clone()
	count := 0
	if removeBook(&next, id) {
		count = 1
	}
	purged := removeLoansFor(&next, id)
	if count == 0 && purged == 0 {
		return 0, nil
	}

	if err := e.commit(ctx, next); err != nil {
		return 0, err
	}
	return count, nil
}

// BorrowBook issues one copy to borrower, recording the loan and keeping the
// book's display borrower/due on last-writer-wins terms.
func (e *Engine) BorrowBook(ctx context.Context, bookID int64, borrower, due string) (models.Loan, error) {
	borrower = strings.TrimSpace(borrower)
	if borrower == "" {
		return models.Loan{}, &ValidationError{Field: "borrower", Reason: "required"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.snap.Clone()
	book := findBook(&next, bookID)
	if book == nil {
		return models.Loan{}, &NotFoundError{Entity: "book", ID: bookID}
	}
	if book.AvailableCopies <= 0 {
		return models.Loan{}, ErrNoCopiesAvailable
	}

	loan := models.Loan{
		ID:       uuid.NewString(),
		BookID:   bookID,
		Borrower: borrower,
		Due:      due,
		IssuedAt: e.now().UnixMilli(),
	}
	next.Loans = append(next.Loans, loan)
	book.AvailableCopies--
	book.Borrower = borrower
	book.Due = due

	if err := e.commit(ctx, next); err != nil {
		return models.Loan{}, err
	}
	return loan, nil
}

// ReturnBook closes one outstanding loan for the book. A non-empty borrower
// selects that borrower's earliest loan (case-insensitive); an empty
// borrower selects the earliest loan outright (FIFO). When the last loan for
// the book closes, the display borrower/due are cleared.
func (e *Engine) ReturnBook(ctx context.Context, bookID int64, borrower string) (bool, error) {
	borrower = strings.TrimSpace(borrower)

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.snap.Clone()
	match := -1
	for i := range next.Loans {
		l := &next.Loans[i]
		if l.BookID != bookID {
			continue
		}
		if borrower == "" || strings.EqualFold(l.Borrower, borrower) {
			match = i
			break
		}
	}
	if match == -1 {
		return false, &NotFoundError{Entity: "loan for book", ID: bookID}
	}
	removeLoanAt(&next, match)

	if book := findBook(&next, bookID); book != nil {
		book.AvailableCopies = clamp(book.AvailableCopies+1, 0, book.TotalCopies)
		if openLoanCount(&next, bookID) == 0 {
			book.Borrower = ""
			book.Due = ""
		}
	}

	if err := e.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
