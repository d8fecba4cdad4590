// engine/query.go
package engine

import (
	"strings"

	"Gin_postgres_redis_library_tool/models"
)

// UnknownTitle is reported for a loan whose book is missing from the
// snapshot. That only happens when persisted state was edited out-of-band.
const UnknownTitle = "Unknown"

// OpenLoan joins an outstanding loan with its book's title for display.
type OpenLoan struct {
	models.Loan
	Title string `json:"title"`
}

// ListBooks returns every book in creation order.
func (e *Engine) ListBooks() []models.Book {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]models.Book, len(e.snap.Books))
	copy(out, e.snap.Books)
	return out
}

// SearchBooks returns books whose title or author contains the keyword,
// case-insensitively.
func (e *Engine) SearchBooks(keyword string) []models.Book {
	keyword = strings.ToLower(strings.TrimSpace(keyword))

	e.mu.RLock()
	defer e.mu.RUnlock()

	out := []models.Book{}
	for _, b := range e.snap.Books {
		if keyword == "" ||
			strings.Contains(strings.ToLower(b.Title), keyword) ||
			strings.Contains(strings.ToLower(b.Author), keyword) {
			out = append(out, b)
		}
	}
	return out
}

// ListOpenLoans returns every outstanding loan in issuance order with its
// book title resolved.
func (e *Engine) ListOpenLoans() []OpenLoan {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]OpenLoan, 0, len(e.snap.Loans))
	for _, l := range e.snap.Loans {
		title := UnknownTitle
		if b := findBook(&e.snap, l.BookID); b != nil {
			title = b.Title
		}
		out = append(out, OpenLoan{Loan: l, Title: title})
	}
	return out
}
