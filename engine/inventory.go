// engine/inventory.go
//
// Structural helpers over a Snapshot. These mutate whichever snapshot they
// are handed (always a clone inside the engine) and do no cross-field
// validation; that is the engine's job.
package engine

import "Gin_postgres_redis_library_tool/models"

// allocateID returns max(existing ids)+1, or 1 for an empty store. Ids are
// never reused within a process lifetime because the max only grows.
func allocateID(s *models.Snapshot) int64 {
	var max int64
	for i := range s.Books {
		if s.Books[i].ID > max {
			max = s.Books[i].ID
		}
	}
	return max + 1
}

// findBook returns a pointer into s.Books, or nil.
func findBook(s *models.Snapshot, id int64) *models.Book {
	for i := range s.Books {
		if s.Books[i].ID == id {
			return &s.Books[i]
		}
	}
	return nil
}

// removeBook deletes the book with the given id, keeping creation order.
// Returns false if no such book exists.
func removeBook(s *models.Snapshot, id int64) bool {
	for i := range s.Books {
		if s.Books[i].ID == id {
			s.Books = append(s.Books[:i], s.Books[i+1:]...)
			return true
		}
	}
	return false
}

// removeLoansFor drops every loan referencing bookID and reports how many
// were dropped.
func removeLoansFor(s *models.Snapshot, bookID int64) int {
	kept := s.Loans[:0]
	removed := 0
	for _, l := range s.Loans {
		if l.BookID == bookID {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	s.Loans = kept
	return removed
}

// removeLoanAt deletes the loan at index i, keeping issuance order.
func removeLoanAt(s *models.Snapshot, i int) {
	s.Loans = append(s.Loans[:i], s.Loans[i+1:]...)
}

// openLoanCount counts outstanding loans for a book.
func openLoanCount(s *models.Snapshot, bookID int64) int {
	n := 0
	for i := range s.Loans {
		if s.Loans[i].BookID == bookID {
			n++
		}
	}
	return n
}
