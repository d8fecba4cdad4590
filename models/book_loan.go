// models/book_loan.go
package models

const BookTable = "library_books"
const LoanTable = "library_loans"

// Book is one title in the inventory. Copies are fungible counters, not
// individually tracked items.
type Book struct {
	ID              int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title           string `gorm:"size:255;not null" json:"title"`
	Author          string `gorm:"size:255" json:"author"`
	ISBN            string `gorm:"size:32" json:"isbn"`
	Category        string `gorm:"size:120" json:"category"`
	TotalCopies     int    `gorm:"not null;default:0" json:"total_copies"`
	AvailableCopies int    `gorm:"not null;default:0" json:"available_copies"`

	// Display convenience only: the last recorded borrower/due. The loan
	// list is the source of truth; these are cleared when no loans remain.
	Borrower string `gorm:"size:255" json:"borrower"`
	Due      string `gorm:"size:64" json:"due"`

	AddedAt int64 `gorm:"not null" json:"added_at"` // unix millis, set once
}

// Loan records one copy lent to one borrower until returned. Returns match
// on (book_id, borrower, issued_at); the ID exists for clients and storage.
type Loan struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	BookID   int64  `gorm:"index;not null" json:"book_id"`
	Borrower string `gorm:"size:255;not null" json:"borrower"`
	Due      string `gorm:"size:64" json:"due"`
	IssuedAt int64  `gorm:"index;not null" json:"issued_at"` // unix millis
}

func (Book) TableName() string { return BookTable }
func (Loan) TableName() string { return LoanTable }
