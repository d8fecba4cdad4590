package models

// Snapshot is the complete persisted state: every book plus every
// outstanding loan, loaded wholesale and rewritten wholesale on each commit.
// Loans keep issuance order; returns without a borrower resolve FIFO.
type Snapshot struct {
	Books []Book `json:"books"`
	Loans []Loan `json:"loans"`
}

// Empty returns a snapshot with non-nil collections, the state of a library
// that has never been written to disk.
func Empty() Snapshot {
	return Snapshot{Books: []Book{}, Loans: []Loan{}}
}

// Clone deep-copies the snapshot. Book and Loan hold no reference types, so
// copying the slices is enough.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Books: make([]Book, len(s.Books)),
		Loans: make([]Loan, len(s.Loans)),
	}
	copy(out.Books, s.Books)
	copy(out.Loans, s.Loans)
	return out
}
