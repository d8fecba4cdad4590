package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Gin_postgres_redis_library_tool/engine"
	"Gin_postgres_redis_library_tool/models"
	"Gin_postgres_redis_library_tool/storage"
)

// memGateway keeps committed snapshots in memory and can be told to fail.
type memGateway struct {
	snap      models.Snapshot
	loadErr   error
	commitErr error
	commits   int
}

func (g *memGateway) Load(context.Context) (models.Snapshot, error) {
	if g.loadErr != nil {
		return models.Snapshot{}, g.loadErr
	}
	return g.snap.Clone(), nil
}

func (g *memGateway) Commit(_ context.Context, snap models.Snapshot) error {
	if g.commitErr != nil {
		return g.commitErr
	}
	g.snap = snap.Clone()
	g.commits++
	return nil
}

func newTestEngine(t *testing.T) (*engine.Engine, *memGateway) {
	t.Helper()
	gw := &memGateway{snap: models.Empty()}
	eng, err := engine.New(context.Background(), gw, engine.Options{})
	require.NoError(t, err)
	return eng, gw
}

func requireInvariants(t *testing.T, eng *engine.Engine) {
	t.Helper()
	books := eng.ListBooks()
	loans := eng.ListOpenLoans()

	open := map[int64]int{}
	for _, l := range loans {
		open[l.BookID]++
	}
	seen := map[int64]bool{}
	for _, b := range books {
		require.False(t, seen[b.ID], "duplicate book id %d", b.ID)
		seen[b.ID] = true
		require.GreaterOrEqual(t, b.AvailableCopies, 0)
		require.LessOrEqual(t, b.AvailableCopies, b.TotalCopies)
		require.Equal(t, b.TotalCopies-b.AvailableCopies, open[b.ID],
			"open loans must equal total-available for book %d", b.ID)
	}
}

func Test_AddBook_AssignsSequentialIDs(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	first, err := eng.AddBook(ctx, "Dune", "Herbert", 2, "", "")
	require.NoError(t, err)
	second, err := eng.AddBook(ctx, "Hyperion", "Simmons", 1, "", "")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, 2, first.AvailableCopies)
	assert.NotZero(t, first.AddedAt)
	requireInvariants(t, eng)
}

func Test_AddBook_IDsNotReusedAfterDelete(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.AddBook(ctx, "One", "", 1, "", "")
	require.NoError(t, err)
	second, err := eng.AddBook(ctx, "Two", "", 1, "", "")
	require.NoError(t, err)

	_, err = eng.DeleteBook(ctx, 1)
	require.NoError(t, err)

	third, err := eng.AddBook(ctx, "Three", "", 1, "", "")
	require.NoError(t, err)
	assert.Greater(t, third.ID, second.ID, "ids keep increasing past deleted ones")
}

func Test_AddBook_Validation(t *testing.T) {
	eng, gw := newTestEngine(t)
	ctx := context.Background()

	var ve *engine.ValidationError

	_, err := eng.AddBook(ctx, "   ", "Nobody", 1, "", "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title", ve.Field)

	_, err = eng.AddBook(ctx, "Dune", "Herbert", -1, "", "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "total_copies", ve.Field)

	assert.Zero(t, gw.commits, "rejected adds must not commit")
	assert.Empty(t, eng.ListBooks())
}

// The scenario from the design notes: two copies, three borrowers.
func Test_Borrow_Return_Scenario(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	book, err := eng.AddBook(ctx, "Dune", "Herbert", 2, "", "")
	require.NoError(t, err)
	require.Equal(t, int64(1), book.ID)
	require.Equal(t, 2, book.AvailableCopies)

	alice, err := eng.BorrowBook(ctx, 1, "Alice", "2026-09-15")
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.BookID)
	assert.Equal(t, "Alice", alice.Borrower)
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, 1, eng.ListBooks()[0].AvailableCopies)

	_, err = eng.BorrowBook(ctx, 1, "Bob", "")
	require.NoError(t, err)
	assert.Equal(t, 0, eng.ListBooks()[0].AvailableCopies)
	requireInvariants(t, eng)

	_, err = eng.BorrowBook(ctx, 1, "Carol", "")
	require.ErrorIs(t, err, engine.ErrNoCopiesAvailable)
	assert.Equal(t, 0, eng.ListBooks()[0].AvailableCopies)
	assert.Len(t, eng.ListOpenLoans(), 2, "failed borrow must not record a loan")

	returned, err := eng.ReturnBook(ctx, 1, "Alice")
	require.NoError(t, err)
	assert.True(t, returned)
	assert.Equal(t, 1, eng.ListBooks()[0].AvailableCopies)

	loans := eng.ListOpenLoans()
	require.Len(t, loans, 1)
	assert.Equal(t, "Bob", loans[0].Borrower)
	requireInvariants(t, eng)
}

func Test_Borrow_Validation(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.AddBook(ctx, "Dune", "Herbert", 1, "", "")
	require.NoError(t, err)

	var ve *engine.ValidationError
	_, err = eng.BorrowBook(ctx, 1, "   ", "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "borrower", ve.Field)

	var nf *engine.NotFoundError
	_, err = eng.BorrowBook(ctx, 99, "Alice", "")
	require.ErrorAs(t, err, &nf)
}

func Test_Borrow_SetsDisplayBorrower(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.AddBook(ctx, "Dune", "Herbert", 2, "", "")
	require.NoError(t, err)

	_, err = eng.BorrowBook(ctx, 1, "Alice", "monday")
	require.NoError(t, err)
	_, err = eng.BorrowBook(ctx, 1, "Bob", "friday")
	require.NoError(t, err)

	// Last writer wins on the display fields.
	b := eng.ListBooks()[0]
	assert.Equal(t, "Bob", b.Borrower)
	assert.Equal(t, "friday", b.Due)

	// Returning Bob's copy leaves Alice's loan open, so the display
	// fields stay populated.
	_, err = eng.ReturnBook(ctx, 1, "BOB")
	require.NoError(t, err)
	b = eng.ListBooks()[0]
	assert.NotEmpty(t, b.Borrower)

	// Returning the last open loan clears them.
	_, err = eng.ReturnBook(ctx, 1, "")
	require.NoError(t, err)
	b = eng.ListBooks()[0]
	assert.Empty(t, b.Borrower)
	assert.Empty(t, b.Due)
}

func Test_Return_FIFO_WhenBorrowerOmitted(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.AddBook(ctx, "Dune", "Herbert", 3, "", "")
	require.NoError(t, err)
	for _, who := range []string{"Alice", "Bob", "Carol"} {
		_, err = eng.BorrowBook(ctx, 1, who, "")
		require.NoError(t, err)
	}

	_, err = eng.ReturnBook(ctx, 1, "")
	require.NoError(t, err)

	loans := eng.ListOpenLoans()
	require.Len(t, loans, 2)
	assert.Equal(t, "Bob", loans[0].Borrower, "oldest loan goes first")
	assert.Equal(t, "Carol", loans[1].Borrower)
}

func Test_Return_CaseInsensitiveBorrowerMatch(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.AddBook(ctx, "Dune", "Herbert", 2, "", "")
	require.NoError(t, err)
	_, err = eng.BorrowBook(ctx, 1, "Alice", "")
	require.NoError(t, err)
	_, err = eng.BorrowBook(ctx, 1, "Bob", "")
	require.NoError(t, err)

	returned, err := eng.ReturnBook(ctx, 1, "aLiCe")
	require.NoError(t, err)
	assert.True(t, returned)
	require.Len(t, eng.ListOpenLoans(), 1)
	assert.Equal(t, "Bob", eng.ListOpenLoans()[0].Borrower)
}

func Test_Return_NoMatchingLoan(t *testing.T) {
	eng, gw := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.AddBook(ctx, "Dune", "Herbert", 1, "", "")
	require.NoError(t, err)
	commitsBefore := gw.commits

	var nf *engine.NotFoundError
	_, err = eng.ReturnBook(ctx, 1, "")
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, commitsBefore, gw.commits, "failed return must not commit")
}

func Test_UpdateBook_TextFieldsOverwrittenVerbatim(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.AddBook(ctx, "Dune", "Herbert", 1, "111", "sf")
	require.NoError(t, err)

	title := "Dune Messiah"
	category := ""
	book, err := eng.UpdateBook(ctx, 1, engine.BookChanges{Title: &title, Category: &category})
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", book.Title)
	assert.Equal(t, "", book.Category)
	assert.Equal(t, "Herbert", book.Author, "unset fields untouched")
	assert.Equal(t, "111", book.ISBN)
}

func Test_UpdateBook_NotFound(t *testing.T) {
	eng, _ := newTestEngine(t)

	var nf *engine.NotFoundError
	_, err := eng.UpdateBook(context.Background(), 42, engine.BookChanges{})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(42), nf.ID)
}

func Test_UpdateBook_ResizeAdjustsAvailability(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.AddBook(ctx, "Dune", "Herbert", 2, "", "")
	require.NoError(t, err)
	_, err = eng.BorrowBook(ctx, 1, "Alice", "")
	require.NoError(t, err)
	// total=2, one loan open, available=1.

	// Grow: delta carries over.
	five := 5
	book, err := eng.UpdateBook(ctx, 1, engine.BookChanges{TotalCopies: &five})
	require.NoError(t, err)
	assert.Equal(t, 4, book.AvailableCopies)

	// Shrink below the open-loan count: clamps at zero, never negative.
	one := 1
	book, err = eng.UpdateBook(ctx, 1, engine.BookChanges{TotalCopies: &one})
	require.NoError(t, err)
	assert.Equal(t, 0, book.AvailableCopies)

	zero := 0
	book, err = eng.UpdateBook(ctx, 1, engine.BookChanges{TotalCopies: &zero})
	require.NoError(t, err)
	assert.Equal(t, 0, book.AvailableCopies)
	assert.Equal(t, 0, book.TotalCopies)
}

func Test_UpdateBook_ExplicitAvailabilityOverride(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.AddBook(ctx, "Dune", "Herbert", 3, "", "")
	require.NoError(t, err)

	one := 1
	book, err := eng.UpdateBook(ctx, 1, engine.BookChanges{AvailableCopies: &one})
	require.NoError(t, err)
	assert.Equal(t, 1, book.AvailableCopies)

	// Out of range is rejected, not clamped.
	var ve *engine.ValidationError
	ten := 10
	_, err = eng.UpdateBook(ctx, 1, engine.BookChanges{AvailableCopies: &ten})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "available_copies", ve.Field)

	negative := -1
	_, err = eng.UpdateBook(ctx, 1, engine.BookChanges{AvailableCopies: &negative})
	require.ErrorAs(t, err, &ve)

	// The rejected updates left the previous value in place.
	assert.Equal(t, 1, eng.ListBooks()[0].AvailableCopies)
}

func Test_UpdateBook_NegativeTotalRejected(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.AddBook(ctx, "Dune", "Herbert", 1, "", "")
	require.NoError(t, err)

	var ve *engine.ValidationError
	minusOne := -1
	_, err = eng.UpdateBook(ctx, 1, engine.BookChanges{TotalCopies: &minusOne})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "total_copies", ve.Field)
}

func Test_DeleteBook_CascadesLoans(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.AddBook(ctx, "Dune", "Herbert", 2, "", "")
	require.NoError(t, err)
	_, err = eng.AddBook(ctx, "Hyperion", "Simmons", 1, "", "")
	require.NoError(t, err)
	_, err = eng.BorrowBook(ctx, 1, "Alice", "")
	require.NoError(t, err)
	_, err = eng.BorrowBook(ctx, 2, "Bob", "")
	require.NoError(t, err)

	deleted, err := eng.DeleteBook(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	loans := eng.ListOpenLoans()
	require.Len(t, loans, 1)
	assert.Equal(t, int64(2), loans[0].BookID)
	requireInvariants(t, eng)
}

func Test_DeleteBook_Idempotent(t *testing.T) {
	eng, gw := newTestEngine(t)

	deleted, err := eng.DeleteBook(context.Background(), 7)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Zero(t, gw.commits, "deleting nothing commits nothing")
}

func Test_CommitFailure_RollsBack(t *testing.T) {
	eng, gw := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.AddBook(ctx, "Dune", "Herbert", 2, "", "")
	require.NoError(t, err)

	gw.commitErr = errors.New("disk full")

	var pe *engine.PersistenceError
	_, err = eng.BorrowBook(ctx, 1, "Alice", "")
	require.ErrorAs(t, err, &pe)

	// The in-memory state is the pre-operation one.
	assert.Equal(t, 2, eng.ListBooks()[0].AvailableCopies)
	assert.Empty(t, eng.ListOpenLoans())

	// And the engine recovers once the gateway does.
	gw.commitErr = nil
	_, err = eng.BorrowBook(ctx, 1, "Alice", "")
	require.NoError(t, err)
	assert.Equal(t, 1, eng.ListBooks()[0].AvailableCopies)
}

func Test_New_RefusesCorruptState(t *testing.T) {
	gw := &memGateway{loadErr: &storage.CorruptStateError{Source: "library_data.json", Err: errors.New("unexpected EOF")}}

	_, err := engine.New(context.Background(), gw, engine.Options{})
	var corrupt *storage.CorruptStateError
	require.ErrorAs(t, err, &corrupt)
}

func Test_New_LoadsExistingSnapshot(t *testing.T) {
	gw := &memGateway{snap: models.Snapshot{
		Books: []models.Book{{ID: 3, Title: "Dune", TotalCopies: 1, AvailableCopies: 0}},
		Loans: []models.Loan{{ID: "x", BookID: 3, Borrower: "Alice", IssuedAt: 1}},
	}}
	eng, err := engine.New(context.Background(), gw, engine.Options{})
	require.NoError(t, err)

	books := eng.ListBooks()
	require.Len(t, books, 1)
	assert.Equal(t, int64(3), books[0].ID)

	// The allocator continues past loaded ids.
	added, err := eng.AddBook(context.Background(), "Hyperion", "", 1, "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(4), added.ID)
}
