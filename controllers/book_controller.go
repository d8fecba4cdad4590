// controllers/book_controller.go
package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"Gin_postgres_redis_library_tool/app"
	"Gin_postgres_redis_library_tool/cache"
	"Gin_postgres_redis_library_tool/engine"
)

type BookController struct {
	Engine *engine.Engine
	Views  *cache.Store
}

func NewBookController(eng *engine.Engine, views *cache.Store) *BookController {
	return &BookController{Engine: eng, Views: views}
}

// GET /api/books
func (bc *BookController) List(c *gin.Context) {
	if payload, ok := bc.Views.Get(c.Request.Context(), cache.BooksView); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
		return
	}
	books := bc.Engine.ListBooks()
	payload, err := json.Marshal(books)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	bc.Views.Set(c.Request.Context(), cache.BooksView, payload)
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// POST /api/books
func (bc *BookController) Create(c *gin.Context) {
	var in struct {
		Title       string `json:"title"`
		Author      string `json:"author"`
		TotalCopies *int   `json:"total_copies"`
		ISBN        string `json:"isbn"`
		Category    string `json:"category"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	// Missing total_copies means one copy, like the original data files.
	total := 1
	if in.TotalCopies != nil {
		total = *in.TotalCopies
	}

	book, err := bc.Engine.AddBook(c.Request.Context(), in.Title, in.Author, total, in.ISBN, in.Category)
	if err != nil {
		writeError(c, err)
		return
	}
	bc.Views.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, book)
}

// PUT /api/books/:id
func (bc *BookController) Update(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	var changes engine.BookChanges
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	book, err := bc.Engine.UpdateBook(c.Request.Context(), id, changes)
	if err != nil {
		writeError(c, err)
		return
	}
	bc.Views.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, book)
}

// DELETE /api/books/:id
func (bc *BookController) Delete(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	deleted, err := bc.Engine.DeleteBook(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	bc.Views.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, app.H{"deleted": deleted})
}

// POST /api/books/:id/borrow
func (bc *BookController) Borrow(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	var in struct {
		Borrower string `json:"borrower"`
		Due      string `json:"due"`
	}
	_ = c.ShouldBindJSON(&in)

	loan, err := bc.Engine.BorrowBook(c.Request.Context(), id, in.Borrower, in.Due)
	if err != nil {
		writeError(c, err)
		return
	}
	bc.Views.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, loan)
}

// POST /api/books/:id/return
func (bc *BookController) Return(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	var in struct {
		Borrower string `json:"borrower"`
	}
	_ = c.ShouldBindJSON(&in)

	returned, err := bc.Engine.ReturnBook(c.Request.Context(), id, in.Borrower)
	if err != nil {
		writeError(c, err)
		return
	}
	bc.Views.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, app.H{"returned": returned})
}

// GET /api/books/search?q=
func (bc *BookController) Search(c *gin.Context) {
	c.JSON(http.StatusOK, bc.Engine.SearchBooks(c.Query("q")))
}

// GET /api/loans
func (bc *BookController) ListLoans(c *gin.Context) {
	if payload, ok := bc.Views.Get(c.Request.Context(), cache.LoansView); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
		return
	}
	loans := bc.Engine.ListOpenLoans()
	payload, err := json.Marshal(loans)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	bc.Views.Set(c.Request.Context(), cache.LoansView, payload)
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func bookID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid book id"})
		return 0, false
	}
	return id, true
}

// writeError maps engine errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var ve *engine.ValidationError
	var nf *engine.NotFoundError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, app.H{"error": ve.Error()})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, app.H{"error": nf.Error()})
	case errors.Is(err, engine.ErrNoCopiesAvailable):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}
