package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/entities"
)

const (
	msgBookNotFound = "Book not found."
	msgBookExists   = "Book already exists."
)

// BookStore is the catalog as seen by the HTTP layer.
type BookStore interface {
	Search(ctx context.Context, q catalog.SearchQuery) (*catalog.SearchResult, error)
	Get(ctx context.Context, id uint) (*entities.Book, error)
	Create(ctx context.Context, in catalog.BookInput) (*entities.Book, error)
	Update(ctx context.Context, id uint, patch catalog.BookPatch) (*entities.Book, error)
	Delete(ctx context.Context, id uint) error
}

type BooksController struct {
	store  BookStore
	logger *zap.Logger
}

func NewBooksController(store BookStore, logger *zap.Logger) *BooksController {
	return &BooksController{
		store:  store,
		logger: logger,
	}
}

// Search handles GET /api/books.
func (bc *BooksController) Search(c *gin.Context) {
	var query catalog.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, bindingErrorMessage(err))
		return
	}

	result, err := bc.store.Search(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidQuery) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, bc.logger, err, "search books")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.Get(c.Request.Context(), id)
	if err != nil {
		bc.respondStoreError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

func (bc *BooksController) Create(c *gin.Context, user *entities.User) {
	var input catalog.BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, bindingErrorMessage(err))
		return
	}

	book, err := bc.store.Create(c.Request.Context(), input)
	if err != nil {
		bc.respondStoreError(c, err, "create book")
		return
	}

	bc.logger.Info("book created", zap.Uint("book_id", book.ID), zap.String("isbn", book.ISBN), zap.String("by", user.Username))
	c.JSON(http.StatusCreated, book)
}

func (bc *BooksController) Update(c *gin.Context, user *entities.User) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var patch catalog.BookPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, bindingErrorMessage(err))
		return
	}

	book, err := bc.store.Update(c.Request.Context(), id, patch)
	if err != nil {
		bc.respondStoreError(c, err, "update book")
		return
	}

	bc.logger.Info("book updated", zap.Uint("book_id", book.ID), zap.String("by", user.Username))
	c.JSON(http.StatusOK, book)
}

func (bc *BooksController) Delete(c *gin.Context, user *entities.User) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.store.Delete(c.Request.Context(), id); err != nil {
		bc.respondStoreError(c, err, "delete book")
		return
	}

	bc.logger.Info("book deleted", zap.Uint("book_id", id), zap.String("by", user.Username))
	c.Status(http.StatusNoContent)
}

func (bc *BooksController) respondStoreError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, catalog.ErrBookNotFound):
		respondNotFound(c, msgBookNotFound)
	case errors.Is(err, catalog.ErrDuplicateISBN):
		respondError(c, http.StatusConflict, msgBookExists)
	default:
		respondInternalError(c, bc.logger, err, op)
	}
}
