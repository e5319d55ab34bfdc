package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/entities"
)

// PagesController renders the HTML pages. Data is loaded by the browser
// from the JSON API, except for the edit form which is prefilled.
type PagesController struct {
	store  BookStore
	logger *zap.Logger
}

func NewPagesController(store BookStore, logger *zap.Logger) *PagesController {
	return &PagesController{store: store, logger: logger}
}

func (pc *PagesController) Index(c *gin.Context, user *entities.User) {
	pc.render(c, http.StatusOK, "index.html", user, gin.H{"Title": "Library"})
}

// Books renders the catalog. Edit and delete controls only appear for
// logged-in users.
func (pc *PagesController) Books(c *gin.Context, user *entities.User) {
	pc.render(c, http.StatusOK, "list.html", user, gin.H{"Title": "Catalog"})
}

func (pc *PagesController) Add(c *gin.Context, user *entities.User) {
	pc.render(c, http.StatusOK, "add.html", user, gin.H{"Title": "Add a book"})
}

func (pc *PagesController) Edit(c *gin.Context, user *entities.User) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		pc.renderError(c, http.StatusBadRequest, user, "Invalid book id.")
		return
	}

	book, err := pc.store.Get(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			pc.renderError(c, http.StatusNotFound, user, msgBookNotFound)
			return
		}
		pc.logger.Error("failed to load book for edit", zap.Uint64("book_id", id), zap.Error(err))
		pc.renderError(c, http.StatusInternalServerError, user, "Something went wrong.")
		return
	}

	pc.render(c, http.StatusOK, "edit.html", user, gin.H{"Title": "Edit " + book.Title, "Book": book})
}

func (pc *PagesController) renderError(c *gin.Context, status int, user *entities.User, message string) {
	pc.render(c, status, "error.html", user, gin.H{"Title": http.StatusText(status), "Message": message})
}

func (pc *PagesController) render(c *gin.Context, status int, name string, user *entities.User, data gin.H) {
	data["LoggedIn"] = user != nil
	data["Username"] = ""
	if user != nil {
		data["Username"] = user.Username
	}
	data["CSRFToken"] = auth.GetCSRFToken(c)
	data["CSRFField"] = auth.CSRFFieldName
	c.HTML(status, name, data)
}
