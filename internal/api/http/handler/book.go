package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/bookworm-server/internal/logger"
	"github.com/dtroode/bookworm-server/internal/model"
)

// BookService defines the book operations exposed over HTTP.
type BookService interface {
	Create(ctx context.Context, params model.CreateBookParams) (model.Book, error)
	List(ctx context.Context, page, limit int) (model.BookPage, error)
	ListByUser(ctx context.Context, userID string) ([]model.Book, error)
	Delete(ctx context.Context, callerID, bookID string) error
}

type createBookRequest struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Caption string `json:"caption"`
	Image   string `json:"image"`
	Rating  int    `json:"rating"`
}

// Book handles the /api/books endpoints. All of them require a caller.
type Book struct {
	bookService    BookService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewBook(bookService BookService, contextManager model.ContextManager, logger *logger.Logger) *Book {
	return &Book{
		bookService:    bookService,
		contextManager: contextManager,
		logger:         logger,
	}
}

func (h *Book) Create(c *gin.Context) {
	user, ok := caller(c, h.contextManager)
	if !ok {
		return
	}

	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	book, err := h.bookService.Create(c.Request.Context(), model.CreateBookParams{
		UserID:  user.ID,
		Title:   req.Title,
		Author:  req.Author,
		Caption: req.Caption,
		Image:   req.Image,
		Rating:  req.Rating,
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"book": book})
}

// List handles GET /api/books?page=&limit=. Unparsable values fall back to
// the defaults.
func (h *Book) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := h.bookService.List(c.Request.Context(), page, limit)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Book) ListByUser(c *gin.Context) {
	books, err := h.bookService.ListByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books})
}

func (h *Book) Delete(c *gin.Context) {
	user, ok := caller(c, h.contextManager)
	if !ok {
		return
	}

	if err := h.bookService.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Book deleted successfully"})
}
