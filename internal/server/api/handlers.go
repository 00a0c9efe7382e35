package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"shelf/internal/server/database"
	"shelf/internal/server/service"

	"github.com/labstack/echo/v4"
)

// Handler contains the HTTP handlers for the shelf API.
type Handler struct {
	books  *service.BookService
	assets *service.AssetService
	db     *database.DB
}

// NewHandler creates a new handler with the given service dependencies.
func NewHandler(books *service.BookService, assets *service.AssetService, db *database.DB) *Handler {
	return &Handler{books: books, assets: assets, db: db}
}

// HandleHome handles GET /.
func (h *Handler) HandleHome(c echo.Context) error {
	return c.String(http.StatusOK, "Welcome to the Books Database App!")
}

// HandleAddBook handles POST /books/add.
func (h *Handler) HandleAddBook(c echo.Context) error {
	var in service.BookInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON body"})
	}

	if err := h.books.AddBook(c.Request().Context(), &in); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing required fields"})
		case errors.Is(err, database.ErrBookExists), errors.Is(err, database.ErrStaticExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Failed to add book"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Book added successfully"})
}

// HandleListBooks handles GET /books.
func (h *Handler) HandleListBooks(c echo.Context) error {
	books, err := h.books.ListBooks(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
	if books == nil {
		books = []*service.BookView{}
	}
	return c.JSON(http.StatusOK, books)
}

// HandleGetBook handles GET /books/:id.
func (h *Handler) HandleGetBook(c echo.Context) error {
	id, err := parseBookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}

	book, err := h.books.GetBook(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrBookNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Book not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	return c.JSON(http.StatusOK, book)
}

// HandleUpdateBook handles PUT /books/update/:id.
func (h *Handler) HandleUpdateBook(c echo.Context) error {
	id, err := parseBookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}

	var in service.BookInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON body"})
	}

	if err := h.books.UpdateBook(c.Request().Context(), id, &in); err != nil {
		switch {
		case errors.Is(err, database.ErrBookNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Book not found"})
		case errors.Is(err, database.ErrStaticNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Failed to update book"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Book updated successfully"})
}

// HandleDeleteBook handles DELETE /books/delete/:id.
// The static-resources row is removed by the database cascade.
func (h *Handler) HandleDeleteBook(c echo.Context) error {
	id, err := parseBookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}

	if err := h.books.DeleteBook(c.Request().Context(), id); err != nil {
		if errors.Is(err, database.ErrBookNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Failed to delete book"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Book and associated resources deleted successfully"})
}

// HandleAddStatic handles POST /books/static/add/:id.
func (h *Handler) HandleAddStatic(c echo.Context) error {
	id, err := parseBookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}

	var in service.BookInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON body"})
	}

	if err := h.books.AddStatic(c.Request().Context(), id, in.PictureURL, in.DownloadURL); err != nil {
		if errors.Is(err, database.ErrStaticExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Failed to add static resources"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Static resources added successfully"})
}

// HandleGetStatic handles GET /books/static/:id.
func (h *Handler) HandleGetStatic(c echo.Context) error {
	id, err := parseBookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}

	res, err := h.books.GetStatic(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrStaticNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Static resources not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"books_id":     res.BookID,
		"picture_url":  res.PictureURL,
		"download_url": res.DownloadURL,
	})
}

// HandleUpdateStatic handles PUT /books/static/update/:id.
func (h *Handler) HandleUpdateStatic(c echo.Context) error {
	id, err := parseBookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}

	var in service.BookInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON body"})
	}

	if err := h.books.UpdateStatic(c.Request().Context(), id, in.PictureURL, in.DownloadURL); err != nil {
		if errors.Is(err, database.ErrStaticNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Failed to update static resources"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Static resources updated successfully"})
}

// HandleDeleteStatic handles DELETE /books/static/delete/:id.
func (h *Handler) HandleDeleteStatic(c echo.Context) error {
	id, err := parseBookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}

	if err := h.books.DeleteStatic(c.Request().Context(), id); err != nil {
		if errors.Is(err, database.ErrStaticNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Failed to delete static resources"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Static resources deleted successfully"})
}

// HandleHealth handles GET /health.
// Returns the health status of the server, including database connectivity.
func (h *Handler) HandleHealth(c echo.Context) error {
	status := "healthy"
	dbStatus := "connected"

	if err := h.db.HealthCheck(c.Request().Context()); err != nil {
		status = "degraded"
		dbStatus = fmt.Sprintf("error: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":   status,
		"database": dbStatus,
	})
}

// HandleStats handles GET /api/stats.
// Returns catalog size and per-class asset totals.
func (h *Handler) HandleStats(c echo.Context) error {
	totalBooks, err := h.books.CountBooks(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve stats"})
	}

	assets, err := h.assets.Stats()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve stats"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_books": totalBooks,
		"assets":      assets,
	})
}

func parseBookID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
