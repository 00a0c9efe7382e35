package api

import (
	"errors"
	"fmt"
	"net/http"

	"shelf/internal/server/service"
	"shelf/internal/server/storage"

	"github.com/labstack/echo/v4"
)

// cacheControl is sent with every served asset (1 hour).
const cacheControl = "public, max-age=3600"

// HandleListAssets handles GET /:class.
func (h *Handler) HandleListAssets(c echo.Context) error {
	class, err := storage.ParseClass(c.Param("class"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	entries, err := h.assets.List(class)
	if err != nil {
		return mapAssetError(c, err)
	}
	if entries == nil {
		entries = []storage.Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}

// HandleUploadAsset handles POST /:class?book_id=.
// Accepts a multipart form with a "file" field.
func (h *Handler) HandleUploadAsset(c echo.Context) error {
	return h.saveAsset(c, false)
}

// HandleUpdateAsset handles PUT /:class?book_id=&filename=.
// Same pipeline as upload; the resolved name always overwrites.
func (h *Handler) HandleUpdateAsset(c echo.Context) error {
	return h.saveAsset(c, true)
}

func (h *Handler) saveAsset(c echo.Context, update bool) error {
	class, err := storage.ParseClass(c.Param("class"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return mapAssetError(c, service.ErrMissingFile)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to read uploaded file",
		})
	}
	defer src.Close()

	// The update path may rename via the filename query parameter.
	clientName := fileHeader.Filename
	if name := c.QueryParam("filename"); name != "" {
		clientName = name
	}

	result, err := h.assets.Save(class, clientName, c.QueryParam("book_id"), src)
	if err != nil {
		return mapAssetError(c, err)
	}

	status := http.StatusCreated
	message := "File uploaded successfully"
	if update {
		status = http.StatusOK
		message = "File updated successfully"
	}

	return c.JSON(status, echo.Map{
		"message": message,
		"url":     result.URL,
	})
}

// HandleDeleteAsset handles DELETE /:class?book_id= or ?filename=.
// A book id deletes every matching {book_id}.* file; a filename deletes
// exactly one.
func (h *Handler) HandleDeleteAsset(c echo.Context) error {
	class, err := storage.ParseClass(c.Param("class"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	if bookID := c.QueryParam("book_id"); bookID != "" {
		deleted, err := h.assets.DeleteByBookID(class, bookID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{
					"error": fmt.Sprintf("no files found for book_id %s", bookID),
				})
			}
			if len(deleted) > 0 {
				// Partial failure: report what was actually removed.
				return c.JSON(http.StatusInternalServerError, echo.Map{
					"error":         "internal server error",
					"deleted_files": deleted,
				})
			}
			return mapAssetError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message":       "Files deleted successfully",
			"deleted_files": deleted,
		})
	}

	if filename := c.QueryParam("filename"); filename != "" {
		if err := h.assets.DeleteByFilename(class, filename); err != nil {
			return mapAssetError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "File deleted successfully"})
	}

	return mapAssetError(c, service.ErrMissingIdentifier)
}

// HandleServeAsset handles GET /db/:class/:filename.
// Streams the stored bytes with a one-hour public cache header.
func (h *Handler) HandleServeAsset(c echo.Context) error {
	class, err := storage.ParseClass(c.Param("class"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	path, err := h.assets.ResolvePath(class, c.Param("filename"))
	if err != nil {
		return mapAssetError(c, err)
	}

	c.Response().Header().Set("Cache-Control", cacheControl)
	return c.File(path)
}

// mapAssetError translates asset-service errors into HTTP responses.
func mapAssetError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrMissingFile),
		errors.Is(err, service.ErrInvalidFilename),
		errors.Is(err, service.ErrInvalidBookID),
		errors.Is(err, service.ErrExtensionNotAllowed),
		errors.Is(err, service.ErrContentNotAllowed),
		errors.Is(err, service.ErrMissingIdentifier):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}
