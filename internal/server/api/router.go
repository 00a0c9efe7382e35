package api

import (
	"errors"
	"fmt"
	"net/http"

	"shelf/internal/server/config"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SetupRouter creates and configures the echo router with all routes and middleware.
func SetupRouter(handler *Handler, cfg *config.Config, limiter *RateLimiter) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = jsonErrorHandler

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))
	e.Use(RequestLogger())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadSize/(1024*1024))))

	rl := limiter.Middleware()

	e.GET("/", handler.HandleHome)
	e.GET("/health", handler.HandleHealth)
	e.GET("/api/stats", handler.HandleStats)

	// Book catalog
	e.POST("/books/add", handler.HandleAddBook)
	e.GET("/books", handler.HandleListBooks)
	e.GET("/books/:id", handler.HandleGetBook)
	e.PUT("/books/update/:id", handler.HandleUpdateBook)
	e.DELETE("/books/delete/:id", handler.HandleDeleteBook)

	// Static-resource URLs
	e.POST("/books/static/add/:id", handler.HandleAddStatic)
	e.GET("/books/static/:id", handler.HandleGetStatic)
	e.PUT("/books/static/update/:id", handler.HandleUpdateStatic)
	e.DELETE("/books/static/delete/:id", handler.HandleDeleteStatic)

	// Asset management (rate-limited): /pictures and /downloads
	e.GET("/:class", handler.HandleListAssets, rl)
	e.POST("/:class", handler.HandleUploadAsset, rl)
	e.PUT("/:class", handler.HandleUpdateAsset, rl)
	e.DELETE("/:class", handler.HandleDeleteAsset, rl)

	// Asset serving with cache headers (rate-limited)
	e.GET("/db/:class/:filename", handler.HandleServeAsset, rl)

	return e
}

// jsonErrorHandler renders every framework-level error (route miss, body
// limit, method mismatch) in the API's JSON error shape.
func jsonErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}

	switch code {
	case http.StatusNotFound:
		message = "not found"
	case http.StatusRequestEntityTooLarge:
		message = "file too large"
	}

	if !c.Response().Committed {
		if err := c.JSON(code, echo.Map{"error": message}); err != nil {
			c.Logger().Error(err)
		}
	}
}
