package http

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	middleware "progress-tracker.com/progress-tracker/internal/http/middlewares"
	"progress-tracker.com/progress-tracker/internal/http/validators"
)

const maxRequestBody = "1M"

type Options struct {
	RateLimitStore     middleware.RateLimitStore
	RateLimitPerMinute int
	LogBodyMaxBytes    int
	CORSAllowOrigins   []string
}

// Register installs the middleware chain and the routes on e.
func Register(e *echo.Echo, h *Handler, logger *slog.Logger, opts Options) {
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.New()
	e.HTTPErrorHandler = NewErrorHandler(logger)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: opts.CORSAllowOrigins,
	}))
	e.Use(echomw.BodyLimit(maxRequestBody))
	e.Use(middleware.RequestLogger(logger, opts.LogBodyMaxBytes))
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.ErrorContext(c.Request().Context(), "panic recovered",
				slog.String("error", err.Error()),
				slog.String("stack", string(stack)),
			)
			return err
		},
	}))
	e.Use(middleware.RateLimiter(opts.RateLimitStore, opts.RateLimitPerMinute, time.Minute, logger))

	e.GET("/health", h.Health)
	e.GET("/api/openapi.json", OpenAPI)

	tasks := e.Group("/tasks")
	tasks.POST("", h.CreateTask)
	tasks.GET("", h.ListTasks)
	tasks.GET("/:id", h.GetTask)
	tasks.PUT("/:id", h.UpdateTask)
	tasks.DELETE("/:id", h.DeleteTask)
}
