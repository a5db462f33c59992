// Package router binds handlers and middleware to the Echo instance.
package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"eventsapi/internal/config"
	"eventsapi/internal/handler"
	"eventsapi/internal/logging"
	"eventsapi/internal/metrics"
	"eventsapi/internal/validation"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// bodyLimitSlack is allowed on top of the upload ceiling for multipart framing.
const bodyLimitSlack = 1 << 20

// Handlers groups the resource handlers.
type Handlers struct {
	Auth     *handler.AuthHandler
	Category *handler.CategoryHandler
	Location *handler.LocationHandler
	Event    *handler.EventHandler
	Upload   *handler.UploadHandler
}

// Register wires routes and middleware. protect is the authentication chain
// applied to every route except login, registration and the public
// endpoints.
func Register(e *echo.Echo, cfg *config.Config, h Handlers, protect []echo.MiddlewareFunc) {
	e.HideBanner = true
	e.JSONSerializer = handler.JSONSerializer{}
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Validator = &CustomValidator{}

	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(metrics.Middleware())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(bodyLimit(cfg.Upload.MaxSize)))

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "API is running",
			"version": Version,
		})
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/metrics", metrics.Handler())
	e.Static("/uploads", cfg.Upload.Dir)

	limit := echo.WrapMiddleware(authRateLimit(cfg.RateLimit))

	authGroup := e.Group("/auth")
	authGroup.POST("/login", h.Auth.Login, limit)
	authGroup.POST("/register", h.Auth.Register, limit)
	authGroup.GET("/me", h.Auth.Me, protect...)
	authGroup.POST("/logout", h.Auth.Logout, protect...)
	authGroup.PUT("/avatar", h.Auth.UpdateAvatar, protect...)

	events := e.Group("/events", protect...)
	events.GET("", h.Event.List)
	events.GET("/:id", h.Event.Get)
	events.POST("", h.Event.Create)
	events.PUT("/:id", h.Event.Update)
	events.DELETE("/:id", h.Event.Delete)

	categories := e.Group("/categories", protect...)
	categories.GET("", h.Category.List)
	categories.GET("/:id", h.Category.Get)
	categories.POST("", h.Category.Create)
	categories.PUT("/:id", h.Category.Update)
	categories.DELETE("/:id", h.Category.Delete)

	locations := e.Group("/locations", protect...)
	locations.GET("", h.Location.List)
	locations.GET("/:id", h.Location.Get)
	locations.POST("", h.Location.Create)
	locations.PUT("/:id", h.Location.Update)
	locations.DELETE("/:id", h.Location.Delete)

	upload := e.Group("/upload", protect...)
	upload.POST("/image", h.Upload.UploadImage)
}

func bodyLimit(maxUpload int64) string {
	return formatBytes(maxUpload + bodyLimitSlack)
}

// formatBytes renders n in the unit syntax accepted by middleware.BodyLimit.
func formatBytes(n int64) string {
	switch {
	case n%(1<<20) == 0:
		return strconv.FormatInt(n>>20, 10) + "M"
	case n%(1<<10) == 0:
		return strconv.FormatInt(n>>10, 10) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

// authRateLimit limits login and registration attempts per client IP.
func authRateLimit(cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	window := cfg.AuthWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.Limit(
		cfg.AuthRequests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(handler.Response{
				Success: false,
				Message: "too many requests, try again later",
			})
		}),
	)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logging.Info()
			if v.Status >= http.StatusInternalServerError {
				event = logging.Error()
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

// CustomValidator wraps the shared validator for Echo.
type CustomValidator struct{}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := validation.ValidateStruct(i); err != nil {
		return err
	}
	return nil
}
