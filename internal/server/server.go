// Package server exposes a [sheet.App] as a JSON API over echo.
//
// The API is the same UI-facing surface the terminal grid drives: one shared
// view state and one cell editor. Every request runs under a single mutex.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/calvinalkan/jobsheet/internal/sheet"
)

// StorageWarningHeader carries the last storage failure, if any, on every
// response written after a mutation.
const StorageWarningHeader = "X-Storage-Warning"

// maxBodySize bounds request bodies, including CSV uploads.
const maxBodySize = "2M"

const shutdownTimeout = 5 * time.Second

// Server serialises HTTP access to one App.
type Server struct {
	mu  sync.Mutex
	app *sheet.App
	log log.FieldLogger
}

// New returns an echo instance with every route registered.
func New(app *sheet.App, logger log.FieldLogger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.BodyLimit(maxBodySize))
	e.Use(requestLogger(logger))

	Register(e, app, logger)

	return e
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, app *sheet.App, logger log.FieldLogger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}

	s := &Server{app: app, log: logger}

	e.GET("/healthz", healthz)

	e.GET("/api/rows", s.locked(s.listRows))
	e.POST("/api/rows", s.locked(s.createRow))
	e.GET("/api/rows/:id", s.locked(s.getRow))
	e.PATCH("/api/rows/:id", s.locked(s.patchRow))
	e.PUT("/api/rows/:id/status", s.locked(s.putStatus))

	e.POST("/api/cells/select", s.locked(s.selectCell))
	e.POST("/api/cells/edit", s.locked(s.beginEdit))
	e.POST("/api/cells/draft", s.locked(s.setDraft))
	e.POST("/api/cells/commit", s.locked(s.commitEdit))
	e.POST("/api/cells/cancel", s.locked(s.cancelEdit))

	e.GET("/api/view", s.locked(s.getView))
	e.PUT("/api/view", s.locked(s.putView))
	e.POST("/api/view/tabs", s.locked(s.addTab))

	e.GET("/api/export", s.locked(s.export))
	e.POST("/api/import", s.locked(s.importCSV))

	e.GET("/api/session", s.locked(s.getSession))
	e.POST("/api/session", s.locked(s.login))
	e.DELETE("/api/session", s.locked(s.logout))

	return s
}

// Serve runs e on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := e.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func healthz(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// locked runs h with the app mutex held and stamps the storage warning
// header before the response is written. Errors are rendered under the lock
// too.
func (s *Server) locked(h echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		c.Response().Before(func() {
			if warning := s.app.StorageWarning(); warning != nil {
				c.Response().Header().Set(StorageWarningHeader, warning.Error())
			}
		})

		err := h(c)
		if err != nil {
			c.Error(err)
		}

		return nil
	}
}

// httpError maps sheet errors onto status codes.
func httpError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	code := http.StatusInternalServerError

	switch {
	case errors.Is(err, sheet.ErrNotLoggedIn):
		code = http.StatusUnauthorized
	case errors.Is(err, sheet.ErrNotCreator):
		code = http.StatusForbidden
	case errors.Is(err, sheet.ErrRowNotFound):
		code = http.StatusNotFound
	case errors.Is(err, sheet.ErrJobRequestRequired),
		errors.Is(err, sheet.ErrInvalidChoice),
		errors.Is(err, sheet.ErrUnknownColumn),
		errors.Is(err, sheet.ErrLoginFieldsRequired),
		errors.Is(err, sheet.ErrUnknownQuickLogin),
		errors.Is(err, sheet.ErrNoEdit),
		errors.Is(err, sheet.ErrCellOutOfRange),
		errors.Is(err, sheet.ErrUnknownSortOrder):
		code = http.StatusBadRequest
	}

	return echo.NewHTTPError(code, err.Error()).SetInternal(err)
}

// requestLogger logs one line per request with its request id.
func requestLogger(logger log.FieldLogger) echo.MiddlewareFunc {
	if logger == nil {
		logger = log.StandardLogger()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			entry := logger.WithFields(log.Fields{
				"request_id": res.Header().Get(echo.HeaderXRequestID),
				"method":     req.Method,
				"path":       req.URL.Path,
				"status":     res.Status,
				"duration":   time.Since(start).String(),
			})

			if res.Status >= http.StatusInternalServerError {
				entry.WithError(err).Error("request failed")
			} else {
				entry.Debug("request")
			}

			return nil
		}
	}
}

// sonicSerializer is echo's JSON codec backed by sonic. Unknown fields in
// request bodies are rejected.
type sonicSerializer struct{}

func (sonicSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := sonic.ConfigStd.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}

	return enc.Encode(i)
}

func (sonicSerializer) Deserialize(c echo.Context, i any) error {
	dec := sonic.ConfigStd.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body: "+err.Error()).SetInternal(err)
	}

	return nil
}
