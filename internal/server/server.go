// Package server exposes the ledger and the processing pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"fjacquet/email-ledger/internal/ledger"
	"fjacquet/email-ledger/internal/logging"
	"fjacquet/email-ledger/internal/models"
)

// ProcessRunner triggers pipeline runs on demand.
type ProcessRunner interface {
	ProcessOnce(ctx context.Context) (models.ProcessResult, error)
	ProcessRecent(ctx context.Context, limit int) (models.ProcessResult, error)
}

// Store is the ledger surface the API serves.
type Store interface {
	Get(id uint) (*models.Transaction, error)
	List(limit, offset int) ([]models.Transaction, error)
	ListByCategory(category string) ([]models.Transaction, error)
	Update(id uint, update ledger.TransactionUpdate) (*models.Transaction, error)
	Delete(id uint) (bool, error)
	Summary() (*models.SummaryStats, error)
}

// Server is the HTTP API.
type Server struct {
	echo   *echo.Echo
	store  Store
	runner ProcessRunner
	logger logging.Logger
}

// New builds the HTTP API around a store and a process runner. runner may be
// nil, which disables the processing endpoints with 503.
func New(store Store, runner ProcessRunner, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, store: store, runner: runner, logger: logger}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/health", s.handleHealth)

	s.echo.GET("/transactions", s.handleListTransactions)
	s.echo.GET("/transactions/:id", s.handleGetTransaction)
	s.echo.PUT("/transactions/:id", s.handleUpdateTransaction)
	s.echo.DELETE("/transactions/:id", s.handleDeleteTransaction)
	s.echo.GET("/transactions/category/:category", s.handleListByCategory)

	s.echo.GET("/summary", s.handleSummary)

	s.echo.POST("/process-emails", s.handleProcessEmails)
	s.echo.POST("/process-recent", s.handleProcessRecent)
}

// Start serves the API on addr until the listener fails or is closed.
func (s *Server) Start(addr string) error {
	s.logger.WithField("addr", addr).Info("HTTP API listening")
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "email-ledger",
		"status":  "running",
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListTransactions(c echo.Context) error {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	txs, err := s.store.List(limit, offset)
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"transactions": txs,
		"count":        len(txs),
	})
}

func (s *Server) handleGetTransaction(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	tx, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "transaction not found")
		}
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var update ledger.TransactionUpdate
	if err := c.Bind(&update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	tx, err := s.store.Update(id, update)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "transaction not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	deleted, err := s.store.Delete(id)
	if err != nil {
		return s.internalError(c, err)
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound, "transaction not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListByCategory(c echo.Context) error {
	category := c.Param("category")
	if !models.IsValidCategory(category) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown category: "+category)
	}

	txs, err := s.store.ListByCategory(category)
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"category":     category,
		"transactions": txs,
		"count":        len(txs),
	})
}

func (s *Server) handleSummary(c echo.Context) error {
	stats, err := s.store.Summary()
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleProcessEmails(c echo.Context) error {
	if s.runner == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "processing is not configured")
	}

	result, err := s.runner.ProcessOnce(c.Request().Context())
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

type processRecentRequest struct {
	Count int `json:"count"`
}

func (s *Server) handleProcessRecent(c echo.Context) error {
	if s.runner == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "processing is not configured")
	}

	// echo's binder ignores query params on POST, so count is read explicitly.
	req := processRecentRequest{Count: 10}
	if raw := c.QueryParam("count"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid count")
		}
		req.Count = v
	} else if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Count <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "count must be positive")
	}

	result, err := s.runner.ProcessRecent(c.Request().Context(), req.Count)
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) internalError(c echo.Context, err error) error {
	s.logger.WithError(err).Error("request failed")
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid transaction id")
	}
	return uint(id), nil
}

func intQuery(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
