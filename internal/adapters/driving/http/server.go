// Package http provides the docqa HTTP API.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// multipartOverhead is allowed on top of the payload limit for form framing.
const multipartOverhead = 1 << 20

// Ports holds the services the API exposes.
type Ports struct {
	Ingest    driving.IngestService
	Retrieval driving.RetrievalService
	Document  driving.DocumentService
}

// Config holds HTTP server configuration.
type Config struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string

	// Metrics serves GET /metrics when set.
	Metrics http.Handler
}

// Server provides HTTP endpoints for docqa.
type Server struct {
	echo   *echo.Echo
	ports  Ports
	logger *zap.Logger
	config Config
}

// NewServer creates a new HTTP server.
func NewServer(ports Ports, logger *zap.Logger, cfg Config) (*Server, error) {
	if ports.Ingest == nil || ports.Retrieval == nil || ports.Document == nil {
		return nil, errors.New("ingest, retrieval and document services are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = domain.DefaultServerAddr
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return nil
		}
	})

	s := &Server{
		echo:   e,
		ports:  ports,
		logger: logger,
		config: cfg,
	}
	s.registerRoutes()
	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	if s.config.Metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.config.Metrics))
	}

	v1 := s.echo.Group("/api/v1")
	limit := strconv.Itoa((domain.MaxPayloadBytes+multipartOverhead)>>20) + "M"
	v1.POST("/upload", s.handleUpload, middleware.BodyLimit(limit))
	v1.GET("/query", s.handleQuery)
	v1.GET("/documents", s.handleDocuments)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.config.Addr))
	if err := s.echo.Start(s.config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// UploadResponse is the response body for POST /api/v1/upload.
type UploadResponse struct {
	Message        string `json:"message"`
	DocumentID     string `json:"document_id"`
	Filename       string `json:"filename"`
	VectorPosition int    `json:"vector_position"`
}

// AnswerResponse is returned by GET /api/v1/query when an answer was found.
type AnswerResponse struct {
	Query         string   `json:"query"`
	Answer        string   `json:"answer"`
	Sources       []string `json:"sources"`
	PrimarySource string   `json:"primary_source"`
}

// NotFoundResponse is returned by GET /api/v1/query when no answer exists.
type NotFoundResponse struct {
	Query     string `json:"query"`
	Message   string `json:"message"`
	Reason    string `json:"reason"`
	Retryable bool   `json:"retryable"`
}

// DocumentResponse describes one ingested document.
type DocumentResponse struct {
	DocumentID     string    `json:"document_id"`
	Filename       string    `json:"filename"`
	VectorPosition *int      `json:"vector_position"`
	CreatedAt      time.Time `json:"created_at"`
}

// DocumentsResponse is the response body for GET /api/v1/documents.
type DocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart field \"file\" is required")
	}
	if fh.Size > domain.MaxPayloadBytes {
		return fmt.Errorf("%w: %s is %d bytes", domain.ErrPayloadTooLarge, fh.Filename, fh.Size)
	}

	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, domain.MaxPayloadBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}

	req := domain.IngestRequest{
		Filename: fh.Filename,
		Content:  content,
	}
	if declared := c.FormValue("format"); declared != "" {
		req.Format = domain.Format(declared)
	}

	result, err := s.ports.Ingest.Ingest(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, UploadResponse{
		Message:        "Document uploaded and embedded successfully",
		DocumentID:     result.DocumentID,
		Filename:       result.Filename,
		VectorPosition: result.Position,
	})
}

func (s *Server) handleQuery(c echo.Context) error {
	question := strings.TrimSpace(c.QueryParam("question"))
	if question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	q := domain.Query{Question: question, History: c.QueryParam("context")}
	if raw := c.QueryParam("k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil || k < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "k must be a positive integer")
		}
		q.K = k
	}

	result, err := s.ports.Retrieval.Ask(c.Request().Context(), q)
	if err != nil {
		return err
	}
	if !result.Found() {
		return c.JSON(http.StatusOK, NotFoundResponse{
			Query:     question,
			Message:   result.NotFound.Message(),
			Reason:    string(result.NotFound.Reason),
			Retryable: result.NotFound.Recoverable(),
		})
	}
	return c.JSON(http.StatusOK, AnswerResponse{
		Query:         question,
		Answer:        result.Answer,
		Sources:       result.Sources,
		PrimarySource: result.PrimarySource,
	})
}

func (s *Server) handleDocuments(c echo.Context) error {
	docs, err := s.ports.Document.List(c.Request().Context())
	if err != nil {
		return err
	}
	resp := DocumentsResponse{Documents: make([]DocumentResponse, 0, len(docs))}
	for _, d := range docs {
		resp.Documents = append(resp.Documents, DocumentResponse{
			DocumentID:     d.ID,
			Filename:       d.Filename,
			VectorPosition: d.VectorPosition,
			CreatedAt:      d.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
