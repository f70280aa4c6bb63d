package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// StatusFor maps a service error to an HTTP status code.
func StatusFor(err error) int {
	switch category := domain.Classify(err); category {
	case domain.CategoryNone:
		return http.StatusOK
	case domain.CategoryInput:
		switch {
		case errors.Is(err, domain.ErrPayloadTooLarge):
			return http.StatusRequestEntityTooLarge
		case errors.Is(err, domain.ErrDuplicateDocument), errors.Is(err, domain.ErrDuplicateFilename):
			return http.StatusConflict
		case errors.Is(err, domain.ErrUnsupportedFormat):
			return http.StatusUnsupportedMediaType
		case errors.Is(err, domain.ErrExtractionEmpty):
			return http.StatusUnprocessableEntity
		default:
			return http.StatusBadRequest
		}
	case domain.CategoryNotFound:
		return http.StatusNotFound
	case domain.CategoryDependency, domain.CategoryUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler renders errors as ErrorResponse. Echo's own HTTP errors keep
// their status; service errors are mapped through StatusFor.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status int
			body   ErrorResponse
		)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			body.Error = http.StatusText(status)
			if msg, ok := he.Message.(string); ok {
				body.Error = msg
			}
		} else {
			status = StatusFor(err)
			body.Error = err.Error()
			body.Category = string(domain.Classify(err))
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", zap.Error(err), zap.Int("status", status))
		}
		if body.Category == string(domain.CategoryInternal) {
			body.Error = "internal error"
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.Warn("writing error response", zap.Error(writeErr))
		}
	}
}
