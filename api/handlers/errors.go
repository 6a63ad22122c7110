package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/energy-forecaster/api/middleware"
	"github.com/OldStager01/energy-forecaster/internal/auth"
	"github.com/OldStager01/energy-forecaster/internal/export"
	"github.com/OldStager01/energy-forecaster/internal/forecast"
	"github.com/OldStager01/energy-forecaster/internal/ingest"
	"github.com/OldStager01/energy-forecaster/internal/logger"
	"github.com/OldStager01/energy-forecaster/internal/pipeline"
	"github.com/OldStager01/energy-forecaster/internal/resilience"
	"github.com/OldStager01/energy-forecaster/internal/store"
	"github.com/OldStager01/energy-forecaster/pkg/validation"
)

// ErrorResponse is the failure body of the forecasting routes.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"Could not detect required timestamp and load columns"`
}

var badRequest = []error{
	ingest.ErrEmptyFile,
	ingest.ErrColumnsNotDetected,
	ingest.ErrNoValidRows,
	ingest.ErrNoValidLoad,
	ingest.ErrUnsupportedFormat,
	ingest.ErrInvalidURL,
	ingest.ErrTooLarge,
	forecast.ErrUnknownModel,
	forecast.ErrInvalidHorizon,
	forecast.ErrInsufficientData,
	pipeline.ErrNoData,
	pipeline.ErrMissingModel,
	pipeline.ErrMissingHorizon,
	export.ErrUnsupportedFormat,
	validation.ErrInvalidInput,
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}

	switch {
	case middleware.IsBodyTooLarge(err):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, ingest.ErrFetchFailed):
		return http.StatusBadGateway
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, pipeline.ErrNoSource):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes {"success": false, "error": ...}. Internal errors are logged
// and replaced by fallback.
func fail(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.ErrorCtxf(c.Request.Context(), "%s: %v", fallback, err)
		message = fallback
	}
	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Success: false, Error: message})
}
