package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/energy-forecaster/internal/store"
	"github.com/OldStager01/energy-forecaster/pkg/config"
	"github.com/OldStager01/energy-forecaster/pkg/validation"
)

// Limits bounds list endpoints.
type Limits struct {
	Default int
	Max     int
}

func LimitsFromConfig(cfg *config.APIConfig) Limits {
	if cfg == nil {
		return Limits{}
	}
	return Limits{Default: cfg.DefaultLimit, Max: cfg.MaxLimit}
}

func (l Limits) defaultLimit() int {
	if l.Default > 0 {
		return l.Default
	}
	return 100
}

func (l Limits) maxLimit() int {
	if l.Max > 0 {
		return l.Max
	}
	return 1000
}

func (l Limits) parseLimit(c *gin.Context, defaultLimit int) int {
	limit := defaultLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = min(parsed, l.maxLimit())
		}
	}
	return limit
}

type ResultsHandler struct {
	store  store.Store
	limits Limits
}

func NewResultsHandler(st store.Store, limits Limits) *ResultsHandler {
	return &ResultsHandler{store: st, limits: limits}
}

// List godoc
// @Summary Stored forecast history
// @Description Newest first. Forecast points are included.
// @Tags Forecasts
// @Produce json
// @Param datasetId query string false "Restrict to one dataset"
// @Param limit query int false "Maximum number of results"
// @Success 200 {object} map[string]interface{} "Model results"
// @Failure 400 {object} ErrorResponse "Invalid dataset id"
// @Router /api/results [get]
func (h *ResultsHandler) List(c *gin.Context) {
	datasetID := c.Query("datasetId")
	if err := validation.ValidateDatasetID(datasetID); err != nil {
		fail(c, err, "Invalid dataset id")
		return
	}

	limit := h.limits.parseLimit(c, 20)

	results, err := h.store.ListModelResults(c.Request.Context(), datasetID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch model results"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dataset_id": datasetID,
		"data":       results,
		"count":      len(results),
	})
}
