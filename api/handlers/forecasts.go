package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/energy-forecaster/internal/export"
	"github.com/OldStager01/energy-forecaster/internal/forecast"
	"github.com/OldStager01/energy-forecaster/internal/pipeline"
	"github.com/OldStager01/energy-forecaster/internal/store"
	"github.com/OldStager01/energy-forecaster/pkg/models"
	"github.com/OldStager01/energy-forecaster/pkg/validation"
)

type ForecastHandler struct {
	pipeline *pipeline.Pipeline
	// defaultHorizon fills an omitted horizon on comparisons; zero makes it required.
	defaultHorizon int
}

func NewForecastHandler(p *pipeline.Pipeline, defaultHorizon int) *ForecastHandler {
	return &ForecastHandler{pipeline: p, defaultHorizon: defaultHorizon}
}

type PredictRequest struct {
	ModelType string `json:"modelType" example:"prophet"`
	Horizon   int    `json:"horizon" example:"1"`
	DatasetID string `json:"datasetId,omitempty" example:""`
}

type PredictResponse struct {
	Success bool                `json:"success" example:"true"`
	Result  *models.ModelResult `json:"result"`
}

type PredictAllRequest struct {
	Horizon   int    `json:"horizon" example:"7"`
	DatasetID string `json:"datasetId,omitempty" example:""`
}

type PredictAllResponse struct {
	Success bool                  `json:"success" example:"true"`
	Results []*models.ModelResult `json:"results"`
}

type ModelInfo struct {
	Type           models.ModelType `json:"type" example:"lstm"`
	ConfidenceBand float64          `json:"confidenceBand" example:"0.08"`
}

// Predict godoc
// @Summary Forecast with one model
// @Description Splits the dataset 80/20, forecasts horizon*24 test steps (capped at the test size) and scores them. The result becomes the latest forecast.
// @Tags Forecasts
// @Accept json
// @Produce json
// @Param request body PredictRequest true "Model and horizon"
// @Success 200 {object} PredictResponse
// @Failure 400 {object} ErrorResponse "Missing or invalid fields, or no data"
// @Failure 500 {object} ErrorResponse "Prediction failed"
// @Router /api/predict [post]
func (h *ForecastHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.ModelType == "" || req.Horizon == 0 {
		fail(c, pipeline.ErrMissingModel, "Prediction failed")
		return
	}
	if err := validation.ValidateDatasetID(req.DatasetID); err != nil {
		fail(c, err, "Prediction failed")
		return
	}

	result, err := h.pipeline.Predict(c.Request.Context(), req.DatasetID, models.ModelType(req.ModelType), req.Horizon)
	if err != nil {
		fail(c, err, "Prediction failed")
		return
	}

	c.JSON(http.StatusOK, PredictResponse{Success: true, Result: result})
}

// PredictAll godoc
// @Summary Compare every model
// @Description Runs naive, arima, prophet, lstm and hybrid against the same dataset snapshot. Results are not stored.
// @Tags Forecasts
// @Accept json
// @Produce json
// @Param request body PredictAllRequest true "Horizon"
// @Success 200 {object} PredictAllResponse
// @Failure 400 {object} ErrorResponse "Missing horizon or no data"
// @Failure 500 {object} ErrorResponse "Prediction failed"
// @Router /api/predict/all [post]
func (h *ForecastHandler) PredictAll(c *gin.Context) {
	var req PredictAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Horizon == 0 {
		req.Horizon = h.defaultHorizon
	}
	if req.Horizon == 0 {
		fail(c, pipeline.ErrMissingHorizon, "Prediction failed")
		return
	}
	if err := validation.ValidateDatasetID(req.DatasetID); err != nil {
		fail(c, err, "Prediction failed")
		return
	}

	results, err := h.pipeline.PredictAll(c.Request.Context(), req.DatasetID, req.Horizon)
	if err != nil {
		fail(c, err, "Prediction failed")
		return
	}

	c.JSON(http.StatusOK, PredictAllResponse{Success: true, Results: results})
}

// Latest godoc
// @Summary Latest stored forecast
// @Tags Forecasts
// @Produce json
// @Param datasetId query string false "Restrict to one dataset"
// @Success 200 {object} models.ModelResult
// @Failure 404 {object} map[string]string "No forecast available"
// @Router /api/forecast/latest [get]
func (h *ForecastHandler) Latest(c *gin.Context) {
	result, ok := h.latest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportLatest godoc
// @Summary Download the latest forecast
// @Tags Forecasts
// @Produce octet-stream
// @Param datasetId query string false "Restrict to one dataset"
// @Param format query string false "csv or parquet" Enums(csv, parquet)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse "Unsupported format"
// @Failure 404 {object} map[string]string "No forecast available"
// @Router /api/forecast/latest/export [get]
func (h *ForecastHandler) ExportLatest(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		fail(c, err, "Export failed")
		return
	}

	result, ok := h.latest(c)
	if !ok {
		return
	}

	name := fmt.Sprintf("forecast-%s-%s", result.Metadata.Type, result.Metadata.ID)
	sendExport(c, format, name, func(w exportWriter) error {
		return export.WriteForecast(w, format, result)
	})
}

func (h *ForecastHandler) latest(c *gin.Context) (*models.ModelResult, bool) {
	id := c.Query("datasetId")
	if err := validation.ValidateDatasetID(id); err != nil {
		fail(c, err, "Invalid dataset id")
		return nil, false
	}

	result, err := h.pipeline.LatestResult(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No forecast available"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get latest forecast"})
		return nil, false
	}
	return result, true
}

// Models godoc
// @Summary Available model kinds
// @Tags Forecasts
// @Produce json
// @Success 200 {array} ModelInfo
// @Router /api/models [get]
func (h *ForecastHandler) Models(c *gin.Context) {
	kinds := models.AllModelTypes()
	out := make([]ModelInfo, 0, len(kinds))
	for _, t := range kinds {
		m, err := forecast.New(t)
		if err != nil {
			continue
		}
		out = append(out, ModelInfo{Type: t, ConfidenceBand: m.Band()})
	}
	c.JSON(http.StatusOK, out)
}

type exportWriter = io.Writer

// sendExport renders into memory first so a failed write still produces a
// JSON error instead of a truncated download.
func sendExport(c *gin.Context, format export.Format, basename string, write func(exportWriter) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		fail(c, err, "Export failed")
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": basename + "." + string(format),
	}))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
