package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/energy-forecaster/internal/export"
	"github.com/OldStager01/energy-forecaster/internal/pipeline"
	"github.com/OldStager01/energy-forecaster/pkg/models"
	"github.com/OldStager01/energy-forecaster/pkg/validation"
)

const currentDatasetName = "current_dataset.csv"

type DatasetHandler struct {
	pipeline *pipeline.Pipeline
	limits   Limits
}

func NewDatasetHandler(p *pipeline.Pipeline, limits Limits) *DatasetHandler {
	return &DatasetHandler{pipeline: p, limits: limits}
}

type UploadResponse struct {
	Success     bool                     `json:"success" example:"true"`
	DatasetID   string                   `json:"datasetId" example:"0b9f5a34-6c1e-4a63-9c55-1f2a3b4c5d6e"`
	DatasetInfo models.DatasetInfo       `json:"datasetInfo"`
	Preview     []models.TimeSeriesPoint `json:"preview"`
}

type UploadURLRequest struct {
	URL string `json:"url" binding:"required,url" example:"http://loadgen:9100/datasets/weekly.csv?days=60"`
}

func uploadResponse(res *pipeline.IngestResult) UploadResponse {
	return UploadResponse{
		Success:     true,
		DatasetID:   res.Dataset.ID,
		DatasetInfo: res.Dataset.Info,
		Preview:     res.Preview,
	}
}

// Upload godoc
// @Summary Upload a load dataset
// @Description Parses a CSV or XLSX file, detects timestamp and load columns, fills gaps and engineers features. The dataset becomes the latest.
// @Tags Datasets
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} ErrorResponse "No file, empty file, undetectable columns or no valid rows"
// @Failure 413 {object} ErrorResponse "File too large"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/upload [post]
func (h *DatasetHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		if statusFor(err) == http.StatusRequestEntityTooLarge {
			fail(c, err, "Upload failed")
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No file uploaded"})
		return
	}

	filename := validation.SanitizeFilename(header.Filename)
	if err := validation.ValidateUploadFilename(filename); err != nil {
		fail(c, err, "Upload failed")
		return
	}

	file, err := header.Open()
	if err != nil {
		fail(c, err, "Upload failed")
		return
	}
	defer file.Close()

	res, err := h.pipeline.Ingest(c.Request.Context(), file, filename)
	if err != nil {
		fail(c, err, "Upload failed")
		return
	}

	c.JSON(http.StatusOK, uploadResponse(res))
}

// UploadURL godoc
// @Summary Ingest a dataset from a URL
// @Description Downloads a CSV or XLSX file through the resilient remote source and ingests it like an upload.
// @Tags Datasets
// @Accept json
// @Produce json
// @Param request body UploadURLRequest true "Dataset URL"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} ErrorResponse "Invalid URL or dataset"
// @Failure 502 {object} ErrorResponse "Remote source failed"
// @Failure 503 {object} ErrorResponse "Remote source unavailable"
// @Router /api/upload/url [post]
func (h *DatasetHandler) UploadURL(c *gin.Context) {
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "a valid url is required"})
		return
	}

	res, err := h.pipeline.IngestURL(c.Request.Context(), req.URL)
	if err != nil {
		fail(c, err, "Upload failed")
		return
	}

	c.JSON(http.StatusOK, uploadResponse(res))
}

// Info godoc
// @Summary Dataset summary
// @Description Returns the summary of the given dataset, or of the latest upload.
// @Tags Datasets
// @Produce json
// @Param datasetId query string false "Dataset id (defaults to latest)"
// @Success 200 {object} models.DatasetInfo
// @Failure 404 {object} map[string]string "No dataset available"
// @Router /api/dataset/info [get]
func (h *DatasetHandler) Info(c *gin.Context) {
	ds, ok := h.resolve(c)
	if !ok {
		return
	}

	info := ds.Info
	if info.Filename == "" {
		info.Filename = currentDatasetName
	}
	c.JSON(http.StatusOK, info)
}

// ExportFeatures godoc
// @Summary Download the engineered feature frame
// @Tags Datasets
// @Produce octet-stream
// @Param datasetId query string false "Dataset id (defaults to latest)"
// @Param format query string false "csv or parquet" Enums(csv, parquet)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse "Unsupported format"
// @Failure 404 {object} map[string]string "No dataset available"
// @Router /api/dataset/features/export [get]
func (h *DatasetHandler) ExportFeatures(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		fail(c, err, "Export failed")
		return
	}

	ds, ok := h.resolve(c)
	if !ok {
		return
	}

	sendExport(c, format, "features-"+ds.ID, func(w exportWriter) error {
		return export.WriteFeatures(w, format, ds.Features)
	})
}

func (h *DatasetHandler) resolve(c *gin.Context) (*models.Dataset, bool) {
	id := c.Query("datasetId")
	if err := validation.ValidateDatasetID(id); err != nil {
		fail(c, err, "Invalid dataset id")
		return nil, false
	}

	ds, err := h.pipeline.Dataset(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No dataset available"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get dataset info"})
		return nil, false
	}
	return ds, true
}

// List godoc
// @Summary List stored datasets
// @Tags Datasets
// @Produce json
// @Param limit query int false "Maximum number of datasets"
// @Success 200 {object} map[string]interface{} "Dataset summaries"
// @Router /api/datasets [get]
func (h *DatasetHandler) List(c *gin.Context) {
	limit := h.limits.parseLimit(c, h.limits.defaultLimit())

	datasets, err := h.pipeline.Store().ListDatasets(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list datasets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  datasets,
		"count": len(datasets),
	})
}

// Clear godoc
// @Summary Delete all datasets and results
// @Tags Datasets
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/data [delete]
func (h *DatasetHandler) Clear(c *gin.Context) {
	if err := h.pipeline.Clear(c.Request.Context()); err != nil {
		fail(c, err, "Failed to clear data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
