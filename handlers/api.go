package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prediag/inference-service/internal/cache"
	"github.com/prediag/inference-service/internal/config"
	"github.com/prediag/inference-service/internal/inference"
	"github.com/prediag/inference-service/internal/prediag"
	"github.com/prediag/inference-service/internal/prediag/service"
	"github.com/prediag/inference-service/internal/storage"
	"github.com/prediag/inference-service/pkg/logger"
	"github.com/prediag/inference-service/pkg/metrics"
)

const (
	ServiceName    = "Pneumonia Prediagnostic Service"
	ServiceVersion = "1.0.0"

	// 10MB upload cap
	maxUploadSize = 10 << 20
)

var supportedFormats = []string{"JPEG", "PNG", "BMP", "TIFF"}

// APIHandler holds the prediction pipeline dependencies. Radiograph store
// and prediction cache are optional; the pipeline skips them when nil.
type APIHandler struct {
	cfg       *config.Config
	predictor *inference.Predictor
	cases     *service.Service
	store     *storage.RadiographStore
	cache     *cache.PredictionCache
}

func NewAPIHandler(cfg *config.Config, p *inference.Predictor, cases *service.Service, store *storage.RadiographStore, predCache *cache.PredictionCache) *APIHandler {
	return &APIHandler{cfg: cfg, predictor: p, cases: cases, store: store, cache: predCache}
}

// Register mounts the prediction endpoints on the given group.
func (h *APIHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/info", h.Info)
	rg.POST("/predict", h.Predict)
	rg.GET("/predictions/:id", h.GetPrediction)
}

// Health reports predictor readiness. 503 until the model is loaded.
func (h *APIHandler) Health(c *gin.Context) {
	health := h.predictor.Health()
	code := http.StatusOK
	if health.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, health)
}

// Info returns static service metadata.
func (h *APIHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service_name": ServiceName,
		"version":      ServiceVersion,
		"description":  "AI-powered pneumonia detection from chest X-ray images",
		"endpoints": gin.H{
			"/api/v1/predict":         "POST - Upload image for pneumonia prediction",
			"/api/v1/predictions/:id": "GET - Fetch a recent prediction by id",
			"/api/v1/cases":           "GET - List prediagnostic cases for a user",
			"/api/v1/health":          "GET - Service health check",
			"/api/v1/info":            "GET - Service information",
		},
		"supported_formats": supportedFormats,
		"max_file_size":     "10MB",
		"model_classes":     h.predictor.Labels(),
	})
}

// Predict handles a multipart radiograph upload: validate, preprocess,
// classify, store the image, persist the case and cache the record.
func (h *APIHandler) Predict(c *gin.Context) {
	start := time.Now()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		metrics.UploadsRejected.WithLabelValues("missing_file").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided; use 'file' as the form field name"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		metrics.UploadsRejected.WithLabelValues("too_large").Inc()
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large; maximum size is 10MB"})
		return
	}
	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		metrics.UploadsRejected.WithLabelValues("bad_type").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "file must be an image"})
		return
	}

	// re-check the cap while reading in case Size was understated
	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}
	if len(data) > maxUploadSize {
		metrics.UploadsRejected.WithLabelValues("too_large").Inc()
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large; maximum size is 10MB"})
		return
	}

	rec, err := h.predictor.PredictFromBytes(data, header.Filename)
	if err != nil {
		if errors.Is(err, inference.ErrInvalidImage) {
			logger.Warnf("prediction rejected for %s: %v", header.Filename, err)
			metrics.PredictionErrors.WithLabelValues("input").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image; supported formats: JPEG, PNG, BMP, TIFF"})
			return
		}
		logger.Errorf("prediction failed for %s: %v", header.Filename, err)
		metrics.PredictionErrors.WithLabelValues("inference").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error during prediction"})
		return
	}

	if h.store != nil {
		url, err := h.store.Store(c.Request.Context(), rec.PredictionID, rec.ImageInfo.Format,
			bytes.NewReader(data), int64(len(data)), header.Header.Get("Content-Type"), 24*time.Hour)
		if err != nil {
			// classification succeeded; losing the stored image is not fatal
			logger.Errorf("failed to store radiograph %s: %v", rec.PredictionID, err)
		} else {
			rec.RadiographURL = url
		}
	}

	if err := h.cases.RecordCase(c.Request.Context(), &prediag.Prediagnostic{
		UserID:          c.PostForm("user_id"),
		PrediagnosticID: rec.PredictionID,
		RadiographURL:   rec.RadiographURL,
		ModelResult: prediag.ModelResult{
			// probability mass assigned to either pneumonia class
			PneumoniaProbability: pneumoniaProbability(rec.Predictions),
			Label:                rec.PredictedClass,
		},
		ProcessedAt: rec.Timestamp,
		UploadedAt:  rec.Timestamp,
	}); err != nil {
		logger.Errorf("failed to persist case %s: %v", rec.PredictionID, err)
		metrics.PredictionErrors.WithLabelValues("persist").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error during prediction"})
		return
	}

	if h.cache != nil {
		if err := h.cache.Put(c.Request.Context(), rec); err != nil {
			logger.Warnf("failed to cache prediction %s: %v", rec.PredictionID, err)
		}
	}

	metrics.PredictionsTotal.WithLabelValues(rec.PredictedClass).Inc()
	metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	c.JSON(http.StatusOK, rec)
}

// GetPrediction serves a recent prediction record from the cache.
func (h *APIHandler) GetPrediction(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "prediction lookup not available"})
		return
	}
	rec, err := h.cache.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction lookup failed"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "prediction not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func pneumoniaProbability(probs []float32) float64 {
	if len(probs) == 0 {
		return 0
	}
	// index 0 is the "No Pneumonia" class
	p := 1 - float64(probs[0])
	if p < 0 {
		p = 0
	}
	return p
}
