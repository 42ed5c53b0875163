package inference

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prediag/inference-service/pkg/logger"
)

// Predictor orchestrates the full prediction pipeline: decode, validate,
// preprocess, classify, assemble record. It is stateless above the
// classifier and safe for concurrent use.
type Predictor struct {
	classifier Classifier
	width      int
	height     int
}

// NewPredictor wraps a classifier with the preprocessing pipeline. Zero
// width/height fall back to the dimensions the model was trained on.
func NewPredictor(c Classifier, width, height int) *Predictor {
	if width <= 0 {
		width = DefaultImageWidth
	}
	if height <= 0 {
		height = DefaultImageHeight
	}
	return &Predictor{classifier: c, width: width, height: height}
}

// PredictFromBytes runs the pipeline over raw upload bytes and returns the
// assembled prediction record.
func (p *Predictor) PredictFromBytes(data []byte, filename string) (*PredictionRecord, error) {
	img, format, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	if err := ValidateImage(img); err != nil {
		return nil, err
	}

	input := Preprocess(img, p.width, p.height)
	result, err := p.classifier.Classify(input)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	bounds := img.Bounds()
	rec := &PredictionRecord{
		PredictionID:   uuid.NewString(),
		Timestamp:      time.Now().UTC(),
		Filename:       filename,
		PredictedClass: result.PredictedClass,
		ClassIndex:     result.ClassIndex,
		Confidence:     result.Confidence,
		Predictions:    result.Predictions,
		ImageInfo: ImageInfo{
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
			Format: format,
		},
	}

	logger.Infof("prediction completed: %s - %s (%.3f)", rec.PredictionID, rec.PredictedClass, rec.Confidence)
	return rec, nil
}

// Health reports whether the underlying model can serve predictions.
func (p *Predictor) Health() Health {
	loaded := p.classifier.Loaded()
	status := "healthy"
	if !loaded {
		status = "unhealthy"
	}
	return Health{
		Status:      status,
		ModelLoaded: loaded,
		ClassLabels: p.classifier.Labels(),
		Timestamp:   time.Now().UTC(),
	}
}

// Labels exposes the model's class labels.
func (p *Predictor) Labels() []string { return p.classifier.Labels() }
