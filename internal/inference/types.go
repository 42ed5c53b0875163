package inference

import "time"

// Metadata describes the exported ONNX model: tensor shapes, class labels
// and the image dimensions the network was trained on.
type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageWidth  int      `json:"image_width"`
	ImageHeight int      `json:"image_height"`
}

// Result is the raw outcome of one forward pass.
type Result struct {
	Predictions    []float32 `json:"predictions"`
	PredictedClass string    `json:"predicted_class"`
	ClassIndex     int       `json:"predicted_class_index"`
	Confidence     float32   `json:"confidence"`
}

// ImageInfo carries basic metadata about the uploaded radiograph.
type ImageInfo struct {
	Width  int    `json:"width" bson:"width"`
	Height int    `json:"height" bson:"height"`
	Format string `json:"format" bson:"format"`
}

// PredictionRecord is the full per-request record returned to the caller
// and cached/persisted by the service.
type PredictionRecord struct {
	PredictionID   string    `json:"prediction_id" bson:"predictionId"`
	Timestamp      time.Time `json:"timestamp" bson:"timestamp"`
	Filename       string    `json:"filename,omitempty" bson:"filename,omitempty"`
	PredictedClass string    `json:"predicted_class" bson:"predictedClass"`
	ClassIndex     int       `json:"predicted_class_index" bson:"predictedClassIndex"`
	Confidence     float32   `json:"confidence" bson:"confidence"`
	Predictions    []float32 `json:"predictions" bson:"predictions"`
	ImageInfo      ImageInfo `json:"image_info" bson:"imageInfo"`
	RadiographURL  string    `json:"radiograph_url,omitempty" bson:"radiographUrl,omitempty"`
}

// Health reports whether the predictor can serve requests.
type Health struct {
	Status      string    `json:"status"`
	ModelLoaded bool      `json:"model_loaded"`
	ClassLabels []string  `json:"class_labels"`
	Timestamp   time.Time `json:"timestamp"`
}
