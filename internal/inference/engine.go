package inference

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Classifier runs a forward pass over a preprocessed image tensor.
type Classifier interface {
	Classify(input []float32) (*Result, error)
	Labels() []string
	Loaded() bool
}

// Engine wraps an ONNX runtime session for the pneumonia model. The session
// reuses pre-allocated input/output tensors, so Classify serializes calls
// behind a mutex.
type Engine struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	meta         Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// NewEngine initializes the ONNX environment, reads model metadata and
// creates a session. Callers must Close the engine when done.
func NewEngine(modelPath, metadataPath string) (*Engine, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	metaFile, err := os.ReadFile(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(metaFile, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if len(meta.Classes) == 0 {
		return nil, fmt.Errorf("metadata lists no classes")
	}

	inputShape := ort.NewShape(meta.InputShape...)
	outputShape := ort.NewShape(meta.OutputShape...)

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &Engine{
		session:      session,
		meta:         meta,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// Metadata returns the loaded model metadata.
func (e *Engine) Metadata() Metadata { return e.meta }

func (e *Engine) Labels() []string { return e.meta.Classes }

func (e *Engine) Loaded() bool { return e.session != nil }

// Classify copies input into the session tensor, runs inference and returns
// the probability vector with its argmax.
func (e *Engine) Classify(input []float32) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil, fmt.Errorf("model not loaded")
	}
	data := e.inputTensor.GetData()
	if len(input) != len(data) {
		return nil, fmt.Errorf("expected %d input values, got %d", len(data), len(input))
	}
	copy(data, input)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := e.outputTensor.GetData()
	n := len(e.meta.Classes)
	if len(out) < n {
		n = len(out)
	}

	probs := make([]float32, n)
	copy(probs, out[:n])

	maxIdx := 0
	for i, v := range probs {
		if v > probs[maxIdx] {
			maxIdx = i
		}
	}

	return &Result{
		Predictions:    probs,
		PredictedClass: e.meta.Classes[maxIdx],
		ClassIndex:     maxIdx,
		Confidence:     probs[maxIdx],
	}, nil
}

// Close releases tensors, the session and the ONNX environment.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inputTensor != nil {
		e.inputTensor.Destroy()
		e.inputTensor = nil
	}
	if e.outputTensor != nil {
		e.outputTensor.Destroy()
		e.outputTensor = nil
	}
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	ort.DestroyEnvironment()
}
