package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prediag/inference-service/internal/cache"
	"github.com/prediag/inference-service/internal/config"
	"github.com/prediag/inference-service/internal/inference"
	"github.com/prediag/inference-service/internal/prediag/service"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// fixed-output classifier for handler tests
type fixedClassifier struct {
	probs  []float32
	loaded bool
	err    error
}

func (f *fixedClassifier) Classify(input []float32) (*inference.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	maxIdx := 0
	for i, v := range f.probs {
		if v > f.probs[maxIdx] {
			maxIdx = i
		}
	}
	return &inference.Result{
		Predictions:    f.probs,
		PredictedClass: f.Labels()[maxIdx],
		ClassIndex:     maxIdx,
		Confidence:     f.probs[maxIdx],
	}, nil
}

func (f *fixedClassifier) Labels() []string {
	return []string{"No Pneumonia", "Viral Pneumonia", "Bacterial Pneumonia"}
}

func (f *fixedClassifier) Loaded() bool { return f.loaded }

func testHandler(t *testing.T, withCache bool) (*APIHandler, *gin.Engine, *service.Service) {
	t.Helper()
	cfg := &config.Config{}
	// small target keeps preprocessing fast in tests
	pred := inference.NewPredictor(&fixedClassifier{probs: []float32{0.1, 0.2, 0.7}, loaded: true}, 32, 32)
	cases := service.NewMemoryService()

	var pc *cache.PredictionCache
	if withCache {
		m, err := mr.Run()
		require.NoError(t, err)
		t.Cleanup(m.Close)
		client := redis.NewClient(&redis.Options{Addr: m.Addr()})
		pc = cache.NewPredictionCache(client, "", time.Minute)
	}

	h := NewAPIHandler(cfg, pred, cases, nil, pc)
	g := gin.New()
	h.Register(g.Group("/api/v1"))
	return h, g, cases
}

func pngUpload(t *testing.T, field, filename string, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 100, 100))))
	return rawUpload(t, field, filename, "image/png", img.Bytes(), extra)
}

func rawUpload(t *testing.T, field, filename, contentType string, data []byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	for k, v := range extra {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	_, g, _ := testHandler(t, false)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"model_loaded":true`)
}

func TestHealth_ModelDown(t *testing.T) {
	cfg := &config.Config{}
	pred := inference.NewPredictor(&fixedClassifier{probs: []float32{1, 0, 0}, loaded: false}, 32, 32)
	h := NewAPIHandler(cfg, pred, service.NewMemoryService(), nil, nil)
	g := gin.New()
	h.Register(g.Group("/api/v1"))

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestInfo(t *testing.T) {
	_, g, _ := testHandler(t, false)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/info", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), ServiceName)
	require.Contains(t, w.Body.String(), "Bacterial Pneumonia")
	require.Contains(t, w.Body.String(), "10MB")
}

func TestPredict_HappyPath(t *testing.T) {
	_, g, cases := testHandler(t, true)

	body, ct := pngUpload(t, "file", "xray.png", map[string]string{"user_id": "doc1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var rec inference.PredictionRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	require.NotEmpty(t, rec.PredictionID)
	require.Equal(t, "xray.png", rec.Filename)
	require.Equal(t, "Bacterial Pneumonia", rec.PredictedClass)
	require.Equal(t, 2, rec.ClassIndex)
	require.Len(t, rec.Predictions, 3)
	require.Equal(t, 100, rec.ImageInfo.Width)
	require.Equal(t, "png", rec.ImageInfo.Format)

	// case was persisted for doctor review
	p, err := cases.GetCase(req.Context(), rec.PredictionID)
	require.NoError(t, err)
	require.Equal(t, "doc1", p.UserID)
	require.InDelta(t, 0.9, p.ModelResult.PneumoniaProbability, 1e-6)

	// record is retrievable from the cache
	w2 := httptest.NewRecorder()
	g.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/api/v1/predictions/"+rec.PredictionID, nil))
	require.Equal(t, http.StatusOK, w2.Code)
	require.Contains(t, w2.Body.String(), rec.PredictionID)
}

func TestPredict_NoFile(t *testing.T) {
	_, g, _ := testHandler(t, false)
	body, ct := pngUpload(t, "image", "xray.png", nil) // wrong field name
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredict_RejectsNonImageContentType(t *testing.T) {
	_, g, _ := testHandler(t, false)
	body, ct := rawUpload(t, "file", "notes.txt", "text/plain", []byte("hello"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredict_RejectsUndecodableImage(t *testing.T) {
	_, g, _ := testHandler(t, false)
	body, ct := rawUpload(t, "file", "corrupt.png", "image/png", []byte("not a real png"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredict_ClassifierFailureIsServerError(t *testing.T) {
	cfg := &config.Config{}
	pred := inference.NewPredictor(&fixedClassifier{loaded: true, err: errors.New("session closed")}, 32, 32)
	h := NewAPIHandler(cfg, pred, service.NewMemoryService(), nil, nil)
	g := gin.New()
	h.Register(g.Group("/api/v1"))

	// a perfectly valid upload: the failure is the model's, not the caller's
	body, ct := pngUpload(t, "file", "xray.png", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "internal server error during prediction")
}

func TestPredict_RejectsOversizedUpload(t *testing.T) {
	_, g, _ := testHandler(t, false)
	big := make([]byte, maxUploadSize+1)
	body, ct := rawUpload(t, "file", "huge.png", "image/png", big, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestGetPrediction_UnknownID(t *testing.T) {
	_, g, _ := testHandler(t, true)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/predictions/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPrediction_CacheUnavailable(t *testing.T) {
	_, g, _ := testHandler(t, false)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/predictions/any", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
