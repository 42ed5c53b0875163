package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "prediag", Name: "predictions_total", Help: "Number of completed predictions by class."},
		[]string{"class"},
	)
	PredictionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "prediag", Name: "prediction_errors_total", Help: "Number of failed prediction requests by stage."},
		[]string{"stage"},
	)
	PredictionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: "prediag", Name: "prediction_duration_seconds", Help: "End-to-end prediction latency.",
			Buckets: prometheus.DefBuckets},
	)
	UploadsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "prediag", Name: "uploads_rejected_total", Help: "Number of rejected uploads by reason."},
		[]string{"reason"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "prediag", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "prediag", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(PredictionsTotal)
	reg.MustRegister(PredictionErrors)
	reg.MustRegister(PredictionDuration)
	reg.MustRegister(UploadsRejected)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
