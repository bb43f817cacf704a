package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resolution outcomes.
const (
	OutcomeResolved = "resolved"
	OutcomeNoMatch  = "no_match"
	OutcomeError    = "error"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gift_requests_total",
		Help: "Recommendation requests by final status.",
	}, []string{"status"})

	ideasExtracted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gift_ideas_extracted_total",
		Help: "Ideas parsed from model output.",
	})

	ideasDuplicate = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gift_ideas_duplicate_total",
		Help: "Ideas dropped because they were already suggested.",
	})

	resolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gift_resolutions_total",
		Help: "Product search lookups by outcome.",
	}, []string{"outcome"})

	modelLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gift_model_request_duration_seconds",
		Help:    "Latency of language model calls.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
	})

	registerOnce sync.Once
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestsTotal, ideasExtracted, ideasDuplicate, resolutionsTotal, modelLatency)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest counts a finished request.
func RecordRequest(status string) {
	requestsTotal.WithLabelValues(status).Inc()
}

// RecordExtraction counts parsed ideas and how many of them were repeats.
func RecordExtraction(extracted, unique int) {
	ideasExtracted.Add(float64(extracted))
	if dup := extracted - unique; dup > 0 {
		ideasDuplicate.Add(float64(dup))
	}
}

// RecordResolution counts one product lookup.
func RecordResolution(outcome string) {
	resolutionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveModel records how long a model call took.
func ObserveModel(d time.Duration) {
	modelLatency.Observe(d.Seconds())
}
