package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the server's Prometheus instruments. Each server owns its
// registry, so restarts and tests never collide on the global one.
type metrics struct {
	registry      *prometheus.Registry
	predictions   *prometheus.CounterVec
	comparisons   prometheus.Counter
	trainDuration prometheus.Histogram
	modelTrained  prometheus.Gauge
	agentEpisodes prometheus.Gauge
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()

	predictions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pitwall_predictions_total",
		Help: "Degradation predictions by source",
	}, []string{"source"})
	comparisons := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pitwall_strategy_comparisons_total",
		Help: "Strategy comparison requests served",
	})
	trainDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pitwall_training_duration_seconds",
		Help:    "Wall time of tire model training runs",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
	modelTrained := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pitwall_model_trained",
		Help: "1 when a trained tire model snapshot is being served",
	})
	agentEpisodes := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pitwall_optimizer_episodes_total",
		Help: "Cumulative optimizer training episodes",
	})

	registry.MustRegister(predictions, comparisons, trainDuration, modelTrained, agentEpisodes)

	return &metrics{
		registry:      registry,
		predictions:   predictions,
		comparisons:   comparisons,
		trainDuration: trainDuration,
		modelTrained:  modelTrained,
		agentEpisodes: agentEpisodes,
	}
}

// handler serves the exposition endpoint for this server's registry.
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
