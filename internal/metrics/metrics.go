package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SamplesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sad_samples_total", Help: "Samples classified"},
	)
	SamplesSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sad_samples_skipped_total", Help: "Non-finite samples rejected"},
	)
	AnomaliesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sad_anomalies_total", Help: "Samples flagged as anomalous"},
	)
	WindowFill = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "sad_window_fill", Help: "Values currently in the sliding window"},
	)
	WindowMean = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "sad_window_mean", Help: "Mean of the sliding window at last classification"},
	)
	WindowStdDev = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "sad_window_stddev", Help: "Population stddev of the sliding window at last classification"},
	)
	SinkErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sad_sink_errors_total", Help: "Fan-out failures per sink"},
		[]string{"sink"},
	)
)

func MustRegister() {
	prometheus.MustRegister(
		SamplesTotal, SamplesSkipped, AnomaliesTotal,
		WindowFill, WindowMean, WindowStdDev, SinkErrors,
	)
}

func Handler() http.Handler { return promhttp.Handler() }
