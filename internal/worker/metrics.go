package worker

import "github.com/prometheus/client_golang/prometheus"

// Processing counters, exposed on the server's /metrics endpoint.
var (
	processedReadings = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sensorgrid_readings_processed_total",
		Help: "Readings successfully written to the store.",
	})
	failedReadings = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sensorgrid_readings_failed_total",
		Help: "Readings dropped due to decode or store failures.",
	})
	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sensorgrid_batch_duration_seconds",
		Help:    "Time spent persisting one batch of readings.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)

func init() {
	prometheus.MustRegister(processedReadings, failedReadings, batchDuration)
}
