package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ImportRowsTotal counts processed import rows by outcome (imported, failed, skipped).
	ImportRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_rows_total",
			Help: "Total number of import rows processed by outcome",
		},
		[]string{"outcome"},
	)

	// ImportPeripheralsTotal counts peripherals handled by imports (added, duplicate).
	ImportPeripheralsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_peripherals_total",
			Help: "Total number of peripherals handled by imports",
		},
		[]string{"outcome"},
	)

	// ImportBatchDuration tracks whole-batch import duration in seconds by mode.
	ImportBatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "import_batch_duration_seconds",
			Help:    "Import batch duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"mode"},
	)

	// ImportBatchesRunning is the number of import batches currently in flight.
	ImportBatchesRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "import_batches_running",
			Help: "Number of import batches currently running",
		},
	)

	// OrphanAssets is the number of assets with no inventory link, as of the
	// last scheduled sweep.
	OrphanAssets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "orphan_assets",
			Help: "Number of assets with no inventory link (last sweep)",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestDuration, RequestTotal,
			ImportRowsTotal, ImportPeripheralsTotal, ImportBatchDuration, ImportBatchesRunning,
			OrphanAssets,
		)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// RecordImportRow increments the row counter for an outcome (imported, failed, skipped).
func RecordImportRow(outcome string) {
	ImportRowsTotal.WithLabelValues(outcome).Inc()
}

// RecordPeripheral increments the peripheral counter for an outcome (added, duplicate).
func RecordPeripheral(outcome string) {
	ImportPeripheralsTotal.WithLabelValues(outcome).Inc()
}

// ObserveBatch records one finished batch for the given mode.
func ObserveBatch(mode string, durationSeconds float64) {
	ImportBatchDuration.WithLabelValues(mode).Observe(durationSeconds)
}

// SetOrphanAssets records the orphan count from the latest sweep.
func SetOrphanAssets(n int) {
	OrphanAssets.Set(float64(n))
}
