package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfsm",
			Name:      "runs_total",
			Help:      "Merge runs by final status",
		},
		[]string{"status"},
	)

	runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pdfsm",
			Name:      "run_duration_seconds",
			Help:      "Duration of merge runs",
			Buckets:   prometheus.DefBuckets,
		},
	)

	pagesCopied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdfsm",
			Name:      "pages_copied_total",
			Help:      "Pages copied into output documents",
		},
	)

	pageErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdfsm",
			Name:      "page_errors_total",
			Help:      "Requested pages that could not be copied",
		},
	)

	inputsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdfsm",
			Name:      "inputs_skipped_total",
			Help:      "Listed input files that were not found",
		},
	)

	repairs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfsm",
			Name:      "repairs_total",
			Help:      "Repair attempts by result (success, failed)",
		},
		[]string{"result"},
	)

	registerOnce sync.Once
)

// Init registers collectors. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(runsTotal, runDuration, pagesCopied, pageErrors, inputsSkipped, repairs)
	})
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func ObserveRun(status string, dur time.Duration) {
	runsTotal.WithLabelValues(status).Inc()
	runDuration.Observe(dur.Seconds())
}

func AddPagesCopied(n int) { pagesCopied.Add(float64(n)) }
func IncPageError()        { pageErrors.Inc() }
func IncInputSkipped()     { inputsSkipped.Inc() }
func IncRepair(ok bool) {
	if ok {
		repairs.WithLabelValues("success").Inc()
		return
	}
	repairs.WithLabelValues("failed").Inc()
}
