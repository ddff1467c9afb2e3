package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"mctPSO/internal/opt"
)

// Recorder collects per-run solver metrics in its own registry.
// Not safe for concurrent Observe calls.
type Recorder struct {
	Registry *prometheus.Registry

	runs        *prometheus.CounterVec
	failures    *prometheus.CounterVec
	evaluations *prometheus.CounterVec
	bestSpan    *prometheus.GaugeVec
	duration    *prometheus.HistogramVec

	best map[string]float64
}

func NewRecorder() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		best:     make(map[string]float64),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mctpso_runs_total",
				Help: "Total number of completed solver runs",
			},
			[]string{"algo"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mctpso_run_failures_total",
				Help: "Total number of solver runs that returned an error",
			},
			[]string{"algo"},
		),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mctpso_evaluations_total",
				Help: "Total number of makespan evaluations",
			},
			[]string{"algo"},
		),
		bestSpan: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mctpso_best_makespan",
				Help: "Best makespan seen per algorithm and case",
			},
			[]string{"algo", "case"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mctpso_run_duration_seconds",
				Help:    "Wall time of a single solver run",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"algo"},
		),
	}
	r.Registry.MustRegister(r.runs, r.failures, r.evaluations, r.bestSpan, r.duration)
	return r
}

// Observe records one finished run. The best-makespan gauge only moves down.
func (r *Recorder) Observe(algo, caseName string, res opt.Result, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.failures.WithLabelValues(algo).Inc()
		return
	}
	r.runs.WithLabelValues(algo).Inc()
	r.evaluations.WithLabelValues(algo).Add(float64(res.Evaluations))
	r.duration.WithLabelValues(algo).Observe(res.Duration.Seconds())

	key := algo + "/" + caseName
	if cur, ok := r.best[key]; ok && cur <= res.Makespan {
		return
	}
	r.best[key] = res.Makespan
	r.bestSpan.WithLabelValues(algo, caseName).Set(res.Makespan)
}

// Serve exposes the registry on addr/metrics in a background goroutine.
func (r *Recorder) Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{}))
	go func() {
		log.Infof("metrics: serving on %s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.WithError(err).Error("metrics: server stopped")
		}
	}()
}
