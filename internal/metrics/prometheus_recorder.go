package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "repotag"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once                   sync.Once
	classificationDuration prom.Histogram
	filesTagged            *prom.CounterVec
	patternErrors          *prom.CounterVec
	reloads                *prom.CounterVec
	repositoriesLoaded     prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.classificationDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "classification_duration_seconds",
			Help:      "Duration of single file classifications",
			Buckets:   prom.DefBuckets,
		})
		pr.filesTagged = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "files_tagged_total",
			Help:      "Tagged files by impact level",
		}, []string{"impact"})
		pr.patternErrors = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pattern_errors_total",
			Help:      "Invalid patterns encountered during matching by dialect",
		}, []string{"dialect"})
		pr.reloads = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "config_reloads_total",
			Help:      "Configuration reloads by result",
		}, []string{"result"})
		pr.repositoriesLoaded = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "repositories_loaded",
			Help:      "Repositories present in the active configuration",
		})
		reg.MustRegister(pr.classificationDuration, pr.filesTagged, pr.patternErrors, pr.reloads, pr.repositoriesLoaded)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveClassificationDuration(d time.Duration) {
	if p == nil || p.classificationDuration == nil {
		return
	}
	p.classificationDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFilesTagged(impact string) {
	if p == nil || p.filesTagged == nil {
		return
	}
	p.filesTagged.WithLabelValues(impact).Inc()
}

func (p *PrometheusRecorder) IncPatternError(dialect string) {
	if p == nil || p.patternErrors == nil {
		return
	}
	p.patternErrors.WithLabelValues(dialect).Inc()
}

func (p *PrometheusRecorder) IncReload(result ResultLabel) {
	if p == nil || p.reloads == nil {
		return
	}
	p.reloads.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetRepositoriesLoaded(n int) {
	if p == nil || p.repositoriesLoaded == nil {
		return
	}
	p.repositoriesLoaded.Set(float64(n))
}
