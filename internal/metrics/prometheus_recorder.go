package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "linklocal"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	reg              *prom.Registry
	linksFound       prom.Counter
	downloads        *prom.CounterVec
	downloadDuration *prom.HistogramVec
	rewritten        prom.Counter
	runDuration      prom.Histogram
	runOutcome       *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.linksFound = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "links_found_total",
			Help:      "Candidate links found by the extractor",
		})
		pr.downloads = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Download attempts by result",
		}, []string{"result"})
		pr.downloadDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "download_duration_seconds",
			Help:      "Duration of individual downloads",
			Buckets:   prom.DefBuckets,
		}, []string{"result"})
		pr.rewritten = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "documents_rewritten_total",
			Help:      "Documents written back after link replacement",
		})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Runs by final outcome",
		}, []string{"outcome"})
		reg.MustRegister(pr.linksFound, pr.downloads, pr.downloadDuration, pr.rewritten, pr.runDuration, pr.runOutcome)
	})
	return pr
}

// Registry returns the registry the collectors are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) AddLinksFound(n int) {
	if p == nil || p.linksFound == nil || n <= 0 {
		return
	}
	p.linksFound.Add(float64(n))
}

func (p *PrometheusRecorder) ObserveDownload(d time.Duration, result ResultLabel) {
	if p == nil || p.downloads == nil {
		return
	}
	p.downloads.WithLabelValues(string(result)).Inc()
	p.downloadDuration.WithLabelValues(string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDocumentsRewritten() {
	if p == nil || p.rewritten == nil {
		return
	}
	p.rewritten.Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome string) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}
