package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	stageDuration    *prom.HistogramVec
	stageResults     *prom.CounterVec
	childExitCode    *prom.GaugeVec
	signalsForwarded *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "devlaunch",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each launcher stage (build, serve)",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 900, 3600},
		}, []string{"stage"})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "devlaunch",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.childExitCode = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "devlaunch",
			Name:      "child_exit_code",
			Help:      "Exit code of the last child process per stage",
		}, []string{"stage"})
		pr.signalsForwarded = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "devlaunch",
			Name:      "signals_forwarded_total",
			Help:      "Signals relayed from the launcher to the serve process",
		}, []string{"signal"})
		reg.MustRegister(pr.stageDuration, pr.stageResults, pr.childExitCode, pr.signalsForwarded)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) SetChildExitCode(stage string, code int) {
	if p == nil || p.childExitCode == nil {
		return
	}
	p.childExitCode.WithLabelValues(stage).Set(float64(code))
}

func (p *PrometheusRecorder) IncSignalForwarded(signal string) {
	if p == nil || p.signalsForwarded == nil {
		return
	}
	p.signalsForwarded.WithLabelValues(signal).Inc()
}
