package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess     ResultLabel = "success"
	ResultFailed      ResultLabel = "failed"
	ResultSkipped     ResultLabel = "skipped"
	ResultInterrupted ResultLabel = "interrupted"
)

// Stage names used as metric labels.
const (
	StageBuild = "build"
	StageServe = "serve"
)

// Recorder defines observability hooks for launcher stages. Implementations
// may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	SetChildExitCode(stage string, code int)
	IncSignalForwarded(signal string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) SetChildExitCode(string, int)               {}
func (NoopRecorder) IncSignalForwarded(string)                  {}
