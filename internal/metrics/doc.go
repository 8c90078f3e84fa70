// Package metrics provides observability hooks for launcher stages.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	l := launcher.New(cfg, runner).WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// When --metrics-listen is set the command layer registers a
// PrometheusRecorder and serves the registry on /metrics via Listen for as
// long as the launcher runs.
package metrics
