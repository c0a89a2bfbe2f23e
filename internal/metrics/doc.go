// Package metrics records pipeline metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so call sites never check for nil:
//
//	runner := pipeline.New(v, d, pipeline.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// PrometheusRecorder registers its collectors on a registry that can be
// written to a node-exporter textfile after a run, or served over HTTP by
// the watch command.
package metrics
