// Package metrics records build and page metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metrics never
// need nil checks at the call site:
//
//	b := build.New(cfg, asm, build.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The Prometheus implementation registers into a caller supplied registry.
// WriteTextfile dumps that registry in the text exposition format so a node
// exporter textfile collector can pick up the results of one-shot builds.
package metrics
