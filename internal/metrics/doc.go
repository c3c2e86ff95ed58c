// Package metrics exports job activity and process memory to Prometheus.
// JobMetrics implements job.Recorder on a private registry so several
// instances can coexist in one process, which the tests rely on.
package metrics
