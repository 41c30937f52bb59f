// Package metrics provides observability hooks for classification and tagging.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	mgr := structure.NewManager(loader, structure.WithRecorder(metrics.NoopRecorder{}))
//
// To enable metrics, swap NoopRecorder for a PrometheusRecorder and expose
// its registry with HTTPHandler.
package metrics
