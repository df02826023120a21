// Package prometheus exposes authclient metrics as a prometheus.Collector.
//
// [NewExporter] wraps a [authclient.Client]; register it with any registry or mount
// [Exporter.Handler]. Counter names are authclient_*_total and the single histogram is
// authclient_submit_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry. Callers choose the registry.
//   - Mutate client state.
package prometheus
