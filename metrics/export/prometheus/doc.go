// Package prometheus exposes session manager metrics through
// prometheus/client_golang.
//
// [Exporter] implements prometheus.Collector; register it with a caller-owned
// registry or mount [Exporter.Handler]. Counters are named
// goauth_client_*_total and the remote call latency histogram is
// goauth_client_remote_latency_seconds. Disabled metrics produce no series.
package prometheus
