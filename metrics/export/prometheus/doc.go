// Package prometheus exposes goShield engine metrics as a
// prometheus.Collector built over Engine.MetricsSnapshot.
package prometheus
