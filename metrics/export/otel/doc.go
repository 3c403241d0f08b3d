// Package otel bridges goShield engine metrics into an OpenTelemetry meter
// via a single registered callback over Engine.MetricsSnapshot.
package otel
