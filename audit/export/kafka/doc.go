// Package kafka provides an audit sink that publishes engine audit events to
// a Kafka topic as JSON, keyed by user id for per-user ordering.
package kafka
