// Package postgres provides pgx-backed implementations of the goShield store
// interfaces: the user store, the session/device/activity stores, and the
// blocked-address store. All stores share one pgxpool.Pool. Schema returns the
// embedded DDL; Migrate applies it.
package postgres
