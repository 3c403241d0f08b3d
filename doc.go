// Package goShield provides an authentication and session-security engine with JWT
// access tokens, rotating opaque refresh tokens, durable device/location session
// records, email-verification and password-reset challenges, and brute-force defense
// backed by Redis counters and a persistent address block list.
//
// The package is designed for concurrent server workloads: Engine methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goShield is the public surface. It exposes [Engine], [Builder], [Config], value
// types (UserRecord, AuthResult, MetricsSnapshot, etc.) and the collaborator
// interfaces callers must implement ([UserStore], [Notifier], the session stores).
// All internal coordination (fingerprinting, rate limiting, block-list admission,
// audit dispatch) lives under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or token encoding details in its public
//     API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Import any sub-package that re-imports goShield (no import cycles).
//
// # Durability contract
//
// All durable state lives in the caller-provided record stores. The engine never
// holds a cross-request lock; uniqueness and rotation races are closed by store-level
// conditional writes, not by prior reads. ValidateAccess is the hot path and performs
// no store round-trips.
package goShield
