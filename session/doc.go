// Package session tracks login sessions, the devices they came from, and the
// append-only activity trail behind them.
//
// Sessions are durable records, not cache entries. A session expires at a
// fixed instant (CreatedAt + TTL, no sliding) and is flipped to inactive
// lazily on the first validation after that instant; it is never hard-deleted,
// so the trail stays auditable. Devices are upserted per (user, fingerprint).
//
// The Manager also scores login suspicion: a fingerprint the user has never
// presented before, or a resolved location farther than the configured
// distance from every previously recorded one. Suspicion is informational and
// never blocks a login on its own.
package session
