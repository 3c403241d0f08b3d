// Package internal holds primitives shared by the engine flows: cryptographic
// random material (session ids, refresh and reset secrets, one-time codes), the
// opaque token codecs, and the deterministic device fingerprint.
//
// # Architecture boundaries
//
// This package owns byte-level formats only. It performs no I/O and imports no
// sibling package.
package internal
