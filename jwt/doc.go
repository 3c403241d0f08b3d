// Package jwt issues and validates short-lived access tokens.
//
// Access tokens are stateless. A token carries the user id, session id, and
// role; validation checks the signature and time claims only and never touches
// storage. Anything that must be revocable lives in the session layer, not
// here.
//
// Supported signing methods are HS256 with a shared secret and Ed25519 with
// raw or PEM-encoded keys. A verify key set keyed by kid allows zero-downtime
// key rotation.
package jwt
