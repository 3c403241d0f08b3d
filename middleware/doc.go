// Package middleware exposes HTTP middleware adapters over goShield.Engine
// validation.
//
// # Guards
//
//   - [Guard]: stateless access-token verification, no store call.
//   - [RequireActiveSession]: token verification plus a session store check.
//   - [RequireRole]: token verification plus a role match.
//
// Each guard reads the Authorization bearer token, validates it through the
// engine, and injects the validated [goShield.AuthResult] into the request
// context. All authentication decisions are delegated to the engine; this
// package only translates HTTP semantics into engine calls.
package middleware
