// Package password provides one-way credential hashing with Argon2id.
//
// Hashes are emitted as PHC strings ("$argon2id$v=19$m=...,t=...,p=...$salt$hash")
// so cost parameters travel with the hash and verification never depends on the
// current configuration. Policy checks such as minimum length live with the
// caller; this package only hashes and verifies.
package password
