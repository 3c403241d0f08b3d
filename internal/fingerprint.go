package internal

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives the stable device identity from request metadata. The
// concatenation order is part of the format: user-agent, accept-language, source
// address, joined by '|'. Changing the order changes every stored fingerprint.
func Fingerprint(userAgent, acceptLanguage, address string) string {
	sum := sha256.Sum256([]byte(userAgent + "|" + acceptLanguage + "|" + address))
	return hex.EncodeToString(sum[:])
}
