// Package idgen provides cryptographically random ID generation.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// WithPrefix generates a random ID with a prefix (e.g. "route_", "risk_",
// "audit_"). Result is prefix + 24 hex chars (12 random bytes).
func WithPrefix(prefix string) string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return prefix + hex.EncodeToString(b)
}

// Hex generates a random hex string of the given byte length.
func Hex(numBytes int) string {
	b := make([]byte, numBytes)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// TxHash mints a 0x-prefixed 64-hex-char transaction hash whose trailing
// 8 hex digits encode the low 32 bits of t in unix milliseconds. The status
// tracker recovers an approximate submission time from those digits.
func TxHash(t time.Time) string {
	return "0x" + Hex(28) + fmt.Sprintf("%08x", uint32(t.UnixMilli()))
}

// BridgeTransactionID mints a bridge correlation id in the form
// bridge_<millis>_<9 random chars>.
func BridgeTransactionID(t time.Time) string {
	return fmt.Sprintf("bridge_%d_%s", t.UnixMilli(), Hex(5)[:9])
}
