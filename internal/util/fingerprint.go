package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Fingerprint computes a stable hash for a security finding key
func Fingerprint(check, file string, line int, context string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%s", check, file, line, context)
	return hex.EncodeToString(h.Sum(nil))
}
