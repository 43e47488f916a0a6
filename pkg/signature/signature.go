// Package signature implements Midtrans webhook signature verification.
package signature

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
)

// Compute returns the hex-encoded SHA-512 digest Midtrans expects for a
// notification: sha512(orderID + statusCode + grossAmount + serverKey).
// grossAmount must be the exact string the gateway sent — reformatting the
// number (e.g. "10000.00" to "10000") produces a different digest.
func Compute(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// Verify checks the signature_key of an inbound notification against the
// expected digest. Returns false if any required field is empty; never
// panics. Comparison is constant-time.
func Verify(orderID, statusCode, grossAmount, provided, serverKey string) bool {
	if orderID == "" || statusCode == "" || grossAmount == "" || provided == "" || serverKey == "" {
		return false
	}
	expected := Compute(orderID, statusCode, grossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}
