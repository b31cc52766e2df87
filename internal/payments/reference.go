package payments

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const referencePrefix = "PAY-"

// NewReference generates the gateway correlation reference for a payment:
// the PAY- prefix followed by 8 random bytes, hex encoded. The reference is
// sent to the gateway as the idempotency key and must never collide.
func NewReference() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return referencePrefix + strings.ToUpper(hex.EncodeToString(buf[:]))
}
