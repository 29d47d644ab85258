package order

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// codeAlphabet avoids 0/O and 1/I so the code survives being read aloud at
// a pickup counter.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewID returns a transaction identifier.
func NewID() string {
	return fmt.Sprintf("txn-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// NewCode returns a short human-readable order code.
func NewCode() string {
	buf := make([]byte, 6)
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return "EK-" + string(buf)
}
