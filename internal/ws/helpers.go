package ws

import (
	"crypto/rand"
	"encoding/hex"
)

// newConnID labels a feed connection for audit events.
func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
