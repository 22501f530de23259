package common

import (
	"crypto/rand"
	"encoding/hex"
)

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// SessionCookieName is the dashboard session cookie checked by the handshake
// endpoint. The web login flow itself lives outside this repository.
const SessionCookieName = "vn_session"

// MakeRandHexString generates a random hexadecimal string from size random
// bytes; the resulting string is twice as long. Used for handshake codes and
// refresh tokens.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
