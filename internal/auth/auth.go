// Package auth holds the admin credential checks shared by handlers and middleware.
package auth

import (
	"crypto/subtle"
	"strings"
)

// MetadataAdmin marks operations that require the admin token.
const MetadataAdmin = "admin"

// VerifyToken reports whether given matches token in constant time.
// An empty token never matches.
func VerifyToken(token, given string) bool {
	if token == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(given), []byte(token)) == 1
}

// BearerToken extracts the credential from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}

	return token, true
}
