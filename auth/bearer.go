package auth

import "strings"

const bearerPrefix = "Bearer "

// BearerToken extracts the token from an Authorization header value.
// Only the exact "Bearer <token>" form is accepted.
func BearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
