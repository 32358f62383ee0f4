package jwt

import "strings"

// Scheme is the Authorization header scheme used for session tokens.
const Scheme = "Bearer"

// BearerValue returns the raw credential carried by a stored session token.
//
// A token of the form "kind:value", where kind is a non-empty run of ASCII letters,
// digits, '-' or '_', yields "value". Any other token is returned unchanged.
func BearerValue(token string) string {
	token = strings.TrimSpace(token)
	i := strings.IndexByte(token, ':')
	if i <= 0 || i == len(token)-1 {
		return token
	}
	for j := 0; j < i; j++ {
		if !isKindByte(token[j]) {
			return token
		}
	}
	return token[i+1:]
}

// Header returns the Authorization header value for token, or "" when token is empty.
func Header(token string) string {
	v := BearerValue(token)
	if v == "" {
		return ""
	}
	return Scheme + " " + v
}

func isKindByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	default:
		return false
	}
}
