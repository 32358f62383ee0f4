package transport

import (
	"errors"
	"net/http"
	"strconv"
)

// Error is a non-2xx response from the remote endpoint.
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	s := "transport: " + e.Op + ": status " + strconv.Itoa(e.Status)
	if e.Message != "" {
		s += ": " + e.Message
	}
	return s
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not a
// response error (for example a network failure).
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// MessageOf returns the server-provided message carried by err, or "".
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
