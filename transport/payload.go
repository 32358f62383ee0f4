package transport

import (
	"bytes"
	"encoding/json"

	"github.com/MrEthical07/goAuthClient/session"
)

var jsonNull = []byte("null")

// envelope is the decoded top level of a response body plus its "data" object,
// when "data" is an object.
type envelope struct {
	top  map[string]json.RawMessage
	data map[string]json.RawMessage
	raw  json.RawMessage
}

func parseEnvelope(body []byte) envelope {
	var env envelope
	if len(bytes.TrimSpace(body)) == 0 {
		return env
	}
	if err := json.Unmarshal(body, &env.top); err != nil {
		return env
	}
	raw, ok := env.top["data"]
	if !ok || isNull(raw) {
		return env
	}
	env.raw = raw
	_ = json.Unmarshal(raw, &env.data)
	return env
}

// lookup returns field from data first, then from the top level.
func (e envelope) lookup(field string) (json.RawMessage, bool) {
	if v, ok := e.data[field]; ok && !isNull(v) {
		return v, true
	}
	if v, ok := e.top[field]; ok && !isNull(v) {
		return v, true
	}
	return nil, false
}

func (e envelope) str(field string) string {
	raw, ok := e.lookup(field)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// user decodes a user record from data.user or user. When bare is set the
// "data" object itself is accepted as a last resort.
func (e envelope) user(bare bool) *session.User {
	if raw, ok := e.lookup("user"); ok {
		return decodeUser(raw)
	}
	if bare && e.data != nil {
		return decodeUser(e.raw)
	}
	return nil
}

func (e envelope) grant() Grant {
	return Grant{
		Token:     e.str("token"),
		PublicKey: e.str("public_key"),
		User:      e.user(false),
	}
}

func decodeUser(raw json.RawMessage) *session.User {
	var u session.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil
	}
	if u == (session.User{}) {
		return nil
	}
	return &u
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

// errorMessage extracts {"message": "..."} from an error body.
func errorMessage(body []byte) string {
	env := parseEnvelope(body)
	if v, ok := env.top["message"]; ok {
		var s string
		if json.Unmarshal(v, &s) == nil {
			return s
		}
	}
	return ""
}
