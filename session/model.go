package session

// DefaultKey is the fixed storage key the persisted session lives under.
const DefaultKey = "jwt-auth-storage"

// User is the authenticated account record returned by the remote endpoint.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// State is the persisted subset of a session.
//
// SchemaVersion is populated by Decode and is informational only; Encode always
// writes the current version.
type State struct {
	SchemaVersion uint8

	Token     string
	PublicKey string
	User      *User
}

// Empty reports whether the state carries nothing worth restoring.
func (s State) Empty() bool {
	return s.Token == "" && s.PublicKey == "" && s.User == nil
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
