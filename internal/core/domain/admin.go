// Package domain defines the core domain model for AdminGate.
package domain

// Administrator is the server's association of a bearer token with a
// human identity. At most one live record exists per token; the token is
// the sole registry key. Username never changes after creation; only
// the token rotates, and a rotation re-keys the record rather than
// editing a field in place.
type Administrator struct {
	// Username is the human identity, fixed at creation.
	Username string `json:"username"`

	// Token is the opaque bearer credential; possession is proof.
	Token string `json:"token"`

	// AccessGranted is true only between a successful handshake on the
	// current connection and that connection's close. Never persisted.
	AccessGranted bool `json:"-"`
}

// Invalid is the sentinel returned by registry lookups that match no
// record. Callers compare against it by identity instead of checking for
// nil.
var Invalid = &Administrator{}

// IsValid reports whether a is a real registry record rather than the
// Invalid sentinel.
func (a *Administrator) IsValid() bool {
	return a != Invalid
}
