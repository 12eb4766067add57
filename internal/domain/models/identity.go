package models

// Identity is the verified caller identity extracted from a bearer credential.
// It is immutable once verified and lives only for the duration of a request.
type Identity struct {
	UserID  string // stable opaque user identifier
	Address string // optional wallet address claim
}

// Anonymous reports whether no identity was established.
func (i Identity) Anonymous() bool {
	return i.UserID == ""
}
