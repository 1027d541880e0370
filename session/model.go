package session

import "time"

// Device describes the device a session was established from.
type Device struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// Session is one live authenticated context. TokenHash keys the record; it is
// the hash of the access token the session was issued with and never changes,
// because refresh rotation replaces the whole session rather than mutating it.
type Session struct {
	ID        string  `json:"id"`
	UserID    string  `json:"uid"`
	TokenHash string  `json:"th"`
	Device    *Device `json:"dev,omitempty"`
	CreatedAt int64   `json:"iat"`
	ExpiresAt int64   `json:"exp"`
}

// ExpiresAfter reports whether the session is still valid at t.
func (s *Session) ExpiresAfter(t time.Time) bool {
	return s.ExpiresAt > t.Unix()
}
