package domain

import "time"

// SessionKeyUserEmail is the session entry identifying the signed-in user.
const SessionKeyUserEmail = "userEmail"

// Session is a per-browser key/value record addressed by an opaque cookie.
type Session struct {
	ID        string            `json:"id"`
	Values    map[string]string `json:"values,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// Value returns the entry stored under key, if any.
func (s *Session) Value(key string) (string, bool) {
	if s == nil || s.Values == nil {
		return "", false
	}
	v, ok := s.Values[key]
	return v, ok
}
