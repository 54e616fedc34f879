package monitor

import "time"

type Status struct {
	PostgreSQL     bool      `json:"postgresql"`
	RedisEnabled   bool      `json:"redis_enabled"`
	Redis          bool      `json:"redis"`
	Sessions       bool      `json:"sessions"`
	StoredSessions int       `json:"stored_sessions"`
	Subscribers    int       `json:"subscribers"`
	LastCheck      time.Time `json:"last_check"`
}

// Healthy is true when both the task database and the session store answer.
func (s Status) Healthy() bool {
	return s.PostgreSQL && s.Sessions
}
