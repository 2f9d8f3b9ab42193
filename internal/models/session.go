package models

import "time"

// LoginTimeLayout formats login instants for display.
const LoginTimeLayout = "2006-01-02 15:04:05"

// UserInfo carries the display-only identity fields of a login response.
type UserInfo struct {
	Username   string                 `json:"username,omitempty"`
	Name       string                 `json:"name,omitempty"`
	StudentID  string                 `json:"student_id,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// DisplayName prefers the full name, then the username.
func (u UserInfo) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Username != "" {
		return u.Username
	}
	return "N/A"
}

// Session is an authenticated upstream login. ExpiresAt is never before IssuedAt.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"-"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

// RemainingSeconds returns the whole seconds left before expiry, never negative.
func (s *Session) RemainingSeconds(now time.Time) int64 {
	if s == nil {
		return 0
	}
	left := s.ExpiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int64(left / time.Second)
}

// Expired is advisory: nothing signs the session out when it turns true.
func (s *Session) Expired(now time.Time) bool {
	return s.RemainingSeconds(now) == 0
}

// SessionStatus is the session as shown to the dashboard, with its countdown.
type SessionStatus struct {
	Session          *Session `json:"session"`
	DisplayName      string   `json:"display_name"`
	LoginTime        string   `json:"login_time"`
	RemainingSeconds int64    `json:"remaining_seconds"`
	Expired          bool     `json:"expired"`
}

// StatusAt snapshots the session countdown at now.
func (s *Session) StatusAt(now time.Time) SessionStatus {
	if s == nil {
		return SessionStatus{Expired: true}
	}
	return SessionStatus{
		Session:          s,
		DisplayName:      s.User.DisplayName(),
		LoginTime:        s.IssuedAt.Format(LoginTimeLayout),
		RemainingSeconds: s.RemainingSeconds(now),
		Expired:          s.Expired(now),
	}
}
