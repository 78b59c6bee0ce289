package domain

import "time"

// Session is a server-side login session record. The token handed to the
// client is a signed JWT referencing the record by ID, so revoking the record
// kills the token no matter how long its signature stays valid.
type Session struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"user_id"`
	Role         Role      `json:"role"`
	IP           string    `json:"ip"`
	UserAgent    string    `json:"user_agent"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Session revocation reasons recorded when a session is terminated.
const (
	RevokeLogout       = "logout"
	RevokeLogoutAll    = "logout_all"
	RevokeExpired      = "expired"
	RevokeFingerprint  = "fingerprint_mismatch"
	RevokeUserInactive = "user_inactive"
)
