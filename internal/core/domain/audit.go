package domain

import "time"

// DecisionRecord is one audit-trail entry. Exactly one is produced for every
// authorization check, allowed or denied, including invalid-session
// short-circuits (where ActorID is nil because no identity was resolved).
type DecisionRecord struct {
	ActorID   *int64    `json:"actor_id"`
	ActorRole Role      `json:"actor_role,omitempty"`
	TargetID  int64     `json:"target_id"`
	Action    Action    `json:"action"`
	Outcome   Outcome   `json:"outcome"`
	Reason    Reason    `json:"reason"`
	Risk      RiskLevel `json:"risk_level"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	At        time.Time `json:"at"`
}

// LoginRecord captures one authentication attempt for the audit trail.
type LoginRecord struct {
	Email     string    `json:"email"`
	UserID    *int64    `json:"user_id"`
	Success   bool      `json:"success"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	At        time.Time `json:"at"`
}
