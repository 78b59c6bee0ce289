package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rbac-labs/user-service/internal/core/domain"
	"github.com/rbac-labs/user-service/internal/core/ports"
)

// Guard wraps the decider with the two caller obligations the decider itself
// stays free of: emitting exactly one audit record per check, and producing
// the invalid-session denial for requests that never resolved an actor.
type Guard struct {
	authz *AuthzService
	audit ports.AuditSink
	log   zerolog.Logger
	now   func() time.Time
}

func NewGuard(authz *AuthzService, audit ports.AuditSink, log zerolog.Logger) *Guard {
	return &Guard{authz: authz, audit: audit, log: log, now: time.Now}
}

// Authorize runs the decision and records it. The record is handed to the
// sink before the decision is returned, so the audit trail never misses a
// check the caller acted on. Errors are store failures only and carry no
// decision.
func (g *Guard) Authorize(ctx context.Context, actor domain.Actor, targetID int64, action domain.Action, meta ports.RequestMeta) (domain.Decision, error) {
	decision, err := g.authz.Decide(ctx, actor, targetID, action)
	if err != nil {
		return domain.Decision{}, err
	}

	actorID := actor.ID
	g.record(domain.DecisionRecord{
		ActorID:   &actorID,
		ActorRole: actor.Role,
		TargetID:  targetID,
		Action:    action,
		Outcome:   decision.Outcome,
		Reason:    decision.Reason,
		Risk:      decision.Risk(actor),
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		At:        g.now().UTC(),
	})

	if !decision.Allowed() {
		g.log.Warn().
			Int64("actor_id", actor.ID).
			Str("role", string(actor.Role)).
			Int64("target_id", targetID).
			Str("action", string(action)).
			Str("reason", string(decision.Reason)).
			Msg("access denied")
	}

	return decision, nil
}

// DenyInvalidSession records the denial used when session resolution failed.
// No actor was resolved, so the record carries a nil actor id.
func (g *Guard) DenyInvalidSession(ctx context.Context, targetID int64, action domain.Action, meta ports.RequestMeta) domain.Decision {
	decision := domain.Deny(domain.ReasonInvalidSession)
	g.record(domain.DecisionRecord{
		TargetID:  targetID,
		Action:    action,
		Outcome:   decision.Outcome,
		Reason:    decision.Reason,
		Risk:      domain.RiskMedium,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		At:        g.now().UTC(),
	})
	return decision
}

func (g *Guard) record(rec domain.DecisionRecord) {
	g.audit.RecordDecision(rec)
}
