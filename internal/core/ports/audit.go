package ports

import (
	"context"
	"time"

	"github.com/rbac-labs/user-service/internal/core/domain"
)

// AuditSink receives audit records. Implementations must be non-blocking and
// best-effort from the caller's point of view: a failure to persist never
// changes a decision that was already computed.
type AuditSink interface {
	RecordDecision(record domain.DecisionRecord)
	RecordLogin(record domain.LoginRecord)
}

// AuditQuery filters the decision log.
type AuditQuery struct {
	ActorID int64
	Outcome domain.Outcome
	Risk    domain.RiskLevel
	Limit   int64
	Offset  int64
}

// AuditStats summarises the decision log over a window.
type AuditStats struct {
	TotalDecisions int64            `json:"total_decisions"`
	Denied         int64            `json:"denied"`
	DenialRate     float64          `json:"denial_rate"`
	HighRisk       int64            `json:"high_risk"`
	TopReasons     map[string]int64 `json:"top_reasons"`
	WindowDays     int              `json:"window_days"`
}

// AuditRepository is the persistent side of the audit trail: synchronous
// writes used by the async sink's workers, plus the admin query surface.
type AuditRepository interface {
	InsertDecision(ctx context.Context, record domain.DecisionRecord) error
	InsertLogin(ctx context.Context, record domain.LoginRecord) error
	ListDecisions(ctx context.Context, q AuditQuery) ([]domain.DecisionRecord, error)
	ListViolations(ctx context.Context, risk domain.RiskLevel, limit int64) ([]domain.DecisionRecord, error)
	Stats(ctx context.Context, since time.Time, windowDays int) (*AuditStats, error)
}
