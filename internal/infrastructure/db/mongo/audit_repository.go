package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rbac-labs/user-service/internal/core/domain"
	"github.com/rbac-labs/user-service/internal/core/ports"
)

const (
	collectionDecisions = "authz_decisions"
	collectionLogins    = "login_attempts"

	queryTimeout = 5 * time.Second
)

// AuditRepository persists the audit trail in MongoDB.
type AuditRepository struct {
	decisions *mongo.Collection
	logins    *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{
		decisions: db.Collection(collectionDecisions),
		logins:    db.Collection(collectionLogins),
	}
}

type decisionDoc struct {
	ActorID   *int64    `bson:"actor_id,omitempty"`
	ActorRole string    `bson:"actor_role,omitempty"`
	TargetID  int64     `bson:"target_id"`
	Action    string    `bson:"action"`
	Outcome   string    `bson:"outcome"`
	Reason    string    `bson:"reason"`
	Risk      string    `bson:"risk_level"`
	IP        string    `bson:"ip,omitempty"`
	UserAgent string    `bson:"user_agent,omitempty"`
	At        time.Time `bson:"at"`
}

type loginDoc struct {
	Email     string    `bson:"email"`
	UserID    *int64    `bson:"user_id,omitempty"`
	Success   bool      `bson:"success"`
	IP        string    `bson:"ip,omitempty"`
	UserAgent string    `bson:"user_agent,omitempty"`
	At        time.Time `bson:"at"`
}

func (r *AuditRepository) InsertDecision(ctx context.Context, rec domain.DecisionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.decisions.InsertOne(ctx, decisionDoc{
		ActorID:   rec.ActorID,
		ActorRole: string(rec.ActorRole),
		TargetID:  rec.TargetID,
		Action:    string(rec.Action),
		Outcome:   string(rec.Outcome),
		Reason:    string(rec.Reason),
		Risk:      string(rec.Risk),
		IP:        rec.IP,
		UserAgent: rec.UserAgent,
		At:        rec.At,
	})
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

func (r *AuditRepository) InsertLogin(ctx context.Context, rec domain.LoginRecord) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.logins.InsertOne(ctx, loginDoc{
		Email:     rec.Email,
		UserID:    rec.UserID,
		Success:   rec.Success,
		IP:        rec.IP,
		UserAgent: rec.UserAgent,
		At:        rec.At,
	})
	if err != nil {
		return fmt.Errorf("insert login: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListDecisions(ctx context.Context, q ports.AuditQuery) ([]domain.DecisionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{}
	if q.ActorID != 0 {
		filter["actor_id"] = q.ActorID
	}
	if q.Outcome != "" {
		filter["outcome"] = string(q.Outcome)
	}
	if q.Risk != "" {
		filter["risk_level"] = string(q.Risk)
	}

	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetLimit(limit).
		SetSkip(q.Offset)

	cursor, err := r.decisions.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeDecisions(ctx, cursor)
}

// ListViolations returns denied attempts, optionally filtered by risk level.
func (r *AuditRepository) ListViolations(ctx context.Context, risk domain.RiskLevel, limit int64) ([]domain.DecisionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"outcome": string(domain.OutcomeDeny)}
	if risk != "" {
		filter["risk_level"] = string(risk)
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(limit)
	cursor, err := r.decisions.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeDecisions(ctx, cursor)
}

// Stats aggregates the decision log since the given time.
func (r *AuditRepository) Stats(ctx context.Context, since time.Time, windowDays int) (*ports.AuditStats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	window := bson.M{"at": bson.M{"$gte": since}}

	total, err := r.decisions.CountDocuments(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("audit stats: %w", err)
	}

	denied, err := r.decisions.CountDocuments(ctx, bson.M{"at": bson.M{"$gte": since}, "outcome": string(domain.OutcomeDeny)})
	if err != nil {
		return nil, fmt.Errorf("audit stats: %w", err)
	}

	highRisk, err := r.decisions.CountDocuments(ctx, bson.M{"at": bson.M{"$gte": since}, "risk_level": string(domain.RiskHigh)})
	if err != nil {
		return nil, fmt.Errorf("audit stats: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"at": bson.M{"$gte": since}, "outcome": string(domain.OutcomeDeny)}}},
		{{Key: "$group", Value: bson.M{"_id": "$reason", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
		{{Key: "$limit", Value: 5}},
	}
	cursor, err := r.decisions.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("audit stats: %w", err)
	}
	defer cursor.Close(ctx)

	topReasons := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Reason string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("audit stats: %w", err)
		}
		topReasons[row.Reason] = row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("audit stats: %w", err)
	}

	stats := &ports.AuditStats{
		TotalDecisions: total,
		Denied:         denied,
		HighRisk:       highRisk,
		TopReasons:     topReasons,
		WindowDays:     windowDays,
	}
	if total > 0 {
		stats.DenialRate = float64(denied) / float64(total)
	}
	return stats, nil
}

func decodeDecisions(ctx context.Context, cursor *mongo.Cursor) ([]domain.DecisionRecord, error) {
	records := make([]domain.DecisionRecord, 0)
	for cursor.Next(ctx) {
		var doc decisionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode decision: %w", err)
		}
		records = append(records, domain.DecisionRecord{
			ActorID:   doc.ActorID,
			ActorRole: domain.Role(doc.ActorRole),
			TargetID:  doc.TargetID,
			Action:    domain.Action(doc.Action),
			Outcome:   domain.Outcome(doc.Outcome),
			Reason:    domain.Reason(doc.Reason),
			Risk:      domain.RiskLevel(doc.Risk),
			IP:        doc.IP,
			UserAgent: doc.UserAgent,
			At:        doc.At,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("decode decisions: %w", err)
	}
	return records, nil
}
