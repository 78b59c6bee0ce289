package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rbac-labs/user-service/internal/api/metrics"
	"github.com/rbac-labs/user-service/internal/core/domain"
)

// SessionStore keeps session records in Redis. Each record lives under its
// own key with a TTL, so expiry is enforced by the store itself; a per-user
// set indexes the ids for logout-all and session listing.
//
// Keys: session:<id> (JSON record), user_sessions:<user_id> (set of ids).
type SessionStore struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewSessionStore(client *redis.Client, log zerolog.Logger) *SessionStore {
	return &SessionStore{client: client, log: log}
}

func sessionKey(id string) string {
	return "session:" + id
}

func userSessionsKey(userID int64) string {
	return fmt.Sprintf("user_sessions:%d", userID)
}

func (s *SessionStore) Save(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), payload, ttl)
	pipe.SAdd(ctx, userSessionsKey(session.UserID), session.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	metrics.SessionsCreatedTotal.Inc()
	return nil
}

func (s *SessionStore) Find(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionInvalid
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// Touch slides the activity and expiry window forward and resets the TTL.
func (s *SessionStore) Touch(ctx context.Context, id string, ttl time.Duration) error {
	session, err := s.Find(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	session.LastActivity = now
	session.ExpiresAt = now.Add(ttl)

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(id), payload, ttl).Err(); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (s *SessionStore) Revoke(ctx context.Context, id string, reason string) error {
	session, err := s.Find(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionInvalid) {
			return nil // already gone
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	pipe.SRem(ctx, userSessionsKey(session.UserID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	metrics.SessionsRevokedTotal.WithLabelValues(reason).Inc()
	s.log.Info().
		Str("session_id", id).
		Int64("user_id", session.UserID).
		Str("reason", reason).
		Msg("session revoked")
	return nil
}

func (s *SessionStore) RevokeAllForUser(ctx context.Context, userID int64, reason string) (int, error) {
	ids, err := s.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("revoke all sessions: %w", err)
	}

	revoked := 0
	for _, id := range ids {
		n, err := s.client.Del(ctx, sessionKey(id)).Result()
		if err != nil {
			return revoked, fmt.Errorf("revoke all sessions: %w", err)
		}
		revoked += int(n)
	}
	if err := s.client.Del(ctx, userSessionsKey(userID)).Err(); err != nil {
		return revoked, fmt.Errorf("revoke all sessions: %w", err)
	}

	metrics.SessionsRevokedTotal.WithLabelValues(reason).Add(float64(revoked))
	s.log.Info().Int64("user_id", userID).Int("count", revoked).Str("reason", reason).Msg("all sessions revoked")
	return revoked, nil
}

// ListForUser returns the user's live sessions and prunes index entries
// whose record already expired.
func (s *SessionStore) ListForUser(ctx context.Context, userID int64) ([]domain.Session, error) {
	ids, err := s.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]domain.Session, 0, len(ids))
	for _, id := range ids {
		session, err := s.Find(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrSessionInvalid) {
				_ = s.client.SRem(ctx, userSessionsKey(userID), id)
				continue
			}
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, nil
}
