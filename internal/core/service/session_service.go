package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rbac-labs/user-service/internal/core/domain"
	"github.com/rbac-labs/user-service/internal/core/ports"
)

// SessionService issues and validates sessions. The bearer token is an HS256
// JWT whose sid claim points at a server-side record in the SessionStore;
// both the signature and the record must check out, which keeps tokens
// revocable and lets validation compare the stored client fingerprint.
type SessionService struct {
	store     ports.SessionStore
	users     ports.UserReader
	jwtSecret string
	ttl       time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

const defaultSessionTTL = time.Hour

func NewSessionService(store ports.SessionStore, users ports.UserReader, jwtSecret string, ttl time.Duration, log zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionService{
		store:     store,
		users:     users,
		jwtSecret: jwtSecret,
		ttl:       ttl,
		log:       log,
		now:       time.Now,
	}
}

// Create opens a session for the user and returns the signed token.
func (s *SessionService) Create(ctx context.Context, user *domain.User, meta ports.RequestMeta) (string, *domain.Session, error) {
	now := s.now().UTC()
	session := &domain.Session{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Role:         user.Role,
		IP:           meta.IP,
		UserAgent:    meta.UserAgent,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(s.ttl),
	}

	if err := s.store.Save(ctx, session, s.ttl); err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.signToken(session)
	if err != nil {
		_ = s.store.Revoke(ctx, session.ID, domain.RevokeLogout)
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("session_id", session.ID).Str("ip", meta.IP).Msg("session created")
	return token, session, nil
}

// Resolve validates the token and returns the acting identity. Any failure
// collapses to domain.ErrSessionInvalid so callers cannot distinguish a
// forged token from an expired one.
func (s *SessionService) Resolve(ctx context.Context, token string, meta ports.RequestMeta) (domain.Actor, error) {
	sessionID, err := s.parseToken(token)
	if err != nil {
		return domain.Actor{}, domain.ErrSessionInvalid
	}

	session, err := s.store.Find(ctx, sessionID)
	if err != nil {
		return domain.Actor{}, domain.ErrSessionInvalid
	}

	now := s.now().UTC()
	if session.Expired(now) {
		_ = s.store.Revoke(ctx, session.ID, domain.RevokeExpired)
		return domain.Actor{}, domain.ErrSessionInvalid
	}

	// A different browser or OS family on the same token reads as hijacking
	// and kills the session. An IP change alone is logged but allowed:
	// mobile networks and proxies rotate addresses legitimately.
	if !userAgentsSimilar(session.UserAgent, meta.UserAgent) {
		_ = s.store.Revoke(ctx, session.ID, domain.RevokeFingerprint)
		s.log.Warn().
			Int64("user_id", session.UserID).
			Str("session_id", session.ID).
			Str("stored_ua", session.UserAgent).
			Str("seen_ua", meta.UserAgent).
			Msg("session fingerprint mismatch")
		return domain.Actor{}, domain.ErrSessionInvalid
	}
	if session.IP != "" && meta.IP != "" && session.IP != meta.IP {
		s.log.Info().
			Int64("user_id", session.UserID).
			Str("session_id", session.ID).
			Str("stored_ip", session.IP).
			Str("seen_ip", meta.IP).
			Msg("session ip changed")
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = s.store.Revoke(ctx, session.ID, domain.RevokeUserInactive)
			return domain.Actor{}, domain.ErrSessionInvalid
		}
		return domain.Actor{}, fmt.Errorf("resolve session: %w", err)
	}
	if !user.Active() {
		_ = s.store.Revoke(ctx, session.ID, domain.RevokeUserInactive)
		return domain.Actor{}, domain.ErrSessionInvalid
	}

	if err := s.store.Touch(ctx, session.ID, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to touch session")
	}

	// Role comes from the store, not the token: authorization must reflect
	// the current role, and an admin demotion takes effect immediately.
	return domain.Actor{ID: user.ID, Role: user.Role}, nil
}

// TokenSessionID extracts the session id from a bearer token without
// consulting the store.
func (s *SessionService) TokenSessionID(token string) (string, error) {
	return s.parseToken(token)
}

func (s *SessionService) Revoke(ctx context.Context, sessionID, reason string) error {
	return s.store.Revoke(ctx, sessionID, reason)
}

func (s *SessionService) RevokeAllForUser(ctx context.Context, userID int64, reason string) (int, error) {
	return s.store.RevokeAllForUser(ctx, userID, reason)
}

func (s *SessionService) ListForUser(ctx context.Context, userID int64) ([]domain.Session, error) {
	return s.store.ListForUser(ctx, userID)
}

func (s *SessionService) signToken(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid": session.ID,
		"sub": fmt.Sprintf("%d", session.UserID),
		"exp": session.ExpiresAt.Unix(),
		"iat": session.CreatedAt.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *SessionService) parseToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return "", domain.ErrSessionInvalid
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", domain.ErrSessionInvalid
	}
	return sid, nil
}
