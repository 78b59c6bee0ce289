package handler

import (
	"time"

	"github.com/rbac-labs/user-service/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name"  validate:"required"`
	Email      string `json:"email"      validate:"required,email"`
	Password   string `json:"password"   validate:"required,min=8"`
	Department string `json:"department"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

type logoutAllResponse struct {
	Revoked int `json:"revoked"`
}

// --- Users ---

type createUserRequest struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name"  validate:"required"`
	Email      string `json:"email"      validate:"required,email"`
	Role       string `json:"role"       validate:"required,oneof=admin manager employee"`
	Department string `json:"department"`
}

type updateUserRequest struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Email      *string `json:"email"      validate:"omitempty,email"`
	Role       *string `json:"role"       validate:"omitempty,oneof=admin manager employee"`
	Department *string `json:"department"`
	Status     *string `json:"status"     validate:"omitempty,oneof=active inactive"`
}

type userResponse struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department string    `json:"department,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type listUsersResponse struct {
	Users []userResponse `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Role:       string(u.Role),
		Department: u.Department,
		Status:     string(u.Status),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// --- Sessions ---

type sessionResponse struct {
	ID           string    `json:"id"`
	IP           string    `json:"ip"`
	UserAgent    string    `json:"user_agent"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// --- Audit ---

type auditDecisionResponse struct {
	ActorID   *int64    `json:"actor_id"`
	ActorRole string    `json:"actor_role,omitempty"`
	TargetID  int64     `json:"target_id"`
	Action    string    `json:"action"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason"`
	RiskLevel string    `json:"risk_level"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	At        time.Time `json:"at"`
}

func toAuditDecisionResponse(r domain.DecisionRecord) auditDecisionResponse {
	return auditDecisionResponse{
		ActorID:   r.ActorID,
		ActorRole: string(r.ActorRole),
		TargetID:  r.TargetID,
		Action:    string(r.Action),
		Outcome:   string(r.Outcome),
		Reason:    string(r.Reason),
		RiskLevel: string(r.Risk),
		IP:        r.IP,
		UserAgent: r.UserAgent,
		At:        r.At,
	}
}
