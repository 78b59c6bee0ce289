package domain

import "fmt"

// Action is the set of operations an actor can attempt against a user record.
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Valid reports whether a is one of the defined actions.
func (a Action) Valid() bool {
	switch a {
	case ActionRead, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Actor is the request-scoped identity of whoever is asking: resolved from a
// valid session, never persisted.
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// Outcome is the result side of a Decision.
type Outcome string

const (
	OutcomeAllow Outcome = "allow"
	OutcomeDeny  Outcome = "deny"
)

// Reason explains a Decision. Every outcome carries exactly one reason.
type Reason string

const (
	ReasonSelfAccess        Reason = "self_access"
	ReasonRoleElevated      Reason = "role_elevated"
	ReasonInsufficientRole  Reason = "insufficient_role"
	ReasonTargetNotFound    Reason = "target_not_found"
	ReasonSelfDeleteBlocked Reason = "self_delete_blocked"
	ReasonInvalidSession    Reason = "invalid_session"
)

// Decision is the immutable result of one authorization check.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Reason  Reason  `json:"reason"`
}

// Allowed reports whether the decision granted access.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow
}

// Allow builds an allowing decision.
func Allow(reason Reason) Decision {
	return Decision{Outcome: OutcomeAllow, Reason: reason}
}

// Deny builds a denying decision.
func Deny(reason Reason) Decision {
	return Decision{Outcome: OutcomeDeny, Reason: reason}
}

// capability describes what a role may do to user records other than its own.
// Self-access is handled before this table is consulted.
type capability struct {
	readOthers   bool
	updateOthers bool
	deleteOthers bool
}

var roleCapabilities = map[Role]capability{
	RoleAdmin:    {readOthers: true, updateOthers: true, deleteOthers: true},
	RoleManager:  {readOthers: true},
	RoleEmployee: {},
}

// EvaluateAccess decides whether actor may perform action on the user record
// targetID. It is pure: identical inputs always yield identical decisions.
//
// Checks run in a fixed order, and the order is observable behavior:
//
//  1. a missing target denies with target_not_found, masking existence from
//     every role;
//  2. self-targeted Delete denies with self_delete_blocked before the
//     self-access allowance and before any role dispatch, so no role can
//     remove its own account;
//  3. any other self-targeted action allows with self_access;
//  4. cross-user actions fall through to the role-capability table.
//
// A zero actor or an unknown action is a caller contract violation, not a
// business outcome, and panics.
func EvaluateAccess(actor Actor, targetID int64, targetExists bool, action Action) Decision {
	if actor.ID == 0 || !actor.Role.Valid() {
		panic(fmt.Sprintf("authz: EvaluateAccess called with invalid actor %+v", actor))
	}
	if !action.Valid() {
		panic(fmt.Sprintf("authz: EvaluateAccess called with unknown action %q", action))
	}

	if !targetExists {
		return Deny(ReasonTargetNotFound)
	}

	if targetID == actor.ID {
		if action == ActionDelete {
			return Deny(ReasonSelfDeleteBlocked)
		}
		return Allow(ReasonSelfAccess)
	}

	caps := roleCapabilities[actor.Role]
	allowed := false
	switch action {
	case ActionRead:
		allowed = caps.readOthers
	case ActionUpdate:
		allowed = caps.updateOthers
	case ActionDelete:
		allowed = caps.deleteOthers
	}
	if allowed {
		return Allow(ReasonRoleElevated)
	}
	return Deny(ReasonInsufficientRole)
}

// CanListUsers reports whether the role may enumerate the user directory.
// Listing is a cross-user read, so it follows the same capability column.
func CanListUsers(role Role) bool {
	return roleCapabilities[role].readOthers
}

// RiskLevel grades an audit record for monitoring.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Risk grades the decision for the audit trail. Allows and not-found probes
// are routine; a blocked self-delete or a broken session is worth a look; an
// employee reaching for someone else's record is the classic IDOR probe.
func (d Decision) Risk(actor Actor) RiskLevel {
	if d.Allowed() {
		return RiskLow
	}
	switch d.Reason {
	case ReasonSelfDeleteBlocked, ReasonInvalidSession:
		return RiskMedium
	case ReasonInsufficientRole:
		if actor.Role == RoleEmployee {
			return RiskHigh
		}
		return RiskMedium
	}
	return RiskLow
}
