package service

import (
	"fmt"

	"sidopi/internal/model"
)

// statusRule lists the statuses reachable from one status and the roles
// allowed to drive any of those transitions
type statusRule struct {
	next  []string
	roles []string
}

// transitionTable is the canonical status graph. A (current, requested) pair
// absent here is an invalid transition regardless of role; terminal statuses
// (REJECTED, COMPLETED, CANCELLED, EXPIRED) have no entry. There are no
// self-loops, so resubmitting the current status is always rejected.
var transitionTable = map[string]statusRule{
	model.StatusPending: {
		next:  []string{model.StatusUnderReview, model.StatusCancelled},
		roles: []string{model.RoleDinas, model.RoleAdmin},
	},
	model.StatusUnderReview: {
		next:  []string{model.StatusApproved, model.StatusPartiallyApproved, model.StatusRejected},
		roles: []string{model.RoleDinas, model.RoleAdmin},
	},
	model.StatusApproved: {
		next:  []string{model.StatusDistributed},
		roles: []string{model.RoleDinas, model.RoleAdmin, model.RolePOPT},
	},
	model.StatusPartiallyApproved: {
		next:  []string{model.StatusDistributed},
		roles: []string{model.RoleDinas, model.RoleAdmin, model.RolePOPT},
	},
	model.StatusDistributed: {
		next:  []string{model.StatusCompleted},
		roles: []string{model.RoleDinas, model.RoleAdmin, model.RolePOPT},
	},
}

// CanTransition validates one status change against the transition table.
// It returns ErrInvalidStatusTransition when the (current, requested) pair is
// not in the table and ErrUnauthorizedAction when the pair is legal but the
// acting role is not allowed to drive it.
func CanTransition(current, requested, role string) error {
	rule, ok := transitionTable[current]
	if !ok {
		return fmt.Errorf("%w: %s is a terminal status", ErrInvalidStatusTransition, current)
	}
	if !containsString(rule.next, requested) {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidStatusTransition, current, requested)
	}
	if !containsString(rule.roles, role) {
		return fmt.Errorf("%w: role %s cannot move a submission from %s to %s", ErrUnauthorizedAction, role, current, requested)
	}
	return nil
}

// AllowedNextStatuses returns the statuses reachable from current for the
// given role. Empty for terminal statuses.
func AllowedNextStatuses(current, role string) []string {
	rule, ok := transitionTable[current]
	if !ok || !containsString(rule.roles, role) {
		return nil
	}
	out := make([]string, len(rule.next))
	copy(out, rule.next)
	return out
}

// ValidateTypeForRole enforces the creation-time type/role compatibility
// rule: PPL may only create PPL_REGULAR, POPT only the two POPT types,
// DINAS/ADMIN anything.
func ValidateTypeForRole(role, submissionType string) error {
	switch role {
	case model.RolePPL:
		if submissionType != model.TypePPLRegular {
			return fmt.Errorf("%w: PPL may only create %s", ErrInvalidSubmissionType, model.TypePPLRegular)
		}
	case model.RolePOPT:
		if submissionType != model.TypePOPTEmergency && submissionType != model.TypePOPTScheduled {
			return fmt.Errorf("%w: POPT may only create %s or %s", ErrInvalidSubmissionType, model.TypePOPTEmergency, model.TypePOPTScheduled)
		}
	case model.RoleDinas, model.RoleAdmin:
		// District roles may create any type
	default:
		return fmt.Errorf("%w: unknown role %s", ErrUnauthorizedAction, role)
	}
	switch submissionType {
	case model.TypePPLRegular, model.TypePOPTEmergency, model.TypePOPTScheduled:
		return nil
	}
	return fmt.Errorf("%w: unknown submission type %s", ErrInvalidSubmissionType, submissionType)
}

// DeriveSubmissionType maps a POPT activity type to the submission type:
// emergency-class activities yield POPT_EMERGENCY, everything else
// POPT_SCHEDULED.
func DeriveSubmissionType(activityType string) string {
	switch activityType {
	case model.ActivityEmergencyResponse, model.ActivityPestControl:
		return model.TypePOPTEmergency
	}
	return model.TypePOPTScheduled
}

// EscalatePriority enforces the HIGH priority floor for emergency
// submissions: LOW and MEDIUM are raised, HIGH and URGENT pass through.
// This is creation policy, applied after input validation — not during it.
func EscalatePriority(submissionType, priority string) string {
	if submissionType != model.TypePOPTEmergency {
		return priority
	}
	switch priority {
	case model.PriorityLow, model.PriorityMedium, "":
		return model.PriorityHigh
	}
	return priority
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
