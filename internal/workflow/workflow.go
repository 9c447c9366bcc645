// Package workflow is the single source of truth for the issue status state
// machine. Every status change in the system passes through Validate; nothing
// else may derive transition legality.
package workflow

import (
	"strings"

	"github.com/spec-kit/civic-issue-service/internal/domain"
	apperrors "github.com/spec-kit/civic-issue-service/pkg/util"
)

var allowedTransitions = map[domain.IssueStatus][]domain.IssueStatus{
	domain.IssueStatusPending: {
		domain.IssueStatusInProgress,
		domain.IssueStatusCompleted,
		domain.IssueStatusRejected,
	},
	domain.IssueStatusInProgress: {
		domain.IssueStatusCompleted,
		domain.IssueStatusRejected,
	},
	domain.IssueStatusCompleted: {},
	domain.IssueStatusRejected:  {},
}

// CanTransition reports whether current may move to next.
func CanTransition(current, next domain.IssueStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Validate checks a requested transition against the state machine. A status
// change must always carry a non-empty justification for the audit trail.
func Validate(current, target domain.IssueStatus, description string) error {
	if strings.TrimSpace(description) == "" {
		return apperrors.NewInvalidTransition("progress description required", nil)
	}
	if current.IsTerminal() {
		return apperrors.NewInvalidTransition("issue is in a terminal status", map[string]any{
			"status": current,
		})
	}
	if current == target {
		return apperrors.NewInvalidTransition("issue already has the requested status", map[string]any{
			"status": current,
		})
	}
	if !CanTransition(current, target) {
		return apperrors.NewInvalidTransition("status transition not allowed", map[string]any{
			"from": current,
			"to":   target,
		})
	}
	return nil
}
