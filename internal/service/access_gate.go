package service

import (
	"github.com/spec-kit/civic-issue-service/internal/domain"
	"github.com/spec-kit/civic-issue-service/internal/repository"
	apperrors "github.com/spec-kit/civic-issue-service/pkg/util"
)

// Actor is the authenticated identity an operation runs as.
type Actor struct {
	ID   string
	Name string
	Role domain.UserRole
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// AccessGate is the single authorization choke point. Every mutating or
// role-scoped operation asks the gate before touching the store; failures are
// explicit Forbidden errors, never silent no-ops.
type AccessGate struct{}

// NewAccessGate constructs the gate.
func NewAccessGate() *AccessGate {
	return &AccessGate{}
}

// CanCreateIssue allows any authenticated user to report an issue.
func (g *AccessGate) CanCreateIssue(actor Actor) error {
	if actor.ID == "" {
		return apperrors.NewForbidden("authenticated user required")
	}
	return nil
}

// CanComment allows admins to comment anywhere; citizens may add non-internal
// comments only.
func (g *AccessGate) CanComment(actor Actor, isInternal bool) error {
	if actor.ID == "" {
		return apperrors.NewForbidden("authenticated user required")
	}
	if isInternal && !actor.IsAdmin() {
		return apperrors.NewForbidden("internal comments require admin role")
	}
	return nil
}

// CanTransition restricts status changes to admins; citizens comment, they do
// not move the workflow.
func (g *AccessGate) CanTransition(actor Actor) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("status transitions require admin role")
	}
	return nil
}

// CanAssign restricts assignment to admins.
func (g *AccessGate) CanAssign(actor Actor) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("issue assignment requires admin role")
	}
	return nil
}

// CanViewIssue allows admins to read anything and citizens their own reports.
// Anyone can reach any issue through the public transparency view instead.
func (g *AccessGate) CanViewIssue(actor Actor, issue *domain.Issue) error {
	if actor.IsAdmin() {
		return nil
	}
	if issue.ReportedBy != actor.ID {
		return apperrors.NewForbidden("citizens may only view their own issues")
	}
	return nil
}

// CanViewStats restricts the aggregate dashboard to admins.
func (g *AccessGate) CanViewStats(actor Actor) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("stats require admin role")
	}
	return nil
}

// CanListUsers restricts the account listing to admins.
func (g *AccessGate) CanListUsers(actor Actor) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("user listing requires admin role")
	}
	return nil
}

// ScopeList narrows a listing filter to what the actor may see: citizens get
// only their own reports, admins see everything.
func (g *AccessGate) ScopeList(actor Actor, filter *repository.IssueFilter) {
	if actor.IsAdmin() {
		return
	}
	reporter := actor.ID
	filter.ReportedBy = &reporter
}

// ViewerFor maps the actor to the audience used by the visibility filter.
func (g *AccessGate) ViewerFor(actor Actor) domain.ViewerRole {
	return domain.ViewerForRole(actor.Role)
}
