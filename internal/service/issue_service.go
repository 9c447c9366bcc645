package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civic-issue-service/internal/config"
	"github.com/spec-kit/civic-issue-service/internal/domain"
	"github.com/spec-kit/civic-issue-service/internal/events"
	"github.com/spec-kit/civic-issue-service/internal/repository"
	"github.com/spec-kit/civic-issue-service/internal/visibility"
	"github.com/spec-kit/civic-issue-service/internal/workflow"
	apperrors "github.com/spec-kit/civic-issue-service/pkg/util"
)

// IssueService coordinates the issue lifecycle: creation, comments, workflow
// transitions, listings and aggregate stats.
type IssueService struct {
	issues     repository.IssueRepository
	users      repository.UserRepository
	gate       *AccessGate
	dispatcher events.Dispatcher
	cfg        config.IssuesConfig
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo  repository.IssueRepository
	UserRepo   repository.UserRepository
	Gate       *AccessGate
	Dispatcher events.Dispatcher
}

// IssueCreateInput describes issue creation payload. Image references arrive
// already uploaded; this service never sees raw bytes.
type IssueCreateInput struct {
	Title       string
	Description string
	Category    domain.IssueCategory
	Priority    domain.IssuePriority
	Location    domain.Location
	Images      []string
}

// IssueListInput describes listing filters as they arrive from the API.
// Empty or "all" values mean no constraint.
type IssueListInput struct {
	Search   string
	Status   string
	Category string
	Time     string
	Limit    int
	Offset   int
}

// NewIssueService constructs the service.
func NewIssueService(cfg config.IssuesConfig, deps IssueDependencies) *IssueService {
	gate := deps.Gate
	if gate == nil {
		gate = NewAccessGate()
	}
	return &IssueService{
		issues:     deps.IssueRepo,
		users:      deps.UserRepo,
		gate:       gate,
		dispatcher: deps.Dispatcher,
		cfg:        cfg,
	}
}

// Gate exposes the access gate for transport-level checks.
func (s *IssueService) Gate() *AccessGate {
	return s.gate
}

// Create validates and persists a new issue in pending status.
func (s *IssueService) Create(ctx context.Context, actor Actor, input IssueCreateInput) (*domain.Issue, error) {
	if err := s.gate.CanCreateIssue(actor); err != nil {
		return nil, err
	}
	if err := validateCreateInput(input, s.maxImages()); err != nil {
		return nil, err
	}

	issue := &domain.Issue{
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Category:     input.Category,
		Priority:     input.Priority,
		Status:       domain.IssueStatusPending,
		Location:     input.Location,
		Images:       input.Images,
		ReportedBy:   actor.ID,
		ReporterName: actor.Name,
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, storeError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueCreated,
		IssueID: issue.ID,
		Actor:   eventActor(actor),
		Payload: events.IssueCreatedPayload{
			Title:    issue.Title,
			Category: issue.Category,
			Priority: issue.Priority,
			Address:  issue.Location.Address,
		},
	})
	return issue, nil
}

// Get fetches an issue for an authenticated viewer, redacted for their role.
func (s *IssueService) Get(ctx context.Context, actor Actor, issueID string) (*domain.Issue, error) {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanViewIssue(actor, issue); err != nil {
		return nil, err
	}
	return visibility.Redact(issue, s.gate.ViewerFor(actor)), nil
}

// GetPublic fetches an issue through the anonymous transparency view.
func (s *IssueService) GetPublic(ctx context.Context, issueID string) (*domain.Issue, error) {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	return visibility.Redact(issue, domain.ViewerPublic), nil
}

// AddComment appends a comment to the issue's append-only log.
func (s *IssueService) AddComment(ctx context.Context, actor Actor, issueID, text string, isInternal bool) (*domain.Comment, error) {
	if err := s.gate.CanComment(actor, isInternal); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("comment text required", nil)
	}
	if _, err := s.loadIssue(ctx, issueID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		IssueID:    issueID,
		Text:       strings.TrimSpace(text),
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		IsInternal: isInternal,
	}
	if err := s.issues.AppendComment(ctx, comment); err != nil {
		return nil, storeError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueCommentAdded,
		IssueID: issueID,
		Actor:   eventActor(actor),
		Payload: events.IssueCommentAddedPayload{
			CommentID:   comment.ID,
			AuthorID:    comment.AuthorID,
			IsInternal:  comment.IsInternal,
			TextPreview: stringPreview(comment.Text, 120),
		},
	})
	return comment, nil
}

// Transition moves an issue to a new status, recording a progress entry. Two
// concurrent transitions from the same pre-state cannot both succeed; the
// loser fails with Conflict.
func (s *IssueService) Transition(ctx context.Context, actor Actor, issueID string, target domain.IssueStatus, description string) (*domain.ProgressUpdate, error) {
	if err := s.gate.CanTransition(actor); err != nil {
		return nil, err
	}
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if err := workflow.Validate(issue.Status, target, description); err != nil {
		return nil, err
	}

	update := &domain.ProgressUpdate{
		IssueID:       issue.ID,
		Status:        target,
		Description:   strings.TrimSpace(description),
		UpdatedBy:     actor.ID,
		UpdatedByName: actor.Name,
	}
	from := issue.Status
	if err := s.issues.ApplyTransition(ctx, issue, from, update); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"id": issueID})
		}
		return nil, storeError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueStatusChanged,
		IssueID: issue.ID,
		Actor:   eventActor(actor),
		Payload: events.IssueStatusChangedPayload{
			OldStatus:   from,
			NewStatus:   target,
			Description: update.Description,
		},
	})
	return update, nil
}

// Assign sets the assignee on an issue after validating the account exists.
func (s *IssueService) Assign(ctx context.Context, actor Actor, issueID, assigneeID string) error {
	if err := s.gate.CanAssign(actor); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, assigneeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("assignee", map[string]any{"id": assigneeID})
		}
		return storeError(err)
	}
	if err := s.issues.Assign(ctx, issueID, assigneeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("issue", map[string]any{"id": issueID})
		}
		return storeError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueAssigned,
		IssueID: issueID,
		Actor:   eventActor(actor),
		Payload: events.IssueAssignedPayload{AssigneeID: assigneeID},
	})
	return nil
}

// List returns issues visible to the actor, newest first, redacted per role.
// Citizens only ever see their own reports here; the public view is separate.
func (s *IssueService) List(ctx context.Context, actor Actor, input IssueListInput) ([]domain.Issue, error) {
	filter, err := buildFilter(input)
	if err != nil {
		return nil, err
	}
	s.gate.ScopeList(actor, &filter)

	issues, err := s.issues.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, storeError(err)
	}
	return visibility.RedactAll(issues, s.gate.ViewerFor(actor)), nil
}

// ListPublic returns all issues through the anonymous transparency view.
func (s *IssueService) ListPublic(ctx context.Context, input IssueListInput) ([]domain.Issue, error) {
	filter, err := buildFilter(input)
	if err != nil {
		return nil, err
	}
	issues, err := s.issues.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, storeError(err)
	}
	return visibility.RedactAll(issues, domain.ViewerPublic), nil
}

// Stats computes dashboard aggregates for the optional time window. The
// counts derive from the same filtered set List would return for the window.
func (s *IssueService) Stats(ctx context.Context, actor Actor, window string) (*domain.StatsSnapshot, error) {
	if err := s.gate.CanViewStats(actor); err != nil {
		return nil, err
	}
	filter := repository.IssueFilter{Window: repository.ParseTimeWindow(window)}
	snapshot, err := s.issues.CountsWithFilter(ctx, filter)
	if err != nil {
		return nil, storeError(err)
	}
	return snapshot, nil
}

// ListUsers returns all accounts for the admin dashboard.
func (s *IssueService) ListUsers(ctx context.Context, actor Actor) ([]domain.User, error) {
	if err := s.gate.CanListUsers(actor); err != nil {
		return nil, err
	}
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return users, nil
}

func (s *IssueService) loadIssue(ctx context.Context, issueID string) (*domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"id": issueID})
		}
		return nil, storeError(err)
	}
	return issue, nil
}

func (s *IssueService) maxImages() int {
	if s.cfg.MaxImages > 0 {
		return s.cfg.MaxImages
	}
	return 5
}

func (s *IssueService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func validateCreateInput(input IssueCreateInput, maxImages int) error {
	missing := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		missing["title"] = "required"
	}
	if strings.TrimSpace(input.Description) == "" {
		missing["description"] = "required"
	}
	if input.Category == "" {
		missing["category"] = "required"
	}
	if input.Priority == "" {
		missing["priority"] = "required"
	}
	if strings.TrimSpace(input.Location.Address) == "" {
		missing["location.address"] = "required"
	}
	if len(input.Images) == 0 {
		missing["images"] = "at least one image reference required"
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required fields", missing)
	}
	if len(input.Images) > maxImages {
		return apperrors.NewValidationError("too many images", map[string]any{
			"max":   maxImages,
			"count": len(input.Images),
		})
	}
	if !validCategory(input.Category) {
		return apperrors.NewValidationError("unknown category", map[string]any{
			"category": input.Category,
		})
	}
	if !validPriority(input.Priority) {
		return apperrors.NewValidationError("unknown priority", map[string]any{
			"priority": input.Priority,
		})
	}
	return nil
}

func validCategory(category domain.IssueCategory) bool {
	for _, candidate := range domain.IssueCategories {
		if candidate == category {
			return true
		}
	}
	return false
}

func validPriority(priority domain.IssuePriority) bool {
	switch priority {
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh, domain.PriorityUrgent:
		return true
	}
	return false
}

func buildFilter(input IssueListInput) (repository.IssueFilter, error) {
	filter := repository.IssueFilter{
		Window: repository.ParseTimeWindow(input.Time),
		Limit:  input.Limit,
		Offset: input.Offset,
	}
	if search := strings.TrimSpace(input.Search); search != "" {
		filter.Search = &search
	}
	if status := strings.TrimSpace(input.Status); status != "" && status != "all" {
		candidate := domain.IssueStatus(status)
		switch candidate {
		case domain.IssueStatusPending, domain.IssueStatusInProgress, domain.IssueStatusCompleted, domain.IssueStatusRejected:
			filter.Status = &candidate
		default:
			return filter, apperrors.NewValidationError("unknown status filter", map[string]any{"status": status})
		}
	}
	if category := strings.TrimSpace(input.Category); category != "" && category != "all" {
		candidate := domain.IssueCategory(category)
		if !validCategory(candidate) {
			return filter, apperrors.NewValidationError("unknown category filter", map[string]any{"category": category})
		}
		filter.Category = &candidate
	}
	return filter, nil
}

// storeError passes typed domain errors through and wraps anything else as an
// uninterpreted storage failure.
func storeError(err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewStorageError(err)
}

func eventActor(actor Actor) events.Actor {
	return events.Actor{UserID: actor.ID, Role: actor.Role}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
