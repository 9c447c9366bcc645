package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-issue-service/internal/api/dto"
	"github.com/spec-kit/civic-issue-service/internal/auth"
	"github.com/spec-kit/civic-issue-service/internal/domain"
	"github.com/spec-kit/civic-issue-service/internal/service"
	apperrors "github.com/spec-kit/civic-issue-service/pkg/util"
)

// IssuesHandler manages authenticated issue endpoints.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// CreateIssue POST /issues.
func (h *IssuesHandler) CreateIssue(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.IssueCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.IssueCategory(req.Category),
		Priority:    domain.IssuePriority(req.Priority),
		Location: domain.Location{
			Address:   req.Location.Address,
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
		},
		Images: req.Images,
	}
	issue, err := h.service.Create(c.Context(), actor, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": issueDetail(issue)})
}

// ListIssues GET /issues.
func (h *IssuesHandler) ListIssues(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	issues, err := h.service.List(c.Context(), actor, parseIssueQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueSummaries(issues)})
}

// GetIssue GET /issues/:id.
func (h *IssuesHandler) GetIssue(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	issue, err := h.service.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueDetail(issue)})
}

// AddComment POST /issues/:id/comments.
func (h *IssuesHandler) AddComment(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.Context(), actor, c.Params("id"), req.Text, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

func actorFromContext(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return service.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Actor{
		ID:   principal.User.ID,
		Name: principal.User.Name,
		Role: principal.Role,
	}, nil
}

func parseIssueQuery(c *fiber.Ctx) service.IssueListInput {
	return service.IssueListInput{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Time:     c.Query("time"),
		Limit:    c.QueryInt("limit"),
		Offset:   c.QueryInt("offset"),
	}
}

func locationPayload(loc domain.Location) dto.LocationPayload {
	return dto.LocationPayload{
		Address:   loc.Address,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}
}

func issueSummaries(issues []domain.Issue) []dto.IssueSummary {
	items := make([]dto.IssueSummary, 0, len(issues))
	for i := range issues {
		items = append(items, issueSummary(&issues[i]))
	}
	return items
}

func issueSummary(issue *domain.Issue) dto.IssueSummary {
	return dto.IssueSummary{
		ID:           issue.ID,
		Title:        issue.Title,
		Category:     issue.Category,
		Priority:     issue.Priority,
		Status:       issue.Status,
		Location:     locationPayload(issue.Location),
		ReporterName: issue.ReporterName,
		CreatedAt:    issue.CreatedAt,
		UpdatedAt:    issue.UpdatedAt,
		ResolvedAt:   issue.ResolvedAt,
	}
}

func issueDetail(issue *domain.Issue) dto.IssueDetailResponse {
	comments := make([]dto.CommentResponse, 0, len(issue.Comments))
	for i := range issue.Comments {
		comments = append(comments, commentResponse(&issue.Comments[i]))
	}
	progress := make([]dto.ProgressResponse, 0, len(issue.Progress))
	for _, entry := range issue.Progress {
		progress = append(progress, dto.ProgressResponse{
			ID:            entry.ID,
			Status:        entry.Status,
			Description:   entry.Description,
			UpdatedByName: entry.UpdatedByName,
			CreatedAt:     entry.CreatedAt,
		})
	}
	return dto.IssueDetailResponse{
		ID:           issue.ID,
		Title:        issue.Title,
		Description:  issue.Description,
		Category:     issue.Category,
		Priority:     issue.Priority,
		Status:       issue.Status,
		Location:     locationPayload(issue.Location),
		Images:       issue.Images,
		ReportedBy:   issue.ReportedBy,
		ReporterName: issue.ReporterName,
		AssignedTo:   issue.AssignedTo,
		CreatedAt:    issue.CreatedAt,
		UpdatedAt:    issue.UpdatedAt,
		ResolvedAt:   issue.ResolvedAt,
		Comments:     comments,
		Progress:     progress,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		Text:       comment.Text,
		AuthorName: comment.AuthorName,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
}
