package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-issue-service/internal/api/dto"
	"github.com/spec-kit/civic-issue-service/internal/domain"
	"github.com/spec-kit/civic-issue-service/internal/service"
	apperrors "github.com/spec-kit/civic-issue-service/pkg/util"
)

// AdminHandler manages admin-only issue endpoints. Route-level guards ensure
// an admin principal; the service gate enforces the same rules again.
type AdminHandler struct {
	service *service.IssueService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(issueService *service.IssueService) *AdminHandler {
	return &AdminHandler{service: issueService}
}

// ListIssues GET /admin/issues.
func (h *AdminHandler) ListIssues(c *fiber.Ctx) error {
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

// GetIssue GET /admin/issues/:id.
func (h *AdminHandler) GetIssue(c *fiber.Ctx) error {
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

// AddProgress POST /admin/issues/:id/progress performs a status transition.
func (h *AdminHandler) AddProgress(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	update, err := h.service.Transition(c.Context(), actor, c.Params("id"), domain.IssueStatus(req.Status), req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ProgressResponse{
		ID:            update.ID,
		Status:        update.Status,
		Description:   update.Description,
		UpdatedByName: update.UpdatedByName,
		CreatedAt:     update.CreatedAt,
	}})
}

// AssignIssue PUT /admin/issues/:id/assign.
func (h *AdminHandler) AssignIssue(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssigneeID == "" {
		return apperrors.NewValidationError("assignee_id required", nil)
	}
	if err := h.service.Assign(c.Context(), actor, c.Params("id"), req.AssigneeID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"assigned_to": req.AssigneeID}})
}

// GetStats GET /admin/stats.
func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	snapshot, err := h.service.Stats(c.Context(), actor, c.Query("time"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": statsResponse(snapshot)})
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	users, err := h.service.ListUsers(c.Context(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.UserResponse{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Role:      string(user.Role),
			CreatedAt: user.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func statsResponse(snapshot *domain.StatsSnapshot) dto.StatsResponse {
	byStatus := make(map[string]int64, len(snapshot.ByStatus))
	for status, count := range snapshot.ByStatus {
		byStatus[string(status)] = count
	}
	byCategory := make(map[string]int64, len(snapshot.ByCategory))
	for category, count := range snapshot.ByCategory {
		byCategory[string(category)] = count
	}
	byPriority := make(map[string]int64, len(snapshot.ByPriority))
	for priority, count := range snapshot.ByPriority {
		byPriority[string(priority)] = count
	}
	return dto.StatsResponse{
		Total:        snapshot.Total,
		ByStatus:     byStatus,
		ByCategory:   byCategory,
		ByPriority:   byPriority,
		ResponseRate: snapshot.ResponseRate,
	}
}
