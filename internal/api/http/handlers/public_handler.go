package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-issue-service/internal/service"
)

// PublicHandler serves the anonymous transparency view. Responses pass
// through the visibility filter with the public audience.
type PublicHandler struct {
	service *service.IssueService
}

// NewPublicHandler constructs handler.
func NewPublicHandler(issueService *service.IssueService) *PublicHandler {
	return &PublicHandler{service: issueService}
}

// ListIssues GET /public/issues.
func (h *PublicHandler) ListIssues(c *fiber.Ctx) error {
	issues, err := h.service.ListPublic(c.Context(), parseIssueQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueSummaries(issues)})
}

// GetIssue GET /public/issues/:id.
func (h *PublicHandler) GetIssue(c *fiber.Ctx) error {
	issue, err := h.service.GetPublic(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueDetail(issue)})
}
