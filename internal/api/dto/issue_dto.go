package dto

import (
	"time"

	"github.com/spec-kit/civic-issue-service/internal/domain"
)

// LocationPayload mirrors the location boundary: plain address plus optional
// coordinates from the geolocation collaborator.
type LocationPayload struct {
	Address   string   `json:"address"`
	Latitude  *float64 `json:"lat,omitempty"`
	Longitude *float64 `json:"lng,omitempty"`
}

// CreateIssueRequest payload.
type CreateIssueRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Priority    string          `json:"priority"`
	Location    LocationPayload `json:"location"`
	Images      []string        `json:"images"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Text       string `json:"text"`
	IsInternal bool   `json:"is_internal"`
}

// ProgressRequest payload for a status transition.
type ProgressRequest struct {
	Status      string `json:"status"`
	Description string `json:"description"`
}

// AssignRequest payload.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// IssueSummary response for listings.
type IssueSummary struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Category     domain.IssueCategory `json:"category"`
	Priority     domain.IssuePriority `json:"priority"`
	Status       domain.IssueStatus   `json:"status"`
	Location     LocationPayload      `json:"location"`
	ReporterName string               `json:"reporter_name"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	ResolvedAt   *time.Time           `json:"resolved_at,omitempty"`
}

// IssueDetailResponse provides full issue info.
type IssueDetailResponse struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Category     domain.IssueCategory `json:"category"`
	Priority     domain.IssuePriority `json:"priority"`
	Status       domain.IssueStatus   `json:"status"`
	Location     LocationPayload      `json:"location"`
	Images       []string             `json:"images"`
	ReportedBy   string               `json:"reported_by,omitempty"`
	ReporterName string               `json:"reporter_name"`
	AssignedTo   *string              `json:"assigned_to,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	ResolvedAt   *time.Time           `json:"resolved_at,omitempty"`
	Comments     []CommentResponse    `json:"comments"`
	Progress     []ProgressResponse   `json:"progress"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProgressResponse represents an audit entry.
type ProgressResponse struct {
	ID            string             `json:"id"`
	Status        domain.IssueStatus `json:"status"`
	Description   string             `json:"description"`
	UpdatedByName string             `json:"updated_by_name"`
	CreatedAt     time.Time          `json:"created_at"`
}

// StatsResponse mirrors the dashboard snapshot.
type StatsResponse struct {
	Total        int64            `json:"total"`
	ByStatus     map[string]int64 `json:"by_status"`
	ByCategory   map[string]int64 `json:"by_category"`
	ByPriority   map[string]int64 `json:"by_priority"`
	ResponseRate float64          `json:"response_rate"`
}
