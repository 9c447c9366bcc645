package domain

import "time"

// IssueStatus enumerates lifecycle states for reported issues.
type IssueStatus string

const (
	IssueStatusPending    IssueStatus = "pending"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusCompleted  IssueStatus = "completed"
	IssueStatusRejected   IssueStatus = "rejected"
)

// IsTerminal reports whether no further transition is permitted.
func (s IssueStatus) IsTerminal() bool {
	return s == IssueStatusCompleted || s == IssueStatusRejected
}

// IssueCategory classifies the kind of civic problem.
type IssueCategory string

const (
	CategoryPothole     IssueCategory = "pothole"
	CategoryGarbage     IssueCategory = "garbage"
	CategoryStreetlight IssueCategory = "streetlight"
	CategoryWater       IssueCategory = "water"
	CategoryElectricity IssueCategory = "electricity"
	CategoryRoad        IssueCategory = "road"
	CategorySewage      IssueCategory = "sewage"
	CategoryOther       IssueCategory = "other"
)

// IssueCategories lists every recognized category.
var IssueCategories = []IssueCategory{
	CategoryPothole,
	CategoryGarbage,
	CategoryStreetlight,
	CategoryWater,
	CategoryElectricity,
	CategoryRoad,
	CategorySewage,
	CategoryOther,
}

// IssuePriority enumerates reporter-declared urgency.
type IssuePriority string

const (
	PriorityLow    IssuePriority = "low"
	PriorityMedium IssuePriority = "medium"
	PriorityHigh   IssuePriority = "high"
	PriorityUrgent IssuePriority = "urgent"
)

// Location is a plain address with optional coordinates supplied by the
// geolocation collaborator.
type Location struct {
	Address   string
	Latitude  *float64
	Longitude *float64
}

// Issue is the aggregate for a reported civic problem. Comments and progress
// entries are owned by the issue and never outlive it.
type Issue struct {
	ID           string
	Title        string
	Description  string
	Category     IssueCategory
	Priority     IssuePriority
	Status       IssueStatus
	Location     Location
	Images       []string
	ReportedBy   string
	ReporterName string
	AssignedTo   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ResolvedAt   *time.Time
	Comments     []Comment
	Progress     []ProgressUpdate
}
