package domain

import "time"

// ProgressUpdate is an immutable audit entry recording a status transition and
// its human-readable justification.
type ProgressUpdate struct {
	ID            string
	IssueID       string
	Status        IssueStatus
	Description   string
	UpdatedBy     string
	UpdatedByName string
	CreatedAt     time.Time
}
