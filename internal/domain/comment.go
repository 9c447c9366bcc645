package domain

import "time"

// Comment is an append-only reply attached to an issue. Internal comments are
// visible to admin viewers only.
type Comment struct {
	ID         string
	IssueID    string
	Text       string
	AuthorID   string
	AuthorName string
	IsInternal bool
	CreatedAt  time.Time
}
