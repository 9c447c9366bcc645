package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/civic-issue-service/internal/domain"
)

// TimeWindow restricts a query to issues created within a recent period.
type TimeWindow string

const (
	WindowAll   TimeWindow = "all"
	WindowToday TimeWindow = "today"
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
)

// Start returns the inclusive lower bound of the window relative to now.
// "today" starts at midnight UTC of the current day; "week" and "month" are
// rolling 7 and 30 day periods. The second return is false when the window
// imposes no bound.
func (w TimeWindow) Start(now time.Time) (time.Time, bool) {
	switch w {
	case WindowToday:
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	case WindowWeek:
		return now.Add(-7 * 24 * time.Hour), true
	case WindowMonth:
		return now.Add(-30 * 24 * time.Hour), true
	default:
		return time.Time{}, false
	}
}

// ParseTimeWindow normalizes a query value; unrecognized values mean no bound.
func ParseTimeWindow(val string) TimeWindow {
	switch TimeWindow(strings.ToLower(strings.TrimSpace(val))) {
	case WindowToday:
		return WindowToday
	case WindowWeek:
		return WindowWeek
	case WindowMonth:
		return WindowMonth
	default:
		return WindowAll
	}
}

// IssueFilter captures listing and aggregation constraints. Nil fields mean
// no constraint. Listings and stats derive their WHERE clause from the same
// filter so the two can never drift apart.
type IssueFilter struct {
	ReportedBy *string
	Status     *domain.IssueStatus
	Category   *domain.IssueCategory
	Search     *string
	Window     TimeWindow
	Limit      int
	Offset     int
}

// buildClauses renders the filter into SQL predicates and bind args. Both
// ListWithFilter and CountsWithFilter go through here.
func buildClauses(filter IssueFilter, now time.Time) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ReportedBy != nil {
		args = append(args, *filter.ReportedBy)
		clauses = append(clauses, fmt.Sprintf("reported_by=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}
	if start, ok := filter.Window.Start(now); ok {
		args = append(args, start)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	return clauses, args
}
