package domain

// StatsSnapshot is derived on demand from the issue collection; it is never
// stored. Counts are grouped over the same filtered set a listing with the
// same time window would return.
type StatsSnapshot struct {
	Total        int64
	ByStatus     map[IssueStatus]int64
	ByCategory   map[IssueCategory]int64
	ByPriority   map[IssuePriority]int64
	ResponseRate float64
}
