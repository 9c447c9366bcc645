package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/civic-issue-service/internal/domain"
	apperrors "github.com/spec-kit/civic-issue-service/pkg/util"
)

// IssueRepository encapsulates issue persistence including the comment and
// progress logs owned by each issue.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	AppendComment(ctx context.Context, comment *domain.Comment) error
	ApplyTransition(ctx context.Context, issue *domain.Issue, from domain.IssueStatus, update *domain.ProgressUpdate) error
	Assign(ctx context.Context, issueID, assigneeID string) error
	ListWithFilter(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)
	CountsWithFilter(ctx context.Context, filter IssueFilter) (*domain.StatsSnapshot, error)
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

const issueColumns = `i.id, i.title, i.description, i.category, i.priority, i.status,
               i.address, i.latitude, i.longitude, i.images, i.reported_by, u.name,
               i.assigned_to, i.created_at, i.updated_at, i.resolved_at`

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (title, description, category, priority, status, address, latitude, longitude, images, reported_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		issue.Title,
		issue.Description,
		issue.Category,
		issue.Priority,
		issue.Status,
		issue.Location.Address,
		issue.Location.Latitude,
		issue.Location.Longitude,
		issue.Images,
		issue.ReportedBy,
	).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM issues i JOIN users u ON u.id = i.reported_by
        WHERE i.id=$1`, issueColumns)

	issue, err := scanIssueRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if issue.Comments, err = r.listComments(ctx, issue.ID); err != nil {
		return nil, err
	}
	if issue.Progress, err = r.listProgress(ctx, issue.ID); err != nil {
		return nil, err
	}
	return issue, nil
}

func (r *issueRepository) AppendComment(ctx context.Context, comment *domain.Comment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insert = `
        INSERT INTO issue_comments (issue_id, text, author_id, author_name, is_internal)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insert,
		comment.IssueID,
		comment.Text,
		comment.AuthorID,
		comment.AuthorName,
		comment.IsInternal,
	).Scan(&comment.ID, &comment.CreatedAt); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `UPDATE issues SET updated_at=NOW() WHERE id=$1`, comment.IssueID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

// ApplyTransition persists a status change and its progress entry atomically.
// The issue row is updated only when its status still equals from; a raced
// transition therefore loses with Conflict instead of overwriting the winner.
func (r *issueRepository) ApplyTransition(ctx context.Context, issue *domain.Issue, from domain.IssueStatus, update *domain.ProgressUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const stateUpdate = `
        UPDATE issues SET status=$1, resolved_at=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4
        RETURNING updated_at`
	var resolvedAt *time.Time
	if update.Status == domain.IssueStatusCompleted {
		now := time.Now().UTC()
		resolvedAt = &now
	}
	var updatedAt time.Time
	if err := tx.QueryRow(ctx, stateUpdate, update.Status, resolvedAt, issue.ID, from).Scan(&updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.transitionMiss(ctx, issue.ID)
		}
		return err
	}

	const insert = `
        INSERT INTO issue_progress (issue_id, status, description, updated_by, updated_by_name)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insert,
		update.IssueID,
		update.Status,
		update.Description,
		update.UpdatedBy,
		update.UpdatedByName,
	).Scan(&update.ID, &update.CreatedAt); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	issue.Status = update.Status
	issue.UpdatedAt = updatedAt
	issue.ResolvedAt = resolvedAt
	issue.Progress = append(issue.Progress, *update)
	return nil
}

// transitionMiss distinguishes a vanished issue from a lost race.
func (r *issueRepository) transitionMiss(ctx context.Context, issueID string) error {
	var current domain.IssueStatus
	err := r.pool.QueryRow(ctx, `SELECT status FROM issues WHERE id=$1`, issueID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return pgx.ErrNoRows
	}
	if err != nil {
		return err
	}
	return apperrors.NewConflict("issue status changed concurrently", map[string]any{
		"status": current,
	})
}

func (r *issueRepository) Assign(ctx context.Context, issueID, assigneeID string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE issues SET assigned_to=$1, updated_at=NOW() WHERE id=$2`,
		assigneeID, issueID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *issueRepository) ListWithFilter(ctx context.Context, filter IssueFilter) ([]domain.Issue, error) {
	clauses, args := buildClauses(filter, time.Now())

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
        SELECT %s FROM issues i JOIN users u ON u.id = i.reported_by
        WHERE %s ORDER BY i.created_at DESC, i.id LIMIT %d OFFSET %d`,
		issueColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

// CountsWithFilter aggregates dashboard statistics over the exact set
// ListWithFilter would return for the same filter.
func (r *issueRepository) CountsWithFilter(ctx context.Context, filter IssueFilter) (*domain.StatsSnapshot, error) {
	clauses, args := buildClauses(filter, time.Now())
	where := strings.Join(clauses, " AND ")

	snapshot := &domain.StatsSnapshot{
		ByStatus:   make(map[domain.IssueStatus]int64),
		ByCategory: make(map[domain.IssueCategory]int64),
		ByPriority: make(map[domain.IssuePriority]int64),
	}

	statusQuery := fmt.Sprintf(`
        SELECT i.status, COUNT(*) FROM issues i WHERE %s GROUP BY i.status`, where)
	rows, err := r.pool.Query(ctx, statusQuery, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var status domain.IssueStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, err
		}
		snapshot.ByStatus[status] = count
		snapshot.Total += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	categoryQuery := fmt.Sprintf(`
        SELECT i.category, COUNT(*) FROM issues i WHERE %s GROUP BY i.category`, where)
	rows, err = r.pool.Query(ctx, categoryQuery, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var category domain.IssueCategory
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			rows.Close()
			return nil, err
		}
		snapshot.ByCategory[category] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	priorityQuery := fmt.Sprintf(`
        SELECT i.priority, COUNT(*) FROM issues i WHERE %s GROUP BY i.priority`, where)
	rows, err = r.pool.Query(ctx, priorityQuery, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var priority domain.IssuePriority
		var count int64
		if err := rows.Scan(&priority, &count); err != nil {
			rows.Close()
			return nil, err
		}
		snapshot.ByPriority[priority] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	respondedQuery := fmt.Sprintf(`
        SELECT COUNT(*) FROM issues i WHERE %s AND (
            EXISTS (SELECT 1 FROM issue_comments c WHERE c.issue_id = i.id)
            OR EXISTS (SELECT 1 FROM issue_progress p WHERE p.issue_id = i.id))`, where)
	var responded int64
	if err := r.pool.QueryRow(ctx, respondedQuery, args...).Scan(&responded); err != nil {
		return nil, err
	}
	if snapshot.Total > 0 {
		snapshot.ResponseRate = float64(responded) / float64(snapshot.Total) * 100
	}

	return snapshot, nil
}

func (r *issueRepository) listComments(ctx context.Context, issueID string) ([]domain.Comment, error) {
	const query = `
        SELECT id, issue_id, text, author_id, author_name, is_internal, created_at
        FROM issue_comments WHERE issue_id=$1 ORDER BY created_at ASC, id`
	rows, err := r.pool.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.IssueID,
			&comment.Text,
			&comment.AuthorID,
			&comment.AuthorName,
			&comment.IsInternal,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}

func (r *issueRepository) listProgress(ctx context.Context, issueID string) ([]domain.ProgressUpdate, error) {
	const query = `
        SELECT id, issue_id, status, description, updated_by, updated_by_name, created_at
        FROM issue_progress WHERE issue_id=$1 ORDER BY created_at ASC, id`
	rows, err := r.pool.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ProgressUpdate
	for rows.Next() {
		var update domain.ProgressUpdate
		if err := rows.Scan(
			&update.ID,
			&update.IssueID,
			&update.Status,
			&update.Description,
			&update.UpdatedBy,
			&update.UpdatedByName,
			&update.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, update)
	}
	return result, rows.Err()
}

type issueRow interface {
	Scan(dest ...any) error
}

func scanIssueRow(row issueRow) (*domain.Issue, error) {
	var issue domain.Issue
	if err := row.Scan(
		&issue.ID,
		&issue.Title,
		&issue.Description,
		&issue.Category,
		&issue.Priority,
		&issue.Status,
		&issue.Location.Address,
		&issue.Location.Latitude,
		&issue.Location.Longitude,
		&issue.Images,
		&issue.ReportedBy,
		&issue.ReporterName,
		&issue.AssignedTo,
		&issue.CreatedAt,
		&issue.UpdatedAt,
		&issue.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &issue, nil
}

func scanIssues(rows pgx.Rows) ([]domain.Issue, error) {
	var result []domain.Issue
	for rows.Next() {
		issue, err := scanIssueRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *issue)
	}
	return result, rows.Err()
}
