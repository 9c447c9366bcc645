package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civic-issue-service/internal/config"
	"github.com/spec-kit/civic-issue-service/internal/domain"
	"github.com/spec-kit/civic-issue-service/internal/repository"
	apperrors "github.com/spec-kit/civic-issue-service/pkg/util"
)

// fakeIssueRepo is an in-memory stand-in honoring the repository contract,
// including the conditional status update that loses races with Conflict.
type fakeIssueRepo struct {
	mu     sync.Mutex
	seq    int
	issues map[string]*domain.Issue
}

func newFakeIssueRepo() *fakeIssueRepo {
	return &fakeIssueRepo{issues: make(map[string]*domain.Issue)}
}

func (r *fakeIssueRepo) Create(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	now := time.Now().UTC()
	issue.ID = fmt.Sprintf("issue-%03d", r.seq)
	issue.CreatedAt = now
	issue.UpdatedAt = now
	stored := cloneIssue(issue)
	r.issues[issue.ID] = &stored
	return nil
}

func (r *fakeIssueRepo) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.issues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneIssue(stored)
	return &out, nil
}

func (r *fakeIssueRepo) AppendComment(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.issues[comment.IssueID]
	if !ok {
		return pgx.ErrNoRows
	}
	r.seq++
	comment.ID = fmt.Sprintf("comment-%03d", r.seq)
	comment.CreatedAt = time.Now().UTC()
	stored.Comments = append(stored.Comments, *comment)
	stored.UpdatedAt = comment.CreatedAt
	return nil
}

func (r *fakeIssueRepo) ApplyTransition(_ context.Context, issue *domain.Issue, from domain.IssueStatus, update *domain.ProgressUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.issues[issue.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Status != from {
		return apperrors.NewConflict("issue status changed concurrently", map[string]any{
			"status": stored.Status,
		})
	}
	now := time.Now().UTC()
	r.seq++
	update.ID = fmt.Sprintf("progress-%03d", r.seq)
	update.CreatedAt = now
	stored.Status = update.Status
	stored.UpdatedAt = now
	if update.Status == domain.IssueStatusCompleted {
		resolved := now
		stored.ResolvedAt = &resolved
	}
	stored.Progress = append(stored.Progress, *update)

	issue.Status = stored.Status
	issue.UpdatedAt = stored.UpdatedAt
	issue.ResolvedAt = stored.ResolvedAt
	issue.Progress = append(issue.Progress, *update)
	return nil
}

func (r *fakeIssueRepo) Assign(_ context.Context, issueID, assigneeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.issues[issueID]
	if !ok {
		return pgx.ErrNoRows
	}
	assignee := assigneeID
	stored.AssignedTo = &assignee
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeIssueRepo) ListWithFilter(_ context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()

	var result []domain.Issue
	for _, stored := range r.issues {
		if matchesFilter(stored, filter, now) {
			result = append(result, cloneIssue(stored))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(result) {
		return nil, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

func (r *fakeIssueRepo) CountsWithFilter(_ context.Context, filter repository.IssueFilter) (*domain.StatsSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()

	snapshot := &domain.StatsSnapshot{
		ByStatus:   make(map[domain.IssueStatus]int64),
		ByCategory: make(map[domain.IssueCategory]int64),
		ByPriority: make(map[domain.IssuePriority]int64),
	}
	var responded int64
	for _, stored := range r.issues {
		if !matchesFilter(stored, filter, now) {
			continue
		}
		snapshot.Total++
		snapshot.ByStatus[stored.Status]++
		snapshot.ByCategory[stored.Category]++
		snapshot.ByPriority[stored.Priority]++
		if len(stored.Comments) > 0 || len(stored.Progress) > 0 {
			responded++
		}
	}
	if snapshot.Total > 0 {
		snapshot.ResponseRate = float64(responded) / float64(snapshot.Total) * 100
	}
	return snapshot, nil
}

func matchesFilter(issue *domain.Issue, filter repository.IssueFilter, now time.Time) bool {
	if filter.ReportedBy != nil && issue.ReportedBy != *filter.ReportedBy {
		return false
	}
	if filter.Status != nil && issue.Status != *filter.Status {
		return false
	}
	if filter.Category != nil && issue.Category != *filter.Category {
		return false
	}
	if filter.Search != nil {
		needle := strings.ToLower(strings.TrimSpace(*filter.Search))
		title := strings.ToLower(issue.Title)
		desc := strings.ToLower(issue.Description)
		if !strings.Contains(title, needle) && !strings.Contains(desc, needle) {
			return false
		}
	}
	if start, ok := filter.Window.Start(now); ok && issue.CreatedAt.Before(start) {
		return false
	}
	return true
}

func cloneIssue(issue *domain.Issue) domain.Issue {
	out := *issue
	out.Images = append([]string(nil), issue.Images...)
	out.Comments = append([]domain.Comment(nil), issue.Comments...)
	out.Progress = append([]domain.ProgressUpdate(nil), issue.Progress...)
	return out
}

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = fmt.Sprintf("user-%03d", r.seq)
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		result = append(result, *user)
	}
	return result, nil
}

var (
	citizenActor = Actor{ID: "user-101", Name: "Priya", Role: domain.RoleCitizen}
	adminActor   = Actor{ID: "user-900", Name: "Ravi", Role: domain.RoleAdmin}
)

func newTestService(t *testing.T) (*IssueService, *fakeIssueRepo, *fakeUserRepo) {
	t.Helper()
	issues := newFakeIssueRepo()
	users := newFakeUserRepo()
	svc := NewIssueService(config.IssuesConfig{MaxImages: 5, DailyReportLimit: 10}, IssueDependencies{
		IssueRepo: issues,
		UserRepo:  users,
		Gate:      NewAccessGate(),
	})
	return svc, issues, users
}

func validInput() IssueCreateInput {
	return IssueCreateInput{
		Title:       "Pothole on Main Road",
		Description: "Deep pothole near the bus stop",
		Category:    domain.CategoryPothole,
		Priority:    domain.PriorityHigh,
		Location:    domain.Location{Address: "Main Road, Ward 4"},
		Images:      []string{"/uploads/p1.jpg"},
	}
}

func mustCreate(t *testing.T, svc *IssueService, actor Actor, input IssueCreateInput) *domain.Issue {
	t.Helper()
	issue, err := svc.Create(context.Background(), actor, input)
	if err != nil {
		t.Fatalf("create issue: %v", err)
	}
	return issue
}

func TestCreateIssueStartsPending(t *testing.T) {
	svc, _, _ := newTestService(t)
	issue := mustCreate(t, svc, citizenActor, validInput())

	if issue.Status != domain.IssueStatusPending {
		t.Errorf("status = %s, want pending", issue.Status)
	}
	if issue.ResolvedAt != nil {
		t.Errorf("resolvedAt = %v, want nil", issue.ResolvedAt)
	}
	if issue.ID == "" || issue.CreatedAt.IsZero() {
		t.Error("expected server-assigned id and timestamps")
	}
	if issue.ReportedBy != citizenActor.ID || issue.ReporterName != citizenActor.Name {
		t.Errorf("reporter = %s/%s, want actor identity", issue.ReportedBy, issue.ReporterName)
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	input := validInput()
	created := mustCreate(t, svc, citizenActor, input)

	fetched, err := svc.Get(context.Background(), citizenActor, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Title != input.Title || fetched.Description != input.Description {
		t.Errorf("round trip changed text fields: %+v", fetched)
	}
	if fetched.Category != input.Category || fetched.Priority != input.Priority {
		t.Errorf("round trip changed enums: %+v", fetched)
	}
	if fetched.Location.Address != input.Location.Address {
		t.Errorf("round trip changed location: %+v", fetched.Location)
	}
	if len(fetched.Images) != 1 || fetched.Images[0] != input.Images[0] {
		t.Errorf("round trip changed images: %v", fetched.Images)
	}
}

func TestCreateIssueValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := map[string]func(*IssueCreateInput){
		"missing title":       func(in *IssueCreateInput) { in.Title = " " },
		"missing description": func(in *IssueCreateInput) { in.Description = "" },
		"missing category":    func(in *IssueCreateInput) { in.Category = "" },
		"missing priority":    func(in *IssueCreateInput) { in.Priority = "" },
		"missing address":     func(in *IssueCreateInput) { in.Location.Address = "" },
		"no images":           func(in *IssueCreateInput) { in.Images = nil },
		"too many images": func(in *IssueCreateInput) {
			in.Images = []string{"/a", "/b", "/c", "/d", "/e", "/f"}
		},
		"unknown category": func(in *IssueCreateInput) { in.Category = "volcano" },
		"unknown priority": func(in *IssueCreateInput) { in.Priority = "extreme" },
	}
	for name, mutate := range cases {
		input := validInput()
		mutate(&input)
		if _, err := svc.Create(ctx, citizenActor, input); !apperrors.HasCode(err, apperrors.CodeValidation) {
			t.Errorf("%s: err = %v, want VALIDATION_FAILED", name, err)
		}
	}
}

func TestAdminTransitionAppendsProgress(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	issue := mustCreate(t, svc, citizenActor, validInput())

	update, err := svc.Transition(ctx, adminActor, issue.ID, domain.IssueStatusInProgress, "crew dispatched")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if update.Description != "crew dispatched" || update.Status != domain.IssueStatusInProgress {
		t.Errorf("unexpected progress entry: %+v", update)
	}

	fetched, err := svc.Get(ctx, adminActor, issue.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Status != domain.IssueStatusInProgress {
		t.Errorf("status = %s, want in_progress", fetched.Status)
	}
	if len(fetched.Progress) != 1 {
		t.Fatalf("progress entries = %d, want 1", len(fetched.Progress))
	}
	if !fetched.UpdatedAt.After(fetched.CreatedAt) && !fetched.UpdatedAt.Equal(fetched.CreatedAt) {
		t.Error("updatedAt went backwards")
	}
}

func TestCitizenTransitionForbidden(t *testing.T) {
	svc, _, _ := newTestService(t)
	issue := mustCreate(t, svc, citizenActor, validInput())

	_, err := svc.Transition(context.Background(), citizenActor, issue.ID, domain.IssueStatusInProgress, "please fix")
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
}

func TestTransitionFromTerminalFails(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	issue := mustCreate(t, svc, citizenActor, validInput())

	if _, err := svc.Transition(ctx, adminActor, issue.ID, domain.IssueStatusCompleted, "patched"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	_, err := svc.Transition(ctx, adminActor, issue.ID, domain.IssueStatusInProgress, "reopen")
	if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("err = %v, want INVALID_TRANSITION", err)
	}
}

func TestResolvedAtTracksCompletedOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	completed := mustCreate(t, svc, citizenActor, validInput())
	if _, err := svc.Transition(ctx, adminActor, completed.ID, domain.IssueStatusCompleted, "patched"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	fetched, _ := svc.Get(ctx, adminActor, completed.ID)
	if fetched.ResolvedAt == nil {
		t.Error("completed issue must have resolvedAt set")
	}

	rejected := mustCreate(t, svc, citizenActor, validInput())
	if _, err := svc.Transition(ctx, adminActor, rejected.ID, domain.IssueStatusRejected, "duplicate report"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	fetched, _ = svc.Get(ctx, adminActor, rejected.ID)
	if fetched.ResolvedAt != nil {
		t.Error("rejected issue must not have resolvedAt")
	}
}

func TestConcurrentTransitionsOnlyOneWins(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	issue := mustCreate(t, svc, citizenActor, validInput())

	targets := []domain.IssueStatus{domain.IssueStatusInProgress, domain.IssueStatusRejected}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target domain.IssueStatus) {
			defer wg.Done()
			_, errs[i] = svc.Transition(ctx, adminActor, issue.ID, target, "racing update")
		}(i, target)
	}
	wg.Wait()

	var successes, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperrors.HasCode(err, apperrors.CodeConflict), apperrors.HasCode(err, apperrors.CodeInvalidTransition):
			losses++
		default:
			t.Fatalf("unexpected error kind: %v", err)
		}
	}
	if successes != 1 || losses != 1 {
		t.Fatalf("successes=%d losses=%d, want exactly one of each", successes, losses)
	}
}

func TestTransitionMissingIssue(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Transition(context.Background(), adminActor, "issue-999", domain.IssueStatusInProgress, "x")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestAddCommentRules(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	issue := mustCreate(t, svc, citizenActor, validInput())

	if _, err := svc.AddComment(ctx, citizenActor, issue.ID, "any update?", false); err != nil {
		t.Fatalf("citizen comment: %v", err)
	}
	if _, err := svc.AddComment(ctx, citizenActor, issue.ID, "secret", true); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("citizen internal comment err = %v, want FORBIDDEN", err)
	}
	if _, err := svc.AddComment(ctx, adminActor, issue.ID, "vendor quote pending", true); err != nil {
		t.Errorf("admin internal comment: %v", err)
	}
	if _, err := svc.AddComment(ctx, citizenActor, issue.ID, "   ", false); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("empty comment err = %v, want VALIDATION_FAILED", err)
	}
	if _, err := svc.AddComment(ctx, citizenActor, "issue-999", "hello", false); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("missing issue err = %v, want NOT_FOUND", err)
	}
}

func TestInternalCommentsHiddenFromCitizenView(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	issue := mustCreate(t, svc, citizenActor, validInput())

	if _, err := svc.AddComment(ctx, adminActor, issue.ID, "vendor quote pending", true); err != nil {
		t.Fatalf("internal comment: %v", err)
	}
	if _, err := svc.AddComment(ctx, adminActor, issue.ID, "scheduled for friday", false); err != nil {
		t.Fatalf("public comment: %v", err)
	}

	citizenView, err := svc.Get(ctx, citizenActor, issue.ID)
	if err != nil {
		t.Fatalf("citizen get: %v", err)
	}
	if len(citizenView.Comments) != 1 {
		t.Errorf("citizen sees %d comments, want 1", len(citizenView.Comments))
	}

	adminView, err := svc.Get(ctx, adminActor, issue.ID)
	if err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if len(adminView.Comments) != 2 {
		t.Errorf("admin sees %d comments, want 2", len(adminView.Comments))
	}
}

func TestCitizenCannotViewOthersIssue(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	issue := mustCreate(t, svc, citizenActor, validInput())

	other := Actor{ID: "user-202", Name: "Dev", Role: domain.RoleCitizen}
	if _, err := svc.Get(ctx, other, issue.ID); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
	if _, err := svc.GetPublic(ctx, issue.ID); err != nil {
		t.Fatalf("public view should be open: %v", err)
	}
}

func TestListScopesCitizensToOwnIssues(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mine := mustCreate(t, svc, citizenActor, validInput())
	other := Actor{ID: "user-202", Name: "Dev", Role: domain.RoleCitizen}
	mustCreate(t, svc, other, validInput())

	issues, err := svc.List(ctx, citizenActor, IssueListInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(issues) != 1 || issues[0].ID != mine.ID {
		t.Fatalf("citizen listing leaked foreign issues: %+v", issues)
	}

	all, err := svc.List(ctx, adminActor, IssueListInput{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin listing = %d issues, want 2", len(all))
	}
}

func TestListPublicStripsReporterIdentity(t *testing.T) {
	svc, _, _ := newTestService(t)
	mustCreate(t, svc, citizenActor, validInput())

	issues, err := svc.ListPublic(context.Background(), IssueListInput{})
	if err != nil {
		t.Fatalf("public list: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("public listing = %d, want 1", len(issues))
	}
	if issues[0].ReportedBy != "" {
		t.Errorf("public listing kept reporter id %q", issues[0].ReportedBy)
	}
	if issues[0].ReporterName == "" {
		t.Error("public listing should keep display name")
	}
}

func TestListFilterStatusAndWeekWindow(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	recent := mustCreate(t, svc, citizenActor, validInput())
	if _, err := svc.Transition(ctx, adminActor, recent.ID, domain.IssueStatusCompleted, "patched"); err != nil {
		t.Fatalf("complete recent: %v", err)
	}

	stale := mustCreate(t, svc, citizenActor, validInput())
	if _, err := svc.Transition(ctx, adminActor, stale.ID, domain.IssueStatusCompleted, "patched"); err != nil {
		t.Fatalf("complete stale: %v", err)
	}
	repo.issues[stale.ID].CreatedAt = time.Now().UTC().Add(-10 * 24 * time.Hour)

	pending := mustCreate(t, svc, citizenActor, validInput())
	_ = pending

	issues, err := svc.List(ctx, adminActor, IssueListInput{Status: "completed", Time: "week"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(issues) != 1 || issues[0].ID != recent.ID {
		t.Fatalf("filtered listing = %+v, want only the recent completed issue", issues)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	first := mustCreate(t, svc, citizenActor, validInput())
	second := mustCreate(t, svc, citizenActor, validInput())
	third := mustCreate(t, svc, citizenActor, validInput())
	now := time.Now().UTC()
	repo.issues[first.ID].CreatedAt = now.Add(-3 * time.Hour)
	repo.issues[second.ID].CreatedAt = now.Add(-1 * time.Hour)
	repo.issues[third.ID].CreatedAt = now.Add(-2 * time.Hour)

	issues, err := svc.List(ctx, adminActor, IssueListInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := []string{issues[0].ID, issues[1].ID, issues[2].ID}
	want := []string{second.ID, third.ID, first.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestStatsCategoryCountsSumToTotal(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	inputs := []IssueCreateInput{validInput(), validInput(), validInput()}
	inputs[1].Category = domain.CategoryGarbage
	inputs[2].Category = domain.CategoryWater
	for _, input := range inputs {
		mustCreate(t, svc, citizenActor, input)
	}
	old := mustCreate(t, svc, citizenActor, validInput())
	repo.issues[old.ID].CreatedAt = time.Now().UTC().Add(-40 * 24 * time.Hour)

	for _, window := range []string{"all", "today", "week", "month"} {
		snapshot, err := svc.Stats(ctx, adminActor, window)
		if err != nil {
			t.Fatalf("stats(%s): %v", window, err)
		}
		var byCategory, byStatus int64
		for _, count := range snapshot.ByCategory {
			byCategory += count
		}
		for _, count := range snapshot.ByStatus {
			byStatus += count
		}
		if byCategory != snapshot.Total || byStatus != snapshot.Total {
			t.Errorf("window %s: category sum %d, status sum %d, total %d", window, byCategory, byStatus, snapshot.Total)
		}
	}

	monthly, _ := svc.Stats(ctx, adminActor, "month")
	if monthly.Total != 4 {
		t.Errorf("month window total = %d, want 4 recent issues only", monthly.Total)
	}
}

func TestStatsRequireAdmin(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Stats(context.Background(), citizenActor, "all"); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
}

func TestAssignValidatesAssignee(t *testing.T) {
	svc, _, users := newTestService(t)
	ctx := context.Background()
	issue := mustCreate(t, svc, citizenActor, validInput())

	if err := svc.Assign(ctx, adminActor, issue.ID, "user-404"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("unknown assignee err = %v, want NOT_FOUND", err)
	}

	crew := &domain.User{Name: "Crew", Email: "crew@city.gov", Role: domain.RoleCitizen}
	if err := users.Create(ctx, crew); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := svc.Assign(ctx, adminActor, issue.ID, crew.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := svc.Assign(ctx, citizenActor, issue.ID, crew.ID); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("citizen assign err = %v, want FORBIDDEN", err)
	}

	fetched, _ := svc.Get(ctx, adminActor, issue.ID)
	if fetched.AssignedTo == nil || *fetched.AssignedTo != crew.ID {
		t.Fatalf("assignee not persisted: %+v", fetched.AssignedTo)
	}
}
