package visibility

import (
	"testing"

	"github.com/spec-kit/civic-issue-service/internal/domain"
)

func sampleIssue() *domain.Issue {
	assignee := "crew-7"
	return &domain.Issue{
		ID:           "issue-1",
		Title:        "Broken streetlight",
		Status:       domain.IssueStatusPending,
		Location:     domain.Location{Address: "12 Elm St"},
		Images:       []string{"/uploads/a.jpg"},
		ReportedBy:   "user-1",
		ReporterName: "Priya",
		AssignedTo:   &assignee,
		Comments: []domain.Comment{
			{ID: "c1", Text: "any update?", AuthorName: "Priya", IsInternal: false},
			{ID: "c2", Text: "vendor quote pending", AuthorName: "Ops", IsInternal: true},
			{ID: "c3", Text: "scheduled for friday", AuthorName: "Ops", IsInternal: false},
		},
	}
}

func TestRedactHidesInternalCommentsFromCitizens(t *testing.T) {
	out := Redact(sampleIssue(), domain.ViewerCitizen)
	if len(out.Comments) != 2 {
		t.Fatalf("expected 2 visible comments, got %d", len(out.Comments))
	}
	for _, comment := range out.Comments {
		if comment.IsInternal {
			t.Errorf("internal comment %s leaked to citizen view", comment.ID)
		}
	}
}

func TestRedactKeepsInternalCommentsForAdmins(t *testing.T) {
	out := Redact(sampleIssue(), domain.ViewerAdmin)
	if len(out.Comments) != 3 {
		t.Fatalf("expected all 3 comments for admin, got %d", len(out.Comments))
	}
}

func TestRedactStripsReporterIdentityForPublic(t *testing.T) {
	out := Redact(sampleIssue(), domain.ViewerPublic)
	if out.ReportedBy != "" {
		t.Errorf("public view kept reporter id %q", out.ReportedBy)
	}
	if out.AssignedTo != nil {
		t.Errorf("public view kept assignee %q", *out.AssignedTo)
	}
	if out.ReporterName != "Priya" {
		t.Errorf("public view should keep display name, got %q", out.ReporterName)
	}
	if out.Location.Address != "12 Elm St" {
		t.Errorf("public view must keep location, got %q", out.Location.Address)
	}
	if len(out.Comments) != 2 {
		t.Errorf("public view should exclude internal comments, got %d", len(out.Comments))
	}
}

func TestRedactDoesNotMutateInput(t *testing.T) {
	issue := sampleIssue()
	_ = Redact(issue, domain.ViewerPublic)
	if issue.ReportedBy != "user-1" {
		t.Error("input reporter mutated")
	}
	if len(issue.Comments) != 3 {
		t.Errorf("input comments mutated, got %d", len(issue.Comments))
	}
}

func TestRedactAllPreservesOrder(t *testing.T) {
	issues := []domain.Issue{*sampleIssue(), *sampleIssue()}
	issues[1].ID = "issue-2"
	out := RedactAll(issues, domain.ViewerCitizen)
	if len(out) != 2 || out[0].ID != "issue-1" || out[1].ID != "issue-2" {
		t.Fatalf("unexpected order: %+v", out)
	}
}
