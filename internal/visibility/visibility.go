// Package visibility redacts issue views per audience before they leave the
// service. It is a pure function of (issue, viewer); inputs are never mutated.
package visibility

import "github.com/spec-kit/civic-issue-service/internal/domain"

// Redact returns a copy of the issue shaped for the given viewer. Internal
// comments are stripped for everyone but admins. Public viewers keep the
// reporter display name but lose the reporter and assignee identities;
// location and status stay visible for civic transparency.
func Redact(issue *domain.Issue, viewer domain.ViewerRole) *domain.Issue {
	out := *issue

	out.Comments = filterComments(issue.Comments, viewer)
	out.Progress = append([]domain.ProgressUpdate(nil), issue.Progress...)
	out.Images = append([]string(nil), issue.Images...)

	if viewer == domain.ViewerPublic {
		out.ReportedBy = ""
		out.AssignedTo = nil
	}
	return &out
}

// RedactAll applies Redact to each issue in order.
func RedactAll(issues []domain.Issue, viewer domain.ViewerRole) []domain.Issue {
	out := make([]domain.Issue, 0, len(issues))
	for i := range issues {
		out = append(out, *Redact(&issues[i], viewer))
	}
	return out
}

func filterComments(comments []domain.Comment, viewer domain.ViewerRole) []domain.Comment {
	if viewer == domain.ViewerAdmin {
		return append([]domain.Comment(nil), comments...)
	}
	filtered := make([]domain.Comment, 0, len(comments))
	for _, comment := range comments {
		if comment.IsInternal {
			continue
		}
		filtered = append(filtered, comment)
	}
	return filtered
}
