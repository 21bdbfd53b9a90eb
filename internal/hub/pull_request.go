package hub

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
)

// Field is one named value of a PullRequest view
type Field struct {
	Key   string
	Value string
}

// User is a GitHub account as referenced from a pull request
type User struct {
	Login   string
	ID      int64
	HTMLURL string
}

// PullRequest is the pull-request record shown by the CLI. Counts and ids
// that the API did not return are -1; tri-state flags are nil when unknown.
type PullRequest struct {
	ID     int64
	NodeID string
	Number int

	Base  string // label, e.g. "owner:master"
	Head  string
	State string

	Merged     *bool
	Mergeable  *bool
	Rebaseable *bool

	CreatedAt string
	UpdatedAt string
	ClosedAt  string
	MergedAt  string

	Title        string
	Body         string
	Commits      int
	Additions    int
	Deletions    int
	ChangedFiles int

	Assignee           string
	Assignees          []string
	RequestedReviewers []string
	Labels             []string
	Milestone          string

	Author User

	HTMLURL           string
	DiffURL           string
	PatchURL          string
	CommentsURL       string
	ReviewCommentsURL string
}

// NewPullRequest returns a record with every count and id unset
func NewPullRequest() PullRequest {
	return PullRequest{
		ID:           -1,
		Number:       -1,
		Commits:      -1,
		Additions:    -1,
		Deletions:    -1,
		ChangedFiles: -1,
		Author:       User{ID: -1},
	}
}

// Meta returns identity, branch and state fields
func (p PullRequest) Meta() []Field {
	return []Field{
		{"id", strconv.FormatInt(p.ID, 10)},
		{"node_id", p.NodeID},
		{"number", strconv.Itoa(p.Number)},
		{"base", p.Base},
		{"head", p.Head},
		{"state", p.State},
		{"merged", formatFlag(p.Merged)},
		{"mergeable", formatFlag(p.Mergeable)},
		{"rebaseable", formatFlag(p.Rebaseable)},
		{"created_at", p.CreatedAt},
		{"updated_at", p.UpdatedAt},
		{"closed_at", p.ClosedAt},
		{"merged_at", p.MergedAt},
	}
}

// Content returns the title, body, change counts and people involved
func (p PullRequest) Content() []Field {
	return []Field{
		{"title", p.Title},
		{"body", p.Body},
		{"commits", strconv.Itoa(p.Commits)},
		{"additions", strconv.Itoa(p.Additions)},
		{"deletions", strconv.Itoa(p.Deletions)},
		{"changed_files", strconv.Itoa(p.ChangedFiles)},
		{"assignee", p.Assignee},
		{"assignees", strings.Join(p.Assignees, ", ")},
		{"requested_reviewers", strings.Join(p.RequestedReviewers, ", ")},
		{"labels", strings.Join(p.Labels, ", ")},
		{"milestone", p.Milestone},
	}
}

// Extra returns the author and API links
func (p PullRequest) Extra() []Field {
	return []Field{
		{"author", p.Author.Login},
		{"html_url", p.HTMLURL},
		{"diff_url", p.DiffURL},
		{"patch_url", p.PatchURL},
		{"comments_url", p.CommentsURL},
		{"review_comments_url", p.ReviewCommentsURL},
	}
}

func formatFlag(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func formatTime(ts *github.Timestamp) string {
	if ts == nil || ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

// fromGitHub converts an API pull request into a PullRequest
func fromGitHub(pr *github.PullRequest) PullRequest {
	out := NewPullRequest()
	if pr == nil {
		return out
	}

	if pr.ID != nil {
		out.ID = *pr.ID
	}
	if pr.Number != nil {
		out.Number = *pr.Number
	}
	if pr.Commits != nil {
		out.Commits = *pr.Commits
	}
	if pr.Additions != nil {
		out.Additions = *pr.Additions
	}
	if pr.Deletions != nil {
		out.Deletions = *pr.Deletions
	}
	if pr.ChangedFiles != nil {
		out.ChangedFiles = *pr.ChangedFiles
	}

	out.NodeID = pr.GetNodeID()
	out.Base = pr.GetBase().GetLabel()
	out.Head = pr.GetHead().GetLabel()
	out.State = pr.GetState()
	out.Merged = pr.Merged
	out.Mergeable = pr.Mergeable
	out.Rebaseable = pr.Rebaseable

	out.CreatedAt = formatTime(pr.CreatedAt)
	out.UpdatedAt = formatTime(pr.UpdatedAt)
	out.ClosedAt = formatTime(pr.ClosedAt)
	out.MergedAt = formatTime(pr.MergedAt)

	out.Title = pr.GetTitle()
	out.Body = pr.GetBody()

	out.Assignee = pr.GetAssignee().GetLogin()
	for _, u := range pr.Assignees {
		out.Assignees = append(out.Assignees, u.GetLogin())
	}
	for _, u := range pr.RequestedReviewers {
		out.RequestedReviewers = append(out.RequestedReviewers, u.GetLogin())
	}
	for _, l := range pr.Labels {
		out.Labels = append(out.Labels, l.GetName())
	}
	out.Milestone = pr.GetMilestone().GetTitle()

	if pr.User != nil {
		out.Author = User{
			Login:   pr.User.GetLogin(),
			ID:      pr.User.GetID(),
			HTMLURL: pr.User.GetHTMLURL(),
		}
	}

	out.HTMLURL = pr.GetHTMLURL()
	out.DiffURL = pr.GetDiffURL()
	out.PatchURL = pr.GetPatchURL()
	out.CommentsURL = pr.GetCommentsURL()
	out.ReviewCommentsURL = pr.GetReviewCommentsURL()
	return out
}
