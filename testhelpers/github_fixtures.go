package testhelpers

import (
	"fmt"
	"time"

	"github.com/google/go-github/v62/github"
)

// SamplePRData provides common PR data for testing
type SamplePRData struct {
	Number    int
	Title     string
	Body      string
	Head      string // label, "<user>:<branch>"
	Base      string
	State     string
	Author    string
	Reviewers []string
	Labels    []string
}

// NewSamplePullRequest creates a github.PullRequest from sample data
func NewSamplePullRequest(owner, repo string, data SamplePRData) *github.PullRequest {
	created := github.Timestamp{Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	htmlURL := fmt.Sprintf("https://github.com/%s/%s/pull/%d", owner, repo, data.Number)
	apiURL := fmt.Sprintf("https://api.github.com/repos/%s/%s", owner, repo)

	pr := &github.PullRequest{
		ID:                github.Int64(int64(1000 + data.Number)),
		NodeID:            github.String(fmt.Sprintf("PR_%d", data.Number)),
		Number:            github.Int(data.Number),
		Title:             github.String(data.Title),
		Body:              github.String(data.Body),
		State:             github.String(data.State),
		Head:              &github.PullRequestBranch{Label: github.String(data.Head)},
		Base:              &github.PullRequestBranch{Label: github.String(data.Base)},
		User:              &github.User{Login: github.String(data.Author), ID: github.Int64(7)},
		CreatedAt:         &created,
		UpdatedAt:         &created,
		Commits:           github.Int(1),
		Additions:         github.Int(10),
		Deletions:         github.Int(2),
		ChangedFiles:      github.Int(3),
		HTMLURL:           github.String(htmlURL),
		DiffURL:           github.String(htmlURL + ".diff"),
		PatchURL:          github.String(htmlURL + ".patch"),
		CommentsURL:       github.String(fmt.Sprintf("%s/issues/%d/comments", apiURL, data.Number)),
		ReviewCommentsURL: github.String(fmt.Sprintf("%s/pulls/%d/comments", apiURL, data.Number)),
	}

	for _, reviewer := range data.Reviewers {
		pr.RequestedReviewers = append(pr.RequestedReviewers, &github.User{Login: github.String(reviewer)})
	}
	for _, label := range data.Labels {
		pr.Labels = append(pr.Labels, &github.Label{Name: github.String(label)})
	}
	return pr
}

// DefaultPRData returns a default PR data structure for testing
func DefaultPRData() SamplePRData {
	return SamplePRData{
		Number: 123,
		Title:  "Test Pull Request",
		Body:   "This is a test pull request",
		Head:   "someone:feature-branch",
		Base:   "owner:master",
		State:  "open",
		Author: "someone",
	}
}
