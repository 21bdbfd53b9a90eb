// Package hub talks to the GitHub pull-request API.
package hub

import "context"

// CreateOptions describes a new pull request. When Issue is set the pull
// request is made from that issue and Title and Body are ignored.
type CreateOptions struct {
	Title               string
	Body                string
	Head                string // "<user>:<branch>"
	Base                string
	MaintainerCanModify bool
	Issue               int
}

// UpdateOptions changes an existing pull request; nil fields are left alone
type UpdateOptions struct {
	Title               *string
	Body                *string
	State               *string // "open" or "closed"
	MaintainerCanModify *bool
}

// Comment is a comment posted on a pull request
type Comment struct {
	ID        int64
	Body      string
	HTMLURL   string
	CreatedAt string
	UpdatedAt string
}

// MergeResult reports the outcome of merging a pull request
type MergeResult struct {
	SHA     string
	Merged  bool
	Message string
}

// Client is the pull-request API
type Client interface {
	// Create opens a pull request
	Create(ctx context.Context, owner, repo string, opts CreateOptions) (PullRequest, error)

	// Get fetches a pull request by number
	Get(ctx context.Context, owner, repo string, number int) (PullRequest, error)

	// GetDiff fetches the unified diff of a pull request
	GetDiff(ctx context.Context, owner, repo string, number int) (string, error)

	// Comment posts a comment on a pull request
	Comment(ctx context.Context, owner, repo string, number int, body string) (Comment, error)

	// Update edits a pull request
	Update(ctx context.Context, owner, repo string, number int, opts UpdateOptions) (PullRequest, error)

	// Merge merges a pull request with an optional commit message
	Merge(ctx context.Context, owner, repo string, number int, message string) (MergeResult, error)
}
