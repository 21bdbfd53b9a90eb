package hub

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
)

// GitHubClient implements Client using the GitHub REST API
type GitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewGitHubClient creates a client over httpClient. apiURL selects the API
// endpoint; empty means api.github.com.
func NewGitHubClient(httpClient *http.Client, apiURL string, logger *slog.Logger) (*GitHubClient, error) {
	client := github.NewClient(httpClient)

	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		base, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", apiURL, err)
		}
		client.BaseURL = base
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &GitHubClient{client: client, logger: logger}, nil
}

// Create opens a pull request
func (c *GitHubClient) Create(ctx context.Context, owner, repo string, opts CreateOptions) (PullRequest, error) {
	pr := &github.NewPullRequest{
		Head:                github.String(opts.Head),
		Base:                github.String(opts.Base),
		MaintainerCanModify: github.Bool(opts.MaintainerCanModify),
	}
	if opts.Issue > 0 {
		pr.Issue = github.Int(opts.Issue)
	} else {
		pr.Title = github.String(opts.Title)
		if opts.Body != "" {
			pr.Body = github.String(opts.Body)
		}
	}

	created, _, err := c.client.PullRequests.Create(ctx, owner, repo, pr)
	if err != nil {
		return PullRequest{}, fmt.Errorf("failed to create pull request: %w", err)
	}
	c.logger.Debug("created pull request", "owner", owner, "repo", repo, "number", created.GetNumber())
	return fromGitHub(created), nil
}

// Get fetches a pull request by number
func (c *GitHubClient) Get(ctx context.Context, owner, repo string, number int) (PullRequest, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return PullRequest{}, fmt.Errorf("failed to get pull request %d: %w", number, err)
	}
	return fromGitHub(pr), nil
}

// GetDiff fetches the unified diff of a pull request
func (c *GitHubClient) GetDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	diff, _, err := c.client.PullRequests.GetRaw(ctx, owner, repo, number, github.RawOptions{Type: github.Diff})
	if err != nil {
		return "", fmt.Errorf("failed to get diff of pull request %d: %w", number, err)
	}
	return diff, nil
}

// Comment posts a comment on a pull request
func (c *GitHubClient) Comment(ctx context.Context, owner, repo string, number int, body string) (Comment, error) {
	comment, _, err := c.client.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return Comment{}, fmt.Errorf("failed to comment on pull request %d: %w", number, err)
	}
	return Comment{
		ID:        comment.GetID(),
		Body:      comment.GetBody(),
		HTMLURL:   comment.GetHTMLURL(),
		CreatedAt: formatTime(comment.CreatedAt),
		UpdatedAt: formatTime(comment.UpdatedAt),
	}, nil
}

// Update edits a pull request
func (c *GitHubClient) Update(ctx context.Context, owner, repo string, number int, opts UpdateOptions) (PullRequest, error) {
	update := &github.PullRequest{
		Title:               opts.Title,
		Body:                opts.Body,
		State:               opts.State,
		MaintainerCanModify: opts.MaintainerCanModify,
	}

	pr, _, err := c.client.PullRequests.Edit(ctx, owner, repo, number, update)
	if err != nil {
		return PullRequest{}, fmt.Errorf("failed to update pull request %d: %w", number, err)
	}
	return fromGitHub(pr), nil
}

// Merge merges a pull request with an optional commit message
func (c *GitHubClient) Merge(ctx context.Context, owner, repo string, number int, message string) (MergeResult, error) {
	result, _, err := c.client.PullRequests.Merge(ctx, owner, repo, number, message, nil)
	if err != nil {
		return MergeResult{}, fmt.Errorf("failed to merge pull request %d: %w", number, err)
	}
	return MergeResult{
		SHA:     result.GetSHA(),
		Merged:  result.GetMerged(),
		Message: result.GetMessage(),
	}, nil
}
