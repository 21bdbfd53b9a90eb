package actions

import (
	"fmt"
	"strings"

	"github.com/xuzuoyang/gitbro/internal/git"
	"github.com/xuzuoyang/gitbro/internal/hub"
	"github.com/xuzuoyang/gitbro/internal/output"
	"github.com/xuzuoyang/gitbro/internal/runtime"
)

// PullRequestTarget names the repository that holds the pull requests
type PullRequestTarget struct {
	Owner string
	Repo  string
	// User authenticates mutating calls; defaults to the configured username
	User string
}

// MakePullRequestOptions contains options for opening a pull request
type MakePullRequestOptions struct {
	PullRequestTarget
	// Branch is "<local>:<remote>"; local defaults to the current branch and
	// remote to the main branch
	Branch              string
	Title               string
	Body                string
	MaintainerCanModify bool
	Issue               int
}

// ShowPullRequestOptions contains options for displaying a pull request
type ShowPullRequestOptions struct {
	PullRequestTarget
	Number int
	// Patch prints the diff instead of the fields
	Patch bool
}

// CommentPullRequestOptions contains options for commenting on a pull request
type CommentPullRequestOptions struct {
	PullRequestTarget
	Number  int
	Content string
}

// UpdatePullRequestOptions contains options for editing a pull request; nil
// fields are left unchanged
type UpdatePullRequestOptions struct {
	PullRequestTarget
	Number              int
	Title               *string
	Body                *string
	MaintainerCanModify *bool
}

// TogglePullRequestOptions contains options for closing or reopening a pull request
type TogglePullRequestOptions struct {
	PullRequestTarget
	Number int
	Open   bool
}

// MergePullRequestOptions contains options for merging a pull request
type MergePullRequestOptions struct {
	PullRequestTarget
	Number  int
	Message string
}

// splitBranchPair parses "<local>:<remote>" filling in defaults
func splitBranchPair(ctx *runtime.Context, pair string) (string, string, error) {
	local, remote, _ := strings.Cut(pair, ":")
	if remote == "" {
		remote = ctx.Config.Git.MainBranch
	}
	if local != "" {
		return local, remote, nil
	}

	repo, err := ctx.Repository()
	if err != nil {
		return "", "", err
	}
	current := repo.CurrentBranch()
	if err := git.RequireNamed(current); err != nil {
		return "", "", err
	}
	return current.Name, remote, nil
}

func (t PullRequestTarget) user(ctx *runtime.Context) string {
	if t.User != "" {
		return t.User
	}
	return ctx.Config.GitHub.Username
}

func requireNumber(number int) error {
	if number <= 0 {
		return fmt.Errorf("a pull request number is required")
	}
	return nil
}

// MakePullRequest opens a pull request from <user>:<local> to <owner>:<remote>
func MakePullRequest(ctx *runtime.Context, opts MakePullRequestOptions) error {
	local, remote, err := splitBranchPair(ctx, opts.Branch)
	if err != nil {
		return err
	}
	user := opts.user(ctx)
	head := local
	if user != "" {
		head = user + ":" + local
	}

	client, err := ctx.Hub(ctx.Context, opts.User)
	if err != nil {
		return err
	}
	pr, err := client.Create(ctx.Context, opts.Owner, opts.Repo, hub.CreateOptions{
		Title:               opts.Title,
		Body:                opts.Body,
		Head:                head,
		Base:                remote,
		MaintainerCanModify: opts.MaintainerCanModify,
		Issue:               opts.Issue,
	})
	if err != nil {
		return err
	}

	ctx.Splog.Success("Pull request %d from %s to %s:%s has been created!", pr.Number, head, opts.Owner, remote)
	if pr.HTMLURL != "" {
		ctx.Splog.Info("%s", pr.HTMLURL)
	}
	return nil
}

// ShowPullRequest prints a pull request's fields or its diff
func ShowPullRequest(ctx *runtime.Context, opts ShowPullRequestOptions) error {
	if err := requireNumber(opts.Number); err != nil {
		return err
	}
	client, err := ctx.Anonymous(ctx.Context)
	if err != nil {
		return err
	}

	if opts.Patch {
		diff, err := client.GetDiff(ctx.Context, opts.Owner, opts.Repo, opts.Number)
		if err != nil {
			return err
		}
		ctx.Splog.Page(diff)
		return nil
	}

	pr, err := client.Get(ctx.Context, opts.Owner, opts.Repo, opts.Number)
	if err != nil {
		return err
	}
	printFields(ctx, pr.Meta())
	printFields(ctx, pr.Content())
	return nil
}

// CommentPullRequest posts a comment on a pull request
func CommentPullRequest(ctx *runtime.Context, opts CommentPullRequestOptions) error {
	if err := requireNumber(opts.Number); err != nil {
		return err
	}
	if strings.TrimSpace(opts.Content) == "" {
		return fmt.Errorf("comment content is empty")
	}
	client, err := ctx.Hub(ctx.Context, opts.User)
	if err != nil {
		return err
	}

	comment, err := client.Comment(ctx.Context, opts.Owner, opts.Repo, opts.Number, opts.Content)
	if err != nil {
		return err
	}
	printFields(ctx, []hub.Field{
		{Key: "comment", Value: comment.Body},
		{Key: "url", Value: comment.HTMLURL},
		{Key: "created_at", Value: comment.CreatedAt},
		{Key: "updated_at", Value: comment.UpdatedAt},
	})
	return nil
}

// UpdatePullRequest edits the title, body or maintainer permissions of a pull request
func UpdatePullRequest(ctx *runtime.Context, opts UpdatePullRequestOptions) error {
	if err := requireNumber(opts.Number); err != nil {
		return err
	}
	if opts.Title == nil && opts.Body == nil && opts.MaintainerCanModify == nil {
		return fmt.Errorf("nothing to update: pass --title, --body or --mcm")
	}
	client, err := ctx.Hub(ctx.Context, opts.User)
	if err != nil {
		return err
	}

	pr, err := client.Update(ctx.Context, opts.Owner, opts.Repo, opts.Number, hub.UpdateOptions{
		Title:               opts.Title,
		Body:                opts.Body,
		MaintainerCanModify: opts.MaintainerCanModify,
	})
	if err != nil {
		return err
	}
	printFields(ctx, pr.Content())
	return nil
}

// TogglePullRequest closes or reopens a pull request
func TogglePullRequest(ctx *runtime.Context, opts TogglePullRequestOptions) error {
	if err := requireNumber(opts.Number); err != nil {
		return err
	}
	client, err := ctx.Hub(ctx.Context, opts.User)
	if err != nil {
		return err
	}

	state := "closed"
	if opts.Open {
		state = "open"
	}
	pr, err := client.Update(ctx.Context, opts.Owner, opts.Repo, opts.Number, hub.UpdateOptions{State: &state})
	if err != nil {
		return err
	}
	printFields(ctx, pr.Meta())
	return nil
}

// MergePullRequest merges a pull request on the server
func MergePullRequest(ctx *runtime.Context, opts MergePullRequestOptions) error {
	if err := requireNumber(opts.Number); err != nil {
		return err
	}
	client, err := ctx.Hub(ctx.Context, opts.User)
	if err != nil {
		return err
	}

	result, err := client.Merge(ctx.Context, opts.Owner, opts.Repo, opts.Number, opts.Message)
	if err != nil {
		return err
	}
	if !result.Merged {
		ctx.Splog.Warn("%s", result.Message)
		return nil
	}
	ctx.Splog.Success("%s", result.Message)
	return nil
}

func printFields(ctx *runtime.Context, fields []hub.Field) {
	rows := make([]output.Row, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, output.Row{Key: f.Key, Value: f.Value})
	}
	ctx.Splog.Page(output.RenderRows(rows) + "\n")
}
