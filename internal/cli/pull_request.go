package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xuzuoyang/gitbro/internal/actions"
	"github.com/xuzuoyang/gitbro/internal/runtime"
)

const ownerRepoArgs = "<owner> <repo>"

// newPullRequestCmd creates the pull-request command group
func newPullRequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pull-request",
		Aliases: []string{"pr"},
		Short:   "Manage pull requests of a GitHub repository",
		Long: `Manage pull requests of a GitHub repository.

Every subcommand takes the owner and name of the repository holding the pull
requests. Mutating subcommands authenticate with github.access_token from the
config, or as --user with a password asked on the terminal.`,
	}

	cmd.AddCommand(newPRMakeCmd())
	cmd.AddCommand(newPRShowCmd())
	cmd.AddCommand(newPRCommentCmd())
	cmd.AddCommand(newPRUpdateCmd())
	cmd.AddCommand(newPRToggleCmd())
	cmd.AddCommand(newPRMergeCmd())

	return cmd
}

func targetFromArgs(args []string, user string) actions.PullRequestTarget {
	return actions.PullRequestTarget{Owner: args[0], Repo: args[1], User: user}
}

func addUserFlag(cmd *cobra.Command, user *string) {
	cmd.Flags().StringVarP(user, "user", "u", "", "GitHub user to authenticate as (default: github.username)")
}

func addNumberFlag(cmd *cobra.Command, number *int) {
	cmd.Flags().IntVarP(number, "num", "n", 0, "Number of the pull request")
	_ = cmd.MarkFlagRequired("num")
}

// newPRMakeCmd creates the pull-request make command
func newPRMakeCmd() *cobra.Command {
	var (
		user string
		opts actions.MakePullRequestOptions
	)

	cmd := &cobra.Command{
		Use:   "make " + ownerRepoArgs,
		Short: "Open a pull request",
		Long: `Open a pull request from <user>:<local> to <owner>:<remote>.

--branch takes "<local>:<remote>"; the local branch defaults to the current
branch and the remote branch to the main branch. With --issue the pull
request is made from an existing issue.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Title == "" && opts.Issue == 0 {
				return fmt.Errorf("--title is required unless --issue is given")
			}
			return run(cmd, func(ctx *runtime.Context) error {
				opts.PullRequestTarget = targetFromArgs(args, user)
				return actions.MakePullRequest(ctx, opts)
			})
		},
	}

	addUserFlag(cmd, &user)
	cmd.Flags().StringVarP(&opts.Branch, "branch", "b", "", "Branches as <local>:<remote>")
	cmd.Flags().StringVar(&opts.Title, "title", "", "Title of the pull request")
	cmd.Flags().StringVar(&opts.Body, "body", "", "Body of the pull request")
	cmd.Flags().BoolVar(&opts.MaintainerCanModify, "mcm", false, "Allow maintainers to modify the branch")
	cmd.Flags().IntVar(&opts.Issue, "issue", 0, "Issue to make the pull request from")

	return cmd
}

// newPRShowCmd creates the pull-request show command
func newPRShowCmd() *cobra.Command {
	var opts actions.ShowPullRequestOptions

	cmd := &cobra.Command{
		Use:   "show " + ownerRepoArgs,
		Short: "Show a pull request or its patch",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				opts.PullRequestTarget = targetFromArgs(args, "")
				return actions.ShowPullRequest(ctx, opts)
			})
		},
	}

	addNumberFlag(cmd, &opts.Number)
	cmd.Flags().BoolVar(&opts.Patch, "patch", false, "Show the patch instead of the fields")

	return cmd
}

// newPRCommentCmd creates the pull-request comment command
func newPRCommentCmd() *cobra.Command {
	var (
		user string
		opts actions.CommentPullRequestOptions
	)

	cmd := &cobra.Command{
		Use:   "comment " + ownerRepoArgs,
		Short: "Comment on a pull request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				opts.PullRequestTarget = targetFromArgs(args, user)
				return actions.CommentPullRequest(ctx, opts)
			})
		},
	}

	addNumberFlag(cmd, &opts.Number)
	addUserFlag(cmd, &user)
	cmd.Flags().StringVarP(&opts.Content, "content", "c", "", "Content of the comment")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}

// newPRUpdateCmd creates the pull-request update command
func newPRUpdateCmd() *cobra.Command {
	var (
		user   string
		number int
		title  string
		body   string
		mcm    bool
		noMCM  bool
	)

	cmd := &cobra.Command{
		Use:   "update " + ownerRepoArgs,
		Short: "Edit the title, body or maintainer permissions of a pull request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := actions.UpdatePullRequestOptions{Number: number}
			flags := cmd.Flags()
			if flags.Changed("title") {
				opts.Title = &title
			}
			if flags.Changed("body") {
				opts.Body = &body
			}
			if flags.Changed("mcm") {
				opts.MaintainerCanModify = &mcm
			}
			if flags.Changed("no-mcm") {
				allowed := !noMCM
				opts.MaintainerCanModify = &allowed
			}
			return run(cmd, func(ctx *runtime.Context) error {
				opts.PullRequestTarget = targetFromArgs(args, user)
				return actions.UpdatePullRequest(ctx, opts)
			})
		},
	}

	addNumberFlag(cmd, &number)
	addUserFlag(cmd, &user)
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&body, "body", "", "New body")
	cmd.Flags().BoolVar(&mcm, "mcm", false, "Allow maintainers to modify the branch")
	cmd.Flags().BoolVar(&noMCM, "no-mcm", false, "Disallow maintainers to modify the branch")
	cmd.MarkFlagsMutuallyExclusive("mcm", "no-mcm")

	return cmd
}

// newPRToggleCmd creates the pull-request toggle command
func newPRToggleCmd() *cobra.Command {
	var (
		user   string
		number int
		open   bool
		closed bool
	)

	cmd := &cobra.Command{
		Use:   "toggle " + ownerRepoArgs,
		Short: "Close or reopen a pull request",
		Long: `Close or reopen a pull request.

The pull request is closed unless --open is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				return actions.TogglePullRequest(ctx, actions.TogglePullRequestOptions{
					PullRequestTarget: targetFromArgs(args, user),
					Number:            number,
					Open:              open,
				})
			})
		},
	}

	addNumberFlag(cmd, &number)
	addUserFlag(cmd, &user)
	cmd.Flags().BoolVar(&open, "open", false, "Reopen the pull request")
	cmd.Flags().BoolVar(&closed, "close", false, "Close the pull request (default)")
	cmd.MarkFlagsMutuallyExclusive("open", "close")

	return cmd
}

// newPRMergeCmd creates the pull-request merge command
func newPRMergeCmd() *cobra.Command {
	var (
		user string
		opts actions.MergePullRequestOptions
	)

	cmd := &cobra.Command{
		Use:   "merge " + ownerRepoArgs,
		Short: "Merge a pull request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				opts.PullRequestTarget = targetFromArgs(args, user)
				return actions.MergePullRequest(ctx, opts)
			})
		},
	}

	addNumberFlag(cmd, &opts.Number)
	addUserFlag(cmd, &user)
	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "Merge commit message")

	return cmd
}
