package cli

import (
	"github.com/spf13/cobra"

	"github.com/xuzuoyang/gitbro/internal/actions"
	"github.com/xuzuoyang/gitbro/internal/runtime"
)

// newPickupCmd creates the pickup command
func newPickupCmd() *cobra.Command {
	var since string

	cmd := &cobra.Command{
		Use:     "pickup <branch>",
		Aliases: []string{"pu"},
		Short:   "Start a new branch from a freshly fetched upstream branch",
		Long: `Start a new branch from a freshly fetched upstream branch.

The upstream branch (the main branch unless --since is given) is fetched from
the upstream remote and the new branch is created from it and checked out.
Local branches are not touched by the fetch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				return actions.Pickup(ctx, actions.PickupOptions{Branch: args[0], Since: since})
			})
		},
	}

	cmd.Flags().StringVarP(&since, "since", "s", "", "Upstream branch to start from (default: the main branch)")

	return cmd
}

// newPipelineCmd creates the pipeline command
func newPipelineCmd() *cobra.Command {
	var (
		through string
		merge   bool
	)

	cmd := &cobra.Command{
		Use:     "pipeline",
		Aliases: []string{"pl"},
		Short:   "Sync the current branch with an upstream branch",
		Long: `Sync the current branch with an upstream branch.

The current branch is rebased upon the upstream branch, or merged with it
when --merge is given. A conflicting sync is aborted and the working tree
left as it was.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				return actions.Pipeline(ctx, actions.PipelineOptions{Through: through, Merge: merge})
			})
		},
	}

	cmd.Flags().StringVarP(&through, "through", "t", "", "Upstream branch to sync from (default: the main branch)")
	cmd.Flags().BoolVarP(&merge, "merge", "m", false, "Merge instead of rebasing")

	return cmd
}

// newPutoutCmd creates the putout command
func newPutoutCmd() *cobra.Command {
	var (
		keepRemote bool
		force      bool
	)

	cmd := &cobra.Command{
		Use:     "putout [branch]",
		Aliases: []string{"po"},
		Short:   "Retire a finished branch",
		Long: `Retire a finished branch.

Checks out the main branch, rebases it upon the upstream main branch, deletes
the branch locally and deletes it on the origin remote unless --keep-remote
is given. The first failing step stops the rest; completed steps stay done.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				opts := actions.PutoutOptions{KeepRemote: keepRemote, Force: force}
				if len(args) > 0 {
					opts.Branch = args[0]
				}
				return actions.Putout(ctx, opts)
			})
		},
	}

	cmd.Flags().BoolVarP(&keepRemote, "keep-remote", "k", false, "Keep the branch on the origin remote")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete the local branch even if it is not merged")

	return cmd
}

// newMergeCmd creates the merge command
func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch with a merge commit",
		Long: `Merge a branch into the current branch with a merge commit.

Conflicts are never left in the working tree: a conflicting merge fails and
the current branch stays where it was.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				return actions.Merge(ctx, actions.MergeOptions{Branch: args[0]})
			})
		},
	}
}

// newStatusCmd creates the status command
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current branch and the configured remotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, actions.Status)
		},
	}
}
