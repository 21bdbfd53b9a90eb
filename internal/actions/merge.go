package actions

import (
	"fmt"

	broerrors "github.com/xuzuoyang/gitbro/internal/errors"
	"github.com/xuzuoyang/gitbro/internal/runtime"
)

// MergeOptions contains options for merging a branch into the current one
type MergeOptions struct {
	Branch string
}

// Merge merges Branch into the current branch with a merge commit. Conflicts
// fail the merge and leave the current branch where it was.
func Merge(ctx *runtime.Context, opts MergeOptions) error {
	if opts.Branch == "" {
		return fmt.Errorf("no branch specified")
	}

	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	current := repo.CurrentBranch()

	commit, err := repo.Merge(ctx.Context, opts.Branch)
	if err != nil {
		return broerrors.NewStepError("merge", "merge", err)
	}
	if commit == current.Head {
		ctx.Splog.Info("Branch %s is already merged into %s.", opts.Branch, current.Name)
		return nil
	}
	ctx.Splog.Success("Merged branch %s into %s (%s).", opts.Branch, current.Name, shortSHA(commit))
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
