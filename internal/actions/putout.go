package actions

import (
	"errors"
	"fmt"

	broerrors "github.com/xuzuoyang/gitbro/internal/errors"
	"github.com/xuzuoyang/gitbro/internal/git"
	"github.com/xuzuoyang/gitbro/internal/runtime"
)

// PutoutOptions contains options for retiring a finished branch
type PutoutOptions struct {
	// Branch defaults to the current branch
	Branch string
	// KeepRemote leaves the branch on the origin remote
	KeepRemote bool
	// Force deletes the local branch even when it is not merged
	Force bool
}

// Putout checks out the main branch, rebases it upon the upstream main branch
// and deletes Branch locally and, unless KeepRemote, on the origin remote.
// The first failing step aborts the rest.
func Putout(ctx *runtime.Context, opts PutoutOptions) error {
	splog := ctx.Splog
	cfg := ctx.Config.Git

	repo, err := ctx.Repository()
	if err != nil {
		return err
	}

	branchName := opts.Branch
	if branchName == "" {
		current := repo.CurrentBranch()
		if err := git.RequireNamed(current); err != nil {
			return err
		}
		branchName = current.Name
	}
	if branchName == cfg.MainBranch {
		return fmt.Errorf("cannot put out the main branch %s", branchName)
	}
	if _, err := repo.ResolveBranch(branchName); err != nil {
		return err
	}

	if _, err := repo.Checkout(ctx.Context, cfg.MainBranch, git.CheckoutOptions{}); err != nil {
		return broerrors.NewStepError("putout", "checkout", err)
	}
	splog.Info("Checked out to branch %s.", cfg.MainBranch)

	if _, err := repo.Pull(ctx.Context, cfg.UpstreamRemote, cfg.MainBranch, true); err != nil {
		return broerrors.NewStepError("putout", "pull", err)
	}
	splog.Info("Synced from remote %s (rebased).", cfg.UpstreamRemote)

	result, err := repo.DeleteBranch(ctx.Context, branchName, git.DeleteOptions{
		Remote:        cfg.OriginRemote,
		Force:         opts.Force,
		IncludeRemote: !opts.KeepRemote,
	})
	if result.LocalDeleted {
		splog.Info("Deleted local branch %s.", branchName)
	}
	if err != nil {
		step := "delete local branch"
		var stepErr *broerrors.StepError
		if errors.As(err, &stepErr) {
			step, err = stepErr.Step, stepErr.Err
		}
		return broerrors.NewStepError("putout", step, err)
	}
	if result.RemoteDeleted {
		splog.Info("Deleted remote branch %s/%s.", cfg.OriginRemote, branchName)
	}
	return nil
}
