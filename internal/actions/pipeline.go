package actions

import (
	broerrors "github.com/xuzuoyang/gitbro/internal/errors"
	"github.com/xuzuoyang/gitbro/internal/git"
	"github.com/xuzuoyang/gitbro/internal/runtime"
)

// PipelineOptions contains options for syncing the current branch
type PipelineOptions struct {
	// Through is the upstream branch to sync from; defaults to the main branch
	Through string
	// Merge records a merge commit instead of rebasing
	Merge bool
}

// Pipeline pulls Through from the upstream remote into the current branch
func Pipeline(ctx *runtime.Context, opts PipelineOptions) error {
	cfg := ctx.Config.Git
	through := opts.Through
	if through == "" {
		through = cfg.MainBranch
	}

	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	if err := git.RequireNamed(repo.CurrentBranch()); err != nil {
		return err
	}

	result, err := repo.Pull(ctx.Context, cfg.UpstreamRemote, through, !opts.Merge)
	if err != nil {
		return broerrors.NewStepError("pipeline", "pull", err)
	}

	how := "rebased"
	if opts.Merge {
		how = "merged"
	}
	ctx.Splog.Success("Synced from %s/%s (%s).", result.Remote, result.Branch, how)
	return nil
}
