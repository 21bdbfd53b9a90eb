package actions

import (
	"fmt"

	broerrors "github.com/xuzuoyang/gitbro/internal/errors"
	"github.com/xuzuoyang/gitbro/internal/git"
	"github.com/xuzuoyang/gitbro/internal/runtime"
)

// PickupOptions contains options for starting work on a branch
type PickupOptions struct {
	Branch string
	// Since is the upstream branch to start from; defaults to the main branch
	Since string
}

// Pickup fetches Since from the upstream remote and starts Branch from it
func Pickup(ctx *runtime.Context, opts PickupOptions) error {
	splog := ctx.Splog
	cfg := ctx.Config.Git

	if opts.Branch == "" {
		return fmt.Errorf("no branch specified")
	}
	since := opts.Since
	if since == "" {
		since = cfg.MainBranch
	}

	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	if _, err := repo.ResolveBranch(opts.Branch); err == nil {
		return broerrors.NewBranchAlreadyExistsError(opts.Branch)
	}

	remoteBranch := fmt.Sprintf("%s/%s", cfg.UpstreamRemote, since)
	if _, err := fetchWithProgress(ctx, repo, cfg.UpstreamRemote, since); err != nil {
		return broerrors.NewStepError("pickup", "fetch", err)
	}
	splog.Info("Fetched remote branch %s.", remoteBranch)

	branch, err := repo.Checkout(ctx.Context, opts.Branch, git.CheckoutOptions{Create: true, StartPoint: remoteBranch})
	if err != nil {
		return broerrors.NewStepError("pickup", "checkout", err)
	}
	splog.Info("Start branch %s from %s.", branch.Name, remoteBranch)
	splog.Success("You are in branch %s now.", branch.Name)
	return nil
}
