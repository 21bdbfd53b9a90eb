package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"

	broerrors "github.com/xuzuoyang/gitbro/internal/errors"
)

// CheckoutOptions contains options for Checkout
type CheckoutOptions struct {
	// Create makes the branch first; it must not exist yet
	Create bool
	// StartPoint is where a created branch points; empty means HEAD
	StartPoint string
}

// DeleteOptions contains options for DeleteBranch
type DeleteOptions struct {
	// Remote is the remote to delete the branch on when IncludeRemote is set
	Remote string
	// Force deletes a branch even when it has unmerged commits
	Force bool
	// IncludeRemote also deletes the branch on Remote
	IncludeRemote bool
}

// DeleteResult reports the two halves of a branch deletion separately
type DeleteResult struct {
	Branch          string
	LocalDeleted    bool
	RemoteAttempted bool
	RemoteDeleted   bool
}

// CreateBranch creates a local branch at startPoint (a local ref,
// remote-tracking ref or commit id; empty means HEAD)
func (r *Repository) CreateBranch(name, startPoint string) (Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createBranchLocked(name, startPoint)
}

func (r *Repository) createBranchLocked(name, startPoint string) (Branch, error) {
	if _, err := r.ResolveBranch(name); err == nil {
		return Branch{}, broerrors.NewBranchAlreadyExistsError(name)
	} else if !errors.Is(err, broerrors.ErrBranchNotFound) {
		return Branch{}, err
	}

	refName := plumbing.NewBranchReferenceName(name)
	if err := refName.Validate(); err != nil {
		return Branch{}, broerrors.NewBranchCreateError(name, startPoint, err)
	}

	rev := startPoint
	if rev == "" {
		rev = "HEAD"
	}
	hash, err := r.resolveCommitHash(rev)
	if err != nil {
		return Branch{}, broerrors.NewBranchCreateError(name, startPoint, err)
	}

	if err := r.git.Storer.SetReference(plumbing.NewHashReference(refName, hash)); err != nil {
		return Branch{}, broerrors.WithMessage(err, fmt.Sprintf("Failed to create branch %s", name))
	}

	r.logger.Debug("created branch", "branch", name, "start", rev, "commit", hash.String())
	return r.ResolveBranch(name)
}

// Checkout switches the working tree to branch name, creating it first when
// opts.Create is set. A missing branch fails before the working tree is
// touched. If the switch itself fails, a branch created by this call is
// removed again.
func (r *Repository) Checkout(ctx context.Context, name string, opts CheckoutOptions) (Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if opts.Create {
		if _, err := r.createBranchLocked(name, opts.StartPoint); err != nil {
			return Branch{}, err
		}
		if err := r.switchTo(ctx, name); err != nil {
			refName := plumbing.NewBranchReferenceName(name)
			if rmErr := r.git.Storer.RemoveReference(refName); rmErr != nil {
				r.logger.Debug("failed to remove branch after failed checkout", "branch", name, "error", rmErr)
			}
			return Branch{}, err
		}
		return r.ResolveBranch(name)
	}

	if _, err := r.ResolveBranch(name); err != nil {
		return Branch{}, err
	}
	if err := r.switchTo(ctx, name); err != nil {
		return Branch{}, err
	}
	return r.ResolveBranch(name)
}

func (r *Repository) switchTo(ctx context.Context, name string) error {
	if _, err := r.run(ctx, "checkout", name, "--"); err != nil {
		return broerrors.WithMessage(err, fmt.Sprintf("Failed to switch to branch %s", name))
	}
	r.logger.Debug("switched branch", "branch", name)
	return nil
}

// DeleteBranch deletes the local branch and, when opts.IncludeRemote is set
// with a remote, the branch of the same name on that remote. The local half
// runs first; if it succeeds and the remote half fails, the returned result
// still reports LocalDeleted and the error is a StepError for the remote step
// so only that half needs retrying.
func (r *Repository) DeleteBranch(ctx context.Context, name string, opts DeleteOptions) (DeleteResult, error) {
	result := DeleteResult{Branch: name}

	if _, err := r.ResolveBranch(name); err != nil {
		return result, err
	}

	flag := "-d"
	if opts.Force {
		flag = "-D"
	}

	r.mu.Lock()
	_, err := r.run(ctx, "branch", flag, name)
	r.mu.Unlock()
	if err != nil {
		return result, broerrors.WithMessage(err, fmt.Sprintf("Failed to delete local branch %s", name))
	}
	result.LocalDeleted = true
	r.logger.Debug("deleted local branch", "branch", name)

	if !opts.IncludeRemote || opts.Remote == "" {
		return result, nil
	}

	result.RemoteAttempted = true
	if _, err := r.Push(ctx, opts.Remote, name, true); err != nil {
		return result, broerrors.NewStepError("delete", "delete remote branch", err)
	}
	result.RemoteDeleted = true
	return result, nil
}
