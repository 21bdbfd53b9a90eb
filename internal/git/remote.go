package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	broerrors "github.com/xuzuoyang/gitbro/internal/errors"
)

// Pull fetches branch from remote and integrates it into the current branch.
// With rebase the local commits are replayed on top (linear history);
// otherwise a two-parent merge is made. A conflicting pull is aborted so the
// working tree is left as it was, and reported as a GitCommandError.
func (r *Repository) Pull(ctx context.Context, remote, branch string, rebase bool) (SyncResult, error) {
	mode := ModeMerge
	message := fmt.Sprintf("Failed to pull from %s/%s", remote, branch)
	if rebase {
		mode = ModeRebase
		message = fmt.Sprintf("Failed to rebase upon %s/%s", remote, branch)
	}
	result := SyncResult{Remote: remote, Branch: branch, Mode: mode}

	if branch == "" {
		return result, broerrors.NewBranchNotFoundError(branch)
	}
	if _, err := r.ResolveRemote(remote); err != nil {
		return result, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.CurrentBranch()
	args := []string{"pull"}
	if rebase {
		args = append(args, "--rebase")
	} else {
		args = append(args, "--no-rebase")
	}
	args = append(args, remote, branch)

	if _, err := r.run(ctx, args...); err != nil {
		if r.abortInProgress(ctx) {
			message += "; the operation was aborted and the working tree restored"
		}
		return result, broerrors.WithMessage(err, message)
	}

	after := r.CurrentBranch()
	if after.Head != current.Head {
		name := "HEAD"
		if !after.Detached() {
			name = "refs/heads/" + after.Name
		}
		result.Updated = []RefUpdate{{Name: name, Old: current.Head, New: after.Head}}
	}
	r.logger.Debug("pulled", "remote", remote, "branch", branch, "mode", mode.String())
	return result, nil
}

// Push pushes the local branch to remote. With delete the branch is removed
// on the remote instead; the branch name is required either way.
func (r *Repository) Push(ctx context.Context, remote, branch string, delete bool) (SyncResult, error) {
	mode := ModePush
	message := fmt.Sprintf("Failed to push to %s/%s", remote, branch)
	if delete {
		mode = ModeDelete
		message = fmt.Sprintf("Failed to delete %s/%s", remote, branch)
	}
	result := SyncResult{Remote: remote, Branch: branch, Mode: mode}

	if branch == "" {
		return result, broerrors.NewBranchNotFoundError(branch)
	}
	if _, err := r.ResolveRemote(remote); err != nil {
		return result, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	trackingName := fmt.Sprintf("refs/remotes/%s/%s", remote, branch)
	before, err := r.trackingRefs(remote)
	if err != nil {
		r.logger.Debug("reading tracking refs failed", "remote", remote, "error", err)
	}

	args := []string{"push"}
	if delete {
		args = append(args, "--delete")
	}
	args = append(args, remote, branch)

	if _, err := r.run(ctx, args...); err != nil {
		return result, broerrors.WithMessage(err, message)
	}

	after, err := r.trackingRefs(remote)
	if err != nil {
		r.logger.Debug("reading tracking refs failed", "remote", remote, "error", err)
	}
	if before[trackingName] != after[trackingName] {
		result.Updated = []RefUpdate{{Name: trackingName, Old: before[trackingName], New: after[trackingName]}}
	}
	r.logger.Debug("pushed", "remote", remote, "branch", branch, "delete", delete)
	return result, nil
}

// abortInProgress aborts a rebase or merge left behind by a failed pull and
// reports whether it did
func (r *Repository) abortInProgress(ctx context.Context) bool {
	gitDir, err := r.gitDir(ctx)
	if err != nil {
		return false
	}

	for _, dir := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(gitDir, dir)); err == nil {
			if _, err := r.run(ctx, "rebase", "--abort"); err != nil {
				r.logger.Debug("rebase abort failed", "error", err)
				return false
			}
			return true
		}
	}

	if _, err := os.Stat(filepath.Join(gitDir, "MERGE_HEAD")); err == nil {
		if _, err := r.run(ctx, "merge", "--abort"); err != nil {
			r.logger.Debug("merge abort failed", "error", err)
			return false
		}
		return true
	}
	return false
}

func (r *Repository) gitDir(ctx context.Context) (string, error) {
	dir, err := r.run(ctx, "rev-parse", "--git-dir")
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(r.path, dir)
	}
	return dir, nil
}
