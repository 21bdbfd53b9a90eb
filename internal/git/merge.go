package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/valyala/fasttemplate"

	broerrors "github.com/xuzuoyang/gitbro/internal/errors"
)

// DefaultMergeMessage is the merge commit message template
const DefaultMergeMessage = "Merge branch '{{theirs}}' into {{ours}}\n\nMerged-by: gitbro"

const (
	mergeAuthorName  = "gitbro"
	mergeAuthorEmail = "gitbro@localhost"
)

// Exit statuses of git merge-tree --write-tree
const (
	mergeTreeConflict   = 1
	mergeTreeBadOptions = 129
)

// MergeBase returns the best common ancestor of two revisions
func (r *Repository) MergeBase(rev1, rev2 string) (string, error) {
	hash1, err := r.resolveCommitHash(rev1)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rev1, err)
	}
	hash2, err := r.resolveCommitHash(rev2)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rev2, err)
	}

	commit1, err := r.git.CommitObject(hash1)
	if err != nil {
		return "", fmt.Errorf("failed to get commit %s: %w", rev1, err)
	}
	commit2, err := r.git.CommitObject(hash2)
	if err != nil {
		return "", fmt.Errorf("failed to get commit %s: %w", rev2, err)
	}

	mergeBases, err := commit1.MergeBase(commit2)
	if err != nil {
		return "", fmt.Errorf("failed to find merge base: %w", err)
	}
	if len(mergeBases) == 0 {
		return "", fmt.Errorf("no merge base found between %s and %s", rev1, rev2)
	}
	return mergeBases[0].Hash.String(), nil
}

// Merge merges branchName into the current branch without a merge driver:
// the tree is computed by git merge-tree (git 2.38 or newer) and committed
// with both heads as parents. A conflict fails outright and leaves the
// current branch where it was. If branchName is already contained in the
// current branch, the current head is returned unchanged.
func (r *Repository) Merge(ctx context.Context, branchName string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ours := r.CurrentBranch()
	if err := RequireNamed(ours); err != nil {
		return "", err
	}
	theirs, err := r.ResolveBranch(branchName)
	if err != nil {
		return "", err
	}
	message := fmt.Sprintf("Failed to merge %s into %s", theirs.Name, ours.Name)
	if ours.Head == "" {
		return "", &broerrors.GitCommandError{Message: message + ": current branch has no commits"}
	}

	base, err := r.MergeBase(ours.Head, theirs.Head)
	if err != nil {
		return "", broerrors.WithMessage(err, message)
	}
	if base == theirs.Head {
		r.logger.Debug("already up to date", "branch", theirs.Name)
		return ours.Head, nil
	}

	out, err := r.mergeTree(ctx, base, ours.Head, theirs.Head)
	if err != nil {
		if exitCode(err) == mergeTreeConflict {
			return "", broerrors.WithMessage(err, message+": conflicts must be resolved manually")
		}
		return "", broerrors.WithMessage(err, message)
	}
	tree := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	if tree == "" {
		return "", &broerrors.GitCommandError{Message: message + ": merge-tree produced no tree"}
	}

	env := []string{
		"GIT_AUTHOR_NAME=" + mergeAuthorName,
		"GIT_AUTHOR_EMAIL=" + mergeAuthorEmail,
		"GIT_COMMITTER_NAME=" + mergeAuthorName,
		"GIT_COMMITTER_EMAIL=" + mergeAuthorEmail,
	}
	commit, err := r.runWithEnv(ctx, env,
		"commit-tree", tree,
		"-p", ours.Head,
		"-p", theirs.Head,
		"-m", r.renderMergeMessage(ours.Name, theirs.Name),
	)
	if err != nil {
		return "", broerrors.WithMessage(err, message)
	}

	// The new commit descends from ours, so this only moves the branch and
	// updates the working tree
	if _, err := r.run(ctx, "merge", "--ff-only", "--quiet", commit); err != nil {
		return "", broerrors.WithMessage(err, message)
	}

	r.logger.Debug("merged", "ours", ours.Name, "theirs", theirs.Name, "commit", commit, "base", base)
	return commit, nil
}

// mergeTree writes the merged tree of ours and theirs. Before git 2.40
// merge-tree has no --merge-base and finds the base itself.
func (r *Repository) mergeTree(ctx context.Context, base, ours, theirs string) (string, error) {
	out, err := r.run(ctx, "merge-tree", "--write-tree", "--merge-base="+base, ours, theirs)
	if err != nil && exitCode(err) == mergeTreeBadOptions {
		r.logger.Debug("merge-tree without --merge-base", "error", err)
		return r.run(ctx, "merge-tree", "--write-tree", ours, theirs)
	}
	return out, err
}

func exitCode(err error) int {
	var cmdErr *broerrors.GitCommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode()
	}
	return -1
}

func (r *Repository) renderMergeMessage(ours, theirs string) string {
	return fasttemplate.ExecuteStringStd(r.mergeMessage, "{{", "}}", map[string]interface{}{
		"ours":   ours,
		"theirs": theirs,
	})
}
