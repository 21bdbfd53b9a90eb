package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	broerrors "github.com/xuzuoyang/gitbro/internal/errors"
)

// Repository is an opened git working tree. Branches and remotes are read
// from disk on every call; nothing is cached between operations.
//
// A Repository is owned by one invocation. Mutating operations are
// serialised by an internal mutex but are not meant to overlap.
type Repository struct {
	git    *gogit.Repository
	path   string
	runner Runner
	logger *slog.Logger

	timeout      time.Duration
	mergeMessage string

	mu sync.Mutex
}

// Option configures a Repository at Open time
type Option func(*Repository)

// WithRunner replaces the git command runner
func WithRunner(runner Runner) Option {
	return func(r *Repository) {
		r.runner = runner
	}
}

// WithLogger sets the logger used for debug records
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithCommandTimeout bounds every git operation that has no deadline of its
// own. Zero leaves operations unbounded.
func WithCommandTimeout(timeout time.Duration) Option {
	return func(r *Repository) {
		r.timeout = timeout
	}
}

// WithMergeMessage sets the template used for merge commit messages.
// {{ours}} and {{theirs}} are replaced with the branch names.
func WithMergeMessage(template string) Option {
	return func(r *Repository) {
		if template != "" {
			r.mergeMessage = template
		}
	}
}

// Open opens the git working tree containing path. An empty path means the
// current directory. Any failure is reported as an InvalidRepositoryError
// carrying the absolute path.
func Open(path string, opts ...Option) (*Repository, error) {
	if path == "" {
		path = "."
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, broerrors.NewInvalidRepositoryError(path, fmt.Errorf("failed to resolve path: %w", err))
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, broerrors.NewInvalidRepositoryError(absPath, err)
	}

	// Bare repositories have no working tree to switch branches in
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, broerrors.NewInvalidRepositoryError(absPath, err)
	}

	r := &Repository{
		git:          repo,
		path:         worktree.Filesystem.Root(),
		logger:       discardLogger(),
		timeout:      DefaultCommandTimeout,
		mergeMessage: DefaultMergeMessage,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runner == nil {
		r.runner = NewCommandRunner(r.path, r.logger)
	}

	r.logger.Debug("opened repository", "path", r.path)
	return r, nil
}

// Path returns the absolute path of the working tree root
func (r *Repository) Path() string {
	return r.path
}

// ResolveBranch looks up a local branch by exact name
func (r *Repository) ResolveBranch(name string) (Branch, error) {
	if name == "" {
		return Branch{}, broerrors.NewBranchNotFoundError(name)
	}

	ref, err := r.git.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Branch{}, broerrors.NewBranchNotFoundError(name)
		}
		return Branch{}, broerrors.WithMessage(err, fmt.Sprintf("Failed to resolve branch %s", name))
	}

	branch := Branch{Name: name, Head: ref.Hash().String()}
	r.fillTracking(&branch)
	return branch, nil
}

// ResolveRemote looks up a configured remote by exact name
func (r *Repository) ResolveRemote(name string) (Remote, error) {
	if name == "" {
		return Remote{}, broerrors.NewRemoteNotFoundError(name)
	}

	remote, err := r.git.Remote(name)
	if err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			return Remote{}, broerrors.NewRemoteNotFoundError(name)
		}
		return Remote{}, broerrors.WithMessage(err, fmt.Sprintf("Failed to resolve remote %s", name))
	}

	cfg := remote.Config()
	return Remote{Name: cfg.Name, URLs: append([]string(nil), cfg.URLs...)}, nil
}

// CurrentBranch returns the branch checked out in the working tree. It never
// fails: a detached HEAD is returned as a Branch with no name, and an
// unreadable HEAD as the zero Branch.
func (r *Repository) CurrentBranch() Branch {
	head, err := r.git.Reference(plumbing.HEAD, false)
	if err != nil {
		r.logger.Debug("failed to read HEAD", "error", err)
		return Branch{}
	}

	if head.Type() == plumbing.SymbolicReference {
		target := head.Target()
		if !target.IsBranch() {
			return Branch{}
		}
		branch := Branch{Name: target.Short()}
		// An unborn branch has no commit yet
		if ref, err := r.git.Reference(target, true); err == nil {
			branch.Head = ref.Hash().String()
		}
		r.fillTracking(&branch)
		return branch
	}

	return Branch{Head: head.Hash().String()}
}

// RequireNamed returns an error when branch is a detached HEAD
func RequireNamed(branch Branch) error {
	if branch.Detached() {
		return broerrors.NewDetachedHeadError()
	}
	return nil
}

// BranchNames returns all local branch names, sorted
func (r *Repository) BranchNames() ([]string, error) {
	branches, err := r.git.Branches()
	if err != nil {
		return nil, broerrors.WithMessage(err, "Failed to list branches")
	}
	defer branches.Close()

	var names []string
	err = branches.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsBranch() {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, broerrors.WithMessage(err, "Failed to list branches")
	}

	sort.Strings(names)
	return names, nil
}

// RemoteNames returns all configured remote names, sorted
func (r *Repository) RemoteNames() ([]string, error) {
	remotes, err := r.git.Remotes()
	if err != nil {
		return nil, broerrors.WithMessage(err, "Failed to list remotes")
	}

	names := make([]string, 0, len(remotes))
	for _, remote := range remotes {
		names = append(names, remote.Config().Name)
	}
	sort.Strings(names)
	return names, nil
}

// ResolveCommit resolves a revision (branch, remote-tracking ref, tag or
// commit id) to a commit id
func (r *Repository) ResolveCommit(rev string) (string, error) {
	hash, err := r.resolveCommitHash(rev)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

func (r *Repository) resolveCommitHash(rev string) (plumbing.Hash, error) {
	if strings.TrimSpace(rev) == "" {
		return plumbing.ZeroHash, fmt.Errorf("empty revision")
	}

	hash, err := r.git.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to resolve %s: %w", rev, err)
	}

	if _, err := r.git.CommitObject(*hash); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%s does not point to a commit: %w", rev, err)
	}
	return *hash, nil
}

func (r *Repository) fillTracking(branch *Branch) {
	cfg, err := r.git.Config()
	if err != nil {
		return
	}
	if b, ok := cfg.Branches[branch.Name]; ok {
		branch.TrackingRemote = b.Remote
		branch.TrackingMerge = b.Merge.Short()
	}
}

// run executes a git command in the working tree
func (r *Repository) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.runner.Run(ctx, nil, args...)
}

// runWithEnv executes a git command with extra environment variables
func (r *Repository) runWithEnv(ctx context.Context, env []string, args ...string) (string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.runner.Run(ctx, env, args...)
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok || r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}
