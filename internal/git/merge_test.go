package git_test

import (
	"context"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	broerrors "github.com/xuzuoyang/gitbro/internal/errors"
	"github.com/xuzuoyang/gitbro/internal/git"
	"github.com/xuzuoyang/gitbro/testhelpers"
)

// divergedScene has master and feature-x each one commit past the initial commit
func divergedScene(t *testing.T, masterFile, featureFile string) *testhelpers.Scene {
	t.Helper()
	return testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
		if err := testhelpers.BasicSceneSetup(s); err != nil {
			return err
		}
		if err := s.Repo.CreateAndCheckoutBranch("feature-x"); err != nil {
			return err
		}
		if err := s.Repo.CreateChangeAndCommit("feature work", featureFile); err != nil {
			return err
		}
		if err := s.Repo.CheckoutBranch("master"); err != nil {
			return err
		}
		return s.Repo.CreateChangeAndCommit("master work", masterFile)
	})
}

func TestMerge(t *testing.T) {
	t.Run("creates a two-parent commit", func(t *testing.T) {
		scene := divergedScene(t, "m", "f")
		ours, err := scene.Repo.GetRevision("master")
		require.NoError(t, err)
		theirs, err := scene.Repo.GetRevision("feature-x")
		require.NoError(t, err)
		repo := openScene(t, scene)

		commit, err := repo.Merge(context.Background(), "feature-x")
		require.NoError(t, err)

		head, err := scene.Repo.GetRevision("master")
		require.NoError(t, err)
		require.Equal(t, commit, head)

		parents, err := scene.Repo.GetParents(commit)
		require.NoError(t, err)
		require.Equal(t, []string{ours, theirs}, parents)

		messages, err := scene.Repo.ListCurrentBranchCommitMessages()
		require.NoError(t, err)
		require.Equal(t, "Merge branch 'feature-x' into master", messages[0])

		// Working tree follows the merged tree
		dirty, err := scene.Repo.HasUncommittedChanges()
		require.NoError(t, err)
		require.False(t, dirty)
		require.FileExists(t, scene.Dir+"/f_test.txt")
	})

	t.Run("custom message template", func(t *testing.T) {
		scene := divergedScene(t, "m", "f")
		repo := openScene(t, scene, git.WithMergeMessage("{{ours}} <- {{theirs}}"))

		_, err := repo.Merge(context.Background(), "feature-x")
		require.NoError(t, err)

		messages, err := scene.Repo.ListCurrentBranchCommitMessages()
		require.NoError(t, err)
		require.Equal(t, "master <- feature-x", messages[0])
	})

	t.Run("fast-forwardable branch still gets a merge commit", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			if err := testhelpers.BasicSceneSetup(s); err != nil {
				return err
			}
			if err := s.Repo.CreateAndCheckoutBranch("feature-x"); err != nil {
				return err
			}
			if err := s.Repo.CreateChangeAndCommit("feature work", "f"); err != nil {
				return err
			}
			return s.Repo.CheckoutBranch("master")
		})
		ours, err := scene.Repo.GetRevision("master")
		require.NoError(t, err)
		theirs, err := scene.Repo.GetRevision("feature-x")
		require.NoError(t, err)
		repo := openScene(t, scene)

		commit, err := repo.Merge(context.Background(), "feature-x")
		require.NoError(t, err)
		require.NotEqual(t, theirs, commit)

		parents, err := scene.Repo.GetParents(commit)
		require.NoError(t, err)
		require.Equal(t, []string{ours, theirs}, parents)
	})

	t.Run("already merged is a no-op", func(t *testing.T) {
		scene := divergedScene(t, "m", "f")
		repo := openScene(t, scene)

		first, err := repo.Merge(context.Background(), "feature-x")
		require.NoError(t, err)

		second, err := repo.Merge(context.Background(), "feature-x")
		require.NoError(t, err)
		require.Equal(t, first, second)
	})

	t.Run("conflict leaves the branch untouched", func(t *testing.T) {
		scene := divergedScene(t, "same", "same")
		before, err := scene.Repo.GetRevision("master")
		require.NoError(t, err)
		repo := openScene(t, scene)

		_, err = repo.Merge(context.Background(), "feature-x")
		require.ErrorIs(t, err, broerrors.ErrGitCommand)

		var cmdErr *broerrors.GitCommandError
		require.ErrorAs(t, err, &cmdErr)
		require.Equal(t, "Failed to merge feature-x into master: conflicts must be resolved manually", cmdErr.Message)
		require.Equal(t, 1, cmdErr.ExitCode())
		require.Contains(t, cmdErr.Stdout, "CONFLICT")

		after, err := scene.Repo.GetRevision("master")
		require.NoError(t, err)
		require.Equal(t, before, after)
		dirty, err := scene.Repo.HasUncommittedChanges()
		require.NoError(t, err)
		require.False(t, dirty)
	})

	t.Run("unknown branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		repo := openScene(t, scene)

		_, err := repo.Merge(context.Background(), "feature-x")
		require.ErrorIs(t, err, broerrors.ErrBranchNotFound)
	})

	t.Run("detached head", func(t *testing.T) {
		scene := divergedScene(t, "m", "f")
		head, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.CheckoutDetached(head))
		repo := openScene(t, scene)

		_, err = repo.Merge(context.Background(), "feature-x")
		var notFound *broerrors.BranchNotFoundError
		require.ErrorAs(t, err, &notFound)
		require.True(t, notFound.Detached)
	})
}

// exitError returns a real process exit error with the given status
func exitError(t *testing.T, status int) error {
	t.Helper()
	err := exec.Command("sh", "-c", "exit "+strconv.Itoa(status)).Run()
	require.Error(t, err)
	return err
}

// failingMergeTree fails merge-tree invocations matched by fail with status
// and passes everything else to git
type failingMergeTree struct {
	next   git.Runner
	fail   func(args []string) bool
	status error
	calls  [][]string
}

func (r *failingMergeTree) Run(ctx context.Context, env []string, args ...string) (string, error) {
	if len(args) > 0 && args[0] == "merge-tree" {
		r.calls = append(r.calls, args)
		if r.fail(args) {
			return "", broerrors.NewGitCommandError("git", args, "", "error: usage", r.status)
		}
	}
	return r.next.Run(ctx, env, args...)
}

func hasMergeBase(args []string) bool {
	return slices.ContainsFunc(args, func(a string) bool { return strings.HasPrefix(a, "--merge-base=") })
}

func TestMergeTreeFailures(t *testing.T) {
	t.Run("falls back when --merge-base is not understood", func(t *testing.T) {
		scene := divergedScene(t, "m", "f")
		runner := &failingMergeTree{
			next:   git.NewCommandRunner(scene.Dir, nil),
			fail:   hasMergeBase,
			status: exitError(t, 129),
		}
		repo := openScene(t, scene, git.WithRunner(runner))

		commit, err := repo.Merge(context.Background(), "feature-x")
		require.NoError(t, err)
		require.Len(t, runner.calls, 2)
		require.False(t, hasMergeBase(runner.calls[1]))

		parents, err := scene.Repo.GetParents(commit)
		require.NoError(t, err)
		require.Len(t, parents, 2)
	})

	t.Run("other failures are not reported as conflicts", func(t *testing.T) {
		scene := divergedScene(t, "m", "f")
		before, err := scene.Repo.GetRevision("master")
		require.NoError(t, err)
		runner := &failingMergeTree{
			next:   git.NewCommandRunner(scene.Dir, nil),
			fail:   func([]string) bool { return true },
			status: exitError(t, 128),
		}
		repo := openScene(t, scene, git.WithRunner(runner))

		_, err = repo.Merge(context.Background(), "feature-x")
		var cmdErr *broerrors.GitCommandError
		require.ErrorAs(t, err, &cmdErr)
		require.Equal(t, "Failed to merge feature-x into master", cmdErr.Message)
		require.Equal(t, 128, cmdErr.ExitCode())
		require.Len(t, runner.calls, 1)

		after, err := scene.Repo.GetRevision("master")
		require.NoError(t, err)
		require.Equal(t, before, after)
	})
}

func TestMergeCommitterIdentity(t *testing.T) {
	scene := divergedScene(t, "m", "f")
	repo := openScene(t, scene)

	commit, err := repo.Merge(context.Background(), "feature-x")
	require.NoError(t, err)

	identity, err := scene.Repo.RunGitCommandAndGetOutput("log", "-1", "--format=%an <%ae>|%cn <%ce>", commit)
	require.NoError(t, err)
	require.Equal(t, "gitbro <gitbro@localhost>|gitbro <gitbro@localhost>", identity)
}

func TestMergeBase(t *testing.T) {
	scene := divergedScene(t, "m", "f")
	repo := openScene(t, scene)

	want, err := scene.Repo.RunGitCommandAndGetOutput("merge-base", "master", "feature-x")
	require.NoError(t, err)

	got, err := repo.MergeBase("master", "feature-x")
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = repo.MergeBase("master", "nope")
	require.Error(t, err)
}
