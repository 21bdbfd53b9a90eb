package git_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	broerrors "github.com/xuzuoyang/gitbro/internal/errors"
	"github.com/xuzuoyang/gitbro/internal/git"
	"github.com/xuzuoyang/gitbro/testhelpers"
)

func TestCreateBranch(t *testing.T) {
	t.Run("creates at HEAD", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		repo := openScene(t, scene)
		head := repo.CurrentBranch().Head

		created, err := repo.CreateBranch("feature-x", "")
		require.NoError(t, err)
		require.Equal(t, head, created.Head)

		resolved, err := repo.ResolveBranch("feature-x")
		require.NoError(t, err)
		require.Equal(t, head, resolved.Head)

		// Creating does not switch
		require.Equal(t, "master", repo.CurrentBranch().Name)
	})

	t.Run("second create fails", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		repo := openScene(t, scene)

		_, err := repo.CreateBranch("feature-x", "")
		require.NoError(t, err)

		_, err = repo.CreateBranch("feature-x", "")
		require.ErrorIs(t, err, broerrors.ErrBranchAlreadyExists)
		require.ErrorIs(t, err, broerrors.ErrGit)
	})

	t.Run("from a commit id", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		first, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.CreateChangeAndCommit("2", "2"))
		repo := openScene(t, scene)

		branch, err := repo.CreateBranch("old", first)
		require.NoError(t, err)
		require.Equal(t, first, branch.Head)
	})

	t.Run("from a remote-tracking ref", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		upstreamHead := scene.CommitToRemote("upstream", "master", "upstream work", "up")
		require.NoError(t, scene.Repo.RunGitCommand("fetch", "upstream"))
		repo := openScene(t, scene)

		branch, err := repo.CreateBranch("feature-x", "upstream/master")
		require.NoError(t, err)
		require.Equal(t, upstreamHead, branch.Head)
	})

	t.Run("unresolvable start point", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		repo := openScene(t, scene)

		_, err := repo.CreateBranch("feature-x", "upstream/nowhere")
		require.ErrorIs(t, err, broerrors.ErrBranchCreate)

		var createErr *broerrors.BranchCreateError
		require.ErrorAs(t, err, &createErr)
		require.Equal(t, "upstream/nowhere", createErr.StartPoint)

		_, err = repo.ResolveBranch("feature-x")
		require.ErrorIs(t, err, broerrors.ErrBranchNotFound)
	})

	t.Run("invalid name", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		repo := openScene(t, scene)

		for _, name := range []string{"", "bad..name", "trailing/", "with space"} {
			_, err := repo.CreateBranch(name, "")
			require.ErrorIs(t, err, broerrors.ErrBranchCreate, name)
		}
	})

	t.Run("no commits yet", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		repo := openScene(t, scene)

		_, err := repo.CreateBranch("feature-x", "")
		require.ErrorIs(t, err, broerrors.ErrBranchCreate)
	})
}

func TestCheckout(t *testing.T) {
	t.Run("switches to an existing branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			if err := testhelpers.BasicSceneSetup(s); err != nil {
				return err
			}
			return s.Repo.CreateBranch("feature-x")
		})
		repo := openScene(t, scene)

		branch, err := repo.Checkout(context.Background(), "feature-x", git.CheckoutOptions{})
		require.NoError(t, err)
		require.Equal(t, "feature-x", branch.Name)
		require.Equal(t, "feature-x", repo.CurrentBranch().Name)

		onDisk, err := scene.Repo.CurrentBranchName()
		require.NoError(t, err)
		require.Equal(t, "feature-x", onDisk)
	})

	t.Run("missing branch leaves HEAD alone", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		runner := git.NewRecordingRunner(nil)
		repo := openScene(t, scene, git.WithRunner(runner))
		before := repo.CurrentBranch()

		_, err := repo.Checkout(context.Background(), "nope", git.CheckoutOptions{})
		require.ErrorIs(t, err, broerrors.ErrBranchNotFound)

		require.Equal(t, before, repo.CurrentBranch())
		require.Empty(t, runner.Calls(), "no git command may run for a missing branch")
	})

	t.Run("creates and switches", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		repo := openScene(t, scene)
		head := repo.CurrentBranch().Head

		branch, err := repo.Checkout(context.Background(), "feature-x", git.CheckoutOptions{Create: true})
		require.NoError(t, err)
		require.Equal(t, head, branch.Head)
		require.Equal(t, "feature-x", repo.CurrentBranch().Name)
	})

	t.Run("create refuses an existing name", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		repo := openScene(t, scene)

		_, err := repo.Checkout(context.Background(), "master", git.CheckoutOptions{Create: true})
		require.ErrorIs(t, err, broerrors.ErrBranchAlreadyExists)
	})

	t.Run("blocked switch is reported and rolled back", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		base, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.CreateChangeAndCommit("tracked v2", "1"))

		// Uncommitted edit to a file that differs at the start point
		require.NoError(t, os.WriteFile(filepath.Join(scene.Dir, "1_test.txt"), []byte("local edit"), 0600))
		repo := openScene(t, scene)

		_, err = repo.Checkout(context.Background(), "feature-x", git.CheckoutOptions{Create: true, StartPoint: base})
		require.ErrorIs(t, err, broerrors.ErrGitCommand)

		var cmdErr *broerrors.GitCommandError
		require.ErrorAs(t, err, &cmdErr)
		require.Contains(t, cmdErr.CommandLine(), "git checkout feature-x")

		require.Equal(t, "master", repo.CurrentBranch().Name)
		_, err = repo.ResolveBranch("feature-x")
		require.ErrorIs(t, err, broerrors.ErrBranchNotFound)
	})
}

func TestDeleteBranch(t *testing.T) {
	t.Run("create delete lookup round trip", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		repo := openScene(t, scene)

		_, err := repo.CreateBranch("feature-x", "")
		require.NoError(t, err)

		result, err := repo.DeleteBranch(context.Background(), "feature-x", git.DeleteOptions{})
		require.NoError(t, err)
		require.True(t, result.LocalDeleted)
		require.False(t, result.RemoteAttempted)

		_, err = repo.ResolveBranch("feature-x")
		require.ErrorIs(t, err, broerrors.ErrBranchNotFound)
	})

	t.Run("missing branch fails fast", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		runner := git.NewRecordingRunner(nil)
		repo := openScene(t, scene, git.WithRunner(runner))

		result, err := repo.DeleteBranch(context.Background(), "nope", git.DeleteOptions{Remote: "origin", IncludeRemote: true})
		require.ErrorIs(t, err, broerrors.ErrBranchNotFound)
		require.False(t, result.LocalDeleted)
		require.Empty(t, runner.Calls())
	})

	t.Run("unmerged branch needs force", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			if err := testhelpers.BasicSceneSetup(s); err != nil {
				return err
			}
			if err := s.Repo.CreateAndCheckoutBranch("feature-x"); err != nil {
				return err
			}
			if err := s.Repo.CreateChangeAndCommit("unmerged", "f"); err != nil {
				return err
			}
			return s.Repo.CheckoutBranch("master")
		})
		repo := openScene(t, scene)

		_, err := repo.DeleteBranch(context.Background(), "feature-x", git.DeleteOptions{})
		require.ErrorIs(t, err, broerrors.ErrGitCommand)
		_, err = repo.ResolveBranch("feature-x")
		require.NoError(t, err)

		result, err := repo.DeleteBranch(context.Background(), "feature-x", git.DeleteOptions{Force: true})
		require.NoError(t, err)
		require.True(t, result.LocalDeleted)
	})

	t.Run("checked out branch cannot be deleted", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		repo := openScene(t, scene)

		_, err := repo.DeleteBranch(context.Background(), "master", git.DeleteOptions{Force: true})
		require.ErrorIs(t, err, broerrors.ErrGitCommand)
	})

	t.Run("deletes the remote half too", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		require.NoError(t, scene.Repo.CreateBranch("feature-x"))
		require.NoError(t, scene.Repo.PushBranch("origin", "feature-x"))
		require.NotEmpty(t, testhelpers.RemoteBranchSHA(scene.Remotes["origin"], "feature-x"))
		repo := openScene(t, scene)

		result, err := repo.DeleteBranch(context.Background(), "feature-x", git.DeleteOptions{Remote: "origin", IncludeRemote: true})
		require.NoError(t, err)
		require.True(t, result.LocalDeleted)
		require.True(t, result.RemoteAttempted)
		require.True(t, result.RemoteDeleted)
		require.Empty(t, testhelpers.RemoteBranchSHA(scene.Remotes["origin"], "feature-x"))
	})

	t.Run("remote flag without remote name stays local", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		require.NoError(t, scene.Repo.CreateBranch("feature-x"))
		require.NoError(t, scene.Repo.PushBranch("origin", "feature-x"))
		repo := openScene(t, scene)

		result, err := repo.DeleteBranch(context.Background(), "feature-x", git.DeleteOptions{IncludeRemote: true})
		require.NoError(t, err)
		require.False(t, result.RemoteAttempted)
		require.NotEmpty(t, testhelpers.RemoteBranchSHA(scene.Remotes["origin"], "feature-x"))
	})

	t.Run("remote failure is reported separately", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		require.NoError(t, scene.Repo.CreateBranch("feature-x"))
		repo := openScene(t, scene)

		// feature-x was never pushed, so the remote delete fails
		result, err := repo.DeleteBranch(context.Background(), "feature-x", git.DeleteOptions{Remote: "origin", IncludeRemote: true})
		require.Error(t, err)
		require.True(t, result.LocalDeleted)
		require.True(t, result.RemoteAttempted)
		require.False(t, result.RemoteDeleted)

		var stepErr *broerrors.StepError
		require.ErrorAs(t, err, &stepErr)
		require.Equal(t, "delete remote branch", stepErr.Step)
		require.ErrorIs(t, err, broerrors.ErrGitCommand)

		_, err = repo.ResolveBranch("feature-x")
		require.ErrorIs(t, err, broerrors.ErrBranchNotFound)
	})
}
