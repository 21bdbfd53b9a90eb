package git_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	broerrors "github.com/xuzuoyang/gitbro/internal/errors"
	"github.com/xuzuoyang/gitbro/internal/git"
	"github.com/xuzuoyang/gitbro/testhelpers"
)

func TestFetch(t *testing.T) {
	t.Run("fetches a single branch into the tracking namespace", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		localHead, err := scene.Repo.GetRevision("master")
		require.NoError(t, err)
		upstreamHead := scene.CommitToRemote("upstream", "master", "upstream work", "up")
		repo := openScene(t, scene)

		var events []git.ProgressEvent
		result, err := repo.Fetch(context.Background(), "upstream", "master", func(e git.ProgressEvent) {
			events = append(events, e)
		})
		require.NoError(t, err)
		require.Equal(t, git.ModeFetch, result.Mode)
		require.Equal(t, 1, result.Count())
		require.Equal(t, "refs/remotes/upstream/master", result.Updated[0].Name)
		require.Equal(t, upstreamHead, result.Updated[0].New)

		tracking, err := repo.ResolveCommit("upstream/master")
		require.NoError(t, err)
		require.Equal(t, upstreamHead, tracking)

		// Local branches are untouched
		master, err := repo.ResolveBranch("master")
		require.NoError(t, err)
		require.Equal(t, localHead, master.Head)

		require.NotEmpty(t, events)
		last := events[len(events)-1]
		require.Equal(t, "refs/remotes/upstream/master", last.Ref)
		require.Equal(t, upstreamHead, last.Commit)
		require.Equal(t, 100, last.Percent)
	})

	t.Run("wildcard fetches every branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		scene.CommitToRemote("upstream", "master", "m", "m")
		scene.CommitToRemote("upstream", "release", "r", "r")
		repo := openScene(t, scene)

		result, err := repo.Fetch(context.Background(), "upstream", "", nil)
		require.NoError(t, err)
		require.Equal(t, "*", result.Branch)

		var names []string
		for _, u := range result.Updated {
			names = append(names, u.Name)
		}
		require.Contains(t, names, "refs/remotes/upstream/master")
		require.Contains(t, names, "refs/remotes/upstream/release")

		local, err := repo.BranchNames()
		require.NoError(t, err)
		require.Equal(t, []string{"master"}, local)
	})

	t.Run("up to date is not an error", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		repo := openScene(t, scene)

		_, err := repo.Fetch(context.Background(), "upstream", "master", nil)
		require.NoError(t, err)

		result, err := repo.Fetch(context.Background(), "upstream", "master", nil)
		require.NoError(t, err)
		require.Zero(t, result.Count())
	})

	t.Run("unknown remote", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		repo := openScene(t, scene)

		_, err := repo.Fetch(context.Background(), "upstream", "master", nil)
		require.ErrorIs(t, err, broerrors.ErrRemoteNotFound)
	})

	t.Run("missing remote branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		repo := openScene(t, scene)

		_, err := repo.Fetch(context.Background(), "upstream", "no-such-branch", nil)
		require.ErrorIs(t, err, broerrors.ErrGitCommand)

		var cmdErr *broerrors.GitCommandError
		require.ErrorAs(t, err, &cmdErr)
		require.Equal(t, "Failed to fetch upstream/no-such-branch", cmdErr.Message)
		require.Contains(t, cmdErr.CommandLine(), "git fetch upstream")
	})
}

func TestPull(t *testing.T) {
	t.Run("rebase and merge are distinct invocations", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		runner := git.NewRecordingRunner(nil)
		repo := openScene(t, scene, git.WithRunner(runner))

		rebased, err := repo.Pull(context.Background(), "upstream", "master", true)
		require.NoError(t, err)
		require.Equal(t, git.ModeRebase, rebased.Mode)

		merged, err := repo.Pull(context.Background(), "upstream", "master", false)
		require.NoError(t, err)
		require.Equal(t, git.ModeMerge, merged.Mode)

		require.Equal(t, []string{
			"git pull --rebase upstream master",
			"git pull --no-rebase upstream master",
		}, runner.Commands())
	})

	t.Run("rebase keeps history linear", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		upstreamHead := scene.CommitToRemote("upstream", "master", "upstream work", "up")
		require.NoError(t, scene.Repo.CreateChangeAndCommit("local work", "local"))
		repo := openScene(t, scene)

		result, err := repo.Pull(context.Background(), "upstream", "master", true)
		require.NoError(t, err)
		require.Equal(t, 1, result.Count())

		parents, err := scene.Repo.GetParents("HEAD")
		require.NoError(t, err)
		require.Equal(t, []string{upstreamHead}, parents)
	})

	t.Run("merge records both parents", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		upstreamHead := scene.CommitToRemote("upstream", "master", "upstream work", "up")
		require.NoError(t, scene.Repo.CreateChangeAndCommit("local work", "local"))
		localHead, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		repo := openScene(t, scene)

		_, err = repo.Pull(context.Background(), "upstream", "master", false)
		require.NoError(t, err)

		parents, err := scene.Repo.GetParents("HEAD")
		require.NoError(t, err)
		require.ElementsMatch(t, []string{localHead, upstreamHead}, parents)
	})

	t.Run("conflicting rebase is aborted", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		scene.CommitToRemote("upstream", "master", "theirs", "1")
		require.NoError(t, scene.Repo.CreateChangeAndCommit("ours", "1"))
		localHead, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		repo := openScene(t, scene)

		_, err = repo.Pull(context.Background(), "upstream", "master", true)
		require.ErrorIs(t, err, broerrors.ErrGitCommand)

		var cmdErr *broerrors.GitCommandError
		require.ErrorAs(t, err, &cmdErr)
		require.Contains(t, cmdErr.Message, "Failed to rebase upon upstream/master")
		require.Equal(t, []string{"pull", "--rebase", "upstream", "master"}, cmdErr.Args)

		current := repo.CurrentBranch()
		require.Equal(t, "master", current.Name)
		require.Equal(t, localHead, current.Head)
		dirty, err := scene.Repo.HasUncommittedChanges()
		require.NoError(t, err)
		require.False(t, dirty)
	})

	t.Run("conflicting merge is aborted", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		scene.CommitToRemote("upstream", "master", "theirs", "1")
		require.NoError(t, scene.Repo.CreateChangeAndCommit("ours", "1"))
		localHead, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		repo := openScene(t, scene)

		_, err = repo.Pull(context.Background(), "upstream", "master", false)
		require.ErrorIs(t, err, broerrors.ErrGitCommand)

		var cmdErr *broerrors.GitCommandError
		require.ErrorAs(t, err, &cmdErr)
		require.Equal(t, "Failed to pull from upstream/master; the operation was aborted and the working tree restored", cmdErr.Message)
		require.Equal(t, []string{"pull", "--no-rebase", "upstream", "master"}, cmdErr.Args)

		current := repo.CurrentBranch()
		require.Equal(t, "master", current.Name)
		require.Equal(t, localHead, current.Head)
		dirty, err := scene.Repo.HasUncommittedChanges()
		require.NoError(t, err)
		require.False(t, dirty)
		require.NoFileExists(t, filepath.Join(scene.Dir, ".git", "MERGE_HEAD"))
	})

	t.Run("unknown remote", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		repo := openScene(t, scene)

		_, err := repo.Pull(context.Background(), "upstream", "master", true)
		require.ErrorIs(t, err, broerrors.ErrRemoteNotFound)
	})
}

func TestPush(t *testing.T) {
	t.Run("pushes and deletes", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature-x"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("feature", "f"))
		head, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		repo := openScene(t, scene)

		pushed, err := repo.Push(context.Background(), "origin", "feature-x", false)
		require.NoError(t, err)
		require.Equal(t, git.ModePush, pushed.Mode)
		require.Equal(t, head, testhelpers.RemoteBranchSHA(scene.Remotes["origin"], "feature-x"))

		deleted, err := repo.Push(context.Background(), "origin", "feature-x", true)
		require.NoError(t, err)
		require.Equal(t, git.ModeDelete, deleted.Mode)
		require.Empty(t, testhelpers.RemoteBranchSHA(scene.Remotes["origin"], "feature-x"))

		// The local branch survives a remote delete
		_, err = repo.ResolveBranch("feature-x")
		require.NoError(t, err)
	})

	t.Run("records the command line", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		runner := git.NewRecordingRunner(nil)
		repo := openScene(t, scene, git.WithRunner(runner))

		_, err := repo.Push(context.Background(), "origin", "feature-x", false)
		require.NoError(t, err)
		_, err = repo.Push(context.Background(), "origin", "feature-x", true)
		require.NoError(t, err)

		require.Equal(t, []string{
			"git push origin feature-x",
			"git push --delete origin feature-x",
		}, runner.Commands())
	})

	t.Run("branch name is required", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		repo := openScene(t, scene)

		_, err := repo.Push(context.Background(), "origin", "", true)
		require.ErrorIs(t, err, broerrors.ErrBranchNotFound)
	})

	t.Run("rejected push", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
		scene.CommitToRemote("origin", "master", "theirs", "x")
		require.NoError(t, scene.Repo.CreateChangeAndCommit("ours", "y"))
		repo := openScene(t, scene)

		_, err := repo.Push(context.Background(), "origin", "master", false)
		require.ErrorIs(t, err, broerrors.ErrGitCommand)

		var cmdErr *broerrors.GitCommandError
		require.ErrorAs(t, err, &cmdErr)
		require.Equal(t, "Failed to push to origin/master", cmdErr.Message)
	})
}
