package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xuzuoyang/gitbro/internal/cli"
	broerrors "github.com/xuzuoyang/gitbro/internal/errors"
	"github.com/xuzuoyang/gitbro/testhelpers"
)

// isolate points the config and log file at a temporary directory
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	t.Setenv("BRO_CONFIG", configPath)
	t.Setenv("BRO_LOG_FILE", filepath.Join(dir, "logs", "bro.log"))
	t.Setenv("DEBUG", "")
	return configPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd("test", "none", "today")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestPickupAndPutout(t *testing.T) {
	isolate(t)
	scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)

	out, err := execute(t, "pu", "feature-x", "-p", scene.Dir)
	require.NoError(t, err)
	require.Contains(t, out, "You are in branch feature-x now.")

	testhelpers.ExpectCurrentBranch(t, scene.Repo, "feature-x")

	require.NoError(t, scene.Repo.PushBranch("origin", "feature-x"))

	out, err = execute(t, "putout", "feature-x", "--keep-remote", "--path", scene.Dir)
	require.NoError(t, err)
	require.Contains(t, out, "Deleted local branch feature-x.")
	require.NotContains(t, out, "Deleted remote branch")
	testhelpers.ExpectRemoteBranch(t, scene.Remotes["origin"], "feature-x", true)
	testhelpers.ExpectBranches(t, scene.Repo, "master")
}

func TestPipeline(t *testing.T) {
	isolate(t)
	scene := testhelpers.NewScene(t, testhelpers.UpstreamSceneSetup)
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature-x"))
	scene.CommitToRemote("upstream", "master", "2", "upstream")

	out, err := execute(t, "pl", "-m", "-p", scene.Dir)
	require.NoError(t, err)
	require.Contains(t, out, "Synced from upstream/master (merged).")
}

func TestErrors(t *testing.T) {
	isolate(t)

	t.Run("not a repository", func(t *testing.T) {
		_, err := execute(t, "status", "-p", t.TempDir())
		require.ErrorIs(t, err, broerrors.ErrInvalidRepository)
	})

	t.Run("missing argument", func(t *testing.T) {
		_, err := execute(t, "pickup")
		require.Error(t, err)
	})

	t.Run("merge conflict is described with the command", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature-x"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("theirs", "same"))
		require.NoError(t, scene.Repo.CheckoutBranch("master"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("ours", "same"))

		_, err := execute(t, "merge", "feature-x", "-p", scene.Dir)
		require.ErrorIs(t, err, broerrors.ErrGitCommand)
		described := broerrors.Describe(err)
		require.Contains(t, described, `merge: step "merge" failed: `)
		require.Contains(t, described, "conflicts must be resolved manually")
		require.Contains(t, described, "Command: git merge-tree")
	})
}

func TestConfig(t *testing.T) {
	configPath := isolate(t)

	out, err := execute(t, "config")
	require.NoError(t, err)
	require.Contains(t, out, configPath)
	require.Contains(t, out, "git.main_branch")
	require.FileExists(t, configPath)

	_, err = execute(t, "config", "set", "git.main_branch", "main")
	require.NoError(t, err)
	_, err = execute(t, "config", "set", "github.access_token", "ghp_abcdef1234")
	require.NoError(t, err)

	out, err = execute(t, "config", "get", "git.main_branch")
	require.NoError(t, err)
	require.Equal(t, "main\n", out)

	out, err = execute(t, "config")
	require.NoError(t, err)
	require.Contains(t, out, "1234")
	require.NotContains(t, out, "ghp_abcdef1234")

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = execute(t, "config", "set", "github.timeout", "soon")
	require.Error(t, err)
	_, err = execute(t, "config", "get", "nope")
	require.ErrorContains(t, err, "unknown config key")
}

func TestPullRequest(t *testing.T) {
	isolate(t)
	mock := testhelpers.NewMockGitHubServerConfig()
	server := testhelpers.NewMockGitHubServer(t, mock)
	data := testhelpers.DefaultPRData()
	mock.AddPR(data)
	mock.Diffs[data.Number] = "diff --git a/f b/f\n"

	_, err := execute(t, "config", "set", "github.api_url", server.URL)
	require.NoError(t, err)

	out, err := execute(t, "pr", "show", "owner", "repo", "-n", "123", "--patch")
	require.NoError(t, err)
	require.Equal(t, "diff --git a/f b/f\n", out)

	out, err = execute(t, "pull-request", "show", "owner", "repo", "--num", "123")
	require.NoError(t, err)
	require.Contains(t, out, data.Title)

	_, err = execute(t, "pr", "show", "owner", "repo")
	require.ErrorContains(t, err, "num")

	_, err = execute(t, "pr", "make", "owner", "repo", "-b", "topic")
	require.ErrorContains(t, err, "--title is required")

	// No token and no terminal to ask for a password
	_, err = execute(t, "pr", "merge", "owner", "repo", "-n", "123", "-u", "someone")
	require.ErrorContains(t, err, "no terminal")

	_, err = execute(t, "config", "set", "github.access_token", "tkn")
	require.NoError(t, err)
	out, err = execute(t, "pr", "toggle", "owner", "repo", "-n", "123")
	require.NoError(t, err)
	require.Contains(t, out, "closed")
	require.Equal(t, "Bearer tkn", mock.LastRequest().Authorization)
}
