// Package testhelpers provides testing utilities for bro, including a scene
// system, Git repository helpers, a mock GitHub server and custom assertions.
package testhelpers

import (
	"os/exec"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// ExpectBranches asserts that the repository has exactly the expected local branches
func ExpectBranches(t *testing.T, repo *GitRepo, expected ...string) {
	t.Helper()

	branches, err := repo.GetLocalBranches()
	require.NoError(t, err, "Failed to list branches")

	sort.Strings(branches)
	sort.Strings(expected)
	require.Equal(t, expected, branches, "Branches do not match")
}

// ExpectCurrentBranch asserts which branch is checked out
func ExpectCurrentBranch(t *testing.T, repo *GitRepo, expected string) {
	t.Helper()

	current, err := repo.CurrentBranchName()
	require.NoError(t, err, "Failed to read current branch")
	require.Equal(t, expected, current, "Current branch does not match")
}

// ExpectCommits asserts the newest commit subjects of branch, newest first
func ExpectCommits(t *testing.T, repo *GitRepo, branch string, expected ...string) {
	t.Helper()

	cmd := exec.Command("git", "-C", repo.Dir, "log", "--format=%s", "-n", "100", branch)
	cmd.Env = gitEnv()
	output, err := cmd.Output()
	require.NoError(t, err, "Failed to list commits")

	subjects := splitLines(string(output))
	if len(subjects) < len(expected) {
		require.Fail(t, "Not enough commits", "Expected %d commits, got %d", len(expected), len(subjects))
		return
	}
	require.Equal(t, expected, subjects[:len(expected)], "Commits do not match")
}

// ExpectRemoteBranch asserts whether branch exists in the bare repository at bareDir
func ExpectRemoteBranch(t *testing.T, bareDir, branch string, exists bool) {
	t.Helper()

	sha := RemoteBranchSHA(bareDir, branch)
	if exists {
		require.NotEmpty(t, sha, "Expected %s to exist in %s", branch, bareDir)
		return
	}
	require.Empty(t, sha, "Expected %s to be absent from %s", branch, bareDir)
}
