package testhelpers

import (
	"path/filepath"
	"testing"
)

// Scene represents a test scene with a temporary directory and Git repository.
type Scene struct {
	Dir  string
	Repo *GitRepo

	// Remotes maps remote names to the bare repositories backing them
	Remotes map[string]string

	t *testing.T
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a new test scene with a temporary directory and Git repository.
// Cleanup is handled by the testing package. Global git config is disabled
// for the whole test so commands run by the code under test see only the
// repository config.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	t.Setenv("GIT_CONFIG_GLOBAL", "/dev/null")
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")

	dir := filepath.Join(t.TempDir(), "repo")
	repo, err := NewGitRepo(dir)
	if err != nil {
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	scene := &Scene{
		Dir:     dir,
		Repo:    repo,
		Remotes: map[string]string{},
		t:       t,
	}

	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}
	return scene
}

// BasicSceneSetup is a setup function that creates a basic scene with a single commit.
func BasicSceneSetup(scene *Scene) error {
	return scene.Repo.CreateChangeAndCommit("1", "1")
}

// UpstreamSceneSetup creates an initial commit on master and two bare remotes,
// "upstream" and "origin", both holding master.
func UpstreamSceneSetup(scene *Scene) error {
	if err := BasicSceneSetup(scene); err != nil {
		return err
	}
	for _, name := range []string{"upstream", "origin"} {
		if err := scene.AddRemote(name); err != nil {
			return err
		}
		if err := scene.Repo.PushBranch(name, DefaultBranch); err != nil {
			return err
		}
	}
	return nil
}

// AddRemote creates a bare repository and registers it as remote name.
func (s *Scene) AddRemote(name string) error {
	bareDir, err := s.Repo.CreateBareRemote(name)
	if err != nil {
		return err
	}
	s.Remotes[name] = bareDir
	return nil
}

// CommitToRemote clones the named remote, commits textValue on branch and
// pushes it back, simulating work done by someone else. Returns the new SHA.
func (s *Scene) CommitToRemote(remote, branch, textValue, prefix string) string {
	s.t.Helper()

	bareDir, ok := s.Remotes[remote]
	if !ok {
		s.t.Fatalf("unknown remote %s", remote)
	}

	other, err := CloneGitRepo(bareDir, filepath.Join(s.t.TempDir(), "other"))
	if err != nil {
		s.t.Fatalf("clone %s: %v", remote, err)
	}
	if err := other.RunGitCommand("checkout", branch); err != nil {
		if err := other.CreateAndCheckoutBranch(branch); err != nil {
			s.t.Fatalf("checkout %s: %v", branch, err)
		}
	}
	if err := other.CreateChangeAndCommit(textValue, prefix); err != nil {
		s.t.Fatalf("commit: %v", err)
	}
	if err := other.PushBranch("origin", branch); err != nil {
		s.t.Fatalf("push: %v", err)
	}

	sha, err := other.GetRevision("HEAD")
	if err != nil {
		s.t.Fatalf("rev-parse: %v", err)
	}
	return sha
}
