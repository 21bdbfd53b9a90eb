// Package errors provides sentinel errors and custom error types for bro.
// Every type reports errors.Is(err, ErrGit) so callers can catch broadly,
// and errors.Is against its own sentinel to catch specifically.
package errors

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Sentinel errors for each failure category
var (
	// ErrGit is the root of the taxonomy: a git operation failed
	ErrGit = errors.New("git operation failed")

	// ErrInvalidRepository indicates that a path is not a git working tree
	ErrInvalidRepository = errors.New("invalid git repository")

	// ErrBranchNotFound indicates that a local branch does not exist
	ErrBranchNotFound = errors.New("branch not found")

	// ErrBranchAlreadyExists indicates that a branch name is already taken
	ErrBranchAlreadyExists = errors.New("branch already exists")

	// ErrBranchCreate indicates that a branch could not be created at its start point
	ErrBranchCreate = errors.New("branch create failed")

	// ErrRemoteNotFound indicates that a remote is not configured
	ErrRemoteNotFound = errors.New("remote not found")

	// ErrGitCommand indicates that an invocation of the git tool failed
	ErrGitCommand = errors.New("git command failed")
)

// InvalidRepositoryError represents a path that is not under version control
type InvalidRepositoryError struct {
	Path string
	Err  error
}

func (e *InvalidRepositoryError) Error() string {
	return fmt.Sprintf("%s is not a valid git repository", e.Path)
}

// Is matches ErrInvalidRepository and ErrGit
func (e *InvalidRepositoryError) Is(target error) bool {
	return target == ErrInvalidRepository || target == ErrGit
}

func (e *InvalidRepositoryError) Unwrap() error {
	return e.Err
}

// NewInvalidRepositoryError creates a new InvalidRepositoryError
func NewInvalidRepositoryError(path string, err error) *InvalidRepositoryError {
	return &InvalidRepositoryError{Path: path, Err: err}
}

// BranchNotFoundError represents an error when a branch is not found.
// Detached is set when HEAD is detached and the operation needed a named branch.
type BranchNotFoundError struct {
	BranchName string
	Detached   bool
}

func (e *BranchNotFoundError) Error() string {
	if e.Detached {
		return "HEAD is detached; this operation requires a named branch"
	}
	return fmt.Sprintf("branch %s does not exist", e.BranchName)
}

// Is matches ErrBranchNotFound and ErrGit
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound || target == ErrGit
}

// NewBranchNotFoundError creates a new BranchNotFoundError
func NewBranchNotFoundError(branchName string) *BranchNotFoundError {
	return &BranchNotFoundError{BranchName: branchName}
}

// NewDetachedHeadError reports a detached HEAD where a named branch is required
func NewDetachedHeadError() *BranchNotFoundError {
	return &BranchNotFoundError{BranchName: "HEAD", Detached: true}
}

// BranchAlreadyExistsError represents a create request for a taken name
type BranchAlreadyExistsError struct {
	BranchName string
}

func (e *BranchAlreadyExistsError) Error() string {
	return fmt.Sprintf("branch %s already exists", e.BranchName)
}

// Is matches ErrBranchAlreadyExists and ErrGit
func (e *BranchAlreadyExistsError) Is(target error) bool {
	return target == ErrBranchAlreadyExists || target == ErrGit
}

// NewBranchAlreadyExistsError creates a new BranchAlreadyExistsError
func NewBranchAlreadyExistsError(branchName string) *BranchAlreadyExistsError {
	return &BranchAlreadyExistsError{BranchName: branchName}
}

// BranchCreateError represents a branch that could not be created,
// usually because its start point does not resolve to a commit
type BranchCreateError struct {
	BranchName string
	StartPoint string
	Err        error
}

func (e *BranchCreateError) Error() string {
	msg := fmt.Sprintf("failed to create branch %s", e.BranchName)
	if e.StartPoint != "" {
		msg += fmt.Sprintf(" from %s", e.StartPoint)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Is matches ErrBranchCreate and ErrGit
func (e *BranchCreateError) Is(target error) bool {
	return target == ErrBranchCreate || target == ErrGit
}

func (e *BranchCreateError) Unwrap() error {
	return e.Err
}

// NewBranchCreateError creates a new BranchCreateError
func NewBranchCreateError(branchName, startPoint string, err error) *BranchCreateError {
	return &BranchCreateError{BranchName: branchName, StartPoint: startPoint, Err: err}
}

// RemoteNotFoundError represents a reference to an unconfigured remote
type RemoteNotFoundError struct {
	RemoteName string
}

func (e *RemoteNotFoundError) Error() string {
	return fmt.Sprintf("remote %s does not exist", e.RemoteName)
}

// Is matches ErrRemoteNotFound and ErrGit
func (e *RemoteNotFoundError) Is(target error) bool {
	return target == ErrRemoteNotFound || target == ErrGit
}

// NewRemoteNotFoundError creates a new RemoteNotFoundError
func NewRemoteNotFoundError(remoteName string) *RemoteNotFoundError {
	return &RemoteNotFoundError{RemoteName: remoteName}
}

// GitCommandError represents an error from a git command execution.
// Message carries the contextual description ("Failed to fetch origin/main");
// Command and Args carry the invocation for diagnostics.
type GitCommandError struct {
	Message string
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "git command failed"
	}
	if line := e.CommandLine(); line != "" {
		msg += fmt.Sprintf(": %s", line)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", strings.TrimSpace(e.Stderr))
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", strings.TrimSpace(e.Stdout))
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

// CommandLine returns the failing invocation as a single string
func (e *GitCommandError) CommandLine() string {
	if e.Command == "" {
		return ""
	}
	return strings.TrimSpace(e.Command + " " + strings.Join(e.Args, " "))
}

// ExitCode returns the exit status of the git process, or -1 when it did not
// exit on its own
func (e *GitCommandError) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Is matches ErrGitCommand and ErrGit
func (e *GitCommandError) Is(target error) bool {
	return target == ErrGitCommand || target == ErrGit
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

// WithMessage wraps err in a GitCommandError carrying message. When err already
// is (or wraps) a GitCommandError its invocation details are kept; other error
// categories are returned unchanged.
func WithMessage(err error, message string) error {
	if err == nil {
		return nil
	}
	var cmdErr *GitCommandError
	if errors.As(err, &cmdErr) {
		wrapped := *cmdErr
		wrapped.Message = message
		return &wrapped
	}
	if errors.Is(err, ErrGit) {
		return err
	}
	return &GitCommandError{Message: message, Err: err}
}

// StepError identifies the step of a compound workflow that failed. Steps
// completed before it are left in place.
type StepError struct {
	Workflow string
	Step     string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %q failed: %v", e.Workflow, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// NewStepError creates a new StepError
func NewStepError(workflow, step string, err error) *StepError {
	return &StepError{Workflow: workflow, Step: step, Err: err}
}

// Describe renders err for the command-line boundary. Git command failures get
// the failing command appended on its own line.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var cmdErr *GitCommandError
	if !errors.As(err, &cmdErr) {
		return err.Error()
	}

	var b strings.Builder
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		fmt.Fprintf(&b, "%s: step %q failed: ", stepErr.Workflow, stepErr.Step)
	}
	if cmdErr.Message != "" {
		b.WriteString(cmdErr.Message)
	} else {
		b.WriteString("git command failed")
	}
	if cmdErr.Stderr != "" {
		fmt.Fprintf(&b, "\n%s", strings.TrimSpace(cmdErr.Stderr))
	} else if cmdErr.Err != nil {
		fmt.Fprintf(&b, "\n%v", cmdErr.Err)
	}
	if line := cmdErr.CommandLine(); line != "" {
		fmt.Fprintf(&b, "\nCommand: %s", line)
	}
	return b.String()
}
