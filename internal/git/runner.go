package git

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	broerrors "github.com/xuzuoyang/gitbro/internal/errors"
)

// DefaultCommandTimeout bounds git commands when neither the caller's context
// nor WithCommandTimeout says otherwise
const DefaultCommandTimeout = 5 * time.Minute

// Runner executes git commands. The repository talks to the git binary only
// through a Runner so tests can record or substitute invocations.
type Runner interface {
	// Run executes git with args; env entries are appended to the process environment.
	Run(ctx context.Context, env []string, args ...string) (string, error)
}

// CommandRunner handles execution of git commands
type CommandRunner struct {
	workingDir string
	logger     *slog.Logger
}

// NewCommandRunner creates a new CommandRunner
func NewCommandRunner(workingDir string, logger *slog.Logger) *CommandRunner {
	if logger == nil {
		logger = discardLogger()
	}
	return &CommandRunner{workingDir: workingDir, logger: logger}
}

// Run executes a git command with the given context and returns the trimmed
// output. The command is bounded only by ctx.
func (r *CommandRunner) Run(ctx context.Context, env []string, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r.logger.Debug("git", "args", strings.Join(args, " "), "elapsed", time.Since(start), "ok", err == nil)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", broerrors.NewGitCommandError("git", args, stdout.String(), stderr.String(), ctx.Err())
		}
		return "", broerrors.NewGitCommandError("git", args, stdout.String(), stderr.String(), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Invocation is one recorded call to a Runner
type Invocation struct {
	Env  []string
	Args []string
}

// CommandLine returns the invocation as it would be typed
func (i Invocation) CommandLine() string {
	return strings.TrimSpace("git " + strings.Join(i.Args, " "))
}

// RecordingRunner records every invocation before passing it to Next.
// With a nil Next it records only and reports success with empty output.
type RecordingRunner struct {
	Next Runner

	mu    sync.Mutex
	calls []Invocation
}

// NewRecordingRunner wraps next
func NewRecordingRunner(next Runner) *RecordingRunner {
	return &RecordingRunner{Next: next}
}

// Run records the call and delegates it
func (r *RecordingRunner) Run(ctx context.Context, env []string, args ...string) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Invocation{
		Env:  append([]string(nil), env...),
		Args: append([]string(nil), args...),
	})
	r.mu.Unlock()

	if r.Next == nil {
		return "", nil
	}
	return r.Next.Run(ctx, env, args...)
}

// Calls returns a copy of the recorded invocations
func (r *RecordingRunner) Calls() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Invocation(nil), r.calls...)
}

// Commands returns the recorded invocations as command lines
func (r *RecordingRunner) Commands() []string {
	calls := r.Calls()
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		lines = append(lines, c.CommandLine())
	}
	return lines
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
