// Package runtime provides a context type that holds the repository, config
// and logger for use throughout the application. This avoids passing multiple
// parameters.
package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/xuzuoyang/gitbro/internal/config"
	"github.com/xuzuoyang/gitbro/internal/git"
	"github.com/xuzuoyang/gitbro/internal/hub"
	"github.com/xuzuoyang/gitbro/internal/output"
)

// PasswordPrompt asks the user for the password of a GitHub account
type PasswordPrompt func(username string) (string, error)

// HubFactory builds a pull-request client from credentials
type HubFactory func(ctx context.Context, creds hub.Credentials) (hub.Client, error)

// Context provides access to the repository, config and output for commands
type Context struct {
	// Context bounds every blocking operation of a command
	Context context.Context

	Splog      *output.Splog
	Config     *config.Config
	ConfigPath string

	// RepoPath is where the repository is opened from
	RepoPath string

	// NewHub builds the pull-request client; defaults to the GitHub REST API
	NewHub HubFactory
	// Prompt asks for a password when no access token is configured
	Prompt PasswordPrompt

	repoOnce sync.Once
	repo     *git.Repository
	repoErr  error
}

// NewContext creates a new context
func NewContext(splog *output.Splog, cfg *config.Config, repoPath string) *Context {
	if splog == nil {
		splog = output.NewSplog()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Context{
		Context:  context.Background(),
		Splog:    splog,
		Config:   cfg,
		RepoPath: repoPath,
	}
	c.NewHub = c.defaultHub
	return c
}

// Repository opens the git repository at RepoPath on first use
func (c *Context) Repository() (*git.Repository, error) {
	c.repoOnce.Do(func() {
		timeout, err := c.Config.GitCommandTimeout()
		if err != nil {
			c.repoErr = err
			return
		}
		c.repo, c.repoErr = git.Open(c.RepoPath,
			git.WithLogger(c.Splog.Logger()),
			git.WithCommandTimeout(timeout),
			git.WithMergeMessage(c.Config.Merge.Message),
		)
	})
	return c.repo, c.repoErr
}

// Credentials resolves API credentials. The configured access token wins;
// otherwise username (or the configured one) authenticates with a password
// obtained from Prompt.
func (c *Context) Credentials(username string) (hub.Credentials, error) {
	if c.Config.GitHub.AccessToken != "" {
		return hub.Credentials{Token: c.Config.GitHub.AccessToken}, nil
	}
	if username == "" {
		username = c.Config.GitHub.Username
	}
	if username == "" {
		return hub.Credentials{}, fmt.Errorf("no GitHub credentials: set github.access_token or pass --user")
	}
	if c.Prompt == nil {
		return hub.Credentials{}, fmt.Errorf("no GitHub access token configured and no terminal to ask for the password of %s", username)
	}

	password, err := c.Prompt(username)
	if err != nil {
		return hub.Credentials{}, fmt.Errorf("failed to read password: %w", err)
	}
	return hub.Credentials{Username: username, Password: password}, nil
}

// Hub returns a pull-request client authenticated as username
func (c *Context) Hub(ctx context.Context, username string) (hub.Client, error) {
	creds, err := c.Credentials(username)
	if err != nil {
		return nil, err
	}
	return c.NewHub(ctx, creds)
}

// Anonymous returns a pull-request client without credentials, falling back
// to the configured token when one exists
func (c *Context) Anonymous(ctx context.Context) (hub.Client, error) {
	return c.NewHub(ctx, hub.Credentials{Token: c.Config.GitHub.AccessToken})
}

func (c *Context) defaultHub(ctx context.Context, creds hub.Credentials) (hub.Client, error) {
	timeout, err := c.Config.RequestTimeout()
	if err != nil {
		return nil, err
	}
	httpClient := hub.NewHTTPClient(ctx, creds, timeout)
	return hub.NewGitHubClient(httpClient, c.Config.GitHub.APIURL, c.Splog.Logger())
}

type contextKey struct{}

// WithContext returns a copy of parent carrying c
func WithContext(parent context.Context, c *Context) context.Context {
	return context.WithValue(parent, contextKey{}, c)
}

// FromContext returns the Context stored by WithContext
func FromContext(ctx context.Context) (*Context, error) {
	if ctx != nil {
		if c, ok := ctx.Value(contextKey{}).(*Context); ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no runtime context")
}
