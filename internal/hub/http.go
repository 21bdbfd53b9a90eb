package hub

import (
	"context"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds each API request
const DefaultTimeout = 5 * time.Second

// Credentials authenticate API requests. A token takes precedence over a
// username and password.
type Credentials struct {
	Username string
	Password string
	Token    string
}

// Anonymous reports whether no credentials are set
func (c Credentials) Anonymous() bool {
	return c.Token == "" && c.Username == ""
}

// NewHTTPClient builds an authenticated *http.Client. Each request is bounded
// by timeout, or DefaultTimeout when timeout is not positive.
func NewHTTPClient(ctx context.Context, creds Credentials, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var client *http.Client
	switch {
	case creds.Token != "":
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: creds.Token},
		)
		client = oauth2.NewClient(ctx, ts)
	case creds.Username != "":
		tp := &github.BasicAuthTransport{
			Username: creds.Username,
			Password: creds.Password,
		}
		client = tp.Client()
	default:
		client = &http.Client{}
	}

	client.Timeout = timeout
	return client
}
