package testhelpers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
)

// RecordedRequest is one request received by the mock server
type RecordedRequest struct {
	Method        string
	Path          string
	Accept        string
	Authorization string
	Body          []byte
}

// MockGitHubServerConfig configures the behavior of a mock GitHub server
type MockGitHubServerConfig struct {
	// PRs maps numbers to pull requests served by GET and changed by PATCH
	PRs map[int]*github.PullRequest
	// Diffs maps numbers to the text served for diff requests
	Diffs map[int]string
	// Comments stores comments that were posted
	Comments []*github.IssueComment
	// MergeMessages stores the commit message of each merged PR
	MergeMessages map[int]string
	// ErrorResponses maps "METHOD /path" to a status code to fail with
	ErrorResponses map[string]int
	// Requests records every request in order
	Requests []RecordedRequest
	// Owner and Repo for the mock server
	Owner string
	Repo  string

	mu         sync.Mutex
	nextNumber int
}

// NewMockGitHubServerConfig creates a new mock server config with defaults
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		PRs:            make(map[int]*github.PullRequest),
		Diffs:          make(map[int]string),
		MergeMessages:  make(map[int]string),
		ErrorResponses: make(map[string]int),
		Owner:          "owner",
		Repo:           "repo",
		nextNumber:     1,
	}
}

// AddPR registers a pull request built from data
func (c *MockGitHubServerConfig) AddPR(data SamplePRData) *github.PullRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	pr := NewSamplePullRequest(c.Owner, c.Repo, data)
	c.PRs[data.Number] = pr
	if data.Number >= c.nextNumber {
		c.nextNumber = data.Number + 1
	}
	return pr
}

// LastRequest returns the most recent request, or the zero value
func (c *MockGitHubServerConfig) LastRequest() RecordedRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Requests) == 0 {
		return RecordedRequest{}
	}
	return c.Requests[len(c.Requests)-1]
}

// NewMockGitHubServer creates an httptest server that mocks the pull-request endpoints
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	t.Helper()
	if config == nil {
		config = NewMockGitHubServerConfig()
	}

	mux := http.NewServeMux()
	base := "/repos/" + config.Owner + "/" + config.Repo

	mux.HandleFunc("POST "+base+"/pulls", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title               *string `json:"title"`
			Head                *string `json:"head"`
			Base                *string `json:"base"`
			Body                *string `json:"body"`
			Issue               *int    `json:"issue"`
			MaintainerCanModify *bool   `json:"maintainer_can_modify"`
		}
		if err := json.Unmarshal(requestBody(r), &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Head == nil || req.Base == nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Validation Failed"})
			return
		}

		config.mu.Lock()
		number := config.nextNumber
		config.nextNumber++
		config.mu.Unlock()

		data := SamplePRData{
			Number: number,
			Title:  deref(req.Title),
			Body:   deref(req.Body),
			Head:   *req.Head,
			Base:   config.Owner + ":" + *req.Base,
			State:  "open",
			Author: strings.SplitN(*req.Head, ":", 2)[0],
		}
		if req.Issue != nil {
			data.Title = fmt.Sprintf("Issue #%d", *req.Issue)
		}
		pr := config.AddPR(data)
		pr.MaintainerCanModify = req.MaintainerCanModify
		writeJSON(w, http.StatusCreated, pr)
	})

	mux.HandleFunc("GET "+base+"/pulls/{number}", func(w http.ResponseWriter, r *http.Request) {
		pr, number, ok := config.lookup(w, r)
		if !ok {
			return
		}
		if strings.Contains(r.Header.Get("Accept"), "diff") {
			config.mu.Lock()
			diff := config.Diffs[number]
			config.mu.Unlock()
			w.Header().Set("Content-Type", "text/plain")
			_, _ = io.WriteString(w, diff)
			return
		}
		writeJSON(w, http.StatusOK, pr)
	})

	mux.HandleFunc("PATCH "+base+"/pulls/{number}", func(w http.ResponseWriter, r *http.Request) {
		pr, _, ok := config.lookup(w, r)
		if !ok {
			return
		}
		var update struct {
			Title               *string `json:"title,omitempty"`
			Body                *string `json:"body,omitempty"`
			State               *string `json:"state,omitempty"`
			MaintainerCanModify *bool   `json:"maintainer_can_modify,omitempty"`
		}
		if err := json.Unmarshal(requestBody(r), &update); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		config.mu.Lock()
		if update.Title != nil {
			pr.Title = update.Title
		}
		if update.Body != nil {
			pr.Body = update.Body
		}
		if update.State != nil {
			pr.State = update.State
			if *update.State == "closed" {
				pr.ClosedAt = &github.Timestamp{Time: time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)}
			} else {
				pr.ClosedAt = nil
			}
		}
		if update.MaintainerCanModify != nil {
			pr.MaintainerCanModify = update.MaintainerCanModify
		}
		config.mu.Unlock()
		writeJSON(w, http.StatusOK, pr)
	})

	mux.HandleFunc("PUT "+base+"/pulls/{number}/merge", func(w http.ResponseWriter, r *http.Request) {
		pr, number, ok := config.lookup(w, r)
		if !ok {
			return
		}
		var req struct {
			CommitMessage string `json:"commit_message"`
		}
		_ = json.Unmarshal(requestBody(r), &req)

		config.mu.Lock()
		defer config.mu.Unlock()
		if pr.GetState() != "open" {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "Pull Request is not mergeable"})
			return
		}
		pr.State = github.String("closed")
		pr.Merged = github.Bool(true)
		config.MergeMessages[number] = req.CommitMessage
		writeJSON(w, http.StatusOK, &github.PullRequestMergeResult{
			SHA:     github.String(fmt.Sprintf("%040d", number)),
			Merged:  github.Bool(true),
			Message: github.String("Pull Request successfully merged"),
		})
	})

	mux.HandleFunc("POST "+base+"/issues/{number}/comments", func(w http.ResponseWriter, r *http.Request) {
		_, number, ok := config.lookup(w, r)
		if !ok {
			return
		}
		var req struct {
			Body string `json:"body"`
		}
		if err := json.Unmarshal(requestBody(r), &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		config.mu.Lock()
		id := int64(len(config.Comments) + 1)
		posted := github.Timestamp{Time: time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)}
		comment := &github.IssueComment{
			ID:        github.Int64(id),
			Body:      github.String(req.Body),
			HTMLURL:   github.String(fmt.Sprintf("https://github.com/%s/%s/pull/%d#issuecomment-%d", config.Owner, config.Repo, number, id)),
			CreatedAt: &posted,
			UpdatedAt: &posted,
		}
		config.Comments = append(config.Comments, comment)
		config.mu.Unlock()
		writeJSON(w, http.StatusCreated, comment)
	})

	handler := func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		config.mu.Lock()
		config.Requests = append(config.Requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Accept:        r.Header.Get("Accept"),
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		status, fail := config.ErrorResponses[r.Method+" "+r.URL.Path]
		config.mu.Unlock()

		if fail {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		mux.ServeHTTP(w, r)
	}

	server := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(func() { server.Close() })
	return server
}

// lookup finds the PR named by the {number} path value, writing a 404 when absent
func (c *MockGitHubServerConfig) lookup(w http.ResponseWriter, r *http.Request) (*github.PullRequest, int, bool) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		http.Error(w, "invalid PR number", http.StatusBadRequest)
		return nil, 0, false
	}

	c.mu.Lock()
	pr, ok := c.PRs[number]
	c.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return nil, number, false
	}
	return pr, number, true
}

func requestBody(r *http.Request) []byte {
	body, _ := io.ReadAll(r.Body)
	return body
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
