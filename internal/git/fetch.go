package git

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	broerrors "github.com/xuzuoyang/gitbro/internal/errors"
)

// Fetch fetches refs/heads/<branchPattern> from remote into
// refs/remotes/<remote>/<branchPattern>. An empty pattern means "*". Local
// branches are never touched. Every remote-tracking ref whose commit changed
// is reported in the result and, with its new commit, to progress.
func (r *Repository) Fetch(ctx context.Context, remote, branchPattern string, progress ProgressFunc) (SyncResult, error) {
	if branchPattern == "" {
		branchPattern = "*"
	}
	result := SyncResult{Remote: remote, Branch: branchPattern, Mode: ModeFetch}
	message := fmt.Sprintf("Failed to fetch %s/%s", remote, branchPattern)

	if _, err := r.ResolveRemote(remote); err != nil {
		return result, err
	}
	rem, err := r.git.Remote(remote)
	if err != nil {
		return result, broerrors.WithMessage(err, message)
	}

	dst := fmt.Sprintf("refs/remotes/%s/%s", remote, branchPattern)
	refSpec := config.RefSpec(fmt.Sprintf("+refs/heads/%s:%s", branchPattern, dst))
	fetchArgs := []string{"fetch", remote, refSpec.String()}
	if err := refSpec.Validate(); err != nil {
		return result, &broerrors.GitCommandError{Message: message, Command: "git", Args: fetchArgs, Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	before, err := r.trackingRefs(remote)
	if err != nil {
		return result, broerrors.WithMessage(err, message)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tracker := newProgressTracker(dst, progress)
	r.logger.Debug("fetching", "remote", remote, "refspec", refSpec.String())
	err = rem.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{refSpec},
		Progress:   tracker,
		Tags:       gogit.NoTags,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return result, &broerrors.GitCommandError{Message: message, Command: "git", Args: fetchArgs, Err: err}
	}

	after, err := r.trackingRefs(remote)
	if err != nil {
		return result, broerrors.WithMessage(err, message)
	}

	result.Updated = diffRefs(before, after)
	for _, update := range result.Updated {
		if update.New != "" {
			tracker.finish(update.Name, update.New)
		}
		r.logger.Debug("fetched", "ref", update.Name, "commit", update.New)
	}
	return result, nil
}

// trackingRefs returns refs/remotes/<remote>/* as name -> commit id
func (r *Repository) trackingRefs(remote string) (map[string]string, error) {
	prefix := "refs/remotes/" + remote + "/"
	refs, err := r.git.References()
	if err != nil {
		return nil, err
	}
	defer refs.Close()

	out := map[string]string{}
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name().String()
		if strings.HasPrefix(name, prefix) {
			out[name] = ref.Hash().String()
		}
		return nil
	})
	return out, err
}

func diffRefs(before, after map[string]string) []RefUpdate {
	var updates []RefUpdate
	for name, hash := range after {
		if old, ok := before[name]; !ok || old != hash {
			updates = append(updates, RefUpdate{Name: name, Old: before[name], New: hash})
		}
	}
	for name, hash := range before {
		if _, ok := after[name]; !ok {
			updates = append(updates, RefUpdate{Name: name, Old: hash})
		}
	}
	sort.Slice(updates, func(i, j int) bool { return updates[i].Name < updates[j].Name })
	return updates
}
