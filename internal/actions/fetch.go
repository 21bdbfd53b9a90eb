package actions

import (
	"context"
	"fmt"

	"github.com/xuzuoyang/gitbro/internal/git"
	"github.com/xuzuoyang/gitbro/internal/output"
	"github.com/xuzuoyang/gitbro/internal/runtime"
)

// fetchWithProgress fetches pattern from remote while rendering progress.
// Interrupting the display cancels the fetch.
func fetchWithProgress(ctx *runtime.Context, repo *git.Repository, remote, pattern string) (git.SyncResult, error) {
	fetchCtx, cancel := context.WithCancel(ctx.Context)
	defer cancel()

	ui := output.NewFetchProgressUI(ctx.Splog, cancel)
	ui.Start(fmt.Sprintf("Fetching %s/%s", remote, pattern))

	result, err := repo.Fetch(fetchCtx, remote, pattern, func(ev git.ProgressEvent) {
		ui.Update(output.FetchUpdate{Ref: ev.Ref, Commit: ev.Commit, Percent: ev.Percent})
	})
	ui.Complete(err)
	return result, err
}
