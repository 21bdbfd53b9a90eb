package actions

import (
	"fmt"
	"strings"

	"github.com/xuzuoyang/gitbro/internal/output"
	"github.com/xuzuoyang/gitbro/internal/runtime"
)

// Status prints the current branch, its tracking branch and the remotes
func Status(ctx *runtime.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}

	current := repo.CurrentBranch()
	branchName := current.Name
	if current.Detached() {
		branchName = output.ColorYellow("(detached HEAD)")
	}
	head := shortSHA(current.Head)
	if head == "" {
		head = output.ColorDim("(no commits)")
	}
	tracking := output.ColorDim("(none)")
	if current.TrackingRemote != "" {
		tracking = fmt.Sprintf("%s/%s", current.TrackingRemote, strings.TrimPrefix(current.TrackingMerge, "refs/heads/"))
	}

	branches, err := repo.BranchNames()
	if err != nil {
		return err
	}

	rows := []output.Row{
		{Key: "path", Value: repo.Path()},
		{Key: "branch", Value: branchName},
		{Key: "head", Value: head},
		{Key: "tracking", Value: tracking},
		{Key: "branches", Value: strings.Join(branches, ", ")},
	}

	remoteNames, err := repo.RemoteNames()
	if err != nil {
		return err
	}
	for _, name := range remoteNames {
		remote, err := repo.ResolveRemote(name)
		if err != nil {
			return err
		}
		rows = append(rows, output.Row{Key: "remote " + name, Value: remote.URL()})
	}

	ctx.Splog.Page(output.RenderRows(rows) + "\n")
	return nil
}
