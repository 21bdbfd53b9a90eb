package git

// Branch is a named pointer to a commit. A Branch with an empty Name is a
// detached HEAD.
type Branch struct {
	Name string
	// Head is the commit id the branch points at; empty on an unborn branch
	Head           string
	TrackingRemote string
	TrackingMerge  string
}

// Detached reports whether the branch is a detached HEAD
func (b Branch) Detached() bool {
	return b.Name == ""
}

// Remote is a named reference to another repository
type Remote struct {
	Name string
	URLs []string
}

// URL returns the first configured URL, used for both fetch and push
func (r Remote) URL() string {
	if len(r.URLs) == 0 {
		return ""
	}
	return r.URLs[0]
}

// SyncMode names the kind of remote synchronisation performed
type SyncMode int

const (
	// ModeFetch updated remote-tracking refs only
	ModeFetch SyncMode = iota
	// ModePush pushed a local branch
	ModePush
	// ModeDelete deleted a branch on the remote
	ModeDelete
	// ModeRebase pulled and replayed local commits on top (linear history)
	ModeRebase
	// ModeMerge pulled and created a two-parent merge
	ModeMerge
)

func (m SyncMode) String() string {
	switch m {
	case ModeFetch:
		return "fetch"
	case ModePush:
		return "push"
	case ModeDelete:
		return "delete"
	case ModeRebase:
		return "rebase"
	case ModeMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// RefUpdate is one ref moved by a sync. Old is empty for newly created refs
// and New is empty for deleted ones.
type RefUpdate struct {
	Name string
	Old  string
	New  string
}

// SyncResult describes the outcome of a fetch, push or pull
type SyncResult struct {
	Remote  string
	Branch  string
	Mode    SyncMode
	Updated []RefUpdate
}

// Count returns the number of refs updated
func (s SyncResult) Count() int {
	return len(s.Updated)
}
