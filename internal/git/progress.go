package git

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// ProgressEvent reports fetch progress for one ref. Commit is empty while
// objects are still being transferred.
type ProgressEvent struct {
	Ref     string
	Commit  string
	Percent int
}

// ProgressFunc receives fetch progress. Percent never decreases for a given Ref.
type ProgressFunc func(ProgressEvent)

var percentPattern = regexp.MustCompile(`(\d{1,3})%`)

// phase weights map the server's per-phase counters onto one 0-100 scale
var progressPhases = []struct {
	prefix     string
	start, end int
}{
	{"Enumerating objects", 0, 5},
	{"Counting objects", 5, 15},
	{"Compressing objects", 15, 30},
	{"Receiving objects", 30, 90},
	{"Resolving deltas", 90, 100},
}

// progressTracker is the io.Writer handed to go-git as the sideband progress
// sink. It turns "Receiving objects:  42% (21/50)" lines into ProgressEvents.
type progressTracker struct {
	ref string
	fn  ProgressFunc

	mu   sync.Mutex
	buf  []byte
	last map[string]int
}

func newProgressTracker(ref string, fn ProgressFunc) *progressTracker {
	return &progressTracker{ref: ref, fn: fn, last: map[string]int{}}
}

func (p *progressTracker) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf = append(p.buf, b...)
	for {
		i := bytes.IndexAny(p.buf, "\r\n")
		if i < 0 {
			break
		}
		line := string(p.buf[:i])
		p.buf = p.buf[i+1:]
		p.handleLine(line)
	}
	return len(b), nil
}

func (p *progressTracker) handleLine(line string) {
	m := percentPattern.FindStringSubmatch(line)
	if m == nil {
		return
	}
	pct, err := strconv.Atoi(m[1])
	if err != nil {
		return
	}
	p.emit(p.ref, "", overallPercent(line, pct))
}

// finish reports the final commit for an updated ref
func (p *progressTracker) finish(ref, commit string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emit(ref, commit, 100)
}

func (p *progressTracker) emit(ref, commit string, pct int) {
	if p.fn == nil {
		return
	}
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	if prev, ok := p.last[ref]; ok && pct < prev {
		pct = prev
	}
	p.last[ref] = pct
	p.fn(ProgressEvent{Ref: ref, Commit: commit, Percent: pct})
}

func overallPercent(line string, pct int) int {
	trimmed := strings.TrimSpace(line)
	for _, phase := range progressPhases {
		if strings.HasPrefix(trimmed, phase.prefix) {
			return phase.start + (phase.end-phase.start)*pct/100
		}
	}
	return pct
}
