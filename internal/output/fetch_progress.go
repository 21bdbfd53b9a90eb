package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FetchUpdate is one progress report for a remote-tracking ref
type FetchUpdate struct {
	Ref     string
	Commit  string
	Percent int
}

// FetchProgressUI displays fetch progress
type FetchProgressUI interface {
	// Start begins a display titled with what is being fetched
	Start(title string)
	// Update reports progress for one ref
	Update(update FetchUpdate)
	// Complete finalizes the display
	Complete(err error)
}

// NewFetchProgressUI creates the appropriate progress UI based on TTY availability.
// On a terminal, ctrl+c closes the display and calls interrupt.
func NewFetchProgressUI(splog *Splog, interrupt func()) FetchProgressUI {
	if IsTTY() && !splog.IsQuiet() {
		return NewTTYFetchProgress(splog, interrupt)
	}
	return NewSimpleFetchProgress(splog)
}

const progressBarWidth = 30

func newProgressBar() progress.Model {
	return progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressBarWidth))
}

// shortCommit abbreviates a commit id for display
func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

// SimpleFetchProgress prints one line per finished ref (non-TTY)
type SimpleFetchProgress struct {
	splog *Splog
	bar   progress.Model

	mu   sync.Mutex
	done map[string]bool
}

// NewSimpleFetchProgress creates a new line-oriented progress UI
func NewSimpleFetchProgress(splog *Splog) *SimpleFetchProgress {
	return &SimpleFetchProgress{splog: splog, bar: newProgressBar(), done: map[string]bool{}}
}

func (p *SimpleFetchProgress) Start(title string) {
	p.splog.Debug("%s...", title)
}

func (p *SimpleFetchProgress) Update(update FetchUpdate) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if update.Commit == "" {
		p.splog.Debug("  %s %s", update.Ref, p.bar.ViewAs(float64(update.Percent)/100))
		return
	}
	if p.done[update.Ref] {
		return
	}
	p.done[update.Ref] = true
	p.splog.Info("  %s → %s", update.Ref, shortCommit(update.Commit))
}

func (p *SimpleFetchProgress) Complete(err error) {
	if err != nil {
		p.splog.Debug("fetch failed: %v", err)
	}
}

// TTYFetchProgress uses bubbletea for an animated progress display (TTY)
type TTYFetchProgress struct {
	splog     *Splog
	interrupt func()
	program   *tea.Program
	done      chan struct{}
}

// NewTTYFetchProgress creates a new TTY progress UI; interrupt may be nil
func NewTTYFetchProgress(splog *Splog, interrupt func()) *TTYFetchProgress {
	return &TTYFetchProgress{splog: splog, interrupt: interrupt}
}

func (p *TTYFetchProgress) Start(title string) {
	p.program = tea.NewProgram(newFetchProgressModel(title, p.interrupt), tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
	p.done = make(chan struct{})
	p.splog.SetQuiet(true)

	go func() {
		defer close(p.done)
		_, _ = p.program.Run()
	}()
}

func (p *TTYFetchProgress) Update(update FetchUpdate) {
	if p.program == nil {
		return
	}
	p.program.Send(fetchUpdateMsg(update))
}

func (p *TTYFetchProgress) Complete(err error) {
	if p.program == nil {
		return
	}
	p.program.Send(fetchCompleteMsg{err: err})
	<-p.done
	p.splog.SetQuiet(false)
}

type fetchUpdateMsg FetchUpdate

type fetchCompleteMsg struct {
	err error
}

type fetchRow struct {
	percent int
	commit  string
}

type fetchStyles struct {
	spinnerStyle lipgloss.Style
	doneStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	refStyle     lipgloss.Style
	dimStyle     lipgloss.Style
}

// fetchProgressModel is the bubbletea model behind TTYFetchProgress
type fetchProgressModel struct {
	title   string
	rows    map[string]*fetchRow
	spinner spinner.Model
	bar     progress.Model
	done    bool
	err     error
	styles  fetchStyles

	// interrupt is called when the user presses ctrl+c
	interrupt func()
}

func newFetchProgressModel(title string, interrupt func()) *fetchProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &fetchProgressModel{
		title:   title,
		rows:    map[string]*fetchRow{},
		spinner: s,
		bar:     newProgressBar(),
		styles: fetchStyles{
			spinnerStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
			doneStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			errorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
			refStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
			dimStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		},
		interrupt: interrupt,
	}
}

func (m *fetchProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *fetchProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.interrupt != nil {
				m.interrupt()
			}
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case fetchUpdateMsg:
		row, ok := m.rows[msg.Ref]
		if !ok {
			row = &fetchRow{}
			m.rows[msg.Ref] = row
		}
		if msg.Percent > row.percent {
			row.percent = msg.Percent
		}
		if msg.Commit != "" {
			row.commit = msg.Commit
		}
		return m, nil

	case fetchCompleteMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m *fetchProgressModel) View() string {
	var b strings.Builder

	icon := m.spinner.View()
	switch {
	case m.done && m.err != nil:
		icon = m.styles.errorStyle.Render("✗")
	case m.done:
		icon = m.styles.doneStyle.Render("✓")
	}
	fmt.Fprintf(&b, "%s %s\n", icon, m.title)

	refs := make([]string, 0, len(m.rows))
	for ref := range m.rows {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	for _, ref := range refs {
		row := m.rows[ref]
		line := fmt.Sprintf("  %s %s", m.bar.ViewAs(float64(row.percent)/100), m.styles.refStyle.Render(ref))
		if row.commit != "" {
			line += " " + m.styles.dimStyle.Render("→ "+shortCommit(row.commit))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
