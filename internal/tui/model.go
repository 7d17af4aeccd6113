package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"profleet/internal/app"
)

const (
	rpcTimeout   = 4 * time.Second
	closeTimeout = 15 * time.Second
)

// Controller defines the subset of app.App behaviour the TUI needs.
type Controller interface {
	Status() (app.DaemonStatus, error)
	StartDaemon() (*app.DaemonHandle, error)
	FleetSummary(ctx context.Context, root string, timeout time.Duration) (app.Summary, error)
	Processes(ctx context.Context, timeout time.Duration) ([]app.Process, error)
	ClosePIDs(ctx context.Context, pids []uint32, timeout time.Duration) (int, error)
}

// Model represents the Bubble Tea state.
type Model struct {
	controller Controller

	list      list.Model
	processes []app.Process
	selected  map[uint32]bool

	daemonStatus app.DaemonStatus
	statusMsg    string

	summary    app.Summary
	hasSummary bool

	err     error
	loading bool

	width  int
	height int

	lastUpdated time.Time
}

// New constructs a TUI model with default styles.
func New(ctrl Controller) *Model {
	delegate := list.NewDefaultDelegate()
	lst := list.New([]list.Item{}, delegate, 0, 0)
	lst.Title = "Instances"
	lst.SetShowHelp(false)
	lst.SetFilteringEnabled(false)
	lst.DisableQuitKeybindings()

	return &Model{
		controller: ctrl,
		list:       lst,
		statusMsg:  "Checking daemon status…",
		loading:    true,
		selected:   make(map[uint32]bool),
	}
}

// Run spins up the Bubble Tea program with sensible defaults.
func Run(ctrl Controller) error {
	m := New(ctrl)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(checkDaemonStatusCmd(m.controller), refreshCmd(m.controller))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.height > 6 {
			m.list.SetSize(msg.Width, msg.Height-6)
		}

	case daemonStatusMsg:
		m.daemonStatus = msg.status
		if msg.status.Running {
			if msg.status.PID > 0 {
				m.statusMsg = fmt.Sprintf("Daemon running (pid %d). Press r to refresh, q to quit.", msg.status.PID)
			} else {
				m.statusMsg = "Daemon running. Press r to refresh, q to quit."
			}
		} else {
			m.statusMsg = "Daemon is not running. Press s to start it."
			m.processes = nil
			m.hasSummary = false
			m.list.SetItems(nil)
		}

	case fleetLoadedMsg:
		m.loading = false
		m.err = nil
		m.summary = msg.summary
		m.hasSummary = true
		m.setProcesses(msg.processes)
		m.lastUpdated = time.Now()

	case closedMsg:
		m.statusMsg = fmt.Sprintf("Closed %d of %d selected instances.", msg.closed, msg.requested)
		m.clearSelection()
		m.loading = true
		return m, refreshCmd(m.controller)

	case daemonStartedMsg:
		m.statusMsg = "Daemon started."
		return m, tea.Batch(checkDaemonStatusCmd(m.controller), refreshCmd(m.controller))

	case errMsg:
		m.loading = false
		m.err = msg.err

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, refreshCmd(m.controller)
		case "s":
			if !m.daemonStatus.Running {
				m.statusMsg = "Starting daemon…"
				return m, startDaemonCmd(m.controller)
			}
		case " ":
			m.toggleCurrentSelection()
		case "c":
			if len(m.selected) > 0 {
				m.clearSelection()
			}
		case "x":
			if pids := m.selectedPIDs(); len(pids) > 0 {
				m.statusMsg = fmt.Sprintf("Closing %d instances…", len(pids))
				return m, closePIDsCmd(m.controller, pids)
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	statusStyle := lipgloss.NewStyle().Bold(true)
	if !m.daemonStatus.Running {
		statusStyle = statusStyle.Foreground(lipgloss.Color("203"))
	} else {
		statusStyle = statusStyle.Foreground(lipgloss.Color("42"))
	}
	b.WriteString(statusStyle.Render(m.statusMsg))
	b.WriteByte('\n')

	if m.hasSummary {
		b.WriteString(renderSummary(m.summary))
		b.WriteByte('\n')
	}

	if m.loading {
		b.WriteString("Loading fleet…\n")
	} else if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
		b.WriteString(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteByte('\n')
	}

	if len(m.list.Items()) == 0 && !m.loading && m.err == nil && m.daemonStatus.Running {
		b.WriteString("No running instances.\n")
	} else {
		b.WriteString(m.list.View())
		b.WriteByte('\n')
	}

	help := "Commands: q quit • r refresh • s start daemon • space select • x close selected • c clear selection"
	if count := len(m.selected); count > 0 {
		help += fmt.Sprintf(" • selected=%d", count)
	}
	if !m.lastUpdated.IsZero() {
		help += fmt.Sprintf(" • last update %s", m.lastUpdated.Format(time.Kitchen))
	}
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func renderSummary(s app.Summary) string {
	cell := lipgloss.NewStyle().Padding(0, 1)
	parts := []string{
		cell.Render(fmt.Sprintf("total %d", s.Total)),
		cell.Foreground(lipgloss.Color("42")).Render(fmt.Sprintf("running %d", s.Running)),
		cell.Foreground(lipgloss.Color("244")).Render(fmt.Sprintf("idle %d", s.Idle())),
		cell.Foreground(lipgloss.Color("214")).Render(fmt.Sprintf("disabled %d", s.Disabled)),
		cell.Foreground(lipgloss.Color("203")).Render(fmt.Sprintf("unknown %d", s.Unknown)),
	}
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return box.Render(valueOrDash(s.Root) + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, parts...))
}

// processItem adapts app.Process to the bubbles list item interface.
type processItem struct {
	Process  app.Process
	Selected bool
}

func (p processItem) Title() string {
	mark := " "
	if p.Selected {
		mark = "✓"
	}
	return fmt.Sprintf("[%s] pid=%d %s", mark, p.Process.PID, valueOrDash(p.Process.Name))
}

func (p processItem) Description() string {
	return valueOrDash(p.Process.Path)
}

func (p processItem) FilterValue() string {
	return fmt.Sprintf("%d %s %s", p.Process.PID, p.Process.Name, p.Process.Path)
}

func (m *Model) setProcesses(procs []app.Process) {
	sort.Slice(procs, func(i, j int) bool {
		if procs[i].Path != procs[j].Path {
			return procs[i].Path < procs[j].Path
		}
		return procs[i].PID < procs[j].PID
	})
	m.processes = procs
	newSelected := make(map[uint32]bool)
	items := make([]list.Item, 0, len(procs))
	for _, proc := range procs {
		selected := m.selected[proc.PID]
		if selected {
			newSelected[proc.PID] = true
		}
		items = append(items, processItem{Process: proc, Selected: selected})
	}
	m.selected = newSelected
	m.list.SetItems(items)
}

func (m *Model) toggleCurrentSelection() {
	if len(m.processes) == 0 {
		return
	}
	idx := m.list.Index()
	if idx < 0 || idx >= len(m.processes) {
		return
	}
	item, ok := m.list.Items()[idx].(processItem)
	if !ok {
		return
	}
	if item.Selected {
		delete(m.selected, item.Process.PID)
	} else {
		m.selected[item.Process.PID] = true
	}
	item.Selected = !item.Selected
	m.list.SetItem(idx, item)
}

func (m *Model) clearSelection() {
	m.selected = make(map[uint32]bool)
	items := m.list.Items()
	for i, it := range items {
		if pi, ok := it.(processItem); ok && pi.Selected {
			pi.Selected = false
			m.list.SetItem(i, pi)
		}
	}
}

func (m *Model) selectedPIDs() []uint32 {
	pids := make([]uint32, 0, len(m.selected))
	for pid := range m.selected {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}

func valueOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

type daemonStatusMsg struct {
	status app.DaemonStatus
}

type fleetLoadedMsg struct {
	summary   app.Summary
	processes []app.Process
}

type closedMsg struct {
	closed    int
	requested int
}

type daemonStartedMsg struct{}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func checkDaemonStatusCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		status, err := ctrl.Status()
		if err != nil {
			return errMsg{err}
		}
		return daemonStatusMsg{status: status}
	}
}

func refreshCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*rpcTimeout)
		defer cancel()
		summary, err := ctrl.FleetSummary(ctx, "", rpcTimeout)
		if err != nil {
			return errMsg{err}
		}
		procs, err := ctrl.Processes(ctx, rpcTimeout)
		if err != nil {
			return errMsg{err}
		}
		return fleetLoadedMsg{summary: summary, processes: procs}
	}
}

func closePIDsCmd(ctrl Controller, pids []uint32) tea.Cmd {
	return func() tea.Msg {
		n, err := ctrl.ClosePIDs(context.Background(), pids, closeTimeout)
		if err != nil {
			return errMsg{err}
		}
		return closedMsg{closed: n, requested: len(pids)}
	}
}

func startDaemonCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		if _, err := ctrl.StartDaemon(); err != nil {
			return errMsg{err}
		}
		// Give the daemon a moment to bind the socket.
		time.Sleep(300 * time.Millisecond)
		return daemonStartedMsg{}
	}
}
