package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/tidal/internal/ipc"
)

// statusMsg carries a fresh status poll result.
type statusMsg struct {
	status *ipc.StatusResponse
	err    error
}

type tickMsg time.Time

// StatusModel is the live status view, polling the control socket
// once a second.
type StatusModel struct {
	socketPath string
	spinner    spinner.Model
	status     *ipc.StatusResponse
	err        error
	quitting   bool
}

// NewStatusModel creates the watch model.
func NewStatusModel(socketPath string) StatusModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = InfoStyle
	return StatusModel{
		socketPath: socketPath,
		spinner:    sp,
	}
}

// Init starts the spinner and the first poll.
func (m StatusModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.poll(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m StatusModel) poll() tea.Cmd {
	path := m.socketPath
	return func() tea.Msg {
		client, err := ipc.Connect(path)
		if err != nil {
			return statusMsg{err: err}
		}
		defer client.Close()
		status, err := client.Status()
		return statusMsg{status: status, err: err}
	}
}

// Update handles polls, ticks and quit keys.
func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case tickMsg:
		return m, tea.Batch(m.poll(), tick())
	case statusMsg:
		m.status = msg.status
		m.err = msg.err
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the status box.
func (m StatusModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("TIDAL COMPOSITOR"))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("not running: %v", m.err)))
		b.WriteString("\n")
		b.WriteString(SubtleStyle.Render("q to quit"))
		return BoxStyle.Render(b.String())
	}
	if m.status == nil {
		b.WriteString(m.spinner.View())
		b.WriteString(TextStyle.Render(" connecting..."))
		return BoxStyle.Render(b.String())
	}

	s := m.status
	fmt.Fprintf(&b, "%s %s\n", StatusDot(s.Running), TextStyle.Render("compositor"))
	fmt.Fprintf(&b, "%s %s\n", StatusDot(s.WMConnected), TextStyle.Render("window manager"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %d\n", SubheaderStyle.Render("windows:"), s.Windows)
	fmt.Fprintf(&b, "%s %d\n", SubheaderStyle.Render("outputs:"), s.Outputs)
	fmt.Fprintf(&b, "%s %d\n", SubheaderStyle.Render("seats:"), s.Seats)
	if s.Locked {
		b.WriteString(WarningStyle.Render("session locked"))
		b.WriteString("\n")
	}
	if s.TransactionInflight {
		fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), InfoStyle.Render("transaction inflight"))
	}
	if s.WaylandDisplay != "" {
		fmt.Fprintf(&b, "%s %s\n", SubtleStyle.Render("display:"), SubtleStyle.Render(s.WaylandDisplay))
	}
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render("q to quit"))

	return BoxStyle.Render(b.String())
}
