package playerui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"spirare/internal/playback"
	"spirare/internal/textutil"
)

// Controller is the subset of *playback.Machine the model drives.
type Controller interface {
	Start()
	Skip() bool
	TogglePause() playback.State
	Finish()
	Restart()
	Snapshot() playback.Snapshot
}

// SnapshotMsg delivers a machine snapshot to the model.
type SnapshotMsg playback.Snapshot

// BeatMsg reports the metronome beat flag.
type BeatMsg bool

type updatesClosedMsg struct{}

const (
	barWidth     = 32
	defaultWidth = 64
)

// Model is the Bubble Tea model for one playback session.
type Model struct {
	ctrl     Controller
	updates  <-chan playback.Snapshot
	snap     playback.Snapshot
	beat     bool
	width    int
	quitting bool
}

// NewModel builds a model over ctrl. updates is the machine's snapshot
// subscription; the model reads from it until it is closed.
func NewModel(ctrl Controller, updates <-chan playback.Snapshot) Model {
	return Model{
		ctrl:    ctrl,
		updates: updates,
		snap:    ctrl.Snapshot(),
		width:   defaultWidth,
	}
}

// Snapshot returns the snapshot currently rendered.
func (m Model) Snapshot() playback.Snapshot { return m.snap }

func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.updates)
}

func waitForSnapshot(updates <-chan playback.Snapshot) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return SnapshotMsg(snap)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.snap = playback.Snapshot(msg)
		return m, waitForSnapshot(m.updates)
	case updatesClosedMsg:
		return m, nil
	case BeatMsg:
		m.beat = bool(msg)
		return m, nil
	case tea.WindowSizeMsg:
		m.width = max(msg.Width-4, 24)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "enter":
		if m.snap.State == playback.NotStarted {
			m.ctrl.Start()
		}
	case " ":
		if m.snap.State == playback.NotStarted {
			m.ctrl.Start()
		} else {
			m.ctrl.TogglePause()
		}
	case "s":
		m.ctrl.Skip()
	case "f":
		m.ctrl.Finish()
	case "r":
		m.ctrl.Restart()
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.snap
	inner := max(m.width-6, 20)

	var b strings.Builder
	title := snap.Title
	if title == "" {
		title = textutil.Label(snap.Category)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("  ")
	b.WriteString(stateBadge(snap.State))
	b.WriteString("\n\n")

	if snap.StageTitle != "" {
		b.WriteString(stageStyle.Render(fmt.Sprintf("%s  %d/%d", snap.StageTitle, snap.StageIndex+1, snap.StageCount)))
		b.WriteString("\n")
	}
	if snap.Practice != "" {
		b.WriteString(practiceStyle.Render(textutil.Label(snap.Practice)))
		if snap.SubstepCount > 0 {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d/%d", snap.SubstepIndex+1, snap.SubstepCount)))
		}
		b.WriteString("\n")
	}
	if snap.Text != "" {
		b.WriteString("\n")
		b.WriteString(textStyle.Width(inner).Render(snap.Text))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(timerStyle.Render(formatRemaining(snap.Remaining)))
	b.WriteString("  ")
	b.WriteString(progressBar(snap.Progress(), barWidth))
	b.WriteString("  ")
	b.WriteString(m.beatDot())
	if snap.TrackSrc != "" {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("♪ " + snap.TrackSrc))
	}
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(helpLine(snap.State)))

	return frameStyle.Width(m.width).Render(b.String())
}

func (m Model) beatDot() string {
	if m.beat {
		return beatOnStyle.Render("●")
	}
	return beatOffStyle.Render("○")
}

func stateBadge(state playback.State) string {
	label := "ready"
	switch state {
	case playback.Running:
		label = "running"
	case playback.Paused:
		label = "paused"
	case playback.FinalStage:
		label = "complete"
	}
	return stateStyles[label].Render("[" + label + "]")
}

func helpLine(state playback.State) string {
	switch state {
	case playback.NotStarted:
		return "enter start · q quit"
	case playback.Paused:
		return "space resume · s skip · f finish · r restart · q quit"
	case playback.FinalStage:
		return "r restart · q quit"
	default:
		return "space pause · s skip · f finish · r restart · q quit"
	}
}

// formatRemaining renders d as m:ss, rounding partial seconds up so the
// display never shows 0:00 while time remains.
func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func progressBar(fraction float64, width int) string {
	fraction = min(max(fraction, 0), 1)
	filled := int(fraction*float64(width) + 0.5)
	return lipgloss.NewStyle().Foreground(colorCalm).Render(strings.Repeat("█", filled)) +
		beatOffStyle.Render(strings.Repeat("░", width-filled))
}
