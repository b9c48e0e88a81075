// Package tui renders the interactive timer view. It is a thin boundary
// layer: it reads tracker snapshots from the events channel and issues
// commands, and never touches the ledger or datastore itself.
package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/ayoisaiah/respite/internal/timeutil"
	"github.com/ayoisaiah/respite/tracker"
)

const (
	padding  = 2
	maxWidth = 60
)

var (
	workStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B0DB43")).
			Bold(true)
	restStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#12EAEA")).
			Bold(true)
	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C492B1")).
			Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
)

type keymap struct {
	switchMode key.Binding
	togglePlay key.Binding
	end        key.Binding
	quit       key.Binding
}

var defaultKeymap = keymap{
	switchMode: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "switch work/rest"),
	),
	togglePlay: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "pause/resume"),
	),
	end: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "end session"),
	),
	quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit (session keeps its state)"),
	),
}

func (k keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.switchMode, k.togglePlay, k.end, k.quit}
}

func (k keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type snapshotMsg tracker.Snapshot

// Model is the bubbletea model for the timer view.
type Model struct {
	tracker  *tracker.Tracker
	snap     tracker.Snapshot
	progress progress.Model
	help     help.Model
	keymap   keymap
	// maxRest is the highest remaining-rest value observed, used to scale
	// the budget bar.
	maxRest time.Duration
	ending  bool
}

// New returns a timer view bound to the given tracker.
func New(t *tracker.Tracker) Model {
	return Model{
		tracker:  t,
		progress: progress.New(progress.WithDefaultGradient()),
		help:     help.New(),
		keymap:   defaultKeymap,
	}
}

func waitForSnapshot(events <-chan tracker.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-events
		if !ok {
			return nil
		}

		return snapshotMsg(snap)
	}
}

func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.tracker.Events())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		slog.Debug(spew.Sdump(msg))

		m.snap = tracker.Snapshot(msg)

		if m.snap.RestRemaining > m.maxRest {
			m.maxRest = m.snap.RestRemaining
		}

		if m.ending && !m.snap.Active {
			return m, tea.Batch(tea.ClearScreen, tea.Quit)
		}

		return m, waitForSnapshot(m.tracker.Events())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.switchMode):
			m.tracker.Dispatch(tracker.Command{
				Kind:   tracker.CmdSwitch,
				Switch: true,
			})

		case key.Matches(msg, m.keymap.togglePlay):
			kind := tracker.CmdPause
			if m.snap.Paused {
				kind = tracker.CmdResume
			}

			m.tracker.Dispatch(tracker.Command{Kind: kind})

		case key.Matches(msg, m.keymap.end):
			m.ending = true

			m.tracker.Dispatch(tracker.Command{Kind: tracker.CmdEnd})

		case key.Matches(msg, m.keymap.quit):
			return m, tea.Batch(tea.ClearScreen, tea.Quit)
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - padding*2 - 4
		if m.progress.Width > maxWidth {
			m.progress.Width = maxWidth
		}

		return m, nil

		// FrameMsg is sent when the progress bar wants to animate itself
	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress, _ = progressModel.(progress.Model)

		return m, cmd
	}

	return m, nil
}

func (m Model) modeLine() string {
	switch {
	case m.snap.Paused:
		return pausedStyle.Render("[Paused]")
	case m.snap.Working:
		return workStyle.Render(
			fmt.Sprintf("[Working] %s", m.snap.WorkActivity),
		)
	default:
		return restStyle.Render(
			fmt.Sprintf("[Resting] %s", m.snap.RestActivity),
		)
	}
}

func (m Model) View() string {
	if !m.snap.Active {
		return faintStyle.Render("No session in progress.\n")
	}

	ratio := 0.0
	if m.maxRest > 0 {
		ratio = float64(m.snap.RestRemaining) / float64(m.maxRest)
	}

	var b strings.Builder

	pad := strings.Repeat(" ", padding)

	b.WriteString("\n" + pad + m.modeLine() + "\n\n")
	b.WriteString(pad + "Work time  " +
		workStyle.Render(timeutil.FormatDuration(m.snap.WorkTime)) + "\n")
	b.WriteString(pad + "Rest left  " +
		restStyle.Render(timeutil.FormatDuration(m.snap.RestRemaining)) +
		"\n\n")
	b.WriteString(pad + m.progress.ViewAs(ratio) + "\n\n")
	b.WriteString(pad + faintStyle.Render(
		fmt.Sprintf("%d journal segments since %s",
			m.snap.Segments,
			m.snap.SessionStart.Format("15:04:05"),
		)) + "\n\n")
	b.WriteString(pad + m.help.View(m.keymap) + "\n")

	return b.String()
}
