// Package tui provides a Bubble Tea terminal user interface for waifu2ugc.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/handiism/waifu2ugc/internal/config"
	"github.com/handiism/waifu2ugc/internal/export"
	"github.com/handiism/waifu2ugc/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	faceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateExporting
	StateComplete
	StateAborted
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Kind    export.EventKind
}

const maxLogs = 10

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	job       model.ExportJob
	jobErr    error
	logs      []LogEntry
	err       error

	exporter *export.Exporter
	events   chan export.Event

	// Last polled exporter state
	snapshot export.State
	result   export.Result

	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model for settings. The destination input is
// prefilled with the configured output directory.
func NewModel(settings *config.Settings, log *zap.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "/path/to/output"
	ti.SetValue(settings.OutputDir)
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	job, jobErr := settings.Job()

	events := make(chan export.Event, 256)
	exporter := export.NewExporter(settings, log, func(ev export.Event) {
		if ev.Kind == export.EventProgress {
			return
		}
		if ev.Kind == export.EventStatus {
			// Status lines are best effort; the tick polls the latest one anyway.
			select {
			case events <- ev:
			default:
			}
			return
		}
		events <- ev
	})

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		job:       job,
		jobErr:    jobErr,
		logs:      make([]LogEntry, 0),
		exporter:  exporter,
		events:    events,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForEvent())
}

// Message types
type (
	// EventMsg carries one exporter event.
	EventMsg struct {
		Event export.Event
	}

	// StartErrMsg is sent when the exporter rejects a job.
	StartErrMsg struct {
		Err error
	}

	// ExportDoneMsg is sent when the running job ends.
	ExportDoneMsg struct {
		Result export.Result
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.exporter.Cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateExporting {
				m.exporter.Cancel()
			}

		case "enter":
			if m.state == StateInput && m.textInput.Value() != "" {
				if m.jobErr != nil {
					m.state = StateError
					m.err = m.jobErr
					return m, nil
				}
				m.state = StateExporting
				return m, tea.Batch(m.startExport(m.textInput.Value()), m.spinner.Tick, m.tickProgress())
			}

		case "ctrl+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateAborted || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateAborted || m.state == StateError {
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.result = export.Result{}
				m.snapshot = export.State{}
				m.textInput.Focus()
				return m, m.progress.SetPercent(0)
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case EventMsg:
		if msg.Event.Kind != export.EventStatus || m.verbose {
			m.logs = appendLog(m.logs, msg.Event)
		}
		cmds = append(cmds, m.waitForEvent())

	case StartErrMsg:
		m.state = StateError
		m.err = msg.Err

	case ExportDoneMsg:
		m.result = msg.Result
		switch msg.Result.Outcome {
		case export.OutcomeFinished:
			m.state = StateComplete
			cmds = append(cmds, m.progress.SetPercent(1))
		case export.OutcomeAborted:
			m.state = StateAborted
		default:
			m.state = StateError
			m.err = msg.Result.Err
		}

	case TickMsg:
		if m.state == StateExporting {
			m.snapshot = m.exporter.Snapshot()
			cmds = append(cmds, m.progress.SetPercent(m.snapshot.Progress/100), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func appendLog(logs []LogEntry, ev export.Event) []LogEntry {
	message := ev.Message
	switch ev.Kind {
	case export.EventStarted:
		message = "Export started"
	case export.EventFinished:
		message = "Export finished"
	case export.EventAborted:
		message = "Export aborted: " + ev.Message
	}
	if message == "" {
		return logs
	}

	logs = append(logs, LogEntry{Message: message, Kind: ev.Kind})
	if len(logs) > maxLogs {
		logs = logs[len(logs)-maxLogs:]
	}
	return logs
}

// waitForEvent returns a command that delivers the next exporter event.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return EventMsg{Event: <-m.events}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// startExport starts the job and waits for it in the background.
func (m Model) startExport(destination string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := m.exporter.Start(ctx, m.job, destination); err != nil {
			return StartErrMsg{Err: err}
		}
		res, err := m.exporter.Wait(ctx)
		if err != nil {
			return StartErrMsg{Err: err}
		}
		return ExportDoneMsg{Result: res}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("waifu2ugc"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Cut cube faces into voxel images"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateExporting:
		b.WriteString(m.viewExporting())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateAborted:
		b.WriteString(m.viewAborted())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Output directory:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("Template: %s", m.settings.Template)))
	b.WriteString("\n")
	b.WriteString(m.renderFaces())
	b.WriteString("\n")

	if m.jobErr != nil {
		b.WriteString(warningStyle.Render("! " + m.jobErr.Error()))
		b.WriteString("\n\n")
	}

	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[x]"
	}
	b.WriteString(fmt.Sprintf("  %s Show every status line (ctrl+v)\n", verboseCheck))

	return b.String()
}

func (m Model) renderFaces() string {
	var b strings.Builder

	faces := m.job.EnabledFaces()
	if len(faces) == 0 {
		b.WriteString(dimStyle.Render("  No face enabled"))
		b.WriteString("\n")
		return b.String()
	}

	for _, f := range faces {
		b.WriteString(faceStyle.Render(fmt.Sprintf("  %-6s %dx%d tiles of %dx%d  %s",
			f.Label, f.HorizontalCount, f.VerticalCount, f.Rect.Dx(), f.Rect.Dy(), f.Source)))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  Grid: %s", m.job.Dimensions())))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewExporting() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("%s (grid %s)", m.snapshot.Phase, m.job.Dimensions())))
	b.WriteString("\n\n")

	b.WriteString(m.progress.View())
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(m.snapshot.Status))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"Export Complete!\n\n"+
			"Grid: %s\n"+
			"Voxels: %d\n"+
			"Files: %d\n"+
			"Destination: %s",
		m.result.Dimensions,
		m.result.Visited,
		m.result.Written,
		m.textInput.Value(),
	))
	b.WriteString(box)

	return b.String()
}

func (m Model) viewAborted() string {
	var b strings.Builder

	b.WriteString(warningStyle.Render("Export aborted"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  %s\n", m.result.Message))
	b.WriteString(fmt.Sprintf("  %d file(s) were written before the export stopped.\n", m.result.Written))

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", strings.ReplaceAll(m.err.Error(), "\r\n", "\n  ")))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Kind {
		case export.EventError:
			style = errorStyle
			prefix = "✗"
		case export.EventAborted:
			style = warningStyle
			prefix = "!"
		case export.EventFinished:
			style = successStyle
			prefix = "✓"
		case export.EventStarted:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: export • ctrl+v: verbose • esc: quit"
	case StateExporting:
		return "esc: cancel"
	case StateComplete, StateAborted, StateError:
		return "r: new export • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings, log *zap.Logger) error {
	p := tea.NewProgram(NewModel(settings, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
