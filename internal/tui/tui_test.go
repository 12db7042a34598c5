package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/waifu2ugc/internal/config"
	"github.com/handiism/waifu2ugc/internal/export"
	"github.com/handiism/waifu2ugc/internal/model"
)

func validSettings() *config.Settings {
	s := config.DefaultSettings()
	s.Template = "template.png"
	s.Faces["front"] = config.FaceSettings{
		Enabled: true, Rect: config.Rect{Width: 4, Height: 4},
		HorizontalCount: 2, VerticalCount: 1, Image: "front.png",
	}
	return s
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestInvalidSettingsShowError(t *testing.T) {
	m := NewModel(config.DefaultSettings(), nil)
	if m.jobErr == nil {
		t.Fatal("expected a validation error without template")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateError {
		t.Errorf("state = %v, want StateError", m.state)
	}
	if !strings.Contains(m.View(), "template") {
		t.Errorf("view does not mention the template problem:\n%s", m.View())
	}
}

func TestDoneMessages(t *testing.T) {
	tests := []struct {
		name   string
		result export.Result
		want   State
	}{
		{"finished", export.Result{Outcome: export.OutcomeFinished, Written: 2}, StateComplete},
		{"aborted", export.Result{Outcome: export.OutcomeAborted, Message: "Canceled while exporting."}, StateAborted},
		{"failed", export.Result{Outcome: export.OutcomeFailed, Err: errors.New("boom")}, StateError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(validSettings(), nil)
			m.state = StateExporting

			m = update(t, m, ExportDoneMsg{Result: tt.result})
			if m.state != tt.want {
				t.Errorf("state = %v, want %v", m.state, tt.want)
			}

			m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
			if m.state != StateInput {
				t.Errorf("state after reset = %v, want StateInput", m.state)
			}
		})
	}
}

func TestInputViewListsFaces(t *testing.T) {
	m := NewModel(validSettings(), nil)
	view := m.View()

	for _, want := range []string{"Front", "2x1 tiles of 4x4", "Grid: 2x1x1", "Output directory:"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if m.job.Face(model.FaceFront).Source != "front.png" {
		t.Errorf("job not built from settings")
	}
}

func TestAppendLog(t *testing.T) {
	var logs []LogEntry
	for i := 0; i < maxLogs+5; i++ {
		logs = appendLog(logs, export.Event{Kind: export.EventStatus, Message: fmt.Sprintf("status %d", i)})
	}
	if len(logs) != maxLogs {
		t.Fatalf("len = %d, want %d", len(logs), maxLogs)
	}
	if logs[len(logs)-1].Message != fmt.Sprintf("status %d", maxLogs+4) {
		t.Errorf("last = %q", logs[len(logs)-1].Message)
	}

	logs = appendLog(nil, export.Event{Kind: export.EventStatus})
	if len(logs) != 0 {
		t.Error("empty status should not be logged")
	}
	logs = appendLog(nil, export.Event{Kind: export.EventFinished})
	if len(logs) != 1 || logs[0].Message != "Export finished" {
		t.Errorf("logs = %+v", logs)
	}
}
