package app

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kerbaras/mangapdf/pkg/services"
)

func TestModel_ListenForProgress(t *testing.T) {
	events := make(chan services.Progress, 1)
	m := newModel(events, nil)

	events <- services.Progress{Stage: services.StageMerging, Title: "Test"}
	msg := m.listenForProgress()
	if _, ok := msg.(progressMsg); !ok {
		t.Fatalf("Expected progressMsg, got %T", msg)
	}

	close(events)
	if _, ok := m.listenForProgress().(closedMsg); !ok {
		t.Fatal("Expected closedMsg after channel close")
	}
}

func TestModel_Update(t *testing.T) {
	events := make(chan services.Progress)
	m := newModel(events, nil)

	_, cmd := m.Update(progressMsg{Stage: services.StageDownloading, Title: "Test Manga", Chapter: "A", ChapterIndex: 1, ChapterCount: 1, TotalPages: 2})
	if cmd == nil {
		t.Error("Expected a command to keep listening")
	}
	if !strings.Contains(m.View(), "Test Manga") {
		t.Errorf("Expected view to show title, got:\n%s", m.View())
	}
	if !strings.Contains(m.View(), "q: cancel") {
		t.Error("Expected help line while running")
	}

	_, cmd = m.Update(closedMsg{})
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestModel_CancelKey(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := newModel(make(chan services.Progress), cancel)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	if ctx.Err() == nil {
		t.Error("Expected ctrl+c to cancel the run")
	}
	if !strings.Contains(m.View(), "cancelling") {
		t.Errorf("Expected cancelling notice, got:\n%s", m.View())
	}
}

func TestModel_WindowResize(t *testing.T) {
	m := newModel(make(chan services.Progress), nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	// No panic and the view still renders
	if m.View() == "" {
		t.Error("Expected non-empty view")
	}
}
