package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kerbaras/mangapdf/pkg/app/components"
	"github.com/kerbaras/mangapdf/pkg/app/styles"
	"github.com/kerbaras/mangapdf/pkg/services"
)

// progressMsg wraps one pipeline update.
type progressMsg services.Progress

// closedMsg is sent once the progress channel is closed.
type closedMsg struct{}

// App is the --tui front end: it renders pipeline progress until the
// progress channel closes. Pressing q or ctrl+c cancels the run.
type App struct {
	events <-chan services.Progress
	cancel context.CancelFunc
}

func NewApp(events <-chan services.Progress, cancel context.CancelFunc) *App {
	return &App{events: events, cancel: cancel}
}

func (a *App) Run(ctx context.Context) error {
	p := tea.NewProgram(newModel(a.events, a.cancel), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

type model struct {
	events   <-chan services.Progress
	cancel   context.CancelFunc
	tracker  *components.ProgressTracker
	quitting bool
}

func newModel(events <-chan services.Progress, cancel context.CancelFunc) *model {
	return &model{
		events:  events,
		cancel:  cancel,
		tracker: components.NewProgressTracker(60),
	}
}

func (m *model) Init() tea.Cmd {
	return m.listenForProgress
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.tracker.SetWidth(msg.Width - 4)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			// The pending listener keeps draining until the pipeline
			// unwinds and closes the channel.
			m.quitting = true
			return m, nil
		}

	case progressMsg:
		m.tracker.Update(services.Progress(msg))
		return m, m.listenForProgress

	case closedMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m *model) View() string {
	view := m.tracker.View()
	if m.quitting && !m.tracker.Finished() {
		return view + styles.StatusWarning.Render("cancelling...") + "\n"
	}
	if !m.tracker.Finished() {
		view += styles.HelpStyle.Render("q: cancel")
	}
	return view
}

func (m *model) listenForProgress() tea.Msg {
	p, ok := <-m.events
	if !ok {
		return closedMsg{}
	}
	return progressMsg(p)
}
