package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/faqrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/faqrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/faqrag/internal/adapters/driving/tui/views/chat"
)

// App is the TUI application following the Elm architecture.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	chatView *chat.View

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:    ports,
		ctx:      context.Background(),
		styles:   s,
		chatView: chat.NewView(s, ports.Assistant, ports.Feedback, ports.Chat.MaxHistoryTurns),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("faqrag - Medical FAQ assistant"),
		a.chatView.Init(),
		a.loadIndexStatus(),
	)
}

func (a *App) loadIndexStatus() tea.Cmd {
	if a.ports.Index == nil {
		return nil
	}
	ctx, index := a.ctx, a.ports.Index
	return func() tea.Msg {
		coll, err := index.Status(ctx)
		return messages.IndexStatusLoaded{Collection: coll, Err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.chatView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.chatView.Stop()
			return a, tea.Quit
		}

	case messages.IndexStatusLoaded:
		a.chatView.SetIndexStatus(msg.Collection, msg.Err)
		return a, nil
	}

	var cmd tea.Cmd
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}
	return a.chatView.View()
}

// Ready reports whether the first window size has been received.
func (a *App) Ready() bool {
	return a.ready
}
