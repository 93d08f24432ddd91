// Package chat provides the conversational view of the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/faqrag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/faqrag/internal/adapters/driving/tui/components/sources"
	"github.com/custodia-labs/faqrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/faqrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/faqrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/faqrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driving"
)

const (
	headerHeight  = 2
	inputHeight   = 3
	statusHeight  = 1
	sourcesHeight = 6
)

type entryKind int

const (
	entryUser entryKind = iota
	entryAssistant
	entryNotice
)

type entry struct {
	kind entryKind
	text string
}

// View is a single chat session: transcript, input and cited sources.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	assistant driving.Assistant
	feedback  driving.FeedbackService
	maxTurns  int

	ctx    context.Context
	cancel context.CancelFunc

	input    *input.ChatInput
	viewport viewport.Model
	spinner  spinner.Model
	status   *status.Bar
	sources  *sources.Panel

	transcript []entry
	history    []domain.ConversationTurn

	// pending is the question being answered; answer accumulates its fragments.
	pending   string
	answer    domain.Answer
	streaming strings.Builder
	fragments <-chan string
	stopped   bool

	// last is the most recent completed answer, the target of ratings.
	last  *domain.Answer
	rated bool

	indexInfo   string
	showSources bool
	width       int
	height      int
}

// NewView creates a chat view over the given ports.
func NewView(
	s *styles.Styles,
	assistant driving.Assistant,
	feedback driving.FeedbackService,
	maxTurns int,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Muted

	v := &View{
		styles:      s,
		keymap:      km,
		assistant:   assistant,
		feedback:    feedback,
		maxTurns:    maxTurns,
		ctx:         context.Background(),
		input:       input.NewChatInput(s),
		viewport:    viewport.New(80, 20),
		spinner:     sp,
		status:      status.NewBar(s, km),
		sources:     sources.NewPanel(s),
		showSources: true,
		width:       80,
		height:      30,
	}
	v.layout()
	return v
}

// WithContext sets the parent context for questions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// SetDimensions resizes the view.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.layout()
}

// SetIndexStatus shows the collection description in the header.
func (v *View) SetIndexStatus(coll domain.Collection, err error) {
	if err != nil {
		v.indexInfo = domain.IndexNotBuiltMessage
		return
	}
	v.indexInfo = fmt.Sprintf("%s: %d passages, %s", coll.Name, coll.Count, coll.ModelID)
}

// Busy reports whether a question is being answered.
func (v *View) Busy() bool {
	return v.cancel != nil
}

// History returns the conversation turns held by the session.
func (v *View) History() []domain.ConversationTurn {
	return v.history
}

// Stop cancels the answer in flight, if any.
func (v *View) Stop() {
	if v.cancel != nil {
		v.stopped = true
		v.cancel()
	}
}

// Update implements tea.Model.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.AnswerStarted:
		v.answer = msg.Answer
		v.fragments = msg.Fragments
		v.status.SetState(status.StateStreaming)
		v.transcript = append(v.transcript, entry{kind: entryAssistant})
		v.refresh()
		return v, waitForFragment(msg.Fragments)

	case messages.FragmentReceived:
		v.streaming.WriteString(msg.Text)
		v.transcript[len(v.transcript)-1].text = v.streaming.String()
		v.refresh()
		return v, waitForFragment(v.fragments)

	case messages.StreamFinished:
		v.finish()
		return v, nil

	case messages.FeedbackRecorded:
		if msg.Err != nil {
			v.status.SetState(status.StateError)
			v.status.SetMessage(msg.Err.Error())
			return v, nil
		}
		v.rated = true
		v.status.SetMessage(fmt.Sprintf("Recorded %s for the last answer", msg.Rating))
		return v, nil

	case spinner.TickMsg:
		if !v.Busy() {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	switch {
	case keymap.Matches(k, v.keymap.Cancel):
		v.Stop()
		return v, nil

	case keymap.Matches(k, v.keymap.ScrollUp), keymap.Matches(k, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case keymap.Matches(k, v.keymap.Sources):
		v.showSources = !v.showSources
		v.layout()
		return v, nil

	case keymap.Matches(k, v.keymap.Reset):
		if v.Busy() {
			return v, nil
		}
		v.reset()
		return v, nil
	}

	if v.Busy() {
		return v, nil
	}

	if v.input.Value() == "" {
		switch {
		case keymap.Matches(k, v.keymap.RateUp):
			return v, v.rate(domain.RatingUp)
		case keymap.Matches(k, v.keymap.RateDown):
			return v, v.rate(domain.RatingDown)
		}
	}

	if keymap.Matches(k, v.keymap.Send) {
		return v, v.ask()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) ask() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" {
		return nil
	}
	v.input.Reset()

	v.pending = question
	v.streaming.Reset()
	v.stopped = false
	v.status.SetMessage("")
	v.status.SetState(status.StateThinking)
	v.transcript = append(v.transcript, entry{kind: entryUser, text: question})
	v.refresh()

	ctx, cancel := context.WithCancel(v.ctx)
	v.cancel = cancel

	req := domain.AskRequest{Question: question, History: v.window()}
	assistant := v.assistant

	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		answer, fragments := assistant.AskStream(ctx, req)
		return messages.AnswerStarted{Answer: answer, Fragments: fragments}
	})
}

// finish closes the turn. A stopped answer stays in the transcript but not in history.
func (v *View) finish() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.fragments = nil

	text := strings.TrimSpace(v.streaming.String())
	v.status.SetState(status.StateReady)

	if v.stopped {
		v.transcript = append(v.transcript, entry{kind: entryNotice, text: "(answer stopped)"})
		v.refresh()
		return
	}

	v.history = append(v.history,
		domain.ConversationTurn{Role: domain.RoleUser, Content: v.pending},
		domain.ConversationTurn{Role: domain.RoleAssistant, Content: text},
	)

	answer := v.answer
	answer.Question = v.pending
	answer.Text = text
	v.last = &answer
	v.rated = false

	v.sources.SetPassages(answer.Passages)
	v.status.SetTurns(len(v.history))
	v.refresh()
}

func (v *View) rate(rating domain.Rating) tea.Cmd {
	if v.last == nil {
		return nil
	}
	if v.feedback == nil {
		v.status.SetMessage("Feedback is not enabled")
		return nil
	}
	if v.rated {
		v.status.SetMessage("The last answer is already rated")
		return nil
	}

	ctx := v.ctx
	feedback := v.feedback
	question, text := v.last.Question, v.last.Text
	return func() tea.Msg {
		_, err := feedback.Record(ctx, question, text, rating)
		return messages.FeedbackRecorded{Rating: rating, Err: err}
	}
}

func (v *View) reset() {
	v.transcript = nil
	v.history = nil
	v.last = nil
	v.rated = false
	v.sources.SetPassages(nil)
	v.status.Clear()
	v.status.SetMessage("Started a new conversation")
	v.refresh()
}

// window returns the most recent maxTurns turns of history.
func (v *View) window() []domain.ConversationTurn {
	h := v.history
	if v.maxTurns > 0 && len(h) > v.maxTurns {
		h = h[len(h)-v.maxTurns:]
	}
	out := make([]domain.ConversationTurn, len(h))
	copy(out, h)
	return out
}

func waitForFragment(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		fragment, ok := <-ch
		if !ok {
			return messages.StreamFinished{}
		}
		return messages.FragmentReceived{Text: fragment}
	}
}

func (v *View) layout() {
	v.input.SetWidth(v.width)
	v.status.SetWidth(v.width)

	body := v.height - headerHeight - inputHeight - statusHeight
	if v.showSources {
		body -= sourcesHeight
		v.sources.SetDimensions(v.width, sourcesHeight)
	}
	if body < 3 {
		body = 3
	}
	v.viewport.Width = v.width
	v.viewport.Height = body
	v.refresh()
}

func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.transcript) == 0 {
		return v.styles.Muted.Render("Ask a question about the medical FAQ. Answers cite their sources as [FAQ-n].")
	}

	wrap := lipgloss.NewStyle().Width(v.width - 2)
	blocks := make([]string, 0, len(v.transcript))
	for _, e := range v.transcript {
		switch e.kind {
		case entryUser:
			blocks = append(blocks, v.styles.UserLabel.Render("You")+"\n"+wrap.Render(e.text))
		case entryAssistant:
			text := e.text
			if text == "" {
				text = v.spinner.View()
			}
			blocks = append(blocks, v.styles.AssistantLabel.Render("Assistant")+"\n"+
				v.styles.HighlightCitations(wrap.Render(text)))
		case entryNotice:
			blocks = append(blocks, v.styles.Muted.Render(e.text))
		}
	}
	return strings.Join(blocks, "\n\n")
}

// View renders the chat.
func (v *View) View() string {
	header := v.styles.Title.Render("faqrag") + "  " + v.styles.Muted.Render(v.indexInfo)

	parts := []string{header, "", v.viewport.View()}
	if v.showSources {
		parts = append(parts, v.sources.View())
	}
	parts = append(parts, v.input.View(), v.status.View())

	return strings.Join(parts, "\n")
}
