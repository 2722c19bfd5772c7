// Package tui is the full-screen terminal interface. It renders controller
// state with the view package and turns key presses into controller calls.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"AskChat/internal/answer"
	"AskChat/internal/chatclient"
	"AskChat/internal/view"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	footerHelp    = "enter: ask • ↑/↓: browse history • tab: reuse question • ctrl+r: refresh • esc: quit"
)

// Messages for tea updates
type (
	// stateMsg asks the model to re-read controller state.
	stateMsg struct{}
)

// Model is the bubbletea model of the chat screen.
type Model struct {
	ctx  context.Context
	ctrl *chatclient.Controller

	// UI Components
	textinput textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model
	styles    view.Styles
	renderer  *glamour.TermRenderer
	markdown  bool

	// State
	state  chatclient.State
	cursor int
	width  int
	height int
}

// Option configures a Model
type Option func(*Model)

// WithStyles overrides the default terminal styles
func WithStyles(st view.Styles) Option {
	return func(m *Model) { m.styles = st }
}

// WithoutMarkdown shows answers verbatim instead of rendering them as markdown
func WithoutMarkdown() Option {
	return func(m *Model) { m.markdown = false }
}

// New creates the chat screen for ctrl. ctx bounds every request it makes.
func New(ctx context.Context, ctrl *chatclient.Controller, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = view.InputPlaceholder
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Width = defaultWidth - 16
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:       ctx,
		ctrl:      ctrl,
		textinput: ti,
		spinner:   sp,
		viewport:  viewport.New(defaultWidth, defaultHeight/2),
		styles:    view.DefaultStyles(),
		markdown:  true,
		state:     ctrl.Snapshot(),
		cursor:    -1,
		width:     defaultWidth,
		height:    defaultHeight,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.markdown {
		m.renderer = newRenderer(m.width)
	}
	m.refresh()
	return m
}

func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return nil
	}
	return r
}

// Init loads the history once the program starts.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.initialize(),
	)
}

func (m Model) initialize() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		ctrl.Initialize(ctx)
		return stateMsg{}
	}
}

func (m Model) refreshHistory() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		_ = ctrl.FetchHistory(ctx)
		return stateMsg{}
	}
}

func waitFor(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return stateMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			return m.handleSubmit()

		case tea.KeyUp:
			if n := len(m.state.History); n > 0 {
				if m.cursor <= 0 {
					m.cursor = n - 1
				} else {
					m.cursor--
				}
				m.refresh()
			}
			return m, nil

		case tea.KeyDown:
			if n := len(m.state.History); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.refresh()
			}
			return m, nil

		case tea.KeyTab:
			return m.handleSelect()

		case tea.KeyCtrlR:
			return m, m.refreshHistory()

		case tea.KeyPgUp, tea.KeyPgDown:
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

		// The input is disabled while a question is in flight.
		if !m.state.Loading {
			before := m.textinput.Value()
			m.textinput, tiCmd = m.textinput.Update(msg)
			if after := m.textinput.Value(); after != before {
				m.ctrl.SetQuestion(after)
				m.state.Question = after
			}
		}
		return m, tiCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textinput.Width = msg.Width - 16
		m.viewport.Width = msg.Width
		m.fitViewport()
		if m.markdown {
			m.renderer = newRenderer(msg.Width)
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.state.Loading {
			var spCmd tea.Cmd
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}
		return m, nil

	case stateMsg:
		wasLoading := m.state.Loading
		m.syncState()
		if wasLoading && !m.state.Loading {
			m.textinput.Focus()
			return m, textinput.Blink
		}
		return m, nil
	}

	m.textinput, tiCmd = m.textinput.Update(msg)
	return m, tiCmd
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if m.state.Loading {
		return m, nil
	}
	if strings.TrimSpace(m.textinput.Value()) == "" {
		return m, nil
	}

	m.ctrl.SetQuestion(m.textinput.Value())
	done, ok := m.ctrl.Submit(m.ctx)
	if !ok {
		return m, nil
	}

	m.textinput.Blur()
	m.syncState()

	return m, tea.Batch(
		m.spinner.Tick,
		waitFor(done),
	)
}

func (m Model) handleSelect() (tea.Model, tea.Cmd) {
	if m.cursor < 0 || m.cursor >= len(m.state.History) {
		return m, nil
	}
	q := m.state.History[m.cursor].Question
	m.ctrl.SelectHistoryItem(q)
	m.syncState()
	return m, nil
}

// syncState copies controller state into the model and the input widget.
func (m *Model) syncState() {
	m.state = m.ctrl.Snapshot()
	if m.textinput.Value() != m.state.Question {
		m.textinput.SetValue(m.state.Question)
		m.textinput.CursorEnd()
	}
	if m.cursor >= len(m.state.History) {
		m.cursor = len(m.state.History) - 1
	}
	m.fitViewport()
	m.refresh()
}

// fitViewport gives the answer area whatever the header, history and form leave.
func (m *Model) fitViewport() {
	m.viewport.Height = max(m.height-m.chromeHeight(), 3)
}

// refresh re-renders the scrollable answer area.
func (m *Model) refresh() {
	var parts []string
	if p := view.MatchedQuestionPanel(m.styles, m.state.MatchedQuestion); p != "" {
		parts = append(parts, p)
	}
	if p := view.AnswerPanel(m.styles, m.answerBody(), m.state.Source); p != "" {
		parts = append(parts, p)
	}
	m.viewport.SetContent(strings.Join(parts, "\n\n"))
	m.viewport.GotoTop()
}

// answerBody renders service answers as markdown; fixed error texts stay plain.
func (m Model) answerBody() string {
	text := m.state.Answer
	if text == "" || m.renderer == nil || m.state.Source == answer.SourceError {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func (m Model) chromeHeight() int {
	return lineCount(m.headerView()) + lineCount(m.historyView()) + lineCount(m.formView()) + 4
}

func (m Model) headerView() string {
	return view.Header(m.styles)
}

func (m Model) historyView() string {
	return view.HistoryPanel(m.styles, m.state.History, m.cursor)
}

func (m Model) formView() string {
	button := "[ " + view.ButtonLabel(m.state.Loading) + " ]"
	if m.state.Loading {
		button = m.spinner.View() + " " + button
	}
	return m.textinput.View() + "  " + button
}

// View renders the whole screen.
func (m Model) View() string {
	return strings.Join([]string{
		m.headerView(),
		"",
		m.historyView(),
		"",
		m.formView(),
		"",
		m.viewport.View(),
		m.styles.Muted.Render(footerHelp),
	}, "\n")
}

func lineCount(s string) int {
	return strings.Count(s, "\n") + 1
}

// Run starts the chat screen and blocks until the user quits.
func Run(ctx context.Context, ctrl *chatclient.Controller, opts ...Option) error {
	model := New(ctx, ctrl, opts...)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Changes made off the UI goroutine, such as the loading flag of a running
	// request, are pushed into the program. Send must not block Update.
	ctrl.Subscribe(func(chatclient.State) {
		go p.Send(stateMsg{})
	})

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
