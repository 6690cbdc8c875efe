package bubbletea

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/proofread"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the proofread console.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable transcript. Exported for test access.
	Viewport viewport.Model
	// Spinner animates the status line while a run is active.
	Spinner spinner.Model

	run      RunFunc
	catalog  proofread.Catalog
	lang     proofread.Language
	maxWords int
	theme    proofread.Theme
	styles   Styles

	blocks  []MessageBlock
	current *ResultBlock

	running   bool
	cancel    context.CancelFunc
	replaceCh chan string
	doneCh    chan proofread.Result
	last      proofread.Result
	width     int
	ready     bool
}

// Option configures a Model.
type Option func(*Model)

// WithLanguage sets the interface language used for console messages.
func WithLanguage(lang proofread.Language) Option {
	return func(m *Model) { m.lang = lang }
}

// WithMaxWords sets the input word limit. Zero disables it.
func WithMaxWords(n int) Option {
	return func(m *Model) { m.maxWords = n }
}

// New creates a new console Model.
func New(run RunFunc, catalog proofread.Catalog, theme proofread.Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Type English text to check..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))

	m := Model{
		Input:    ti,
		Spinner:  sp,
		run:      run,
		catalog:  catalog,
		lang:     proofread.DefaultLanguage,
		maxWords: proofread.DefaultMaxWords,
		theme:    theme,
		styles:   NewStyles(theme),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.Spinner.Style = m.styles.Accent
	return m
}

// Running returns whether a run is in progress.
func (m Model) Running() bool { return m.running }

// LastResult returns the outcome of the most recent finished run.
func (m Model) LastResult() proofread.Result { return m.last }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplaceMsg:
		if m.current != nil {
			m.current.Replace(msg.Text)
			m.refresh()
		}
		if m.replaceCh != nil {
			return m, listenForReplace(m.replaceCh, m.doneCh)
		}
		return m, nil

	case RunDoneMsg:
		if m.current != nil {
			m.current.Finish(msg.Result)
			m.refresh()
		}
		if m.cancel != nil {
			m.cancel()
		}
		m.last = msg.Result
		m.current = nil
		m.running = false
		m.cancel = nil
		m.replaceCh = nil
		m.doneCh = nil
		return m, m.Input.Focus()

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	// Viewport always receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := msg.Height - inputH - statusHeight - borderHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	m.width = msg.Width
	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		return m.submitInput(m.Input.Value())
	}

	// When idle, pass keys to both the input (for typing) and viewport
	// (for scrolling). Only non-character keys reach the viewport so
	// letters like 'j'/'k' are typed rather than scrolling.
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	text = strings.TrimSpace(text)
	if err := proofread.ValidateInput(text, m.maxWords); err != nil {
		if text == "" {
			return m, nil
		}
		m.blocks = append(m.blocks, NewNoticeBlock(proofread.InputErrorText(m.catalog, m.lang, err, m.maxWords), m.styles))
		m.refresh()
		return m, nil
	}

	m.Input.SetValue("")
	m.blocks = append(m.blocks, NewUserMessageBlock(text, m.styles))
	m.current = NewResultBlock(m.theme, m.styles)
	m.blocks = append(m.blocks, m.current)
	m.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	// Unbuffered: each publish completes once the model has taken it.
	m.replaceCh = make(chan string)
	m.doneCh = make(chan proofread.Result, 1)
	m.running = true

	m.Input.Blur()

	return m, tea.Batch(
		startRun(m.run, ctx, text, m.replaceCh, m.doneCh),
		listenForReplace(m.replaceCh, m.doneCh),
		m.Spinner.Tick,
	)
}

func (m *Model) refresh() {
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
}

func (m Model) renderContent() string {
	if len(m.blocks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

func (m Model) statusLine() string {
	if m.running {
		line := m.catalog.Message(m.lang, proofread.MessageChecking)
		return m.Spinner.View() + " " + m.styles.Muted.Render(truncate(line, m.width-2))
	}
	words := proofread.CountWords(m.Input.Value())
	line := fmt.Sprintf("%d words · Enter to check, Ctrl+C to quit", words)
	if m.maxWords > 0 {
		line = fmt.Sprintf("%d/%d words · Enter to check, Ctrl+C to quit", words, m.maxWords)
	}
	style := m.styles.Muted
	if m.maxWords > 0 && words > m.maxWords {
		style = m.styles.Error
	}
	return style.Render(truncate(line, m.width))
}

// truncate shortens s to fit width terminal cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// startRun runs one check in a goroutine and signals completion.
func startRun(run RunFunc, ctx context.Context, text string, replaceCh chan<- string, doneCh chan<- proofread.Result) tea.Cmd {
	return func() tea.Msg {
		result := run(ctx, text, &channelSink{ch: replaceCh})
		close(replaceCh)
		doneCh <- result
		return nil
	}
}

// listenForReplace waits for the next snapshot from the channel.
// When the channel closes, it reads the result from doneCh and returns
// RunDoneMsg.
func listenForReplace(ch <-chan string, doneCh <-chan proofread.Result) tea.Cmd {
	return func() tea.Msg {
		text, ok := <-ch
		if !ok {
			return RunDoneMsg{Result: <-doneCh}
		}
		return ReplaceMsg{Text: text}
	}
}
