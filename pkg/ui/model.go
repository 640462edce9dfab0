package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/marionette/pkg/echo"
	"github.com/go-go-golems/marionette/pkg/events"
	"github.com/go-go-golems/marionette/pkg/player"
	"github.com/go-go-golems/marionette/pkg/render"
	"github.com/go-go-golems/marionette/pkg/script"
	"github.com/muesli/reflow/wordwrap"
	"github.com/pkg/errors"
)

type errMsg error

// states:
// - viewing, transport keys drive the player
// - composing, keystrokes go to the composer textarea

type State string

const (
	StateViewing   State = "viewing"
	StateComposing State = "composing"
)

// pendingTurn is the in-flight turn between turn-start and commit.
type pendingTurn struct {
	kind    script.Kind
	role    script.Role
	partial string
	// staged is set once composer events route the turn into the textarea
	// instead of the transcript.
	staged     bool
	toolName   string
	toolDetail string
}

type model struct {
	player *player.Player
	// responder, when set, answers composer submissions. Nil means the
	// composer only mirrors staged script turns.
	responder echo.Responder
	title     string

	viewport viewport.Model
	textArea textarea.Model
	spinner  spinner.Model
	help     help.Model

	keyMap KeyMap
	style  *Style

	width  int
	height int

	committed []script.Turn
	current   *pendingTurn
	playback  events.StateSnapshot

	state         State
	err           error
	awaitingReply bool
	autoplay      bool
}

type ModelOption func(*model)

func WithTitle(title string) ModelOption {
	return func(m *model) {
		m.title = title
	}
}

// WithResponder switches the composer live: submissions interrupt playback
// and the responder's reply is loaded as a fresh one-turn script.
func WithResponder(responder echo.Responder) ModelOption {
	return func(m *model) {
		m.responder = responder
	}
}

// WithAutoplay starts playback as soon as the program is running.
func WithAutoplay() ModelOption {
	return func(m *model) {
		m.autoplay = true
	}
}

func InitialModel(p *player.Player, options ...ModelOption) model {
	ret := model{
		player:   p,
		style:    DefaultStyles(),
		keyMap:   DefaultKeyMap,
		viewport: viewport.New(0, 0),
		help:     help.New(),
		playback: p.State(),
		state:    StateViewing,
	}

	for _, option := range options {
		option(&ret)
	}

	ret.spinner = spinner.New()
	ret.spinner.Spinner = spinner.Dot

	ret.textArea = textarea.New()
	ret.textArea.SetHeight(3)
	if ret.live() {
		ret.textArea.Placeholder = "Type a message, tab sends it..."
	}
	ret.textArea.Blur()

	ret.viewport.SetContent(ret.messageView())
	ret.viewport.YPosition = 0

	ret.updateKeyBindings()

	return ret
}

func (m model) live() bool {
	return m.responder != nil
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick}
	if m.autoplay {
		cmds = append(cmds, transportCmd(m.player.Play))
	}
	return tea.Batch(cmds...)
}

// transportCmd runs a player transport call as a command. Transport calls
// publish events and block until the subscriber acks, so they cannot run
// inside Update while the forwarder is trying to Send into it.
func transportCmd(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.err != nil && m.state == StateViewing {
			// any key dismisses a shown error
			m.err = nil
		}

		switch {
		case key.Matches(msg, m.keyMap.Quit, m.keyMap.ForceQuit):
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.BlurComposer):
			if m.state == StateComposing {
				m.textArea.Blur()
				m.state = StateViewing
				m.updateKeyBindings()
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, m.keyMap.FocusComposer):
			if m.state == StateViewing {
				cmd = m.textArea.Focus()
				cmds = append(cmds, cmd)
				m.state = StateComposing
				m.updateKeyBindings()
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, m.keyMap.SubmitComposer):
			cmd = m.submit()
			cmds = append(cmds, cmd)
			return m, tea.Batch(cmds...)

		case key.Matches(msg, m.keyMap.TogglePlay):
			player_ := m.player
			cmds = append(cmds, transportCmd(func() {
				if player_.State().Status == string(player.StatusPlaying) {
					player_.Pause()
				} else {
					player_.Play()
				}
			}))
			return m, tea.Batch(cmds...)

		case key.Matches(msg, m.keyMap.Skip):
			cmds = append(cmds, transportCmd(m.player.Skip))
			return m, tea.Batch(cmds...)

		case key.Matches(msg, m.keyMap.Next):
			cmds = append(cmds, transportCmd(m.player.Next))
			return m, tea.Batch(cmds...)

		case key.Matches(msg, m.keyMap.Restart):
			cmds = append(cmds, transportCmd(m.player.Restart))
			return m, tea.Batch(cmds...)

		case key.Matches(msg, m.keyMap.FasterReveal):
			player_ := m.player
			cmds = append(cmds, transportCmd(func() {
				player_.SetSpeed(player_.State().Rate + 5)
			}))
			return m, tea.Batch(cmds...)

		case key.Matches(msg, m.keyMap.SlowerReveal):
			player_ := m.player
			cmds = append(cmds, transportCmd(func() {
				player_.SetSpeed(player_.State().Rate - 5)
			}))
			return m, tea.Batch(cmds...)

		case key.Matches(msg, m.keyMap.LongerDwell):
			player_ := m.player
			cmds = append(cmds, transportCmd(func() {
				player_.SetDelay(player_.State().DelayMs + 100)
			}))
			return m, tea.Batch(cmds...)

		case key.Matches(msg, m.keyMap.ShorterDwell):
			player_ := m.player
			cmds = append(cmds, transportCmd(func() {
				player_.SetDelay(player_.State().DelayMs - 100)
			}))
			return m, tea.Batch(cmds...)

		case key.Matches(msg, m.keyMap.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.recomputeSize()
			return m, tea.Batch(cmds...)

		default:
			switch m.state {
			case StateComposing:
				m.textArea, cmd = m.textArea.Update(msg)
				cmds = append(cmds, cmd)
			case StateViewing:
				m.viewport, cmd = m.viewport.Update(msg)
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		m.recomputeSize()

	case errMsg:
		m.err = msg
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	// playback events forwarded from the router
	case PlaybackStartMsg:
		// in live mode the transcript accumulates across loaded replies, so
		// the reset signal only applies to scripted playback
		if !m.live() {
			m.committed = nil
		}
		m.current = nil
		cmds = append(cmds, func() tea.Msg {
			return refreshMessageMsg{GoToBottom: true}
		})

	case TurnStartMsg:
		m.current = &pendingTurn{
			kind: msg.Kind,
			role: msg.Role,
		}
		cmds = append(cmds, func() tea.Msg {
			return refreshMessageMsg{GoToBottom: true}
		})

	case RevealMsg:
		if m.current == nil {
			m.current = &pendingTurn{kind: script.KindMessage}
		}
		m.current.partial = msg.Partial
		cmds = append(cmds, func() tea.Msg {
			return refreshMessageMsg{GoToBottom: true}
		})

	case ComposerMsg:
		if m.current != nil {
			m.current.staged = true
		}
		if m.state != StateComposing {
			m.textArea.SetValue(msg.Staged)
		}
		cmds = append(cmds, func() tea.Msg {
			return refreshMessageMsg{}
		})

	case ToolCallMsg:
		if m.current == nil {
			m.current = &pendingTurn{}
		}
		m.current.kind = script.KindToolCall
		m.current.toolName = msg.Name
		m.current.toolDetail = msg.Input
		cmds = append(cmds, func() tea.Msg {
			return refreshMessageMsg{GoToBottom: true}
		})

	case ToolResultMsg:
		if m.current == nil {
			m.current = &pendingTurn{}
		}
		m.current.kind = script.KindToolResult
		m.current.toolName = msg.Name
		m.current.toolDetail = msg.Summary
		if m.current.toolDetail == "" {
			m.current.toolDetail = msg.Result
		}
		cmds = append(cmds, func() tea.Msg {
			return refreshMessageMsg{GoToBottom: true}
		})

	case CommitMsg:
		if m.current != nil && m.current.staged {
			m.textArea.Reset()
		}
		m.committed = append(m.committed, msg.Turn)
		m.current = nil
		cmds = append(cmds, func() tea.Msg {
			return refreshMessageMsg{GoToBottom: true}
		})

	case StateMsg:
		m.playback = msg.State

	case FinishedMsg:
		m.current = nil
		cmds = append(cmds, func() tea.Msg {
			return refreshMessageMsg{GoToBottom: true}
		})

	case PlaybackErrorMsg:
		m.err = msg.Err

	case InterruptMsg:
		if msg.Text != "" {
			m.committed = append(m.committed, script.NewTextTurn(script.RoleUser, msg.Text))
		}
		cmds = append(cmds, func() tea.Msg {
			return refreshMessageMsg{GoToBottom: true}
		})

	case echoRepliedMsg:
		m.awaitingReply = false
		cmd = m.loadReply(msg.text)
		cmds = append(cmds, cmd)

	case echoFailedMsg:
		m.awaitingReply = false
		m.err = msg.err

	case refreshMessageMsg:
		m.viewport.SetContent(m.messageView())
		if msg.GoToBottom {
			m.viewport.GotoBottom()
		}

	default:
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *model) updateKeyBindings() {
	composing := m.state == StateComposing

	m.keyMap.TogglePlay.SetEnabled(!composing)
	m.keyMap.Skip.SetEnabled(!composing)
	m.keyMap.Next.SetEnabled(!composing)
	m.keyMap.Restart.SetEnabled(!composing)
	m.keyMap.FasterReveal.SetEnabled(!composing)
	m.keyMap.SlowerReveal.SetEnabled(!composing)
	m.keyMap.LongerDwell.SetEnabled(!composing)
	m.keyMap.ShorterDwell.SetEnabled(!composing)
	m.keyMap.Help.SetEnabled(!composing)
	m.keyMap.Quit.SetEnabled(!composing)

	m.keyMap.FocusComposer.SetEnabled(!composing && m.live())
	m.keyMap.BlurComposer.SetEnabled(composing)
	m.keyMap.SubmitComposer.SetEnabled(composing && m.live())
}

// submit interrupts playback with the composed text and asks the responder
// for a reply off the update loop.
func (m *model) submit() tea.Cmd {
	if !m.live() {
		return nil
	}
	text := strings.TrimSpace(m.textArea.Value())
	if text == "" {
		return nil
	}
	if m.awaitingReply {
		return func() tea.Msg {
			return errMsg(errors.New("still waiting for the previous reply"))
		}
	}

	m.textArea.Reset()
	m.textArea.Blur()
	m.state = StateViewing
	m.awaitingReply = true
	m.updateKeyBindings()

	player_ := m.player
	responder := m.responder
	return func() tea.Msg {
		player_.Interrupt(text)
		reply, err := responder.Reply(context.Background(), text)
		if err != nil {
			return echoFailedMsg{err: err}
		}
		return echoRepliedMsg{text: reply}
	}
}

// loadReply plays the responder's reply as a one-turn script at the current
// pacing.
func (m *model) loadReply(text string) tea.Cmd {
	s := &script.Script{
		Options: script.Options{
			TypingSpeed:    script.IntPtr(m.playback.Rate),
			MessageDelayMs: script.IntPtr(m.playback.DelayMs),
		},
		Turns: []script.Turn{
			script.NewTextTurn(script.RoleAssistant, text),
		},
	}

	player_ := m.player
	return func() tea.Msg {
		if err := player_.Load(s); err != nil {
			return errMsg(err)
		}
		player_.Play()
		return nil
	}
}

type echoRepliedMsg struct {
	text string
}

type echoFailedMsg struct {
	err error
}

type refreshMessageMsg struct {
	GoToBottom bool
}

func (m *model) recomputeSize() {
	headerHeight := lipgloss.Height(m.headerView())
	composerHeight := lipgloss.Height(m.composerView())
	statusHeight := lipgloss.Height(m.statusView())
	helpHeight := lipgloss.Height(m.help.View(m.keyMap))

	newHeight := m.height - headerHeight - composerHeight - statusHeight - helpHeight
	if newHeight < 0 {
		newHeight = 0
	}
	m.viewport.Width = m.width
	m.viewport.Height = newHeight
	m.viewport.YPosition = headerHeight + 1

	h, _ := m.style.Composer.GetFrameSize()
	m.textArea.SetWidth(m.width - h)

	m.viewport.SetContent(m.messageView())
	m.viewport.GotoBottom()
}

func (m model) headerView() string {
	if m.title != "" {
		return m.title
	}
	return "MARIONETTE"
}

func (m model) turnStyle(t *script.Turn) lipgloss.Style {
	if t.IsEvent() {
		return m.style.ToolMessage
	}
	switch t.Role {
	case script.RoleUser:
		return m.style.UserMessage
	case script.RoleAssistant:
		return m.style.AssistantMessage
	default:
		return m.style.SystemMessage
	}
}

func (m model) messageView() string {
	ret := ""

	w, _ := m.style.UserMessage.GetFrameSize()
	padding := m.style.UserMessage.GetHorizontalPadding()

	for idx := range m.committed {
		t := m.committed[idx]
		v := render.TurnText(t)
		v_ := wrapWords(v, m.width-w-padding)
		v_ = m.turnStyle(&t).Width(m.width - padding).Render(v_)
		ret += v_
		ret += "\n"
	}

	if pending := m.pendingView(); pending != "" {
		ret += pending
		ret += "\n"
	}

	return ret
}

// pendingView renders the in-flight turn below the transcript. Staged user
// turns render in the composer instead.
func (m model) pendingView() string {
	if m.current == nil || m.current.staged {
		return ""
	}

	var v string
	switch m.current.kind {
	case script.KindToolCall:
		v = fmt.Sprintf("%s[tool_call] %s: %s", m.spinner.View(), m.current.toolName, m.current.toolDetail)
	case script.KindToolResult:
		v = fmt.Sprintf("%s[tool_result] %s: %s", m.spinner.View(), m.current.toolName, m.current.toolDetail)
	default:
		role := m.current.role
		if role == "" {
			role = script.RoleAssistant
		}
		v = fmt.Sprintf("[%s]: %s", role, m.current.partial)
	}

	w, _ := m.style.PendingMessage.GetFrameSize()
	padding := m.style.PendingMessage.GetHorizontalPadding()
	v_ := wrapWords(v, m.width-w-padding)
	return m.style.PendingMessage.Width(m.width - padding).Render(v_)
}

func (m model) composerView() string {
	if m.err != nil {
		w, _ := m.style.Composer.GetFrameSize()
		v := wrapWords(m.err.Error(), m.width-w)
		return m.style.Composer.Render(v)
	}

	return m.style.Composer.Render(m.textArea.View())
}

func (m model) statusView() string {
	st := m.playback

	parts := []string{
		strings.ToUpper(st.Status),
		fmt.Sprintf("turn %d/%d", st.Cursor, st.Total),
		fmt.Sprintf("%d cps", st.Rate),
		fmt.Sprintf("dwell %d ms", st.DelayMs),
	}
	if m.current != nil && (m.current.kind == script.KindToolCall || m.current.kind == script.KindToolResult) {
		parts = append(parts, fmt.Sprintf("%s %d%%", m.current.toolName, int(m.player.Progress()*100)))
	}
	if m.awaitingReply {
		parts = append(parts, "thinking...")
	}

	return m.style.StatusBar.Render(strings.Join(parts, "  "))
}

func (m model) View() string {
	headerView := m.headerView()
	viewportView := m.viewport.View()
	composerView := m.composerView()
	statusView := m.statusView()
	helpView := m.help.View(m.keyMap)

	return headerView + "\n" + viewportView + "\n" + composerView + "\n" + statusView + "\n" + helpView
}

func wrapWords(text string, width int) string {
	if width <= 0 {
		return text
	}
	w := wordwrap.NewWriter(width)
	_, _ = fmt.Fprint(w, text)
	_ = w.Close()
	return w.String()
}
