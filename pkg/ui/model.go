package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/jobbot/pkg/chat"
	"github.com/go-go-golems/jobbot/pkg/conversation"
	"github.com/go-go-golems/jobbot/pkg/markup"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	userStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	botStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("118"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	noticeStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("246"))
	buttonStyle  = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63"))
	focusedStyle = buttonStyle.BorderForeground(lipgloss.Color("205")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	typingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

var inlineMarkStyles = markup.DefaultStyles()

const timeLayout = "3:04 PM"

// ChatActions is the part of chat.Controller the model drives.
type ChatActions interface {
	Send(ctx context.Context, text string) error
	SelectSlot(ctx context.Context, slot conversation.TimeSlot) error
	SelectAction(ctx context.Context, action string) error
	Reset()
}

type role int

const (
	roleUser role = iota
	roleBot
	roleError
)

type button struct {
	label string
	slot  *conversation.TimeSlot
}

type item struct {
	role    role
	text    string
	time    time.Time
	notice  string
	buttons []button
}

func newBotItem(e chat.BotEntry) item {
	ret := item{role: roleBot, text: e.Text, time: e.Time}
	if e.SlotPicker {
		if len(e.Slots) == 0 {
			ret.notice = chat.NoSlotsNotice
		}
		for i := range e.Slots {
			slot := e.Slots[i]
			ret.buttons = append(ret.buttons, button{label: slot.Display, slot: &slot})
		}
		return ret
	}
	for _, a := range e.Actions {
		ret.buttons = append(ret.buttons, button{label: a})
	}
	return ret
}

// ChatModel renders the transcript, the buttons of the latest bot message
// and the input line.
type ChatModel struct {
	ctx  context.Context
	chat ChatActions

	items    []item
	focus    int
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	typing      bool
	sendEnabled bool
	blurred     bool
	width       int
	height      int
}

func NewChatModel(ctx context.Context, actions ChatActions) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Type your message..."
	ti.Prompt = "› "
	ti.CharLimit = 1000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = typingStyle

	return ChatModel{
		ctx:         ctx,
		chat:        actions,
		focus:       -1,
		input:       ti,
		viewport:    viewport.New(80, 20),
		spinner:     sp,
		sendEnabled: true,
	}
}

func (m ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

// activeButtons are the buttons of the most recent entry that has any.
func (m ChatModel) activeButtons() []button {
	for i := len(m.items) - 1; i >= 0; i-- {
		if len(m.items[i].buttons) > 0 {
			return m.items[i].buttons
		}
		if m.items[i].role == roleUser {
			return nil
		}
	}
	return nil
}

func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = v.Width, v.Height
		m.input.Width = max(v.Width-4, 10)
		m.viewport.Width = v.Width
		m.viewport.Height = max(v.Height-m.chromeHeight(), 3)
		m.refresh()
		return m, nil

	case userEntryMsg:
		m.items = append(m.items, item{role: roleUser, text: v.Text, time: v.Time})
		m.focus = -1
		m.refresh()
		return m, nil
	case botEntryMsg:
		m.items = append(m.items, newBotItem(chat.BotEntry(v)))
		m.focus = -1
		m.refresh()
		return m, nil
	case errorEntryMsg:
		m.items = append(m.items, item{role: roleError, text: v.Text, time: v.Time})
		m.refresh()
		return m, nil
	case clearMsg:
		m.items = nil
		m.focus = -1
		m.refresh()
		return m, nil
	case typingMsg:
		m.typing = bool(v)
		m.refresh()
		if m.typing {
			return m, m.spinner.Tick
		}
		return m, nil
	case sendEnabledMsg:
		m.sendEnabled = bool(v)
		return m, nil
	case clearInputMsg:
		m.input.SetValue("")
		return m, nil

	case spinner.TickMsg:
		if !m.typing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(v)
		return m, cmd

	case actionDoneMsg:
		if v.err != nil && !errors.Is(v.err, chat.ErrSendInFlight) {
			log.Debug().Err(v.err).Str("action", v.action).Msg("chat action failed")
		}
		// the controller skips SetSendEnabled when it drops a blank slot or
		// action, so the input is unlocked here once the action returns
		switch v.action {
		case "send", "select-slot", "select-action":
			if !errors.Is(v.err, chat.ErrSendInFlight) {
				m.sendEnabled = true
			}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(v)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ChatModel) handleKey(k tea.KeyMsg) (ChatModel, tea.Cmd) {
	if m.blurred {
		return m, nil
	}
	buttons := m.activeButtons()
	switch k.String() {
	case "tab", "down":
		if len(buttons) > 0 {
			m.focus++
			if m.focus >= len(buttons) {
				m.focus = -1
			}
			m.refresh()
		}
		return m, nil
	case "shift+tab", "up":
		if len(buttons) > 0 {
			m.focus--
			if m.focus < -1 {
				m.focus = len(buttons) - 1
			}
			m.refresh()
		}
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(k)
		return m, cmd
	case "ctrl+r":
		m.focus = -1
		return m, m.run("reset", func(context.Context) error {
			m.chat.Reset()
			return nil
		})
	case "enter":
		if !m.sendEnabled {
			return m, nil
		}
		if m.focus >= 0 && m.focus < len(buttons) {
			b := buttons[m.focus]
			m.focus = -1
			m.sendEnabled = false
			if b.slot != nil {
				slot := *b.slot
				return m, m.run("select-slot", func(ctx context.Context) error { return m.chat.SelectSlot(ctx, slot) })
			}
			return m, m.run("select-action", func(ctx context.Context) error { return m.chat.SelectAction(ctx, b.label) })
		}
		text := m.input.Value()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		m.sendEnabled = false
		return m, m.run("send", func(ctx context.Context) error { return m.chat.Send(ctx, text) })
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	return m, cmd
}

func (m ChatModel) run(action string, f func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: action, err: f(ctx)}
	}
}

// Blur stops key handling while an overlay is open.
func (m *ChatModel) Blur() {
	m.blurred = true
	m.input.Blur()
}

func (m *ChatModel) Unblur() tea.Cmd {
	m.blurred = false
	return m.input.Focus()
}

func (m ChatModel) chromeHeight() int {
	// header, typing line, input, help
	return 4
}

func (m *ChatModel) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m ChatModel) renderTranscript() string {
	if len(m.items) == 0 {
		return ""
	}
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	textStyle := lipgloss.NewStyle().Width(max(width-2, 10))
	active := -1
	for i := len(m.items) - 1; i >= 0; i-- {
		if len(m.items[i].buttons) > 0 {
			active = i
			break
		}
		if m.items[i].role == roleUser {
			break
		}
	}

	var b strings.Builder
	for i, it := range m.items {
		if i > 0 {
			b.WriteString("\n")
		}
		var who string
		var body string
		switch it.role {
		case roleUser:
			who = userStyle.Render("You")
			body = markup.StripControl(it.text)
		case roleBot:
			who = botStyle.Render("JobBot")
			body = inlineMarkStyles.Terminal(it.text)
		case roleError:
			who = errorStyle.Render("Error")
			body = errorStyle.Render(markup.StripControl(it.text))
		}
		b.WriteString(who)
		if !it.time.IsZero() {
			b.WriteString(" " + timeStyle.Render(it.time.Format(timeLayout)))
		}
		b.WriteString("\n")
		b.WriteString(textStyle.Render(body))
		b.WriteString("\n")
		if it.notice != "" {
			b.WriteString(noticeStyle.Render(it.notice) + "\n")
		}
		if len(it.buttons) > 0 {
			rendered := make([]string, 0, len(it.buttons))
			for j, btn := range it.buttons {
				style := buttonStyle
				if i == active && j == m.focus {
					style = focusedStyle
				}
				rendered = append(rendered, style.Render(markup.StripControl(btn.label)))
			}
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...) + "\n")
		}
	}
	return b.String()
}

func (m ChatModel) View() string {
	header := headerStyle.Render("JobBot · booking assistant")
	typing := ""
	if m.typing {
		typing = m.spinner.View() + typingStyle.Render(" JobBot is typing…")
	}
	help := helpStyle.Render("enter send · tab buttons · ctrl+r new chat · pgup/pgdown scroll · ctrl+c quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		typing,
		m.input.View(),
		help,
	)
}
