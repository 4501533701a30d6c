package ui

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/jobbot/pkg/booking"
	"github.com/go-go-golems/jobbot/pkg/markup"
)

var (
	overlayStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("205")).Padding(1, 2)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	fieldLabel   = lipgloss.NewStyle().Bold(true).Width(16)
	fieldUnset   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("118"))
)

const (
	summaryHeading = "📋 Booking Summary"
	confirmedIcon  = "✅"
	receivedIcon   = "⚠️"

	choiceEdit     = "Edit Details"
	choiceStartNew = "Start New Booking"
	choiceClose    = "Close"
	choiceCopy     = "Copy Dossier"
)

// BookingActions is the part of booking.Controller the overlay drives.
type BookingActions interface {
	Confirm(ctx context.Context) error
	Edit(ctx context.Context) error
	StartNew()
	Close()
}

type overlayMode int

const (
	overlayNone overlayMode = iota
	overlaySummary
	overlayResult
)

// OverlayModel wraps the chat model and shows the booking summary and
// result on top of it. It owns the renderer event subscription.
type OverlayModel struct {
	ctx     context.Context
	inner   ChatModel
	booking BookingActions
	events  <-chan tea.Msg

	mode         overlayMode
	fields       []booking.SummaryField
	pending      bool
	confirmLabel string
	result       booking.Result
	dossier      string
	status       string

	form   *huh.Form
	choice *string

	width  int
	height int
}

func NewOverlayModel(ctx context.Context, inner ChatModel, actions BookingActions, events <-chan tea.Msg) OverlayModel {
	return OverlayModel{
		ctx:          ctx,
		inner:        inner,
		booking:      actions,
		events:       events,
		confirmLabel: booking.ConfirmLabel,
	}
}

func (m OverlayModel) Init() tea.Cmd {
	return tea.Batch(m.inner.Init(), waitForUIEvent(m.events))
}

func (m OverlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	if _, ok := msg.(uiEvent); ok {
		cmds = append(cmds, waitForUIEvent(m.events))
	}

	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = v.Width, v.Height
		if m.mode == overlayResult {
			m.dossier = renderDossier(m.result.Dossier, m.boxWidth())
		}
	case summaryMsg:
		m.mode = overlaySummary
		m.fields = v
		m.pending = false
		m.status = ""
		m.inner.Blur()
		cmds = append(cmds, m.openForm())
		return m, tea.Batch(cmds...)
	case confirmPendingMsg:
		m.pending = v.pending
		if v.label != "" {
			m.confirmLabel = v.label
		}
		if !m.pending && m.mode == overlaySummary {
			m.confirmLabel = booking.ConfirmLabel
			cmds = append(cmds, m.openForm())
		}
		return m, tea.Batch(cmds...)
	case resultMsg:
		m.mode = overlayResult
		m.result = booking.Result(v)
		m.pending = false
		m.status = ""
		m.dossier = renderDossier(m.result.Dossier, m.boxWidth())
		m.inner.Blur()
		cmds = append(cmds, m.openForm())
		return m, tea.Batch(cmds...)
	case closeOverlayMsg:
		m.closeOverlay()
		cmds = append(cmds, m.inner.Unblur())
		return m, tea.Batch(cmds...)
	case copiedMsg:
		if v.err != nil {
			m.status = "Could not copy dossier: " + v.err.Error()
		} else {
			m.status = "Dossier copied to clipboard"
		}
		cmds = append(cmds, m.openForm())
		return m, tea.Batch(cmds...)
	}

	if m.mode != overlayNone {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" && !m.pending {
			cmds = append(cmds, m.choose(choiceClose))
			return m, tea.Batch(cmds...)
		}
		if _, isKey := msg.(tea.KeyMsg); isKey && m.form != nil && !m.pending {
			fm, cmd := m.form.Update(msg)
			if f, ok := fm.(*huh.Form); ok {
				m.form = f
			}
			cmds = append(cmds, cmd)
			switch m.form.State {
			case huh.StateCompleted:
				cmds = append(cmds, m.choose(*m.choice))
			case huh.StateAborted:
				cmds = append(cmds, m.choose(choiceClose))
			}
			return m, tea.Batch(cmds...)
		}
		if _, isKey := msg.(tea.KeyMsg); isKey {
			return m, tea.Batch(cmds...)
		}
		if m.form != nil {
			fm, cmd := m.form.Update(msg)
			if f, ok := fm.(*huh.Form); ok {
				m.form = f
			}
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.inner, cmd = m.inner.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// openForm builds the action picker for the current overlay mode.
func (m *OverlayModel) openForm() tea.Cmd {
	var options []string
	switch m.mode {
	case overlaySummary:
		options = []string{m.confirmLabel, choiceEdit, choiceStartNew, choiceClose}
	case overlayResult:
		options = []string{choiceStartNew, choiceClose}
		if m.result.Dossier != "" {
			options = append(options, choiceCopy)
		}
	default:
		m.form = nil
		return nil
	}
	m.choice = new(string)
	*m.choice = options[0]
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Options(huh.NewOptions(options...)...).
				Value(m.choice),
		),
	).WithShowHelp(false).WithTheme(huh.ThemeCharm()).WithWidth(m.boxWidth() - 6)
	return m.form.Init()
}

func (m *OverlayModel) closeOverlay() {
	m.mode = overlayNone
	m.form = nil
	m.choice = nil
	m.pending = false
	m.fields = nil
	m.status = ""
}

func (m *OverlayModel) choose(choice string) tea.Cmd {
	ctx := m.ctx
	actions := m.booking
	m.form = nil
	switch choice {
	case booking.ConfirmLabel:
		if m.mode != overlaySummary {
			return nil
		}
		m.pending = true
		m.confirmLabel = booking.PendingLabel
		return func() tea.Msg {
			return actionDoneMsg{action: "confirm", err: actions.Confirm(ctx)}
		}
	case choiceEdit:
		return func() tea.Msg {
			return actionDoneMsg{action: "edit", err: actions.Edit(ctx)}
		}
	case choiceStartNew:
		return func() tea.Msg {
			actions.StartNew()
			return actionDoneMsg{action: "start-new"}
		}
	case choiceCopy:
		dossier := m.result.Dossier
		return func() tea.Msg {
			return copiedMsg{err: clipboard.WriteAll(dossier)}
		}
	default:
		return func() tea.Msg {
			actions.Close()
			return actionDoneMsg{action: "close"}
		}
	}
}

func (m OverlayModel) boxWidth() int {
	if m.width <= 0 {
		return 60
	}
	return min(max(m.width-10, 30), 80)
}

func renderDossier(dossier string, width int) string {
	if strings.TrimSpace(dossier) == "" {
		return ""
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markup.StripControl(dossier)
	}
	out, err := r.Render(markup.StripControl(dossier))
	if err != nil {
		return markup.StripControl(dossier)
	}
	return strings.TrimRight(out, "\n")
}

func (m OverlayModel) overlayView() string {
	var b strings.Builder
	switch m.mode {
	case overlaySummary:
		b.WriteString(titleStyle.Render(summaryHeading) + "\n\n")
		for _, f := range m.fields {
			value := markup.StripControl(f.Value)
			if !f.Set {
				value = fieldUnset.Render(value)
			}
			b.WriteString(f.Icon + " " + fieldLabel.Render(f.Label) + " " + value + "\n")
		}
	case overlayResult:
		icon := confirmedIcon
		if m.result.View == booking.ResultReceived {
			icon = receivedIcon
		}
		b.WriteString(titleStyle.Render(icon+" "+m.result.Title) + "\n\n")
		if m.result.View == booking.ResultConfirmed {
			b.WriteString(inlineMarkStyles.Terminal(m.result.Message) + "\n")
		} else {
			b.WriteString(markup.StripControl(m.result.Message) + "\n")
		}
		if m.dossier != "" {
			b.WriteString("\n" + titleStyle.Render("Job Dossier") + "\n" + m.dossier + "\n")
		}
	}
	b.WriteString("\n")
	switch {
	case m.pending:
		b.WriteString(pendingStyle.Render(m.confirmLabel))
	case m.form != nil:
		b.WriteString(m.form.View())
	}
	if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status))
	}
	return overlayStyle.Width(m.boxWidth()).Render(b.String())
}

func (m OverlayModel) View() string {
	if m.mode == overlayNone {
		return m.inner.View()
	}
	box := m.overlayView()
	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
