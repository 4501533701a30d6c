package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/jobbot/pkg/booking"
	"github.com/go-go-golems/jobbot/pkg/chat"
)

// Renderer implements chat.Renderer and booking.Overlay by queueing messages
// for the bubbletea program. Calls block only when the queue is full.
type Renderer struct {
	ch   chan tea.Msg
	done chan struct{}
	once sync.Once
}

var (
	_ chat.Renderer   = &Renderer{}
	_ booking.Overlay = &Renderer{}
)

func NewRenderer(buffer int) *Renderer {
	if buffer <= 0 {
		buffer = 256
	}
	return &Renderer{ch: make(chan tea.Msg, buffer), done: make(chan struct{})}
}

// Events is read by the model.
func (r *Renderer) Events() <-chan tea.Msg { return r.ch }

// Stop drops further calls; used once the program has exited.
func (r *Renderer) Stop() {
	r.once.Do(func() { close(r.done) })
}

func (r *Renderer) emit(msg tea.Msg) {
	select {
	case <-r.done:
		return
	default:
	}
	select {
	case <-r.done:
	case r.ch <- msg:
	}
}

func (r *Renderer) AppendUser(e chat.Entry)     { r.emit(userEntryMsg(e)) }
func (r *Renderer) AppendBot(e chat.BotEntry)   { r.emit(botEntryMsg(e)) }
func (r *Renderer) AppendError(e chat.Entry)    { r.emit(errorEntryMsg(e)) }
func (r *Renderer) Clear()                      { r.emit(clearMsg{}) }
func (r *Renderer) SetTyping(on bool)           { r.emit(typingMsg(on)) }
func (r *Renderer) SetSendEnabled(enabled bool) { r.emit(sendEnabledMsg(enabled)) }
func (r *Renderer) ClearInput()                 { r.emit(clearInputMsg{}) }

func (r *Renderer) ShowSummary(fields []booking.SummaryField) {
	r.emit(summaryMsg(append([]booking.SummaryField{}, fields...)))
}

func (r *Renderer) SetConfirmPending(pending bool, label string) {
	r.emit(confirmPendingMsg{pending: pending, label: label})
}

func (r *Renderer) ShowResult(res booking.Result) { r.emit(resultMsg(res)) }
func (r *Renderer) Close()                        { r.emit(closeOverlayMsg{}) }

func waitForUIEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return e
	}
}
