package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/jobbot/pkg/booking"
	"github.com/go-go-golems/jobbot/pkg/chat"
	"github.com/go-go-golems/jobbot/pkg/conversation"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	mu      sync.Mutex
	sent    []string
	slots   []conversation.TimeSlot
	actions []string
	resets  int
}

func (f *fakeChat) Send(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeChat) SelectSlot(_ context.Context, slot conversation.TimeSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots = append(f.slots, slot)
	return nil
}

func (f *fakeChat) SelectAction(_ context.Context, action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeChat) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
}

type fakeBooking struct {
	confirms, edits, starts, closes int
}

func (f *fakeBooking) Confirm(context.Context) error { f.confirms++; return nil }
func (f *fakeBooking) Edit(context.Context) error    { f.edits++; return nil }
func (f *fakeBooking) StartNew()                     { f.starts++ }
func (f *fakeBooking) Close()                        { f.closes++ }

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRenderer_QueuesInOrder(t *testing.T) {
	r := NewRenderer(8)
	r.AppendUser(chat.Entry{Text: "hi"})
	r.SetTyping(true)
	r.ShowSummary([]booking.SummaryField{{Label: "Job Type"}})

	require.Equal(t, userEntryMsg(chat.Entry{Text: "hi"}), <-r.Events())
	require.Equal(t, typingMsg(true), <-r.Events())
	sm, ok := (<-r.Events()).(summaryMsg)
	require.True(t, ok)
	require.Equal(t, "Job Type", sm[0].Label)

	r.Stop()
	for i := 0; i < 20; i++ {
		r.Clear()
	}
	require.Len(t, r.Events(), 0)
}

func TestChatModel_SendsInputOnce(t *testing.T) {
	fc := &fakeChat{}
	m := NewChatModel(context.Background(), fc)
	for _, r := range "hello" {
		m, _ = m.Update(key(string(r)))
	}

	m, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	_, cmd2 := m.Update(key("enter"))
	require.Nil(t, cmd2)

	done, ok := cmd().(actionDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	require.Equal(t, []string{"hello"}, fc.sent)
}

func TestChatModel_BlankInputDoesNothing(t *testing.T) {
	m := NewChatModel(context.Background(), &fakeChat{})
	m, _ = m.Update(key(" "))
	_, cmd := m.Update(key("enter"))
	require.Nil(t, cmd)
}

func TestChatModel_ActionButtons(t *testing.T) {
	fc := &fakeChat{}
	m := NewChatModel(context.Background(), fc)
	m, _ = m.Update(botEntryMsg(chat.BotEntry{Text: "Pick one", Actions: []string{"Photography", "Videography"}, Time: time.Now()}))
	require.Contains(t, m.View(), "Photography")

	m, _ = m.Update(key("tab"))
	m, _ = m.Update(key("tab"))
	require.Equal(t, 1, m.focus)
	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	cmd()
	require.Equal(t, []string{"Videography"}, fc.actions)
}

func TestChatModel_SlotButtons(t *testing.T) {
	fc := &fakeChat{}
	m := NewChatModel(context.Background(), fc)
	slot := conversation.TimeSlot{Display: "9:00 AM", StartTime: "09:00", EndTime: "10:00"}
	m, _ = m.Update(botEntryMsg(chat.BotEntry{
		Text:       "When?",
		Kind:       conversation.MessageKindTimeslotSelection,
		SlotPicker: true,
		Slots:      []conversation.TimeSlot{slot},
	}))
	m, _ = m.Update(key("tab"))
	_, cmd := m.Update(key("enter"))
	cmd()
	require.Equal(t, []conversation.TimeSlot{slot}, fc.slots)
}

func TestChatModel_BlankSlotDoesNotLockInput(t *testing.T) {
	fc := &fakeChat{}
	m := NewChatModel(context.Background(), fc)
	m, _ = m.Update(botEntryMsg(chat.BotEntry{
		Text:       "When?",
		Kind:       conversation.MessageKindTimeslotSelection,
		SlotPicker: true,
		Slots:      []conversation.TimeSlot{{Display: ""}},
	}))
	m, _ = m.Update(key("tab"))
	m, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	for _, r := range "hello" {
		m, _ = m.Update(key(string(r)))
	}
	_, cmd = m.Update(key("enter"))
	require.NotNil(t, cmd)
	cmd()
	require.Equal(t, []string{"hello"}, fc.sent)
}

func TestChatModel_EmptySlotPicker(t *testing.T) {
	m := NewChatModel(context.Background(), &fakeChat{})
	m, _ = m.Update(botEntryMsg(chat.BotEntry{Text: "When?", SlotPicker: true, Actions: nil}))
	require.Contains(t, m.View(), chat.NoSlotsNotice)
	require.Empty(t, m.activeButtons())
}

func TestChatModel_UserEntryRetiresButtons(t *testing.T) {
	m := NewChatModel(context.Background(), &fakeChat{})
	m, _ = m.Update(botEntryMsg(chat.BotEntry{Text: "Pick", Actions: []string{"A"}}))
	m, _ = m.Update(userEntryMsg(chat.Entry{Text: "A"}))
	require.Empty(t, m.activeButtons())
}

func TestChatModel_RendererEvents(t *testing.T) {
	m := NewChatModel(context.Background(), &fakeChat{})
	m, _ = m.Update(userEntryMsg(chat.Entry{Text: "<b>raw</b>"}))
	m, _ = m.Update(errorEntryMsg(chat.Entry{Text: chat.SendErrorMessage}))
	require.Contains(t, m.View(), "<b>raw</b>")
	require.Contains(t, m.View(), chat.SendErrorMessage)

	m, cmd := m.Update(typingMsg(true))
	require.NotNil(t, cmd)
	require.Contains(t, m.View(), "typing")
	m, _ = m.Update(typingMsg(false))
	require.NotContains(t, m.View(), "typing")

	m, _ = m.Update(sendEnabledMsg(false))
	m, _ = m.Update(key("x"))
	_, cmd = m.Update(key("enter"))
	require.Nil(t, cmd)

	m, _ = m.Update(clearInputMsg{})
	require.Empty(t, m.input.Value())
	m, _ = m.Update(clearMsg{})
	require.Empty(t, m.items)
}

func TestChatModel_Reset(t *testing.T) {
	fc := &fakeChat{}
	m := NewChatModel(context.Background(), fc)
	_, cmd := m.Update(key("ctrl+r"))
	cmd()
	require.Equal(t, 1, fc.resets)
}

func newOverlay(fb *fakeBooking) OverlayModel {
	r := NewRenderer(1)
	return NewOverlayModel(context.Background(), NewChatModel(context.Background(), &fakeChat{}), fb, r.Events())
}

func summaryFields() []booking.SummaryField {
	return booking.SummaryFields(conversation.BookingData{"job_type": "Photography", "contact_name": "John Smith"})
}

func TestOverlayModel_SummaryAndConfirm(t *testing.T) {
	fb := &fakeBooking{}
	m := newOverlay(fb)

	tm, _ := m.Update(summaryMsg(summaryFields()))
	m = tm.(OverlayModel)
	require.Equal(t, overlaySummary, m.mode)
	require.True(t, m.inner.blurred)
	view := m.View()
	require.Contains(t, view, "Booking Summary")
	require.Contains(t, view, "Photography")
	require.Contains(t, view, booking.NotSpecified)

	cmd := m.choose(booking.ConfirmLabel)
	require.True(t, m.pending)
	cmd()
	require.Equal(t, 1, fb.confirms)

	tm, _ = m.Update(confirmPendingMsg{pending: true, label: booking.PendingLabel})
	m = tm.(OverlayModel)
	require.Contains(t, m.View(), booking.PendingLabel)

	tm, _ = m.Update(confirmPendingMsg{pending: false, label: booking.ConfirmLabel})
	m = tm.(OverlayModel)
	require.False(t, m.pending)
	require.NotNil(t, m.form)
	require.Equal(t, booking.ConfirmLabel, m.confirmLabel)
}

func TestOverlayModel_Result(t *testing.T) {
	fb := &fakeBooking{}
	m := newOverlay(fb)
	tm, _ := m.Update(resultMsg(booking.Result{
		View:    booking.ResultConfirmed,
		Title:   "Booking Confirmed!",
		Message: "See you **soon**",
		Dossier: "# Job\n\nBring lights",
	}))
	m = tm.(OverlayModel)
	view := m.View()
	require.Contains(t, view, "Booking Confirmed!")
	require.Contains(t, view, "Job Dossier")
	require.Contains(t, view, "Bring")

	m.choose(choiceStartNew)()
	require.Equal(t, 1, fb.starts)
}

func TestOverlayModel_EscClosesAndCloseRestoresChat(t *testing.T) {
	fb := &fakeBooking{}
	m := newOverlay(fb)
	tm, _ := m.Update(summaryMsg(summaryFields()))
	m = tm.(OverlayModel)

	tm, cmd := m.Update(key("esc"))
	m = tm.(OverlayModel)
	require.NotNil(t, cmd)
	require.Nil(t, m.form)
	m.choose(choiceClose)()
	require.Equal(t, 1, fb.closes)

	tm, _ = m.Update(closeOverlayMsg{})
	m = tm.(OverlayModel)
	require.Equal(t, overlayNone, m.mode)
	require.False(t, m.inner.blurred)
	require.Contains(t, m.View(), "JobBot")
}

func TestOverlayModel_EditAndCopied(t *testing.T) {
	fb := &fakeBooking{}
	m := newOverlay(fb)
	tm, _ := m.Update(summaryMsg(summaryFields()))
	m = tm.(OverlayModel)
	m.choose(choiceEdit)()
	require.Equal(t, 1, fb.edits)

	tm, _ = m.Update(copiedMsg{})
	m = tm.(OverlayModel)
	require.Contains(t, m.View(), "Dossier copied")
}
