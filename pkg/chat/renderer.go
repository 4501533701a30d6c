package chat

import (
	"time"

	"github.com/go-go-golems/jobbot/pkg/conversation"
)

// NoSlotsNotice replaces the slot buttons of a slot picker with no slots.
const NoSlotsNotice = "No available slots"

// Entry is a user or error line in the transcript. Text is raw; renderers
// must display it literally.
type Entry struct {
	Text string
	Time time.Time
}

// BotEntry is a rendered server message. When SlotPicker is set the entry
// shows one button per slot (possibly none) and no actions.
type BotEntry struct {
	Text       string
	Kind       conversation.MessageKind
	SlotPicker bool
	Slots      []conversation.TimeSlot
	Actions    []string
	Time       time.Time
}

// Renderer is the view side of the transcript. Implementations must not
// call back into the Controller synchronously.
type Renderer interface {
	AppendUser(e Entry)
	AppendBot(e BotEntry)
	AppendError(e Entry)
	Clear()
	SetTyping(on bool)
	SetSendEnabled(enabled bool)
	ClearInput()
}

// NewBotEntry builds the transcript entry for a server envelope.
func NewBotEntry(env *conversation.Envelope, t time.Time) BotEntry {
	ret := BotEntry{
		Text: env.Message,
		Kind: env.Kind,
		Time: t,
	}
	if env.HasSlotPicker() {
		ret.SlotPicker = true
		ret.Slots = append([]conversation.TimeSlot{}, env.AvailableSlots...)
		return ret
	}
	if len(env.SuggestedActions) > 0 {
		ret.Actions = append([]string{}, env.SuggestedActions...)
	}
	return ret
}

// NopRenderer discards everything.
type NopRenderer struct{}

var _ Renderer = NopRenderer{}

func (NopRenderer) AppendUser(Entry)    {}
func (NopRenderer) AppendBot(BotEntry)  {}
func (NopRenderer) AppendError(Entry)   {}
func (NopRenderer) Clear()              {}
func (NopRenderer) SetTyping(bool)      {}
func (NopRenderer) SetSendEnabled(bool) {}
func (NopRenderer) ClearInput()         {}
