package ui

import (
	"github.com/go-go-golems/jobbot/pkg/booking"
	"github.com/go-go-golems/jobbot/pkg/chat"
)

// uiEvent marks messages produced by Renderer. Exactly one waitForUIEvent
// command is outstanding at any time so events keep their order.
type uiEvent interface {
	isUIEvent()
}

type (
	userEntryMsg      chat.Entry
	botEntryMsg       chat.BotEntry
	errorEntryMsg     chat.Entry
	clearMsg          struct{}
	typingMsg         bool
	sendEnabledMsg    bool
	clearInputMsg     struct{}
	summaryMsg        []booking.SummaryField
	confirmPendingMsg struct {
		pending bool
		label   string
	}
	resultMsg       booking.Result
	closeOverlayMsg struct{}
)

func (userEntryMsg) isUIEvent()      {}
func (botEntryMsg) isUIEvent()       {}
func (errorEntryMsg) isUIEvent()     {}
func (clearMsg) isUIEvent()          {}
func (typingMsg) isUIEvent()         {}
func (sendEnabledMsg) isUIEvent()    {}
func (clearInputMsg) isUIEvent()     {}
func (summaryMsg) isUIEvent()        {}
func (confirmPendingMsg) isUIEvent() {}
func (resultMsg) isUIEvent()         {}
func (closeOverlayMsg) isUIEvent()   {}

// actionDoneMsg reports the outcome of a controller call run as a command.
type actionDoneMsg struct {
	action string
	err    error
}

type copiedMsg struct {
	err error
}
