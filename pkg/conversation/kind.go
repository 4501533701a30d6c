package conversation

import (
	"encoding/json"
	"strings"
)

// MessageKind selects how a bot message is rendered.
type MessageKind int

const (
	MessageKindText MessageKind = iota
	MessageKindBookingForm
	MessageKindConfirmation
	MessageKindError
	MessageKindDaySelection
	MessageKindTimeslotSelection
	MessageKindUnknown
)

var kindLabels = map[MessageKind]string{
	MessageKindText:              "text",
	MessageKindBookingForm:       "booking_form",
	MessageKindConfirmation:      "confirmation",
	MessageKindError:             "error",
	MessageKindDaySelection:      "day_selection",
	MessageKindTimeslotSelection: "timeslot_selection",
}

// ParseMessageKind maps a wire label to a kind. An empty label is plain text,
// anything unrecognized is MessageKindUnknown.
func ParseMessageKind(label string) MessageKind {
	label = strings.TrimSpace(label)
	if label == "" {
		return MessageKindText
	}
	for k, l := range kindLabels {
		if l == label {
			return k
		}
	}
	return MessageKindUnknown
}

func (k MessageKind) String() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return "unknown"
}

func (k MessageKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *MessageKind) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*k = MessageKindText
		return nil
	}
	var label string
	if err := json.Unmarshal(b, &label); err != nil {
		return err
	}
	*k = ParseMessageKind(label)
	return nil
}
