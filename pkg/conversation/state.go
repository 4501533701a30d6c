package conversation

import (
	"encoding/json"
	"strings"
)

// Phase is the closed set of conversation steps the client knows about.
// Anything the server sends that is not in this set decodes to PhaseUnknown
// and is passed through untouched.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseUnknown
	PhaseGreeting
	PhaseCollectingJobType
	PhaseCollectingDay
	PhaseCollectingTimeslot
	PhaseCollectingDate
	PhaseCollectingDuration
	PhaseCollectingLocation
	PhaseCollectingBudget
	PhaseCollectingContact
	PhaseConfirmingDetails
	PhaseCompleted
)

var phaseLabels = map[Phase]string{
	PhaseGreeting:           "greeting",
	PhaseCollectingJobType:  "collecting_job_type",
	PhaseCollectingDay:      "collecting_day",
	PhaseCollectingTimeslot: "collecting_timeslot",
	PhaseCollectingDate:     "collecting_date",
	PhaseCollectingDuration: "collecting_duration",
	PhaseCollectingLocation: "collecting_location",
	PhaseCollectingBudget:   "collecting_budget",
	PhaseCollectingContact:  "collecting_contact",
	PhaseConfirmingDetails:  "confirming_details",
	PhaseCompleted:          "completed",
}

var labelPhases = func() map[string]Phase {
	ret := make(map[string]Phase, len(phaseLabels))
	for p, l := range phaseLabels {
		ret[l] = p
	}
	return ret
}()

func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "none"
	case PhaseUnknown:
		return "unknown"
	}
	if l, ok := phaseLabels[p]; ok {
		return l
	}
	return "unknown"
}

// State is the server-assigned conversation state. Label is kept verbatim so
// the client can echo it back on the next turn, whatever the server sent.
type State struct {
	Phase Phase
	Label string
}

// ParseState classifies a wire label.
func ParseState(label string) State {
	label = strings.TrimSpace(label)
	if label == "" {
		return State{Phase: PhaseNone}
	}
	if p, ok := labelPhases[label]; ok {
		return State{Phase: p, Label: label}
	}
	return State{Phase: PhaseUnknown, Label: label}
}

// StateFor returns the canonical state for a known phase.
func StateFor(p Phase) State {
	if l, ok := phaseLabels[p]; ok {
		return State{Phase: p, Label: l}
	}
	return State{Phase: PhaseNone}
}

var (
	StateCollectingContact = StateFor(PhaseCollectingContact)
	StateCompleted         = StateFor(PhaseCompleted)
)

func (s State) IsEmpty() bool {
	return s.Label == ""
}

func (s State) IsCompleted() bool {
	return s.Phase == PhaseCompleted
}

func (s State) String() string {
	if s.Label == "" {
		return "<none>"
	}
	return s.Label
}

// MarshalJSON encodes an empty state as null, which the server maps to its
// default greeting state.
func (s State) MarshalJSON() ([]byte, error) {
	if s.Label == "" {
		return []byte("null"), nil
	}
	return json.Marshal(s.Label)
}

func (s *State) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = State{Phase: PhaseNone}
		return nil
	}
	var label string
	if err := json.Unmarshal(b, &label); err != nil {
		return err
	}
	*s = ParseState(label)
	return nil
}
