package conversation

import "encoding/json"

// TimeSlot is one selectable slot in a timeslot_selection message.
type TimeSlot struct {
	Display   string `json:"display"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// Envelope is the server's reply to a chat message.
type Envelope struct {
	Message          string      `json:"message"`
	Kind             MessageKind `json:"message_type"`
	State            State       `json:"conversation_state"`
	BookingData      BookingData `json:"booking_data,omitempty"`
	SuggestedActions []string    `json:"suggested_actions,omitempty"`
	// AvailableSlots is nil when the server omitted the field and non-nil
	// (possibly empty) when it sent a list.
	AvailableSlots []TimeSlot `json:"available_slots"`
	RequiresInput  *bool      `json:"requires_input,omitempty"`
}

// HasSlotPicker reports whether the message should render a slot grid
// instead of suggested actions.
func (e *Envelope) HasSlotPicker() bool {
	return e.Kind == MessageKindTimeslotSelection && e.AvailableSlots != nil
}

// StatusConfirmed is the only confirmation status with its own result view.
const StatusConfirmed = "CONFIRMED"

// Confirmation is the server's answer to a booking confirmation.
type Confirmation struct {
	BookingID           string         `json:"booking_id,omitempty"`
	Status              string         `json:"status"`
	ConfirmationMessage string         `json:"confirmation_message"`
	CRMData             map[string]any `json:"crm_data,omitempty"`
	JobDossier          string         `json:"job_dossier,omitempty"`
}

func (c *Confirmation) IsConfirmed() bool {
	return c.Status == StatusConfirmed
}

// SessionData is the server's view of a chat session.
type SessionData struct {
	SessionID    string      `json:"session_id"`
	State        State       `json:"conversation_state"`
	BookingData  BookingData `json:"booking_data,omitempty"`
	MessageCount int         `json:"message_count,omitempty"`
	Status       string      `json:"status,omitempty"`
}

type ResetResult struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

type FormattedSummary struct {
	FormattedSummary string      `json:"formatted_summary"`
	BookingData      BookingData `json:"booking_data,omitempty"`
}

// BookingSummary is returned by the summary endpoint. Fields beyond the
// well-known ones are kept in Extra.
type BookingSummary struct {
	BookingID   string         `json:"booking_id"`
	Status      string         `json:"status"`
	CreatedAt   string         `json:"created_at,omitempty"`
	LastUpdated string         `json:"last_updated,omitempty"`
	Extra       map[string]any `json:"-"`
}

func (s *BookingSummary) UnmarshalJSON(b []byte) error {
	type plain BookingSummary
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for _, k := range []string{"booking_id", "status", "created_at", "last_updated"} {
		delete(all, k)
	}
	*s = BookingSummary(p)
	if len(all) > 0 {
		s.Extra = all
	}
	return nil
}

// MarshalJSON writes Extra back next to the well-known fields.
func (s BookingSummary) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+4)
	for k, v := range s.Extra {
		out[k] = v
	}
	out["booking_id"] = s.BookingID
	out["status"] = s.Status
	if s.CreatedAt != "" {
		out["created_at"] = s.CreatedAt
	}
	if s.LastUpdated != "" {
		out["last_updated"] = s.LastUpdated
	}
	return json.Marshal(out)
}

const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
)

// Health is the liveness check result. Error is only set by the client when
// the check itself failed.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h Health) IsHealthy() bool {
	return h.Status == HealthStatusHealthy
}
