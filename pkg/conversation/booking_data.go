package conversation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field keys used by the booking dialogue.
const (
	FieldJobType       = "job_type"
	FieldDate          = "date"
	FieldDuration      = "duration"
	FieldLocation      = "location"
	FieldBudget        = "budget"
	FieldContactName   = "contact_name"
	FieldPhone         = "phone"
	FieldEmail         = "email"
	FieldDetails       = "details"
	FieldCalendarEvent = "calendar_event"
)

// BookingData is the flat field mapping accumulated by the server. It is
// replaced as a whole on every turn and sent back verbatim on confirmation,
// so keys the client does not know about survive the round trip.
type BookingData map[string]any

// Clone returns a shallow copy. A nil receiver yields an empty, non-nil map.
func (b BookingData) Clone() BookingData {
	ret := make(BookingData, len(b))
	for k, v := range b {
		ret[k] = v
	}
	return ret
}

// Field returns the display value of key and whether it is set. Values that
// are absent, null, empty, false or zero count as unset.
func (b BookingData) Field(key string) (string, bool) {
	if b == nil {
		return "", false
	}
	v, ok := b[key]
	if !ok {
		return "", false
	}
	switch vv := v.(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(vv) == "" {
			return "", false
		}
		return vv, true
	case bool:
		if !vv {
			return "", false
		}
		return "true", true
	case float64:
		if vv == 0 {
			return "", false
		}
		return strconv.FormatFloat(vv, 'f', -1, 64), true
	case int:
		if vv == 0 {
			return "", false
		}
		return strconv.Itoa(vv), true
	case json.Number:
		if vv.String() == "0" {
			return "", false
		}
		return vv.String(), true
	case map[string]any:
		if len(vv) == 0 {
			return "", false
		}
		return marshalField(vv), true
	case []any:
		if len(vv) == 0 {
			return "", false
		}
		return marshalField(vv), true
	default:
		return fmt.Sprint(vv), true
	}
}

func marshalField(v any) string {
	s, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(s)
}

// FieldOr returns the display value of key or fallback when unset.
func (b BookingData) FieldOr(key, fallback string) string {
	if v, ok := b.Field(key); ok {
		return v
	}
	return fallback
}

// CalendarEvent returns the calendar event descriptor when the server
// attached one.
func (b BookingData) CalendarEvent() (map[string]any, bool) {
	if b == nil {
		return nil, false
	}
	switch ev := b[FieldCalendarEvent].(type) {
	case map[string]any:
		return ev, len(ev) > 0
	case string:
		if ev == "" {
			return nil, false
		}
		return map[string]any{"description": ev}, true
	default:
		return nil, false
	}
}
