package booking

import "github.com/go-go-golems/jobbot/pkg/conversation"

const NotSpecified = "Not specified"

// SummaryField is one labeled line of the booking summary.
type SummaryField struct {
	Key   string
	Label string
	Icon  string
	Value string
	Set   bool
}

var summaryFields = []struct {
	key, label, icon string
}{
	{conversation.FieldJobType, "Job Type", "🎯"},
	{conversation.FieldDate, "Date", "📅"},
	{conversation.FieldDuration, "Duration", "⏱️"},
	{conversation.FieldLocation, "Location", "📍"},
	{conversation.FieldBudget, "Budget", "💰"},
	{conversation.FieldContactName, "Contact Name", "👤"},
	{conversation.FieldPhone, "Phone", "📞"},
	{conversation.FieldEmail, "Email", "📧"},
}

// SummaryFields lays out the booking data in display order. The fixed
// fields are always present, the notes field only when details were given.
func SummaryFields(data conversation.BookingData) []SummaryField {
	ret := make([]SummaryField, 0, len(summaryFields)+1)
	for _, f := range summaryFields {
		v, ok := data.Field(f.key)
		if !ok {
			v = NotSpecified
		}
		ret = append(ret, SummaryField{Key: f.key, Label: f.label, Icon: f.icon, Value: v, Set: ok})
	}
	if details, ok := data.Field(conversation.FieldDetails); ok {
		ret = append(ret, SummaryField{
			Key:   conversation.FieldDetails,
			Label: "Additional Notes",
			Icon:  "📝",
			Value: details,
			Set:   true,
		})
	}
	return ret
}
