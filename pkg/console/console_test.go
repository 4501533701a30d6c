package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-go-golems/jobbot/pkg/booking"
	"github.com/go-go-golems/jobbot/pkg/chat"
	"github.com/go-go-golems/jobbot/pkg/conversation"
	"github.com/stretchr/testify/require"
)

type scriptedGateway struct {
	sent     []string
	replies  []*conversation.Envelope
	confirms []conversation.BookingData
}

func (g *scriptedGateway) SendMessage(_ context.Context, content string, state conversation.State) (*conversation.Envelope, error) {
	g.sent = append(g.sent, content)
	if len(g.replies) == 0 {
		return &conversation.Envelope{Message: "ok", State: state}, nil
	}
	r := g.replies[0]
	g.replies = g.replies[1:]
	return r, nil
}

func (g *scriptedGateway) ConfirmBooking(_ context.Context, data conversation.BookingData) (*conversation.Confirmation, error) {
	g.confirms = append(g.confirms, data)
	return &conversation.Confirmation{BookingID: "BK-7", Status: conversation.StatusConfirmed, ConfirmationMessage: "**Done**", JobDossier: "Dossier text"}, nil
}

func run(t *testing.T, in string, g *scriptedGateway) string {
	t.Helper()
	var out bytes.Buffer
	c := New(strings.NewReader(in), &out)
	chatCtl := chat.NewController(g, c)
	bookingCtl := booking.NewController(g, c, chatCtl)
	chatCtl.SetCompletionHandler(bookingCtl.Show)
	chatCtl.Welcome()
	require.NoError(t, c.Run(context.Background(), chatCtl, bookingCtl))
	return out.String()
}

func TestConsole_FullBooking(t *testing.T) {
	g := &scriptedGateway{replies: []*conversation.Envelope{
		{
			Message:          "What do you need?",
			State:            conversation.ParseState("collecting_job_type"),
			SuggestedActions: []string{"Photography", "Videography"},
		},
		{
			Message:     "All set!",
			Kind:        conversation.MessageKindConfirmation,
			State:       conversation.StateCompleted,
			BookingData: conversation.BookingData{"job_type": "Videography", "contact_name": "John Smith"},
		},
	}}

	out := run(t, "John Smith\n/2\nz\nc\nn\n/quit\n", g)

	require.Equal(t, []string{"John Smith", "Videography"}, g.sent)
	require.Len(t, g.confirms, 1)
	require.Equal(t, "Videography", g.confirms[0]["job_type"])

	require.Contains(t, out, chat.WelcomeMessage)
	require.Contains(t, out, "[/2] Videography")
	require.Contains(t, out, "Booking Summary")
	require.Contains(t, out, "Not specified")
	require.Contains(t, out, "Please enter one of c, e, n, x.")
	require.Contains(t, out, "Booking Confirmed!")
	require.Contains(t, out, "Dossier text")
	require.Contains(t, out, "--- new conversation ---")
	require.Equal(t, 2, strings.Count(out, chat.WelcomeMessage))
}

func TestConsole_SlotsAndCommands(t *testing.T) {
	g := &scriptedGateway{replies: []*conversation.Envelope{
		{
			Message:        "Pick a time",
			Kind:           conversation.MessageKindTimeslotSelection,
			State:          conversation.ParseState("collecting_timeslot"),
			AvailableSlots: []conversation.TimeSlot{{Display: "9:00 AM"}, {Display: "1:00 PM"}},
		},
		{
			Message:        "Nothing left",
			Kind:           conversation.MessageKindTimeslotSelection,
			State:          conversation.ParseState("collecting_timeslot"),
			AvailableSlots: []conversation.TimeSlot{},
		},
	}}

	out := run(t, "monday\n/9\n/help\n/bogus\n/2\n   \n/reset\n", g)

	require.Equal(t, []string{"monday", "1:00 PM"}, g.sent)
	require.Contains(t, out, "No button 9.")
	require.Contains(t, out, "Commands:")
	require.Contains(t, out, `Unknown command "/bogus"`)
	require.Contains(t, out, "(No available slots)")
	require.Contains(t, out, "--- new conversation ---")
}

func TestConsole_EOFInsideOverlay(t *testing.T) {
	g := &scriptedGateway{replies: []*conversation.Envelope{{
		Message: "Done", State: conversation.StateCompleted,
	}}}
	out := run(t, "hi", g)
	require.Contains(t, out, "Booking Summary")
	require.Empty(t, g.confirms)
}
