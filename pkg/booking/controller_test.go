package booking

import (
	"context"
	"testing"

	"github.com/go-go-golems/jobbot/pkg/conversation"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	got  []conversation.BookingData
	conf *conversation.Confirmation
	err  error
}

func (g *fakeGateway) ConfirmBooking(_ context.Context, data conversation.BookingData) (*conversation.Confirmation, error) {
	g.got = append(g.got, data)
	if g.err != nil {
		return nil, g.err
	}
	return g.conf, nil
}

type pendingState struct {
	Pending bool
	Label   string
}

type fakeOverlay struct {
	summaries [][]SummaryField
	pending   []pendingState
	results   []Result
	closes    int
}

func (o *fakeOverlay) ShowSummary(f []SummaryField) { o.summaries = append(o.summaries, f) }
func (o *fakeOverlay) SetConfirmPending(p bool, l string) {
	o.pending = append(o.pending, pendingState{Pending: p, Label: l})
}
func (o *fakeOverlay) ShowResult(r Result) { o.results = append(o.results, r) }
func (o *fakeOverlay) Close()              { o.closes++ }

type fakeChat struct {
	sent   []string
	errs   []string
	resets int
}

func (c *fakeChat) Send(_ context.Context, text string) error {
	c.sent = append(c.sent, text)
	return nil
}
func (c *fakeChat) ShowError(text string) { c.errs = append(c.errs, text) }
func (c *fakeChat) Reset()                { c.resets++ }

func fullData() conversation.BookingData {
	return conversation.BookingData{
		"job_type":     "Photography",
		"date":         "12/08/2024",
		"duration":     "2 hours",
		"location":     "Hyde Park",
		"budget":       "£300",
		"contact_name": "John Smith",
		"phone":        "07700 900000",
		"email":        "john@example.com",
	}
}

func TestSummaryFields_OrderAndFallback(t *testing.T) {
	fields := SummaryFields(conversation.BookingData{"job_type": "Audio", "budget": 0.0, "email": ""})
	require.Len(t, fields, 8)

	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		labels = append(labels, f.Label)
	}
	require.Equal(t, []string{"Job Type", "Date", "Duration", "Location", "Budget", "Contact Name", "Phone", "Email"}, labels)
	require.Equal(t, "Audio", fields[0].Value)
	require.True(t, fields[0].Set)
	for _, f := range fields[1:] {
		require.Equal(t, NotSpecified, f.Value, f.Label)
		require.False(t, f.Set)
	}
}

func TestSummaryFields_NilAndNotes(t *testing.T) {
	require.NotPanics(t, func() {
		fields := SummaryFields(nil)
		require.Len(t, fields, 8)
	})

	data := fullData()
	data["details"] = "Bring a <drone>"
	fields := SummaryFields(data)
	require.Len(t, fields, 9)
	require.Equal(t, "Additional Notes", fields[8].Label)
	require.Equal(t, "Bring a <drone>", fields[8].Value)
}

func TestSummaryFields_EveryMissingFieldFallsBack(t *testing.T) {
	for _, key := range []string{"job_type", "date", "duration", "location", "budget", "contact_name", "phone", "email"} {
		data := fullData()
		delete(data, key)
		for _, f := range SummaryFields(data) {
			if f.Key == key {
				require.Equal(t, NotSpecified, f.Value)
			} else {
				require.NotEqual(t, NotSpecified, f.Value)
			}
		}
	}
}

func TestShow(t *testing.T) {
	o := &fakeOverlay{}
	c := NewController(&fakeGateway{}, o, &fakeChat{})
	data := fullData()
	c.Show(data)

	require.Len(t, o.summaries, 1)
	require.Equal(t, "John Smith", o.summaries[0][5].Value)
	require.Equal(t, []pendingState{{Pending: false, Label: ConfirmLabel}}, o.pending)
	require.Equal(t, data, c.Data())
}

func TestConfirm_Confirmed(t *testing.T) {
	g := &fakeGateway{conf: &conversation.Confirmation{
		BookingID:           "b-1",
		Status:              "CONFIRMED",
		ConfirmationMessage: "See you **soon**",
		JobDossier:          "JOB DOSSIER",
	}}
	o := &fakeOverlay{}
	ch := &fakeChat{}
	c := NewController(g, o, ch)
	c.Show(fullData())

	require.NoError(t, c.Confirm(context.Background()))
	require.Len(t, g.got, 1)
	require.Equal(t, fullData(), g.got[0])
	require.Equal(t, pendingState{Pending: true, Label: PendingLabel}, o.pending[1])
	require.Len(t, o.results, 1)
	require.Equal(t, ResultConfirmed, o.results[0].View)
	require.Equal(t, "Booking Confirmed!", o.results[0].Title)
	require.Equal(t, "JOB DOSSIER", o.results[0].Dossier)
	require.Empty(t, ch.errs)
}

func TestConfirm_OtherStatusIsReceived(t *testing.T) {
	g := &fakeGateway{conf: &conversation.Confirmation{
		Status:              "INVALID_DATA",
		ConfirmationMessage: "Missing fields",
		JobDossier:          "ignored",
	}}
	o := &fakeOverlay{}
	c := NewController(g, o, &fakeChat{})
	c.Show(fullData())

	require.NoError(t, c.Confirm(context.Background()))
	require.Equal(t, ResultReceived, o.results[0].View)
	require.Equal(t, "Booking Received", o.results[0].Title)
	require.Equal(t, "Missing fields", o.results[0].Message)
	require.Empty(t, o.results[0].Dossier)
}

func TestConfirm_FailureRestoresControl(t *testing.T) {
	g := &fakeGateway{err: errors.New("down")}
	o := &fakeOverlay{}
	ch := &fakeChat{}
	c := NewController(g, o, ch)
	c.Show(fullData())

	require.Error(t, c.Confirm(context.Background()))
	require.Equal(t, []pendingState{
		{Pending: false, Label: ConfirmLabel},
		{Pending: true, Label: PendingLabel},
		{Pending: false, Label: ConfirmLabel},
	}, o.pending)
	require.Empty(t, o.results)
	require.Equal(t, []string{ConfirmErrorMessage}, ch.errs)
	require.Equal(t, 0, o.closes)
	require.NotNil(t, c.Data())
}

func TestConfirm_WithoutData(t *testing.T) {
	g := &fakeGateway{}
	c := NewController(g, &fakeOverlay{}, &fakeChat{})
	require.ErrorIs(t, c.Confirm(context.Background()), ErrNoBooking)
	require.Empty(t, g.got)
}

func TestEdit(t *testing.T) {
	o := &fakeOverlay{}
	ch := &fakeChat{}
	c := NewController(&fakeGateway{}, o, ch)
	c.Show(fullData())

	require.NoError(t, c.Edit(context.Background()))
	require.Equal(t, 1, o.closes)
	require.Equal(t, []string{EditInstruction}, ch.sent)
}

func TestStartNew(t *testing.T) {
	o := &fakeOverlay{}
	ch := &fakeChat{}
	c := NewController(&fakeGateway{}, o, ch)
	c.Show(fullData())

	c.StartNew()
	require.Equal(t, 1, o.closes)
	require.Equal(t, 1, ch.resets)
	require.Nil(t, c.Data())
}
