package booking

import (
	"context"
	"sync"

	"github.com/go-go-golems/jobbot/pkg/conversation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	ConfirmLabel        = "Confirm Booking"
	PendingLabel        = "Processing..."
	ConfirmErrorMessage = "Failed to confirm booking. Please try again."
	EditInstruction     = "I want to edit my booking details"
)

var ErrNoBooking = errors.New("no booking data available")

// ResultView selects the result layout.
type ResultView int

const (
	ResultConfirmed ResultView = iota
	ResultReceived
)

// Result is what the overlay shows after a successful confirmation call.
type Result struct {
	View      ResultView
	Title     string
	Message   string
	Dossier   string
	BookingID string
}

// Overlay is the view side of the confirmation flow.
type Overlay interface {
	ShowSummary(fields []SummaryField)
	SetConfirmPending(pending bool, label string)
	ShowResult(r Result)
	Close()
}

// Gateway is the part of the API client used to confirm bookings.
type Gateway interface {
	ConfirmBooking(ctx context.Context, data conversation.BookingData) (*conversation.Confirmation, error)
}

// Chat is the part of the display controller the overlay reports back to.
type Chat interface {
	Send(ctx context.Context, text string) error
	ShowError(text string)
	Reset()
}

// Controller drives the summary overlay once the conversation completed.
type Controller struct {
	gateway Gateway
	overlay Overlay
	chat    Chat

	mu         sync.Mutex
	data       conversation.BookingData
	confirming bool
}

func NewController(gateway Gateway, overlay Overlay, chat Chat) *Controller {
	if overlay == nil {
		overlay = NopOverlay{}
	}
	return &Controller{gateway: gateway, overlay: overlay, chat: chat}
}

// Show keeps a reference to data and opens the summary view.
func (c *Controller) Show(data conversation.BookingData) {
	c.mu.Lock()
	c.data = data
	c.mu.Unlock()

	c.overlay.ShowSummary(SummaryFields(data))
	c.overlay.SetConfirmPending(false, ConfirmLabel)
}

// Data returns the booking data held for confirmation, nil when none.
func (c *Controller) Data() conversation.BookingData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// Confirm submits the held booking. On failure the confirm control is
// restored and the error goes to the chat transcript.
func (c *Controller) Confirm(ctx context.Context) error {
	c.mu.Lock()
	data := c.data
	if data == nil {
		c.mu.Unlock()
		log.Error().Msg("No booking data available")
		return ErrNoBooking
	}
	if c.confirming {
		c.mu.Unlock()
		return nil
	}
	c.confirming = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.confirming = false
		c.mu.Unlock()
	}()

	c.overlay.SetConfirmPending(true, PendingLabel)

	conf, err := c.gateway.ConfirmBooking(ctx, data)
	if err != nil {
		log.Error().Err(err).Msg("Booking confirmation failed")
		c.overlay.SetConfirmPending(false, ConfirmLabel)
		if c.chat != nil {
			c.chat.ShowError(ConfirmErrorMessage)
		}
		return err
	}

	log.Info().Str("booking_id", conf.BookingID).Str("status", conf.Status).Msg("booking confirmation received")
	c.overlay.ShowResult(NewResult(conf))
	return nil
}

// NewResult maps a confirmation to its result view.
func NewResult(conf *conversation.Confirmation) Result {
	if conf.IsConfirmed() {
		return Result{
			View:      ResultConfirmed,
			Title:     "Booking Confirmed!",
			Message:   conf.ConfirmationMessage,
			Dossier:   conf.JobDossier,
			BookingID: conf.BookingID,
		}
	}
	return Result{
		View:      ResultReceived,
		Title:     "Booking Received",
		Message:   conf.ConfirmationMessage,
		BookingID: conf.BookingID,
	}
}

// Edit closes the overlay and asks the assistant to revise the booking.
func (c *Controller) Edit(ctx context.Context) error {
	c.overlay.Close()
	if c.chat == nil {
		return nil
	}
	return c.chat.Send(ctx, EditInstruction)
}

// StartNew closes the overlay, resets the chat and drops the booking data.
func (c *Controller) StartNew() {
	c.overlay.Close()
	if c.chat != nil {
		c.chat.Reset()
	}
	c.mu.Lock()
	c.data = nil
	c.mu.Unlock()
}

func (c *Controller) Close() {
	c.overlay.Close()
}

// NopOverlay discards everything.
type NopOverlay struct{}

var _ Overlay = NopOverlay{}

func (NopOverlay) ShowSummary([]SummaryField)     {}
func (NopOverlay) SetConfirmPending(bool, string) {}
func (NopOverlay) ShowResult(Result)              {}
func (NopOverlay) Close()                         {}
