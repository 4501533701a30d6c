package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-go-golems/jobbot/pkg/conversation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	WelcomeMessage = "👋 Hi! I'm JobBot, your AI booking assistant. I can help you book photography, " +
		"videography, audio, or other freelance services. What's your name?"
	SendErrorMessage = "Sorry, I encountered an error. Please try again."
)

// ErrSendInFlight is returned when a message is sent while the previous one
// has not settled yet.
var ErrSendInFlight = errors.New("a message is already being sent")

// Gateway is the part of the API client the controller needs.
type Gateway interface {
	SendMessage(ctx context.Context, content string, state conversation.State) (*conversation.Envelope, error)
}

// CompletionHandler receives the booking data when the server reports the
// completed state.
type CompletionHandler func(data conversation.BookingData)

// Controller owns the transcript, the conversation state and the booking
// data. Every turn overwrites the state with the server's label and
// replaces the booking data.
type Controller struct {
	gateway  Gateway
	renderer Renderer
	now      func() time.Time

	mu         sync.Mutex
	state      conversation.State
	booking    conversation.BookingData
	sending    bool
	onComplete CompletionHandler
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func WithCompletionHandler(h CompletionHandler) Option {
	return func(c *Controller) {
		c.onComplete = h
	}
}

func NewController(gateway Gateway, renderer Renderer, options ...Option) *Controller {
	if renderer == nil {
		renderer = NopRenderer{}
	}
	c := &Controller{
		gateway:  gateway,
		renderer: renderer,
		now:      time.Now,
		booking:  conversation.BookingData{},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Controller) SetCompletionHandler(h CompletionHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onComplete = h
}

func (c *Controller) State() conversation.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// BookingData returns the current mapping. It is the live map, shared with
// the booking controller at completion; callers must not mutate it.
func (c *Controller) BookingData() conversation.BookingData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.booking
}

func (c *Controller) IsSending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Welcome sets the initial state and shows the greeting.
func (c *Controller) Welcome() {
	c.mu.Lock()
	c.state = conversation.StateCollectingContact
	c.mu.Unlock()

	c.renderer.AppendBot(BotEntry{
		Text: WelcomeMessage,
		Kind: conversation.MessageKindText,
		Time: c.now(),
	})
}

// Send submits one user message. Blank input is ignored without touching
// the transcript. A failed call renders one error entry and leaves the
// state as it was; the returned error has already been shown to the user.
func (c *Controller) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return ErrSendInFlight
	}
	c.sending = true
	state := c.state
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
		c.renderer.SetSendEnabled(true)
	}()

	c.renderer.AppendUser(Entry{Text: text, Time: c.now()})
	c.renderer.ClearInput()
	c.renderer.SetSendEnabled(false)
	c.renderer.SetTyping(true)

	env, err := c.gateway.SendMessage(ctx, text, state)
	c.renderer.SetTyping(false)
	if err != nil {
		log.Error().Err(err).Str("state", state.String()).Msg("Error sending message")
		c.renderer.AppendError(Entry{Text: SendErrorMessage, Time: c.now()})
		return err
	}

	c.mu.Lock()
	c.state = env.State
	c.booking = env.BookingData.Clone()
	data := c.booking
	onComplete := c.onComplete
	c.mu.Unlock()

	log.Debug().
		Str("state", env.State.String()).
		Str("kind", env.Kind.String()).
		Int("actions", len(env.SuggestedActions)).
		Int("slots", len(env.AvailableSlots)).
		Msg("received bot response")

	c.renderer.AppendBot(NewBotEntry(env, c.now()))

	if env.State.IsCompleted() {
		c.handleCompletion(data, onComplete)
	}
	return nil
}

// SelectSlot resends the slot's display text as the next user message.
func (c *Controller) SelectSlot(ctx context.Context, slot conversation.TimeSlot) error {
	return c.Send(ctx, slot.Display)
}

// SelectAction resends a suggested action as the next user message.
func (c *Controller) SelectAction(ctx context.Context, action string) error {
	return c.Send(ctx, action)
}

// ShowError appends an error entry, for collaborators that report through
// the transcript.
func (c *Controller) ShowError(text string) {
	c.renderer.AppendError(Entry{Text: text, Time: c.now()})
}

// Reset clears the transcript, the state and the booking data, then greets
// again.
func (c *Controller) Reset() {
	c.renderer.Clear()
	c.mu.Lock()
	c.state = conversation.State{}
	c.booking = conversation.BookingData{}
	c.mu.Unlock()
	c.Welcome()
}

func (c *Controller) handleCompletion(data conversation.BookingData, onComplete CompletionHandler) {
	log.Info().Msg("booking conversation completed")
	if onComplete != nil {
		onComplete(data)
	}

	if _, ok := data.CalendarEvent(); ok {
		jobType := strings.ToLower(data.FieldOr(conversation.FieldJobType, "booking"))
		c.renderer.AppendBot(BotEntry{
			Text:    "🎉 Booking confirmed! Your " + jobType + " session has been scheduled and added to your calendar.",
			Kind:    conversation.MessageKindConfirmation,
			Actions: []string{"View Calendar", "Start New Booking"},
			Time:    c.now(),
		})
	}
}
