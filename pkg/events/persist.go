package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/jobbot/pkg/persistence/transcriptstore"
	"github.com/rs/zerolog/log"
)

// StepTranscriptPersistFunc stores transcript entries from the bus into the
// store. Persistence is best-effort: decode and storage errors are logged but
// never reach the chat.
func StepTranscriptPersistFunc(store transcriptstore.Store) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		msg.Ack()

		var e transcriptstore.Entry
		if err := json.Unmarshal(msg.Payload, &e); err != nil {
			log.Warn().Err(err).Str("component", "transcript_persist").Msg("failed to decode transcript entry")
			return nil
		}
		if store == nil {
			return nil
		}

		ctx := msg.Context()
		cancel := func() {}
		if ctx.Err() != nil {
			// Message contexts may be canceled during shutdown before the queue drains.
			ctx, cancel = context.WithTimeout(context.Background(), 250*time.Millisecond)
		}
		defer cancel()

		if err := store.Append(ctx, e); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			log.Warn().Err(err).
				Str("component", "transcript_persist").
				Str("session_id", e.SessionID).
				Int64("seq", e.Seq).
				Str("role", e.Role).
				Msg("transcript append failed")
		}
		return nil
	}
}

// Drain feeds messages to handler until the channel closes or ctx is done.
// Messages already buffered when ctx is done are still handled.
func Drain(ctx context.Context, msgs <-chan *message.Message, handler func(msg *message.Message) error) error {
	for {
		select {
		case <-ctx.Done():
			drainBuffered(msgs, handler)
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			handle(msg, handler)
		}
	}
}

func drainBuffered(msgs <-chan *message.Message, handler func(msg *message.Message) error) {
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			handle(msg, handler)
		default:
			return
		}
	}
}

func handle(msg *message.Message, handler func(msg *message.Message) error) {
	if err := handler(msg); err != nil {
		log.Warn().Err(err).Str("component", "transcript_persist").Msg("handler failed")
	}
}
