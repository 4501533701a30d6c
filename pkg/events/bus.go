package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-go-golems/jobbot/pkg/persistence/transcriptstore"
	"github.com/go-go-golems/jobbot/pkg/redisstream"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// TranscriptTopic is the topic transcript entries are published on. With
// Redis Streams enabled the stream name from the settings is used instead.
const TranscriptTopic = "jobbot.transcript"

// Bus carries transcript entries from the renderer to the persistence sink.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	topic      string
	closer     func() error
}

// NewInMemoryBus builds a bus on an in-process go channel.
func NewInMemoryBus(logger watermill.LoggerAdapter) *Bus {
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger)
	return &Bus{publisher: ch, subscriber: ch, topic: TranscriptTopic, closer: ch.Close}
}

// NewBus builds a Redis Streams bus when enabled, and an in-memory bus otherwise.
func NewBus(ctx context.Context, s redisstream.Settings) (*Bus, error) {
	logger := NewZerologAdapter(log.Logger)
	if !s.Enabled {
		return NewInMemoryBus(logger), nil
	}
	s = s.WithDefaults()
	t, err := redisstream.Build(ctx, s, logger)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("addr", s.Addr).Str("stream", s.Stream).Msg("transcript bus on redis streams")
	return &Bus{publisher: t.Publisher, subscriber: t.Subscriber, topic: s.Stream, closer: t.Close}, nil
}

func (b *Bus) Topic() string { return b.topic }

// Publish sends one transcript entry.
func (b *Bus) Publish(e transcriptstore.Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal transcript entry")
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("session_id", e.SessionID)
	msg.Metadata.Set("role", e.Role)
	return errors.Wrap(b.publisher.Publish(b.topic, msg), "publish transcript entry")
}

// Subscribe returns the entry stream. Subscribe before publishing: the
// in-memory bus drops messages nobody listens to.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	msgs, err := b.subscriber.Subscribe(ctx, b.topic)
	if err != nil {
		return nil, errors.Wrap(err, "subscribe transcript topic")
	}
	return msgs, nil
}

func (b *Bus) Close() error {
	if b == nil || b.closer == nil {
		return nil
	}
	return b.closer()
}
