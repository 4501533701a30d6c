package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/jobbot/pkg/chat"
	"github.com/go-go-golems/jobbot/pkg/conversation"
	"github.com/go-go-golems/jobbot/pkg/persistence/transcriptstore"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	entries []transcriptstore.Entry
}

func (c *capturePublisher) Publish(e transcriptstore.Entry) error {
	c.entries = append(c.entries, e)
	return nil
}

type countingRenderer struct {
	chat.NopRenderer
	bots   int
	typing []bool
}

func (c *countingRenderer) AppendBot(chat.BotEntry) { c.bots++ }
func (c *countingRenderer) SetTyping(on bool)       { c.typing = append(c.typing, on) }

func TestRecordingRenderer_ForwardsAndRecords(t *testing.T) {
	pub := &capturePublisher{}
	next := &countingRenderer{}
	r := NewRecordingRenderer(next, pub, "session_1")
	ts := time.UnixMilli(1709649000123)

	r.AppendUser(chat.Entry{Text: "hi", Time: ts})
	r.SetTyping(true)
	r.AppendBot(chat.BotEntry{
		Text:       "Pick a time",
		Kind:       conversation.MessageKindTimeslotSelection,
		SlotPicker: true,
		Slots:      []conversation.TimeSlot{{Display: "9:00 AM"}},
		Time:       ts,
	})
	r.AppendError(chat.Entry{Text: "oops", Time: ts})
	r.Clear()

	require.Equal(t, 1, next.bots)
	require.Equal(t, []bool{true}, next.typing)
	require.Len(t, pub.entries, 4)
	for i, e := range pub.entries {
		require.Equal(t, int64(i+1), e.Seq)
		require.Equal(t, "session_1", e.SessionID)
	}
	require.Equal(t, transcriptstore.RoleUser, pub.entries[0].Role)
	require.Equal(t, int64(1709649000123), pub.entries[0].CreatedAtMs)
	require.Equal(t, "timeslot_selection", pub.entries[1].Kind)
	require.True(t, pub.entries[1].SlotPicker)
	require.Equal(t, transcriptstore.RoleError, pub.entries[2].Role)
	require.Equal(t, transcriptstore.RoleClear, pub.entries[3].Role)
	require.NotZero(t, pub.entries[3].CreatedAtMs)
}

func TestRecordingRenderer_StartSeqContinuesNumbering(t *testing.T) {
	pub := &capturePublisher{}
	r := NewRecordingRenderer(nil, pub, "session_1", WithStartSeq(7))
	r.AppendUser(chat.Entry{Text: "back again"})
	r.AppendBot(chat.BotEntry{Text: "Welcome back"})

	require.Len(t, pub.entries, 2)
	require.Equal(t, int64(8), pub.entries[0].Seq)
	require.Equal(t, int64(9), pub.entries[1].Seq)
}

func TestDrain_HandlesBufferedMessagesAfterCancel(t *testing.T) {
	msgs := make(chan *message.Message, 3)
	for i := 1; i <= 3; i++ {
		b, err := json.Marshal(transcriptstore.Entry{SessionID: "s", Seq: int64(i), Role: "user", Text: "queued"})
		require.NoError(t, err)
		msgs <- message.NewMessage(uuid.NewString(), b)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := transcriptstore.NewInMemoryStore()
	require.NoError(t, Drain(ctx, msgs, StepTranscriptPersistFunc(store)))

	entries, err := store.List(context.Background(), "s", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestStepTranscriptPersistFunc(t *testing.T) {
	store := transcriptstore.NewInMemoryStore()
	h := StepTranscriptPersistFunc(store)

	b, err := json.Marshal(transcriptstore.Entry{SessionID: "s", Seq: 1, Role: "user", Text: "hi"})
	require.NoError(t, err)
	require.NoError(t, h(message.NewMessage(uuid.NewString(), b)))
	require.NoError(t, h(message.NewMessage(uuid.NewString(), []byte("not json"))))

	entries, err := store.List(context.Background(), "s", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "hi", entries[0].Text)
}

func TestInMemoryBus_EntriesLandInStoreInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewInMemoryBus(watermill.NopLogger{})
	defer func() { _ = bus.Close() }()
	msgs, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	store := transcriptstore.NewInMemoryStore()
	done := make(chan error, 1)
	go func() { done <- Drain(ctx, msgs, StepTranscriptPersistFunc(store)) }()

	r := NewRecordingRenderer(nil, bus, "s")
	for _, text := range []string{"one", "two", "three"} {
		r.AppendUser(chat.Entry{Text: text})
	}

	require.Eventually(t, func() bool {
		entries, err := store.List(ctx, "s", 0)
		return err == nil && len(entries) == 3
	}, 2*time.Second, 10*time.Millisecond)

	entries, err := store.List(ctx, "s", 0)
	require.NoError(t, err)
	require.Equal(t, "one", entries[0].Text)
	require.Equal(t, "two", entries[1].Text)
	require.Equal(t, "three", entries[2].Text)

	cancel()
	require.NoError(t, <-done)
}

func TestZerologAdapter_With(t *testing.T) {
	a := NewZerologAdapter(zerolog.Nop())
	child := a.With(watermill.LogFields{"topic": "x"})
	child.Info("hello", nil)
	child.Error("boom", nil, watermill.LogFields{"k": 1})
}
