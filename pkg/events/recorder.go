package events

import (
	"sync"
	"time"

	"github.com/go-go-golems/jobbot/pkg/chat"
	"github.com/go-go-golems/jobbot/pkg/persistence/transcriptstore"
	"github.com/rs/zerolog/log"
)

// Publisher is the part of Bus the recorder needs.
type Publisher interface {
	Publish(e transcriptstore.Entry) error
}

// RecordingRenderer forwards every call to the wrapped renderer and mirrors
// transcript mutations onto the bus. Typing, send and input toggles are not
// recorded.
type RecordingRenderer struct {
	next      chat.Renderer
	pub       Publisher
	sessionID string
	now       func() time.Time

	mu  sync.Mutex
	seq int64
}

var _ chat.Renderer = &RecordingRenderer{}

type RecorderOption func(*RecordingRenderer)

// WithStartSeq continues numbering after seq, so a session resumed under the
// same id appends to its stored transcript instead of overwriting it.
func WithStartSeq(seq int64) RecorderOption {
	return func(r *RecordingRenderer) {
		if seq > 0 {
			r.seq = seq
		}
	}
}

func NewRecordingRenderer(next chat.Renderer, pub Publisher, sessionID string, opts ...RecorderOption) *RecordingRenderer {
	if next == nil {
		next = chat.NopRenderer{}
	}
	ret := &RecordingRenderer{next: next, pub: pub, sessionID: sessionID, now: time.Now}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (r *RecordingRenderer) AppendUser(e chat.Entry) {
	r.next.AppendUser(e)
	r.record(transcriptstore.Entry{Role: transcriptstore.RoleUser, Text: e.Text}, e.Time)
}

func (r *RecordingRenderer) AppendBot(e chat.BotEntry) {
	r.next.AppendBot(e)
	r.record(transcriptstore.Entry{
		Role:       transcriptstore.RoleBot,
		Kind:       e.Kind.String(),
		Text:       e.Text,
		Actions:    e.Actions,
		Slots:      e.Slots,
		SlotPicker: e.SlotPicker,
	}, e.Time)
}

func (r *RecordingRenderer) AppendError(e chat.Entry) {
	r.next.AppendError(e)
	r.record(transcriptstore.Entry{Role: transcriptstore.RoleError, Text: e.Text}, e.Time)
}

func (r *RecordingRenderer) Clear() {
	r.next.Clear()
	r.record(transcriptstore.Entry{Role: transcriptstore.RoleClear}, time.Time{})
}

func (r *RecordingRenderer) SetTyping(on bool)           { r.next.SetTyping(on) }
func (r *RecordingRenderer) SetSendEnabled(enabled bool) { r.next.SetSendEnabled(enabled) }
func (r *RecordingRenderer) ClearInput()                 { r.next.ClearInput() }

func (r *RecordingRenderer) record(e transcriptstore.Entry, t time.Time) {
	if r.pub == nil {
		return
	}
	if t.IsZero() {
		t = r.now()
	}
	r.mu.Lock()
	r.seq++
	e.Seq = r.seq
	r.mu.Unlock()
	e.SessionID = r.sessionID
	e.CreatedAtMs = t.UnixMilli()
	if err := r.pub.Publish(e); err != nil {
		log.Warn().Err(err).
			Str("component", "transcript_recorder").
			Str("session_id", r.sessionID).
			Int64("seq", e.Seq).
			Msg("failed to publish transcript entry")
	}
}
