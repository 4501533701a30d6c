package transcriptstore

import (
	"context"
	"strings"

	"github.com/go-go-golems/jobbot/pkg/conversation"
)

// Roles of transcript entries.
const (
	RoleUser  = "user"
	RoleBot   = "bot"
	RoleError = "error"
	// RoleClear marks a transcript reset; entries before it were cleared
	// from the screen.
	RoleClear = "clear"
)

// Entry is one displayed transcript line. (SessionID, Seq) identifies it,
// so replaying the same entry is harmless.
type Entry struct {
	SessionID   string                  `json:"session_id"`
	Seq         int64                   `json:"seq"`
	Role        string                  `json:"role"`
	Kind        string                  `json:"kind,omitempty"`
	Text        string                  `json:"text"`
	Actions     []string                `json:"actions,omitempty"`
	Slots       []conversation.TimeSlot `json:"slots,omitempty"`
	SlotPicker  bool                    `json:"slot_picker,omitempty"`
	CreatedAtMs int64                   `json:"created_at_ms"`
}

// SessionInfo summarizes one recorded session.
type SessionInfo struct {
	SessionID      string `json:"session_id"`
	Entries        int    `json:"entries"`
	FirstEntryMs   int64  `json:"first_entry_ms"`
	LastActivityMs int64  `json:"last_activity_ms"`
}

// NoLimit makes List return every entry of a session. A zero limit uses the
// default page size.
const NoLimit = -1

// Store keeps transcripts of past sessions for listing and export.
type Store interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context, sessionID string, limit int) ([]Entry, error)
	// LastSeq is the highest seq recorded for the session, 0 when none.
	LastSeq(ctx context.Context, sessionID string) (int64, error)
	Sessions(ctx context.Context, limit int) ([]SessionInfo, error)
	Close() error
}

func normalizeEntry(e Entry) Entry {
	e.SessionID = strings.TrimSpace(e.SessionID)
	e.Role = strings.TrimSpace(e.Role)
	return e
}
