package transcriptstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/go-go-golems/jobbot/pkg/conversation"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ Store = &SQLiteStore{}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, errors.New("sqlite transcript store: empty dsn")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// SQLiteDSNForFile returns a DSN for path, creating its directory.
func SQLiteDSNForFile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("sqlite transcript store: empty path")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", errors.Wrap(err, "sqlite transcript store: create directory")
		}
	}
	// WAL for concurrent readers + writer. busy_timeout to avoid transient SQLITE_BUSY.
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path), nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	if s == nil || s.db == nil {
		return errors.New("sqlite transcript store: db is nil")
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transcript_entries (
		  session_id TEXT NOT NULL,
		  seq INTEGER NOT NULL,
		  role TEXT NOT NULL,
		  kind TEXT NOT NULL DEFAULT '',
		  text TEXT NOT NULL,
		  actions_json TEXT NOT NULL DEFAULT '[]',
		  slots_json TEXT NOT NULL DEFAULT '[]',
		  slot_picker INTEGER NOT NULL DEFAULT 0,
		  created_at_ms INTEGER NOT NULL,
		  PRIMARY KEY (session_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS transcript_entries_by_created
		  ON transcript_entries(created_at_ms DESC);`,
	}
	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return errors.Wrap(err, "sqlite transcript store: migrate")
		}
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, e Entry) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite transcript store: db is nil")
	}
	e = normalizeEntry(e)
	if e.SessionID == "" {
		return errors.New("sqlite transcript store: sessionID is empty")
	}
	if e.Role == "" {
		return errors.New("sqlite transcript store: role is empty")
	}
	actions, err := json.Marshal(nonNilStrings(e.Actions))
	if err != nil {
		return errors.Wrap(err, "sqlite transcript store: marshal actions")
	}
	slots, err := json.Marshal(nonNilSlots(e.Slots))
	if err != nil {
		return errors.Wrap(err, "sqlite transcript store: marshal slots")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transcript_entries (
			session_id, seq, role, kind, text, actions_json, slots_json, slot_picker, created_at_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO UPDATE SET
			role = excluded.role,
			kind = excluded.kind,
			text = excluded.text,
			actions_json = excluded.actions_json,
			slots_json = excluded.slots_json,
			slot_picker = excluded.slot_picker,
			created_at_ms = excluded.created_at_ms
	`, e.SessionID, e.Seq, e.Role, e.Kind, e.Text, string(actions), string(slots), e.SlotPicker, e.CreatedAtMs)
	if err != nil {
		return errors.Wrap(err, "sqlite transcript store: append entry")
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("sqlite transcript store: db is nil")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errors.New("sqlite transcript store: sessionID is empty")
	}
	if limit == 0 {
		limit = 1000
	}
	if limit < 0 {
		// sqlite treats a negative LIMIT as unbounded
		limit = NoLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, seq, role, kind, text, actions_json, slots_json, slot_picker, created_at_ms
		FROM transcript_entries
		WHERE session_id = ?
		ORDER BY seq ASC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite transcript store: query entries")
	}
	defer func() { _ = rows.Close() }()

	ret := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			actions string
			slots   string
		)
		if err := rows.Scan(&e.SessionID, &e.Seq, &e.Role, &e.Kind, &e.Text, &actions, &slots, &e.SlotPicker, &e.CreatedAtMs); err != nil {
			return nil, errors.Wrap(err, "sqlite transcript store: scan entry")
		}
		if err := json.Unmarshal([]byte(actions), &e.Actions); err != nil {
			return nil, errors.Wrap(err, "sqlite transcript store: decode actions")
		}
		var decoded []conversation.TimeSlot
		if err := json.Unmarshal([]byte(slots), &decoded); err != nil {
			return nil, errors.Wrap(err, "sqlite transcript store: decode slots")
		}
		if len(e.Actions) == 0 {
			e.Actions = nil
		}
		if len(decoded) > 0 {
			e.Slots = decoded
		}
		ret = append(ret, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "sqlite transcript store: iterate entries")
	}
	return ret, nil
}

func (s *SQLiteStore) LastSeq(ctx context.Context, sessionID string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("sqlite transcript store: db is nil")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return 0, errors.New("sqlite transcript store: sessionID is empty")
	}
	var last int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM transcript_entries WHERE session_id = ?
	`, sessionID).Scan(&last)
	if err != nil {
		return 0, errors.Wrap(err, "sqlite transcript store: last seq")
	}
	return last, nil
}

func (s *SQLiteStore) Sessions(ctx context.Context, limit int) ([]SessionInfo, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("sqlite transcript store: db is nil")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, COUNT(*), MIN(created_at_ms), MAX(created_at_ms)
		FROM transcript_entries
		GROUP BY session_id
		ORDER BY MAX(created_at_ms) DESC, session_id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite transcript store: query sessions")
	}
	defer func() { _ = rows.Close() }()

	ret := []SessionInfo{}
	for rows.Next() {
		var si SessionInfo
		if err := rows.Scan(&si.SessionID, &si.Entries, &si.FirstEntryMs, &si.LastActivityMs); err != nil {
			return nil, errors.Wrap(err, "sqlite transcript store: scan session")
		}
		ret = append(ret, si)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "sqlite transcript store: iterate sessions")
	}
	return ret, nil
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilSlots(v []conversation.TimeSlot) []conversation.TimeSlot {
	if v == nil {
		return []conversation.TimeSlot{}
	}
	return v
}
