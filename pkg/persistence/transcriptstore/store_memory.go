package transcriptstore

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// InMemoryStore mirrors the ordering semantics of the SQLite store.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string]map[int64]Entry
}

var _ Store = &InMemoryStore{}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: map[string]map[int64]Entry{}}
}

func (s *InMemoryStore) Close() error { return nil }

func (s *InMemoryStore) Append(_ context.Context, e Entry) error {
	if s == nil {
		return errors.New("in-memory transcript store: nil store")
	}
	e = normalizeEntry(e)
	if e.SessionID == "" {
		return errors.New("in-memory transcript store: sessionID is empty")
	}
	if e.Role == "" {
		return errors.New("in-memory transcript store: role is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.sessions[e.SessionID]
	if !ok {
		entries = map[int64]Entry{}
		s.sessions[e.SessionID] = entries
	}
	entries[e.Seq] = e
	return nil
}

func (s *InMemoryStore) List(_ context.Context, sessionID string, limit int) ([]Entry, error) {
	if s == nil {
		return nil, errors.New("in-memory transcript store: nil store")
	}
	if limit == 0 {
		limit = 1000
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make([]Entry, 0, len(s.sessions[sessionID]))
	for _, e := range s.sessions[sessionID] {
		ret = append(ret, e)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Seq < ret[j].Seq })
	if limit > 0 && len(ret) > limit {
		ret = ret[:limit]
	}
	return ret, nil
}

func (s *InMemoryStore) LastSeq(_ context.Context, sessionID string) (int64, error) {
	if s == nil {
		return 0, errors.New("in-memory transcript store: nil store")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var last int64
	for seq := range s.sessions[sessionID] {
		if seq > last {
			last = seq
		}
	}
	return last, nil
}

func (s *InMemoryStore) Sessions(_ context.Context, limit int) ([]SessionInfo, error) {
	if s == nil {
		return nil, errors.New("in-memory transcript store: nil store")
	}
	if limit <= 0 {
		limit = 100
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make([]SessionInfo, 0, len(s.sessions))
	for id, entries := range s.sessions {
		si := SessionInfo{SessionID: id, Entries: len(entries)}
		for _, e := range entries {
			if si.FirstEntryMs == 0 || e.CreatedAtMs < si.FirstEntryMs {
				si.FirstEntryMs = e.CreatedAtMs
			}
			if e.CreatedAtMs > si.LastActivityMs {
				si.LastActivityMs = e.CreatedAtMs
			}
		}
		ret = append(ret, si)
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].LastActivityMs != ret[j].LastActivityMs {
			return ret[i].LastActivityMs > ret[j].LastActivityMs
		}
		return ret[i].SessionID < ret[j].SessionID
	})
	if len(ret) > limit {
		ret = ret[:limit]
	}
	return ret, nil
}
