package engine

import (
	"context"
	"sort"
	"sync"
)

// MemoryHistoryStore keeps journals in process memory. Used in tests and in
// repository mock mode; it offers replay within a process lifetime but no
// crash durability.

type MemoryHistoryStore struct {
	mu     sync.RWMutex
	events map[string][]HistoryEvent
}

var _ HistoryStore = (*MemoryHistoryStore)(nil)

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{events: make(map[string][]HistoryEvent)}
}

func (s *MemoryHistoryStore) Append(_ context.Context, workflowID string, e HistoryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[workflowID] = append(s.events[workflowID], e)
	return nil
}

func (s *MemoryHistoryStore) Load(_ context.Context, workflowID string) ([]HistoryEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := append([]HistoryEvent(nil), s.events[workflowID]...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Seq < events[j].Seq })
	return events, nil
}

func (s *MemoryHistoryStore) ListWorkflowIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.events))
	for id := range s.events {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
