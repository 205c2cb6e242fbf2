package state

import (
	"context"
	"sync"
	"time"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// MemoryStore: история в памяти процесса (тесты и режим предпросмотра).
type MemoryStore struct {
	clock func() time.Time

	mu      sync.Mutex
	entries []news.HistoryEntry
}

// NewMemoryStore создаёт стор с начальными записями.
func NewMemoryStore(clock func() time.Time, entries ...news.HistoryEntry) *MemoryStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryStore{clock: clock, entries: append([]news.HistoryEntry(nil), entries...)}
}

func (s *MemoryStore) RecentIDs(ctx context.Context, window time.Duration) (map[string]struct{}, error) {
	entries, err := s.Recent(ctx, window)
	if err != nil {
		return nil, err
	}
	return IDs(entries), nil
}

func (s *MemoryStore) Recent(_ context.Context, window time.Duration) ([]news.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock().Add(-window)
	var out []news.HistoryEntry
	for _, e := range s.entries {
		if !e.SentAt.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, entries []news.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return nil
}

// All возвращает копию всех записей.
func (s *MemoryStore) All() []news.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]news.HistoryEntry(nil), s.entries...)
}
