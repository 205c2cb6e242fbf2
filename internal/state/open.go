package state

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// Бэкенды журнала отправок.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Store: общий интерфейс всех бэкендов истории.
type Store interface {
	RecentIDs(ctx context.Context, window time.Duration) (map[string]struct{}, error)
	Recent(ctx context.Context, window time.Duration) ([]news.HistoryEntry, error)
	Append(ctx context.Context, entries []news.HistoryEntry) error
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

// Open создаёт стор выбранного бэкенда. Возвращаемую функцию нужно вызвать при завершении.
func Open(backend, path string, clock func() time.Time, logger *slog.Logger) (Store, func() error, error) {
	noop := func() error { return nil }
	switch backend {
	case BackendFile, "":
		return NewFileStore(path, clock, logger), noop, nil
	case BackendSQLite:
		s, err := OpenSQLiteStore(path, clock)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case BackendMemory:
		return NewMemoryStore(clock), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown history backend %q", backend)
	}
}
