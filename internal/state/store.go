package state

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// maxLineSize: предельная длина одной NDJSON-строки истории.
const maxLineSize = 1 << 20

// FileStore хранит историю отправок в append-only NDJSON-файле: одна запись на строку.
// Старые записи физически не удаляются, окно применяется при чтении.
type FileStore struct {
	path   string
	clock  func() time.Time
	logger *slog.Logger

	mu sync.Mutex
}

// NewFileStore создаёт файловый стор.
func NewFileStore(path string, clock func() time.Time, logger *slog.Logger) *FileStore {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, clock: clock, logger: logger}
}

// RecentIDs возвращает идентификаторы, отправленные в пределах окна.
func (s *FileStore) RecentIDs(ctx context.Context, window time.Duration) (map[string]struct{}, error) {
	entries, err := s.Recent(ctx, window)
	if err != nil {
		return nil, err
	}
	return IDs(entries), nil
}

// Recent возвращает записи, отправленные в пределах окна, в порядке добавления.
// Повреждённые строки пропускаются: пайплайн должен отработать даже с испорченным файлом.
func (s *FileStore) Recent(ctx context.Context, window time.Duration) ([]news.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	cutoff := s.clock().Add(-window)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		result  []news.HistoryEntry
		skipped int
		line    int
	)
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var entry news.HistoryEntry
		if err := json.Unmarshal(raw, &entry); err != nil || entry.ID == "" {
			skipped++
			continue
		}
		if entry.SentAt.Before(cutoff) {
			continue
		}
		result = append(result, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan history file: %w", err)
	}
	if skipped > 0 {
		s.logger.Warn("skipped malformed history lines", "path", s.path, "count", skipped, "lines", line)
	}
	return result, nil
}

// Append дописывает записи одним вызовом write с O_APPEND под мьютексом.
func (s *FileStore) Append(ctx context.Context, entries []news.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal history entry: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("append history: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync history file: %w", err)
	}
	return f.Close()
}

// IDs собирает множество идентификаторов.
func IDs(entries []news.HistoryEntry) map[string]struct{} {
	ids := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		ids[e.ID] = struct{}{}
	}
	return ids
}
