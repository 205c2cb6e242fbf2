package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// historyRecord: строка таблицы sent_stories.
type historyRecord struct {
	ID      uint      `gorm:"primaryKey"`
	StoryID string    `gorm:"index;not null"`
	URL     string
	Title   string
	SentAt  time.Time `gorm:"index;not null"`
}

func (historyRecord) TableName() string {
	return "sent_stories"
}

// SQLiteStore хранит историю в SQLite через gorm. Вставка батча идёт в одной транзакции,
// поэтому стор подходит и для нескольких процессов над одним файлом.
// Время хранится в UTC: драйвер пишет его строкой, сравнение с cutoff лексикографическое.
type SQLiteStore struct {
	db    *gorm.DB
	clock func() time.Time
}

// OpenSQLiteStore открывает (и при необходимости создаёт) базу истории.
func OpenSQLiteStore(path string, clock func() time.Time) (*SQLiteStore, error) {
	if clock == nil {
		clock = time.Now
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite history: %w", err)
	}
	if err := db.AutoMigrate(&historyRecord{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite history: %w", err)
	}
	return &SQLiteStore{db: db, clock: clock}, nil
}

func (s *SQLiteStore) RecentIDs(ctx context.Context, window time.Duration) (map[string]struct{}, error) {
	var ids []string
	cutoff := s.clock().Add(-window).UTC()
	err := s.db.WithContext(ctx).
		Model(&historyRecord{}).
		Where("sent_at >= ?", cutoff).
		Distinct().
		Pluck("story_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("query recent ids: %w", err)
	}

	result := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		result[id] = struct{}{}
	}
	return result, nil
}

func (s *SQLiteStore) Recent(ctx context.Context, window time.Duration) ([]news.HistoryEntry, error) {
	var records []historyRecord
	cutoff := s.clock().Add(-window).UTC()
	err := s.db.WithContext(ctx).
		Where("sent_at >= ?", cutoff).
		Order("id asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("query recent entries: %w", err)
	}

	entries := make([]news.HistoryEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, news.HistoryEntry{ID: r.StoryID, URL: r.URL, Title: r.Title, SentAt: r.SentAt})
	}
	return entries, nil
}

func (s *SQLiteStore) Append(ctx context.Context, entries []news.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	records := make([]historyRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, historyRecord{StoryID: e.ID, URL: e.URL, Title: e.Title, SentAt: e.SentAt.UTC()})
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&records).Error
	})
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// Close закрывает соединение с базой.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
