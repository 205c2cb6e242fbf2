package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

func TestOpen(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	tests := []struct {
		backend string
		file    string
		wantErr bool
	}{
		{backend: BackendFile, file: "history.ndjson"},
		{backend: "", file: "history.ndjson"},
		{backend: BackendSQLite, file: "history.db"},
		{backend: BackendMemory},
		{backend: "redis", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			store, closeFn, err := Open(tt.backend, path, clock, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Open() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer closeFn()

			ctx := context.Background()
			entry := news.HistoryEntry{ID: "garden_1", Title: "Garden", SentAt: now.Add(-time.Hour)}
			if err := store.Append(ctx, []news.HistoryEntry{entry}); err != nil {
				t.Fatalf("Append() error = %v", err)
			}
			ids, err := store.RecentIDs(ctx, 24*time.Hour)
			if err != nil {
				t.Fatalf("RecentIDs() error = %v", err)
			}
			if _, ok := ids["garden_1"]; !ok {
				t.Errorf("RecentIDs() = %v, want garden_1", ids)
			}
		})
	}
}
