package journal

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/vaanilabs/vaani-core/internal/config"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestOpenEphemeralIsNoop(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, config.JournalConfig{RetentionMode: "ephemeral"}, newLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Record(ctx, Entry{RequestID: "r1", Outcome: "complete"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if entries != nil {
		t.Fatalf("ephemeral store returned entries: %v", entries)
	}
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	cfg := config.JournalConfig{Path: filepath.Join(t.TempDir(), "requests.db"), RetentionMode: "persistent"}
	store, err := Open(ctx, cfg, newLogger())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	entry := Entry{
		RequestID:      "req-1",
		SourceLang:     "English",
		TargetLang:     "Hindi",
		MediaKind:      "audio",
		Outcome:        "complete",
		OriginalText:   "hello",
		TranslatedText: "नमस्ते",
		AudioBytes:     1234,
		DurationMS:     850,
	}
	if err := store.Record(ctx, entry); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.RequestID != "req-1" || got.TranslatedText != "नमस्ते" || got.AudioBytes != 1234 {
		t.Fatalf("unexpected entry %+v", got)
	}
}

func TestPruneByAgeAndCount(t *testing.T) {
	ctx := context.Background()
	cfg := config.JournalConfig{
		Path:          filepath.Join(t.TempDir(), "requests.db"),
		RetentionMode: "persistent",
		RetentionDays: 1,
		MaxRequests:   1,
	}
	store, err := Open(ctx, cfg, newLogger())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	store.clock = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	if err := store.Record(ctx, Entry{RequestID: "old"}); err != nil {
		t.Fatalf("record old: %v", err)
	}

	store.clock = func() time.Time { return time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC) }
	if err := store.Record(ctx, Entry{RequestID: "new"}); err != nil {
		t.Fatalf("record new: %v", err)
	}
	if err := store.Prune(ctx); err != nil {
		t.Fatalf("prune: %v", err)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 || entries[0].RequestID != "new" {
		t.Fatalf("expected only newest entry, got %+v", entries)
	}
}
