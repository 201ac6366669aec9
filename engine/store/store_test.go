package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tubemeta/tubemeta/engine/extract"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	meta := extract.VideoMetadata{ID: "vid1", Title: "First", DurationSeconds: 90}
	if err := s.Put(ctx, meta); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := s.Get(ctx, "vid1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.Title != "First" || got.DurationSeconds != 90 {
		t.Errorf("wrong record: %+v", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	if _, ok, err := s.Get(context.Background(), "nope"); err != nil || ok {
		t.Fatalf("expected a clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestPutOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.Put(ctx, extract.VideoMetadata{ID: "vid1", Title: "Old"})
	if err := s.Put(ctx, extract.VideoMetadata{ID: "vid1", Title: "New"}); err != nil {
		t.Fatalf("second put: %v", err)
	}

	got, ok, _ := s.Get(ctx, "vid1")
	if !ok || got.Title != "New" {
		t.Errorf("upsert failed: ok=%v record=%+v", ok, got)
	}
}

func TestStaleRecordMisses(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, extract.VideoMetadata{ID: "vid1", Title: "T"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, ok, err := s.Get(ctx, "vid1"); err != nil || ok {
		t.Fatalf("stale record should miss, got ok=%v err=%v", ok, err)
	}
}

func TestPurge(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.Put(ctx, extract.VideoMetadata{ID: "old", Title: "T"})
	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	s.Put(ctx, extract.VideoMetadata{ID: "fresh", Title: "T"})

	n, err := s.Purge(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d rows, want 1", n)
	}

	if _, ok, _ := s.Get(ctx, "fresh"); !ok {
		t.Error("fresh record removed by purge")
	}
}
