package scheduler

import (
	"context"
	"testing"
	"time"

	"identityresolver/internal/model"
	"identityresolver/internal/stats"
	"identityresolver/internal/stats/archive"
	"identityresolver/internal/store"
)

func TestNewPrimesCacheSynchronously(t *testing.T) {
	st, err := store.Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.SaveEntry(ctx, "+911234567890", model.CrowdEntry{SavedName: "Rahul Sharma", UserID: "u1", TrustScore: 0.8, Timestamp: 1}); err != nil {
		t.Fatalf("SaveEntry: %v", err)
	}

	cache := stats.NewCache()
	s, err := New(time.Hour, st, cache, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Stop()

	if len(cache.Snapshot()) == 0 {
		t.Error("expected cache to be populated synchronously before New returns")
	}
}

func TestNewArchivesSnapshotOnRefresh(t *testing.T) {
	st, err := store.Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.SaveEntry(ctx, "+911234567890", model.CrowdEntry{SavedName: "Rahul Sharma", UserID: "u1", TrustScore: 0.8, Timestamp: 1}); err != nil {
		t.Fatalf("SaveEntry: %v", err)
	}

	arc, err := archive.New(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("archive.New: %v", err)
	}

	cache := stats.NewCache()
	s, err := New(time.Hour, st, cache, arc, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Stop()

	names, err := arc.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 {
		t.Errorf("len(names) = %d, want 1 snapshot written by the priming refresh", len(names))
	}
}
