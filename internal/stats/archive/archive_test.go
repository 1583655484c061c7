package archive

import (
	"testing"
	"time"

	"identityresolver/internal/model"
)

func TestSnapshotRoundTrip(t *testing.T) {
	a, err := New(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	snap := map[string]model.TokenStats{
		"rahul": {GlobalFrequency: 10, NumberCount: 8},
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := a.Snapshot(snap, at); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	names, err := a.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("len(names) = %d, want 1", len(names))
	}

	loaded, err := a.Load(names[0])
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded["rahul"].GlobalFrequency != 10 {
		t.Errorf("loaded[rahul].GlobalFrequency = %d, want 10", loaded["rahul"].GlobalFrequency)
	}
}

func TestSnapshotPrunesBeyondRetention(t *testing.T) {
	a, err := New(t.TempDir(), 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		if err := a.Snapshot(map[string]model.TokenStats{"x": {}}, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("Snapshot %d: %v", i, err)
		}
	}

	names, err := a.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("len(names) = %d, want 2 (retention enforced)", len(names))
	}
}
