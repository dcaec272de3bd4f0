// pkg/sweep/cache_test.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sweep

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/swimfuse/swimfuse/pkg/flight"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "warm.json")

	store := flight.NewStore()
	rec, _ := store.GetOrCreateFlight("FL1")
	rec.Callsign = "UAL123"
	rec.Origin = "KBOS"
	rec.Destination = "KJFK"
	rec.HasPosition = true
	rec.Position.Lat, rec.Position.Lon = 42.3, -71.0
	rec.LastSeen = time.Now()

	cancelled, _ := store.GetOrCreateFlight("FL2")
	cancelled.Status = flight.StatusCancelled

	if err := Save(store, path, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored := flight.NewStore()
	if err := Load(restored, path, nil); err != nil {
		t.Fatalf("Load: %v", err)
	}

	got, ok := restored.Flights.Get("FL1")
	if !ok {
		t.Fatal("expected FL1 to be restored")
	}
	got.Mu.Lock()
	defer got.Mu.Unlock()
	if got.Callsign != "UAL123" || got.Origin != "KBOS" || !got.HasPosition {
		t.Fatalf("unexpected restored record: %+v", got)
	}

	if _, ok := restored.Flights.Get("FL2"); ok {
		t.Fatal("expected cancelled flights not to be persisted")
	}
}

func TestLoadSkipsStaleCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "warm.json")
	if err := os.WriteFile(path, []byte(`{"flights":[{"id":"FL1"}]}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	store := flight.NewStore()
	if err := Load(store, path, nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := store.Flights.Get("FL1"); ok {
		t.Fatal("expected a stale warm cache to be skipped")
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	store := flight.NewStore()
	if err := Load(store, filepath.Join(t.TempDir(), "missing.json"), nil); err != nil {
		t.Fatalf("expected a missing cache file to be a no-op, got %v", err)
	}
}

func TestClassifyFromSummary(t *testing.T) {
	cases := map[string]string{
		"surveillance heartbeat received": "surveillance-only",
		"handoff to N90 accepted":         "controlled",
		"something else entirely":         "",
	}
	for summary, want := range cases {
		if got := classifyFromSummary(summary); got != want {
			t.Errorf("classifyFromSummary(%q) = %q, want %q", summary, got, want)
		}
	}
}
