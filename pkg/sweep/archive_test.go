// pkg/sweep/archive_test.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sweep

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name string, size int) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644); err != nil {
		t.Fatalf("writeFile %s: %v", name, err)
	}
}

func TestEnforceSizeBudgetRemovesOldestFirst(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	writeFile(t, dir, "2026-03-01.jsonl", 100)
	writeFile(t, dir, "2026-03-02.jsonl", 100)
	writeFile(t, dir, "2026-03-03.jsonl", 100)
	writeFile(t, dir, now.Format("2006-01-02")+".jsonl", 100)

	EnforceSizeBudget(dir, 250, now, nil)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	names := make(map[string]bool)
	for _, e := range entries {
		names[e.Name()] = true
	}
	if names["2026-03-01.jsonl"] {
		t.Fatal("expected the oldest file to have been removed first")
	}
	if !names[now.Format("2006-01-02")+".jsonl"] {
		t.Fatal("expected today's file never to be removed")
	}
}

func TestEnforceSizeBudgetNeverDeletesToday(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	writeFile(t, dir, now.Format("2006-01-02")+".jsonl", 10000)

	EnforceSizeBudget(dir, 1, now, nil)

	if _, err := os.Stat(filepath.Join(dir, now.Format("2006-01-02")+".jsonl")); err != nil {
		t.Fatal("expected today's file to survive even over budget")
	}
}

func TestEnforceSizeBudgetNoOpUnderBudget(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	writeFile(t, dir, "2026-03-01.jsonl", 10)

	EnforceSizeBudget(dir, 1000, now, nil)

	if _, err := os.Stat(filepath.Join(dir, "2026-03-01.jsonl")); err != nil {
		t.Fatal("expected no deletion while under budget")
	}
}

func TestArchiveAppendWritesJSONLine(t *testing.T) {
	dir := t.TempDir()
	a := NewArchive(dir, nil)
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	if err := a.Append("FL1", "UAL123", nil, now); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "2026-03-05.jsonl"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected a non-empty archive line")
	}
}
