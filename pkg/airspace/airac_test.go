// pkg/airspace/airac_test.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package airspace

import (
	"testing"
	"time"
)

func TestCurrentCycleOnReferenceDate(t *testing.T) {
	got := CurrentCycle(referenceCycle)
	if !got.Equal(referenceCycle) {
		t.Fatalf("expected the reference date to be its own cycle, got %s", got)
	}
}

func TestCurrentCycleMidCycle(t *testing.T) {
	mid := referenceCycle.AddDate(0, 0, 14)
	got := CurrentCycle(mid)
	if !got.Equal(referenceCycle) {
		t.Fatalf("expected mid-cycle date to map back to the cycle start, got %s", got)
	}
}

func TestCurrentCycleAdvancesExactlyOnBoundary(t *testing.T) {
	boundary := referenceCycle.AddDate(0, 0, cycleDays)
	got := CurrentCycle(boundary)
	if !got.Equal(boundary) {
		t.Fatalf("expected the boundary date to start a new cycle, got %s", got)
	}
}

func TestNextCycleIsOneCycleAhead(t *testing.T) {
	now := referenceCycle.AddDate(0, 0, 5)
	next := NextCycle(now)
	want := referenceCycle.AddDate(0, 0, cycleDays)
	if !next.Equal(want) {
		t.Fatalf("expected next cycle %s, got %s", want, next)
	}
}

func TestCycleDirNameFormat(t *testing.T) {
	got := cycleDirName(time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC))
	if got != "2026-03-05" {
		t.Fatalf("expected 2026-03-05, got %s", got)
	}
}
