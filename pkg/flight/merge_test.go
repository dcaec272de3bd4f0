// pkg/flight/merge_test.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

import (
	"testing"
	"time"

	"github.com/swimfuse/swimfuse/pkg/geo"
)

func TestAltitudeMutualExclusion(t *testing.T) {
	rec := NewFlightRecord("ABC123")
	ApplyFlightUpdate(rec, &PartialFlightUpdate{
		ID: rec.ID, Timestamp: time.Now(),
		AssignedAltitude: Present(AltitudeUpdate{Kind: AltitudeSimple, SimpleFeet: 35000}),
	})
	if rec.AssignedAltitude.Kind != AltitudeSimple || rec.AssignedAltitude.SimpleFeet != 35000 {
		t.Fatalf("expected simple 35000, got %+v", rec.AssignedAltitude)
	}
	ApplyFlightUpdate(rec, &PartialFlightUpdate{
		ID: rec.ID, Timestamp: time.Now(),
		AssignedAltitude: Present(AltitudeUpdate{Kind: AltitudeBlock, BlockFloor: 30000, BlockCeiling: 40000}),
	})
	if rec.AssignedAltitude.Kind != AltitudeBlock || rec.AssignedAltitude.SimpleFeet != 0 {
		t.Fatalf("expected block altitude to fully replace simple, got %+v", rec.AssignedAltitude)
	}
}

func TestHeartbeatNeverTouchesAssignedAltitude(t *testing.T) {
	rec := NewFlightRecord("ABC123")
	ApplyFlightUpdate(rec, &PartialFlightUpdate{
		ID: rec.ID, Timestamp: time.Now(),
		AssignedAltitude: Present(AltitudeUpdate{Kind: AltitudeSimple, SimpleFeet: 35000}),
	})
	ApplyFlightUpdate(rec, &PartialFlightUpdate{
		ID: rec.ID, Timestamp: time.Now(), Class: ClassHeartbeat,
		AssignedAltitude: Present(AltitudeUpdate{Kind: AltitudeSimple, SimpleFeet: 1000}),
	})
	if rec.AssignedAltitude.SimpleFeet != 35000 {
		t.Fatalf("heartbeat must not mutate assigned altitude, got %+v", rec.AssignedAltitude)
	}
}

func TestInterimAltitudeNullClear(t *testing.T) {
	rec := NewFlightRecord("ABC123")
	ApplyFlightUpdate(rec, &PartialFlightUpdate{ID: rec.ID, Timestamp: time.Now(), InterimAltitude: Present(9000)})
	if !rec.HasInterimAltitude || rec.InterimAltitude != 9000 {
		t.Fatalf("expected interim altitude 9000, got %v %v", rec.HasInterimAltitude, rec.InterimAltitude)
	}
	ApplyFlightUpdate(rec, &PartialFlightUpdate{ID: rec.ID, Timestamp: time.Now(), InterimAltitude: Null[int]()})
	if rec.HasInterimAltitude {
		t.Fatalf("explicit nil must clear interim altitude")
	}
}

func TestInterimAltitudeAbsentOnlyClearsForAuthoritativeClasses(t *testing.T) {
	rec := NewFlightRecord("ABC123")
	ApplyFlightUpdate(rec, &PartialFlightUpdate{ID: rec.ID, Timestamp: time.Now(), InterimAltitude: Present(9000)})

	ApplyFlightUpdate(rec, &PartialFlightUpdate{ID: rec.ID, Timestamp: time.Now(), Class: ClassTrack})
	if !rec.HasInterimAltitude {
		t.Fatalf("non-authoritative absence must not clear interim altitude")
	}

	ApplyFlightUpdate(rec, &PartialFlightUpdate{ID: rec.ID, Timestamp: time.Now(), Class: ClassCanonicalState})
	if rec.HasInterimAltitude {
		t.Fatalf("canonical-state absence must clear interim altitude")
	}
}

func TestClearanceCanonicalOmissionWipesTriple(t *testing.T) {
	rec := NewFlightRecord("ABC123")
	ApplyFlightUpdate(rec, &PartialFlightUpdate{
		ID: rec.ID, Timestamp: time.Now(), HasCleared: true,
		Clearance: ClearanceUpdate{Heading: Present(270), Speed: Present(250)},
	})
	if !rec.Clearance.HasHeading || rec.Clearance.Heading != 270 {
		t.Fatalf("expected clearance heading set")
	}

	ApplyFlightUpdate(rec, &PartialFlightUpdate{ID: rec.ID, Timestamp: time.Now(), Class: ClassTrack, HasCleared: false})
	if !rec.Clearance.HasHeading {
		t.Fatalf("non-canonical omission must not wipe clearance")
	}

	ApplyFlightUpdate(rec, &PartialFlightUpdate{ID: rec.ID, Timestamp: time.Now(), Class: ClassCanonicalState, HasCleared: false})
	if rec.Clearance.HasHeading || rec.Clearance.HasSpeed {
		t.Fatalf("canonical-state omission must wipe clearance triple, got %+v", rec.Clearance)
	}
}

func TestHandoffCompletionAutoClears(t *testing.T) {
	rec := NewFlightRecord("ABC123")
	ApplyFlightUpdate(rec, &PartialFlightUpdate{
		ID: rec.ID, Timestamp: time.Now(), Class: ClassAssumedHandoff,
		Handoff: HandoffUpdate{HasEvent: true, Event: "ACCEPT", Transferring: Present("ZOB/40"), Receiving: Present("ZDC/55")},
	})
	if !rec.Handoff.Forced {
		t.Fatalf("expected forced handoff on ACCEPT event")
	}
	ApplyFlightUpdate(rec, &PartialFlightUpdate{
		ID: rec.ID, Timestamp: time.Now(),
		ControllingFacility: Present("ZDC"), ControllingSector: Present("55"),
	})
	if rec.HandoffActive() {
		t.Fatalf("expected handoff triple cleared once controlling unit matches receiving unit, got %+v", rec.Handoff)
	}
}

func TestOperatorLongestWins(t *testing.T) {
	rec := NewFlightRecord("ABC123")
	ApplyFlightUpdate(rec, &PartialFlightUpdate{ID: rec.ID, Timestamp: time.Now(), Operator: Present("DAL")})
	ApplyFlightUpdate(rec, &PartialFlightUpdate{ID: rec.ID, Timestamp: time.Now(), Operator: Present("Delta Air Lines")})
	if rec.Operator != "Delta Air Lines" {
		t.Fatalf("expected longer name to win, got %q", rec.Operator)
	}
	ApplyFlightUpdate(rec, &PartialFlightUpdate{ID: rec.ID, Timestamp: time.Now(), Operator: Present("DAL")})
	if rec.Operator != "Delta Air Lines" {
		t.Fatalf("shorter code must not shrink stored operator name, got %q", rec.Operator)
	}
}

func TestBeaconCodeSplit(t *testing.T) {
	rec := NewFlightRecord("ABC123")
	ApplyFlightUpdate(rec, &PartialFlightUpdate{ID: rec.ID, Timestamp: time.Now(), AssignedSquawkDedicated: Present("4567")})
	if rec.AssignedSquawk != "4567" || rec.CurrentSquawk != "4567" {
		t.Fatalf("dedicated assignment must set both codes, got %q/%q", rec.AssignedSquawk, rec.CurrentSquawk)
	}
	ApplyFlightUpdate(rec, &PartialFlightUpdate{ID: rec.ID, Timestamp: time.Now(), CurrentSquawk: Present("1200")})
	if rec.AssignedSquawk != "4567" || rec.CurrentSquawk != "1200" {
		t.Fatalf("current-beacon-only update must not touch assigned code, got %q/%q", rec.AssignedSquawk, rec.CurrentSquawk)
	}
}

func TestPositionHistoryRingBoundAndMonotonic(t *testing.T) {
	rec := NewFlightRecord("ABC123")
	base := time.Now()
	for i := 0; i < 30; i++ {
		ApplyFlightUpdate(rec, &PartialFlightUpdate{
			ID: rec.ID, Timestamp: base.Add(time.Duration(i) * time.Second),
			Position: Present(geo.Point{Lat: 40.0 + float64(i)*0.01, Lon: -75.0}),
		})
	}
	items := rec.Positions.Items()
	if len(items) != 20 {
		t.Fatalf("expected ring bounded to 20, got %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].Tick.Before(items[i-1].Tick) {
			t.Fatalf("position history must be chronologically ordered")
		}
	}
}

func TestEventRingBoundedArchiveUnbounded(t *testing.T) {
	rec := NewFlightRecord("ABC123")
	for i := 0; i < 80; i++ {
		ApplyFlightUpdate(rec, &PartialFlightUpdate{ID: rec.ID, Timestamp: time.Now()})
	}
	if n := len(rec.Events.Items()); n != 50 {
		t.Fatalf("expected event ring bounded to 50, got %d", n)
	}
	if len(rec.Archive) != 80 {
		t.Fatalf("expected archive to grow unbounded, got %d", len(rec.Archive))
	}
}

func TestIdempotentReapplication(t *testing.T) {
	rec := NewFlightRecord("ABC123")
	u := &PartialFlightUpdate{
		ID: rec.ID, Timestamp: time.Now(),
		Callsign: Present("AAL123"), Origin: Present("KJFK"), Destination: Present("KLAX"),
		AssignedAltitude: Present(AltitudeUpdate{Kind: AltitudeSimple, SimpleFeet: 35000}),
	}
	ApplyFlightUpdate(rec, u)
	first := rec.AssignedAltitude
	ApplyFlightUpdate(rec, u)
	if rec.AssignedAltitude != first {
		t.Fatalf("reapplying identical update must be idempotent for assigned altitude")
	}
	if rec.Callsign != "AAL123" || rec.Origin != "KJFK" || rec.Destination != "KLAX" {
		t.Fatalf("reapplying identical update changed flight-plan fields")
	}
}

func TestStatusLifecycle(t *testing.T) {
	rec := NewFlightRecord("ABC123")
	ApplyFlightUpdate(rec, &PartialFlightUpdate{ID: rec.ID, Timestamp: time.Now()})
	if rec.Status != StatusActive {
		t.Fatalf("expected first update to activate record, got %s", rec.Status)
	}
	ApplyFlightUpdate(rec, &PartialFlightUpdate{ID: rec.ID, Timestamp: time.Now(), Status: Present(StatusDropped)})
	if rec.Status != StatusDropped {
		t.Fatalf("expected dropped status, got %s", rec.Status)
	}
	if arch := Purge(rec); arch == nil {
		t.Fatalf("expected purge of dropped record to return archive")
	}
	if rec.Status != StatusPurged {
		t.Fatalf("expected purged status, got %s", rec.Status)
	}
}

func TestExpirePointOut(t *testing.T) {
	rec := NewFlightRecord("ABC123")
	now := time.Now()
	ApplyFlightUpdate(rec, &PartialFlightUpdate{
		ID: rec.ID, Timestamp: now,
		PointOut: Present(PointOut{Originating: "N90", Receiving: "ZNY"}),
	})
	if !ExpirePointOut(rec, now.Add(4*time.Minute), 3*time.Minute) {
		t.Fatalf("expected point-out to expire after ttl")
	}
	if rec.PointOut.Receiving != "" {
		t.Fatalf("expected point-out cleared")
	}
}
