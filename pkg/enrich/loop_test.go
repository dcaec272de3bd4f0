// pkg/enrich/loop_test.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/swimfuse/swimfuse/pkg/flight"
	"github.com/swimfuse/swimfuse/pkg/geo"
)

type fakePublisher struct {
	flightPlans []*flight.PartialFlightUpdate
	positions   []*flight.PartialFlightUpdate
}

func (f *fakePublisher) PublishFlightPlan(id string, u *flight.PartialFlightUpdate) {
	f.flightPlans = append(f.flightPlans, u)
}

func (f *fakePublisher) PublishPosition(id string, u *flight.PartialFlightUpdate) {
	f.positions = append(f.positions, u)
}

func TestNearestSquawkMatchPrefersCloserCandidate(t *testing.T) {
	item := pendingWorkItem{
		position:    geo.Point{Lat: 42.0, Lon: -71.0},
		hasPosition: true,
	}
	candidates := []Aircraft{
		{Callsign: "FAR1", Position: geo.Point{Lat: 43.5, Lon: -71.0}},
		{Callsign: "NEAR1", Position: geo.Point{Lat: 42.01, Lon: -71.0}},
	}
	got, ok := nearestSquawkMatch(candidates, item)
	if !ok || got.Callsign != "NEAR1" {
		t.Fatalf("expected the nearer candidate NEAR1, got %+v ok=%v", got, ok)
	}
}

func TestNearestSquawkMatchRejectsOutOfRadius(t *testing.T) {
	item := pendingWorkItem{
		position:    geo.Point{Lat: 42.0, Lon: -71.0},
		hasPosition: true,
	}
	candidates := []Aircraft{
		{Callsign: "FAR1", Position: geo.Point{Lat: 45.0, Lon: -71.0}},
	}
	if _, ok := nearestSquawkMatch(candidates, item); ok {
		t.Fatal("expected a candidate well outside the match radius to be rejected")
	}
}

func TestNearestSquawkMatchRejectsOutOfAltitudeGate(t *testing.T) {
	item := pendingWorkItem{altFeet: 10000, hasAlt: true}
	candidates := []Aircraft{{Callsign: "X", AltFeet: 30000}}
	if _, ok := nearestSquawkMatch(candidates, item); ok {
		t.Fatal("expected a candidate outside the altitude gate to be rejected")
	}
}

func TestNearestSquawkMatchSkipsAltitudeGateWhenZero(t *testing.T) {
	item := pendingWorkItem{altFeet: 0, hasAlt: true}
	candidates := []Aircraft{{Callsign: "X", AltFeet: 30000}}
	if _, ok := nearestSquawkMatch(candidates, item); !ok {
		t.Fatal("expected the altitude gate to be skipped when the record's own altitude is zero")
	}
}

func TestCollectPendingWorkSkipsRecordsWithCallsign(t *testing.T) {
	store := flight.NewStore()
	withCallsign, _ := store.GetOrCreateFlight("FL1")
	withCallsign.Callsign = "UAL123"
	withCallsign.ModeSHex = "ABC123"

	noIdentity, _ := store.GetOrCreateFlight("FL2")
	_ = noIdentity

	pending, _ := store.GetOrCreateFlight("FL3")
	pending.ModeSHex = "DEF456"

	l := &Loop{store: store}
	items := l.collectPendingWork()
	if len(items) != 1 || items[0].id != "FL3" {
		t.Fatalf("expected exactly the hex-bearing callsign-less record, got %+v", items)
	}
}

func TestMatchPendingWorkPublishesCallsignByHex(t *testing.T) {
	store := flight.NewStore()
	rec, _ := store.GetOrCreateFlight("FL1")
	rec.ModeSHex = "ABC123"

	pub := &fakePublisher{}
	l := &Loop{store: store, pub: pub}

	hexIdx := map[string]Aircraft{"ABC123": {Hex: "ABC123", Callsign: "UAL123", Squawk: "4567"}}
	l.matchPendingWork(context.Background(), hexIdx, nil)

	if len(pub.flightPlans) != 1 {
		t.Fatalf("expected exactly one published flight plan, got %+v", pub.flightPlans)
	}
	if callsign, _ := pub.flightPlans[0].Callsign.Get(); callsign != "UAL123" {
		t.Fatalf("expected a published callsign match, got %q", callsign)
	}
}

func TestMatchPendingWorkSkipsWhenCallsignAlreadyInUse(t *testing.T) {
	store := flight.NewStore()
	active, _ := store.GetOrCreateFlight("ACTIVE")
	active.Callsign = "UAL123"
	active.ControllingFacility = "ZBW"

	pending, _ := store.GetOrCreateFlight("FL1")
	pending.ModeSHex = "ABC123"
	pending.ControllingFacility = "ZBW"

	pub := &fakePublisher{}
	l := &Loop{store: store, pub: pub}

	hexIdx := map[string]Aircraft{"ABC123": {Hex: "ABC123", Callsign: "UAL123"}}
	l.matchPendingWork(context.Background(), hexIdx, nil)

	if len(pub.flightPlans) != 0 {
		t.Fatalf("expected no publish when the callsign is already in use on the facility, got %+v", pub.flightPlans)
	}
}

func TestPublishMatchAlsoPublishesPositionWhenAltitudeUnknown(t *testing.T) {
	store := flight.NewStore()
	rec, _ := store.GetOrCreateFlight("FL1")
	rec.ModeSHex = "ABC123"

	pub := &fakePublisher{}
	l := &Loop{store: store, pub: pub}

	match := Aircraft{Hex: "ABC123", Callsign: "UAL123", AltFeet: 35000, Position: geo.Point{Lat: 42, Lon: -71}}
	item := pendingWorkItem{id: "FL1", hex: "ABC123", hasAlt: false}
	l.publishMatch(item, match)

	if len(pub.positions) != 1 {
		t.Fatalf("expected a position update when altitude was previously unknown, got %d", len(pub.positions))
	}
	if time.Since(pub.positions[0].Timestamp) > time.Second {
		t.Fatal("expected a freshly-stamped timestamp on the synthesized update")
	}
}
