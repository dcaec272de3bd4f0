// pkg/airspace/route_test.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package airspace

import (
	"reflect"
	"testing"

	"github.com/swimfuse/swimfuse/pkg/geo"
)

// buildTestIndex assembles a tiny synthetic cycle: two airports, a SID
// off the origin, an airway joining the SID's endpoint to the STAR's
// entry fix, and a STAR into the destination.
func buildTestIndex() *Index {
	idx := newIndex("TEST-CYCLE")

	idx.byLID["BOS"] = Airport{LID: "BOS", Pos: geo.Point{Lat: 42.36, Lon: -71.01}}
	idx.byLID["JFK"] = Airport{LID: "JFK", Pos: geo.Point{Lat: 40.64, Lon: -73.78}}

	idx.fixes["GDM"] = []Fix{{ID: "GDM", Pos: geo.Point{Lat: 41.9, Lon: -71.5}}}
	idx.fixes["CCC"] = []Fix{{ID: "CCC", Pos: geo.Point{Lat: 41.0, Lon: -72.5}}}
	idx.fixes["CAMRN"] = []Fix{{ID: "CAMRN", Pos: geo.Point{Lat: 40.3, Lon: -73.2}}}

	idx.procs["SCUPP5"] = []*ProcedureDefinition{{
		ID: "SCUPP5", Airport: "BOS", Type: ProcedureSID,
		Body: []string{"GDM"},
	}}
	idx.byAirport["BOS"] = idx.procs["SCUPP5"]

	idx.procs["CAMRN4"] = []*ProcedureDefinition{{
		ID: "CAMRN4", Airport: "JFK", Type: ProcedureSTAR,
		Body:       []string{"CAMRN"},
		ByEndpoint: map[string]string{"CCC": ""},
	}}
	idx.byAirport["JFK"] = idx.procs["CAMRN4"]

	idx.airways["J121"] = []string{"GDM", "CCC"}

	return idx
}

func TestResolveRouteDeterministic(t *testing.T) {
	idx := buildTestIndex()
	route := "SCUPP5 J121 CAMRN4"

	first := resolveRoute(idx, route, "BOS", "JFK")
	second := resolveRoute(idx, route, "BOS", "JFK")

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected resolving the same route twice to be byte-equal, got %+v vs %+v", first, second)
	}
	if len(first) == 0 {
		t.Fatal("expected a non-empty polyline")
	}
	if first[0].Lat != 42.36 {
		t.Fatalf("expected the polyline to start at the origin airport, got %+v", first[0])
	}
	if last := first[len(first)-1]; last.Lat != 40.64 {
		t.Fatalf("expected the polyline to end at the destination airport, got %+v", last)
	}
}

func TestResolverCachesByKey(t *testing.T) {
	idx := buildTestIndex()
	store := NewStore()
	store.Swap(idx)
	res := NewResolver(store, 16)

	poly := res.Resolve("SCUPP5 J121 CAMRN4", "BOS", "JFK")
	cached := res.Resolve("SCUPP5 J121 CAMRN4", "BOS", "JFK")
	if !reflect.DeepEqual(poly, cached) {
		t.Fatal("expected cached resolution to match the first computation")
	}
}

func TestResolverPurgesCacheOnCycleChange(t *testing.T) {
	idx1 := buildTestIndex()
	store := NewStore()
	store.Swap(idx1)
	res := NewResolver(store, 16)

	res.Resolve("SCUPP5 J121 CAMRN4", "BOS", "JFK")

	idx2 := buildTestIndex()
	idx2.Cycle = "NEXT-CYCLE"
	store.Swap(idx2)

	res.Resolve("SCUPP5 J121 CAMRN4", "BOS", "JFK")
	if res.cycle != "NEXT-CYCLE" {
		t.Fatalf("expected resolver to track the new active cycle, got %q", res.cycle)
	}
}

func TestTokenizeRouteDropsDCTAndQualifiers(t *testing.T) {
	got := tokenizeRoute("SCUPP5.GDM..J121.CCC DCT CAMRN4/N0450F350")
	want := []string{"SCUPP5", "GDM", "J121", "CCC", "CAMRN4"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokenizeRoute = %v, want %v", got, want)
	}
}
