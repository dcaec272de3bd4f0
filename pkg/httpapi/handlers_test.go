// pkg/httpapi/handlers_test.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/swimfuse/swimfuse/pkg/airspace"
	"github.com/swimfuse/swimfuse/pkg/correlate"
	"github.com/swimfuse/swimfuse/pkg/flight"
	"github.com/swimfuse/swimfuse/pkg/sweep"
)

func newTestServer(t *testing.T) (*Server, *flight.Store) {
	t.Helper()
	store := flight.NewStore()
	as := airspace.NewStore()
	gates := correlate.NewGateCodeStore(filepath.Join(t.TempDir(), "gatecodes.json"))
	s := NewServer(store, as, airspace.NewResolver(as, 16), gates, nil, sweep.NewCounters(), nil)
	return s, store
}

func TestHandleStatsReportsCounts(t *testing.T) {
	s, store := newTestServer(t)
	rec, _ := store.GetOrCreateFlight("FL1")
	rec.Status = flight.StatusActive

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec2 := httptest.NewRecorder()
	s.Router().ServeHTTP(rec2, req)

	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec2.Code, rec2.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec2.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if int(body["flightCount"].(float64)) != 1 {
		t.Fatalf("expected flightCount 1, got %v", body["flightCount"])
	}
	if int(body["activeFlights"].(float64)) != 1 {
		t.Fatalf("expected activeFlights 1, got %v", body["activeFlights"])
	}
}

func TestHandleFlightNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/flights/NOPE", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHandleFlightFound(t *testing.T) {
	s, store := newTestServer(t)
	rec, _ := store.GetOrCreateFlight("FL1")
	rec.Callsign = "UAL123"
	rec.Origin = "KBOS"

	req := httptest.NewRequest(http.MethodGet, "/api/flights/FL1", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["callsign"] != "UAL123" || body["origin"] != "KBOS" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHandleGateCodesPutThenGet(t *testing.T) {
	s, _ := newTestServer(t)
	patterns := map[string]string{"RNAV#": "B12"}
	body, _ := json.Marshal(patterns)

	putReq := httptest.NewRequest(http.MethodPut, "/api/asdex/KBOS/gatecodes", bytes.NewReader(body))
	putW := httptest.NewRecorder()
	s.Router().ServeHTTP(putW, putReq)
	if putW.Code != http.StatusOK {
		t.Fatalf("expected 200 from PUT, got %d: %s", putW.Code, putW.Body.String())
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/asdex/KBOS/gatecodes", nil)
	getW := httptest.NewRecorder()
	s.Router().ServeHTTP(getW, getReq)

	var got map[string]string
	if err := json.Unmarshal(getW.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["RNAV#"] != "B12" {
		t.Fatalf("expected stored pattern to round-trip, got %+v", got)
	}
}

func TestHandleASDEXAirportFiltersByAirport(t *testing.T) {
	s, store := newTestServer(t)
	store.GetOrCreateSurface("KBOS", "T1")
	store.GetOrCreateSurface("KJFK", "T2")

	req := httptest.NewRequest(http.MethodGet, "/api/asdex/kbos", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	var out []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected exactly one KBOS track, got %d", len(out))
	}
}
