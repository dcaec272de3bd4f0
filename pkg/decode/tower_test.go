// pkg/decode/tower_test.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package decode

import (
	"testing"

	"github.com/swimfuse/swimfuse/pkg/flight"
)

const datalinkClearanceXML = `<TDLSCSPMessage>
  <ComputerID>123</ComputerID>
  <Beacon>4567</Beacon>
  <AircraftType>B738</AircraftType>
  <MessageTime>08012026143000</MessageTime>
  <Header>CLD</Header>
  <Body>CLRD TO KBOS VIA GPS DIRECT</Body>
  <CrossReference>GUFI-1</CrossReference>
  <CrossReference>GUFI-2</CrossReference>
</TDLSCSPMessage>`

func TestDecodeTowerDatalinkClearance(t *testing.T) {
	tp, err := DecodeTower("KJFK", datalinkClearanceXML, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if tp == nil {
		t.Fatal("expected a partial, got nil")
	}
	if tp.Airport != "KJFK" || tp.AircraftID != "123" {
		t.Fatalf("unexpected identity fields: %+v", tp)
	}
	if tp.Event.Kind != flight.TowerEventDatalinkClearance {
		t.Fatalf("expected datalink clearance event, got %v", tp.Event.Kind)
	}
	if tp.Event.Beacon != "4567" || tp.Event.AircraftType != "B738" {
		t.Fatalf("unexpected event fields: %+v", tp.Event)
	}
	if tp.Event.Datalink == nil || tp.Event.Datalink.Body != "CLRD TO KBOS VIA GPS DIRECT" {
		t.Fatalf("unexpected datalink payload: %+v", tp.Event.Datalink)
	}
	if len(tp.Event.XRefs) != 2 || tp.Event.XRefs[0] != "GUFI-1" {
		t.Fatalf("unexpected cross references: %+v", tp.Event.XRefs)
	}
	if tp.Event.Time.IsZero() {
		t.Fatal("expected a parsed message time")
	}
}

func TestDecodeTowerDatalinkClearanceFallsBackToBeacon(t *testing.T) {
	const noComputerID = `<TDLSCSPMessage><Beacon>7700</Beacon></TDLSCSPMessage>`
	tp, err := DecodeTower("KJFK", noComputerID, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if tp.AircraftID != "7700" {
		t.Fatalf("expected beacon fallback for aircraft id, got %q", tp.AircraftID)
	}
}

const departureEventXML = `<TowerDepartureEventMessage>
  <ComputerID>456</ComputerID>
  <Beacon>3412</Beacon>
  <AircraftType>A320</AircraftType>
  <Gate>B12</Gate>
  <NumericRunwayID>22</NumericRunwayID>
  <RunwaySubID>L</RunwaySubID>
  <ClearanceTime>2026-08-01T14:00:00Z</ClearanceTime>
  <TaxiTime>2026-08-01T14:05:00Z</TaxiTime>
  <TakeoffTime>2026-08-01T14:15:00Z</TakeoffTime>
</TowerDepartureEventMessage>`

func TestDecodeTowerDepartureEvent(t *testing.T) {
	tp, err := DecodeTower("KBOS", departureEventXML, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if tp.Event.Kind != flight.TowerEventDeparture {
		t.Fatalf("expected departure event, got %v", tp.Event.Kind)
	}
	if tp.Event.Departure == nil {
		t.Fatal("expected a departure payload")
	}
	if tp.Event.Departure.Gate != "B12" || tp.Event.Departure.Runway != "22L" {
		t.Fatalf("unexpected departure fields: %+v", tp.Event.Departure)
	}
	if tp.Event.Departure.TaxiTime.IsZero() || tp.Event.Departure.TakeoffTime.IsZero() {
		t.Fatalf("expected parsed taxi/takeoff times: %+v", tp.Event.Departure)
	}
}

func TestDecodeTowerDATISIgnored(t *testing.T) {
	tp, err := DecodeTower("KJFK", "<DATISData><Text>info</Text></DATISData>", nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if tp != nil {
		t.Fatalf("expected DATIS messages to be ignored, got %+v", tp)
	}
}

func TestDecodeTowerUnrecognizedRoot(t *testing.T) {
	tp, err := DecodeTower("KJFK", "<SomethingElse/>", nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if tp != nil {
		t.Fatalf("expected nil for an unrecognized root, got %+v", tp)
	}
}
