// pkg/decode/surface_test.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package decode

import "testing"

const positionReportXML = `<asdexMsg>
  <positionReport full="true">
    <flightId><aircraftId>UAL456</aircraftId><mode3ACode>4567</mode3ACode></flightId>
    <flightInfo><acType>B738</acType><tgtType>AIRCRAFT</tgtType></flightInfo>
    <latitude>33.9425</latitude>
    <longitude>-118.4081</longitude>
    <movement><speed>12.5</speed><heading>270</heading></movement>
    <enhancedData><eramGufi>GUFI-456</eramGufi></enhancedData>
  </positionReport>
</asdexMsg>`

func TestDecodeSurfacePositionReport(t *testing.T) {
	u, err := DecodeSurface("KLAX", positionReportXML, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if u == nil {
		t.Fatal("expected a partial, got nil")
	}
	if u.Airport != "KLAX" || u.TrackID != "UAL456" || u.Callsign != "UAL456" {
		t.Fatalf("unexpected identity fields: %+v", u)
	}
	if !u.Full {
		t.Fatal("expected full report")
	}
	if u.Squawk != "4567" || u.AircraftType != "B738" || u.TargetType != "AIRCRAFT" {
		t.Fatalf("unexpected flight info fields: %+v", u)
	}
	if !u.HasPosition || u.Position.Lat != 33.9425 || u.Position.Lon != -118.4081 {
		t.Fatalf("unexpected position: %+v", u)
	}
	if u.SpeedKnots != 12.5 || u.Heading != 270 {
		t.Fatalf("unexpected movement: %+v", u)
	}
	if u.ERAMXRef != "GUFI-456" {
		t.Fatalf("expected eram xref, got %q", u.ERAMXRef)
	}
}

const safetyLogicXML = `<asdexMsg><SafetyLogicHoldBar/></asdexMsg>`

func TestDecodeSurfaceSafetyLogicIgnored(t *testing.T) {
	u, err := DecodeSurface("KLAX", safetyLogicXML, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if u != nil {
		t.Fatalf("expected nil partial for a safety-logic message, got %+v", u)
	}
}

const basicReportXML = `<asdexMsg>
  <adsbReport><report><basicReport>
    <lat>33.95</lat>
    <lon>-118.40</lon>
    <enhancedData><eramGufi>GUFI-789</eramGufi></enhancedData>
  </basicReport></report></adsbReport>
</asdexMsg>`

func TestDecodeSurfaceBasicReport(t *testing.T) {
	u, err := DecodeSurface("KLAX", basicReportXML, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if u == nil {
		t.Fatal("expected a partial, got nil")
	}
	if !u.HasPosition || u.Position.Lat != 33.95 {
		t.Fatalf("unexpected position: %+v", u)
	}
	if u.ERAMXRef != "GUFI-789" {
		t.Fatalf("expected eram xref, got %q", u.ERAMXRef)
	}
	if u.Full {
		t.Fatal("a basic report should never be marked full")
	}
}

func TestDecodeSurfaceUnexpectedRoot(t *testing.T) {
	_, err := DecodeSurface("KLAX", "<notAnAsdexMsg/>", nil)
	if err == nil {
		t.Fatal("expected an error for an unexpected root element")
	}
}
