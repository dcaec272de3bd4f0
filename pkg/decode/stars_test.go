// pkg/decode/stars_test.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package decode

import "testing"

const tairsXML = `<TATrackAndFlightPlan src="N90">
  <record>
    <track>
      <trackNum>0512</trackNum>
      <reportedBeaconCode>4512</reportedBeaconCode>
      <reportedAltitude>8500</reportedAltitude>
      <vVert>-300</vVert>
      <frozen>false</frozen>
      <pseudo>false</pseudo>
      <acAddress>a1b2c3</acAddress>
      <vx>120</vx>
      <vy>160</vy>
      <position>40.7 -73.8</position>
    </track>
    <flightPlan>
      <acid>JBU700</acid>
      <acType>A320</acType>
      <eqptSuffix>L</eqptSuffix>
      <flightRules>I</flightRules>
      <entryFix>CAMRN</entryFix>
      <exitFix>unavailable</exitFix>
      <assignedBeaconCode>4512</assignedBeaconCode>
      <requestedAltitude>10000</requestedAltitude>
      <runway>22L</runway>
      <scratchPad1>JFK</scratchPad1>
      <scratchPad2></scratchPad2>
      <cps>N90</cps>
      <pendingHandoff>unassigned</pendingHandoff>
      <enhancedData>
        <departureAirport>KBOS</departureAirport>
        <destinationAirport>KJFK</destinationAirport>
      </enhancedData>
    </flightPlan>
  </record>
</TATrackAndFlightPlan>`

func TestDecodeSTARS(t *testing.T) {
	updates, err := DecodeSTARS(tairsXML, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	u := updates[0]
	if u.Facility != "N90" || u.TrackNum != "0512" {
		t.Fatalf("unexpected identity fields: %+v", u)
	}
	if u.ReportedSquawk != "4512" || !u.HasAltitude || u.AltitudeFeet != 8500 {
		t.Fatalf("unexpected track fields: %+v", u)
	}
	if u.ModeSHex != "A1B2C3" {
		t.Fatalf("expected uppercased mode-s hex, got %q", u.ModeSHex)
	}
	if !u.HasPosition || u.Position.Lat != 40.7 || u.Position.Lon != -73.8 {
		t.Fatalf("unexpected position: %+v", u)
	}
	if u.GroundSpeed != groundSpeedFromComponents(120, 160) {
		t.Fatalf("unexpected derived ground speed: %v", u.GroundSpeed)
	}
	if u.Callsign != "JBU700" || u.Equipment != "A320" || u.Wake != "L" || u.Rules != "I" {
		t.Fatalf("unexpected flight plan fields: %+v", u)
	}
	if u.EntryFix != "CAMRN" || u.ExitFix != "" {
		t.Fatalf("expected unavailable exit fix to stay blank, got %+v", u)
	}
	if u.Origin != "KBOS" || u.Destination != "KJFK" {
		t.Fatalf("unexpected enhanced-data fields: %+v", u)
	}
	if u.PendingHandoff != "" {
		t.Fatalf("expected unassigned pending handoff to stay blank, got %q", u.PendingHandoff)
	}
}

func TestDecodeSTARSSkipsRecordWithoutTrackNum(t *testing.T) {
	const noTrackNum = `<TATrackAndFlightPlan src="N90"><record><track></track></record></TATrackAndFlightPlan>`
	updates, err := DecodeSTARS(noTrackNum, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(updates) != 0 {
		t.Fatalf("expected no updates, got %d", len(updates))
	}
}

func TestDecodeSTARSUnexpectedRoot(t *testing.T) {
	_, err := DecodeSTARS("<notTAIS/>", nil)
	if err == nil {
		t.Fatal("expected an error for an unexpected root element")
	}
}
