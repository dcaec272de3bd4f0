// pkg/decode/enroute_test.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package decode

import (
	"testing"

	"github.com/swimfuse/swimfuse/pkg/flight"
)

const assignedAltitudeBlockXML = `<ns:flights xmlns:ns="urn:example">
  <ns:item>
    <ns:flight source="Z-flight" centre="ZOB" timestamp="2026-06-01T12:00:00Z" flightType="canonicalState">
      <ns:gufi>GUFI-123</ns:gufi>
      <ns:flightIdentification><ns:aircraftIdentification>AAL123</ns:aircraftIdentification></ns:flightIdentification>
      <ns:assignedAltitude><ns:block><ns:above>30000</ns:above><ns:below>32000</ns:below></ns:block></ns:assignedAltitude>
    </ns:flight>
  </ns:item>
</ns:flights>`

func TestDecodeEnRouteAssignedAltitudeBlock(t *testing.T) {
	updates, err := DecodeEnRoute(assignedAltitudeBlockXML, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	u := updates[0]
	if u.ID != "GUFI-123" {
		t.Fatalf("expected gufi id, got %q", u.ID)
	}
	au, ok := u.AssignedAltitude.Get()
	if !ok || au.Kind != flight.AltitudeBlock || au.BlockFloor != 30000 || au.BlockCeiling != 32000 {
		t.Fatalf("expected block altitude 30000/32000, got %+v", au)
	}
	if u.Class != flight.ClassCanonicalState {
		t.Fatalf("expected canonical-state class, got %v", u.Class)
	}
}

const interimNilXML = `<flights>
  <item>
    <flight source="Z-localHandoff" flightType="localHandoff">
      <gufi>GUFI-999</gufi>
      <interimAltitude nil="true"></interimAltitude>
    </flight>
  </item>
</flights>`

func TestDecodeEnRouteInterimAltitudeNil(t *testing.T) {
	updates, err := DecodeEnRoute(interimNilXML, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	if !updates[0].InterimAltitude.IsNull() {
		t.Fatalf("expected null interim altitude, got %+v", updates[0].InterimAltitude)
	}
}

const clearedAbsentNonCanonicalXML = `<flights>
  <item>
    <flight source="Z-track">
      <gufi>GUFI-1</gufi>
    </flight>
  </item>
</flights>`

func TestDecodeEnRouteNoClearedElement(t *testing.T) {
	updates, err := DecodeEnRoute(clearedAbsentNonCanonicalXML, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if updates[0].HasCleared {
		t.Fatalf("expected HasCleared false when element is absent")
	}
	if updates[0].Class != flight.ClassTrack {
		t.Fatalf("expected default track class, got %v", updates[0].Class)
	}
}

func TestDecodeEnRouteMissingGUFIDropped(t *testing.T) {
	const noGUFI = `<flights><item><flight source="Z"><flightIdentification><aircraftIdentification>AAL1</aircraftIdentification></flightIdentification></flight></item></flights>`
	updates, err := DecodeEnRoute(noGUFI, nil)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(updates) != 0 {
		t.Fatalf("expected message without a flight identifier to be dropped, got %d", len(updates))
	}
}
