// pkg/decode/enroute.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package decode

import (
	"fmt"
	"strings"
	"time"

	"github.com/swimfuse/swimfuse/pkg/flight"
)

// DecodeEnRoute decodes one en-route flight-list payload into a partial
// update per flight element. A message missing a mandatory flight
// identifier is dropped from the result rather than failing the whole
// batch.
func DecodeEnRoute(payload string, tel *Telemetry) ([]*flight.PartialFlightUpdate, error) {
	root, err := parseXML(strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decode enroute: %w", err)
	}
	if root == nil {
		return nil, fmt.Errorf("decode enroute: empty document")
	}
	tel.note(root.name)

	var out []*flight.PartialFlightUpdate
	for _, child := range root.children {
		fl := child.child("flight")
		if fl == nil {
			tel.note(root.name + "." + child.name)
			continue
		}
		if u := decodeFlightElement(fl, tel); u != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func decodeFlightElement(fl *node, tel *Telemetry) *flight.PartialFlightUpdate {
	id := fl.child("gufi").trimText()
	if id == "" {
		return nil
	}
	u := &flight.PartialFlightUpdate{
		ID:         id,
		WireSource: fl.attrs["source"],
		Centre:     fl.attrs["centre"],
		RawPayload: fl.text,
	}
	if ts, ok := parseISOTime(fl.attrs["timestamp"]); ok {
		u.Timestamp = ts
	} else {
		u.Timestamp = time.Now()
	}
	u.Class = classifyEnRoute(fl)

	if fi := fl.child("flightIdentification"); fi != nil {
		if v := fi.child("aircraftIdentification").trimText(); v != "" {
			u.Callsign = flight.Present(v)
		}
		if v := fi.child("computerId").trimText(); v != "" {
			u.ComputerID = flight.Present([2]string{fl.attrs["source"], v})
		}
	}

	if fs := fl.child("flightStatus"); fs != nil {
		if v := fs.child("fdpsFlightStatus").trimText(); v != "" {
			u.Status = flight.Present(statusFromWire(v))
		}
	}

	if op := fl.child("operator"); op != nil {
		if v := op.child("organization").child("name").trimText(); v != "" {
			u.Operator = flight.Present(v)
		}
	}

	if orig := fl.child("originator"); orig != nil {
		if v := orig.child("aftnAddress").trimText(); v != "" {
			u.AFTNOriginator = flight.Present(v)
		}
	}

	if dep := fl.child("departure"); dep != nil {
		if v := dep.child("point").trimText(); v != "" {
			u.Origin = flight.Present(v)
		}
	}
	if arr := fl.child("arrival"); arr != nil {
		if v := arr.child("point").trimText(); v != "" {
			u.Destination = flight.Present(v)
		}
		var alts []string
		for _, a := range arr.allChildren("alternate") {
			if v := a.trimText(); v != "" {
				alts = append(alts, v)
			}
		}
		if len(alts) > 0 {
			u.Alternates = flight.Present(alts)
		}
	}

	decodeAssignedAltitude(fl, u)
	decodeInterimAltitude(fl, u)

	if cu := fl.child("controllingUnit"); cu != nil {
		if v := cu.child("unitIdentifier").trimText(); v != "" {
			u.ControllingFacility = flight.Present(v)
		}
		if v := cu.child("sectorIdentifier").trimText(); v != "" {
			u.ControllingSector = flight.Present(v)
		}
	}

	if fp := fl.child("flightPlan"); fp != nil {
		if v := fp.child("remarks").trimText(); v != "" {
			u.Remarks = flight.Present(v)
		}
	}

	if coord := fl.child("coordination"); coord != nil {
		if v := coord.child("fix").trimText(); v != "" {
			u.CoordinationFix = flight.Present(v)
		}
		if t, ok := parseISOTime(coord.child("time").trimText()); ok {
			u.CoordinationTime = flight.Present(t)
		}
	}

	decodeEnRoutePosition(fl, u)
	decodeBeaconCodes(fl, u)

	if po := fl.child("pointout"); po != nil {
		u.PointOut = flight.Present(flight.PointOut{
			Originating: po.child("originatingUnit").trimText(),
			Receiving:   po.child("receivingUnit").trimText(),
		})
	}

	decodeCleared(fl, u)
	decodeHandoff(fl, u)
	decodeAircraftDescription(fl, u)

	if agreed := fl.child("agreed"); agreed != nil {
		decodeAgreedRoute(agreed, u)
	}
	if rt := fl.child("route"); rt != nil {
		decodeAgreedRoute(rt, u)
	}

	if sd := fl.child("supplementalData"); sd != nil {
		u.Supplement = make(map[string]string)
		for _, nv := range sd.allChildren("nameValue") {
			name := nv.child("name").trimText()
			value := nv.child("value").trimText()
			if name != "" {
				u.Supplement[name] = value
			}
		}
	}

	return u
}

func statusFromWire(v string) flight.Status {
	switch strings.ToLower(v) {
	case "dropped":
		return flight.StatusDropped
	case "cancelled", "canceled":
		return flight.StatusCancelled
	case "active":
		return flight.StatusActive
	default:
		return flight.StatusActive
	}
}

// classifyEnRoute determines which merge-engine class this message
// belongs to from its flightType attribute, falling back to the shape of
// the elements present (enRoute data without flightIdentification is a
// position-only message, anything else a track message): a
// heartbeat carries only Mode-C track data, a canonical-state message
// is a full-state refresh, an interim-dedicated message is a
// local-handoff-only update, and an assumed-handoff message is eligible
// to set the forced flag.
func classifyEnRoute(fl *node) flight.MessageClass {
	switch strings.ToLower(fl.attrs["flightType"]) {
	case "heartbeat":
		return flight.ClassHeartbeat
	case "canonicalstate", "canonical-state":
		return flight.ClassCanonicalState
	case "localhandoff", "interimdedicated":
		return flight.ClassInterimDedicated
	case "assumedhandoff", "assumed-handoff":
		return flight.ClassAssumedHandoff
	}
	if fl.child("enRoute") != nil && fl.child("flightIdentification") == nil {
		return flight.ClassPosition
	}
	return flight.ClassTrack
}

func decodeAssignedAltitude(fl *node, u *flight.PartialFlightUpdate) {
	aa := fl.child("assignedAltitude")
	if aa == nil {
		return
	}
	switch {
	case aa.child("simple") != nil:
		if v, ok := parseInt(aa.child("simple").trimText()); ok {
			u.AssignedAltitude = flight.Present(flight.AltitudeUpdate{Kind: flight.AltitudeSimple, SimpleFeet: v})
		}
	case aa.child("vfrPlus") != nil:
		if v, ok := parseInt(aa.child("vfrPlus").trimText()); ok {
			u.AssignedAltitude = flight.Present(flight.AltitudeUpdate{Kind: flight.AltitudeVFRPlus, VFRPlusFeet: v})
		}
	case aa.child("vfr") != nil:
		u.AssignedAltitude = flight.Present(flight.AltitudeUpdate{Kind: flight.AltitudeVFR})
	case aa.child("block") != nil:
		block := aa.child("block")
		floor, _ := parseInt(block.child("above").trimText())
		ceil, _ := parseInt(block.child("below").trimText())
		u.AssignedAltitude = flight.Present(flight.AltitudeUpdate{Kind: flight.AltitudeBlock, BlockFloor: floor, BlockCeiling: ceil})
	}
}

func decodeInterimAltitude(fl *node, u *flight.PartialFlightUpdate) {
	ia := fl.child("interimAltitude")
	if ia == nil {
		return
	}
	if ia.isNil() {
		u.InterimAltitude = flight.Null[int]()
		return
	}
	if v, ok := parseInt(ia.trimText()); ok {
		u.InterimAltitude = flight.Present(v)
	}
}

func decodeEnRoutePosition(fl *node, u *flight.PartialFlightUpdate) {
	er := fl.child("enRoute")
	if er == nil {
		return
	}
	pos := er.child("position")
	if pos == nil {
		return
	}
	if p, ok := parseLatLon(pos.child("pos").trimText()); ok {
		u.Position = flight.Present(p)
	}
	if v, ok := parseInt(pos.child("altitude").trimText()); ok {
		u.ReportedAltitude = flight.Present(v)
	}
	if v, ok := parseFloat(pos.child("surveillance").trimText()); ok {
		u.GroundSpeed = flight.Present(v)
	}
	if tv := pos.child("trackVelocity"); tv != nil {
		if v, ok := parseFloat(tv.child("x").trimText()); ok {
			u.TrackVX = flight.Present(v)
		}
		if v, ok := parseFloat(tv.child("y").trimText()); ok {
			u.TrackVY = flight.Present(v)
		}
	}
	if v := pos.child("coastIndicator").trimText(); v != "" {
		u.Coast = flight.Present(strings.EqualFold(v, "true") || v == "1")
	}
	if tp := pos.child("targetPosition"); tp != nil {
		if _, invalid := tp.attr("invalid"); !invalid {
			if p, ok := parseLatLon(tp.trimText()); ok {
				u.ERAMPosition = flight.Present(p)
			}
		}
	}
	if ta := pos.child("targetAltitude"); ta != nil {
		if _, invalid := ta.attr("invalid"); !invalid {
			if v, ok := parseInt(ta.trimText()); ok {
				u.ERAMAltitude = flight.Present(v)
			}
		}
	}
}

// decodeBeaconCodes implements the dedicated-assignment-vs-current split
// at the decode layer: the two elements are surfaced as two distinct
// fields so the merge engine can apply its own precedence rule.
func decodeBeaconCodes(fl *node, u *flight.PartialFlightUpdate) {
	if v := fl.child("beaconCodeAssignment").trimText(); v != "" {
		u.AssignedSquawkDedicated = flight.Present(v)
	}
	if v := fl.child("currentBeaconCode").trimText(); v != "" {
		u.CurrentSquawk = flight.Present(v)
	}
}

func decodeCleared(fl *node, u *flight.PartialFlightUpdate) {
	cl := fl.child("cleared")
	if cl == nil {
		u.HasCleared = false
		return
	}
	u.HasCleared = true
	if v, ok := parseInt(cl.child("clearanceHeading").trimText()); ok {
		u.Clearance.Heading = flight.Present(v)
	}
	if v, ok := parseInt(cl.child("clearanceSpeed").trimText()); ok {
		u.Clearance.Speed = flight.Present(v)
	}
	if v := cl.child("clearanceText").trimText(); v != "" {
		u.Clearance.Text = flight.Present(v)
	}
}

func decodeHandoff(fl *node, u *flight.PartialFlightUpdate) {
	ho := fl.child("handoff")
	if ho == nil {
		return
	}
	if v := ho.child("event").trimText(); v != "" {
		u.Handoff.HasEvent = true
		u.Handoff.Event = v
	}
	if v := ho.child("receiving").trimText(); v != "" {
		u.Handoff.Receiving = flight.Present(v)
	}
	if v := ho.child("transferring").trimText(); v != "" {
		u.Handoff.Transferring = flight.Present(v)
	}
	if v := ho.child("accepting").trimText(); v != "" {
		u.Handoff.Accepting = flight.Present(v)
	}
}

func decodeAircraftDescription(fl *node, u *flight.PartialFlightUpdate) {
	ad := fl.child("aircraftDescription")
	if ad == nil {
		return
	}
	if v := ad.child("icaoModelIdentifier").trimText(); v != "" {
		u.AircraftType = flight.Present(v)
	}
	if v := ad.child("wakeTurbulence").trimText(); v != "" {
		u.Wake = flight.Present(v)
	}
	if v := ad.child("aircraftAddress").trimText(); v != "" {
		u.ModeSHex = flight.Present(strings.ToUpper(v))
	}
	if v := ad.child("equipmentQualifier").trimText(); v != "" {
		u.Equipment = flight.Present(v)
	}

	var cns []string
	for _, kind := range []string{"communication", "navigation", "surveillance"} {
		if n := ad.child(kind); n != nil {
			if code := n.child("code").trimText(); code != "" {
				cns = append(cns, code)
			}
		}
	}
	if len(cns) > 0 {
		u.CNS = flight.Present(strings.Join(cns, "/"))
	}
}

func decodeAgreedRoute(n *node, u *flight.PartialFlightUpdate) {
	if v := n.child("nasRouteText").trimText(); v != "" {
		u.Route = flight.Present(v)
		u.OriginalRoute = flight.Present(v)
	}
	if v := n.child("initialFlightRules").trimText(); v != "" {
		u.FlightRules = flight.Present(v)
	}
	if v := n.child("nasadaptedArrivalRoute").trimText(); v != "" {
		u.ArrivalProcedure = flight.Present(v)
	}
	eets := n.allChildren("estimatedElapsedTime")
	if len(eets) == 0 {
		return
	}
	u.EETs = make(map[string]time.Duration)
	for _, eet := range eets {
		fir := eet.attrs["fir"]
		if fir == "" {
			fir = eet.child("fir").trimText()
		}
		if d, ok := parseISODuration(eet.trimText()); ok && fir != "" {
			u.EETs[fir] = d
		}
	}
}
