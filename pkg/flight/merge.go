// pkg/flight/merge.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

import (
	"fmt"
	"strings"
	"time"
)

// positionEpsilon is the minimum lat/lon delta that counts as movement
// for the purposes of appending to the position history ring; updates
// that repeat the same rounded coordinates are not archived.
const positionEpsilon = 0.0001

// ApplyFlightUpdate merges one decoded partial update into rec under the
// caller's lock. It never returns an error: a message that cannot be
// merged cleanly is still applied field by field on a best-effort basis,
// since the pipeline treats no single message as fatal to the record.
func ApplyFlightUpdate(rec *FlightRecord, u *PartialFlightUpdate) {
	applyIdentity(rec, u)
	applyFlightPlan(rec, u)
	applyAltitude(rec, u)
	applySquawk(rec, u)
	applyClearance(rec, u)
	applyHandoff(rec, u)
	applyPointOut(rec, u)
	applyCoordination(rec, u)
	clearHandoffIfComplete(rec)
	applySupplement(rec, u)
	applyStatus(rec, u)
	applyPosition(rec, u) // last: its symbol depends on the fields above

	rec.LastSeen = u.Timestamp
	rec.LastSource = u.WireSource
	appendEvent(rec, u)
}

func applyIdentity(rec *FlightRecord, u *PartialFlightUpdate) {
	if v, ok := u.Callsign.Get(); ok && v != "" {
		rec.Callsign = v
	}
	if v, ok := u.ComputerID.Get(); ok {
		rec.ComputerIDs[v[0]] = v[1]
	}
	if v, ok := u.Operator.Get(); ok && v != "" {
		// Longer descriptive names win over short codes; a later short
		// code never shrinks a previously-seen longer name.
		if rec.Operator == "" || len(v) > len(rec.Operator) {
			rec.Operator = v
		}
	}
	if v, ok := u.AircraftType.Get(); ok {
		rec.AircraftType = v
	}
	if v, ok := u.Wake.Get(); ok {
		rec.Wake = v
	}
	if v, ok := u.Equipment.Get(); ok {
		rec.Equipment = v
	}
	if v, ok := u.ModeSHex.Get(); ok {
		rec.ModeSHex = v
	}
	if v, ok := u.CNS.Get(); ok {
		rec.CNS = v
	}
}

func applyFlightPlan(rec *FlightRecord, u *PartialFlightUpdate) {
	if v, ok := u.Origin.Get(); ok {
		rec.Origin = v
	}
	if v, ok := u.Destination.Get(); ok {
		rec.Destination = v
	}
	if v, ok := u.Alternates.Get(); ok {
		rec.Alternates = v
	}
	if v, ok := u.FlightRules.Get(); ok {
		rec.FlightRules = v
	}
	if v, ok := u.FlightType.Get(); ok {
		rec.FlightType = v
	}
	if v, ok := u.Route.Get(); ok {
		rec.Route = v
	}
	if v, ok := u.OriginalRoute.Get(); ok && rec.OriginalRoute == "" {
		rec.OriginalRoute = v
	}
	if v, ok := u.ArrivalProcedure.Get(); ok {
		rec.ArrivalProcedure = v
	}
	if v, ok := u.Remarks.Get(); ok {
		rec.Remarks = v
	}
}

// applyAltitude enforces the four-way mutual exclusion on assigned
// altitude and the interim-altitude clear rules. Heartbeat traffic never
// touches assigned altitude at all, since it carries nothing but a
// Mode-C readout.
func applyAltitude(rec *FlightRecord, u *PartialFlightUpdate) {
	if u.Class != ClassHeartbeat {
		if au, ok := u.AssignedAltitude.Get(); ok {
			switch au.Kind {
			case AltitudeSimple:
				rec.AssignedAltitude.SetSimple(au.SimpleFeet)
			case AltitudeVFR:
				rec.AssignedAltitude.SetVFR()
			case AltitudeVFRPlus:
				rec.AssignedAltitude.SetVFRPlus(au.VFRPlusFeet)
			case AltitudeBlock:
				rec.AssignedAltitude.SetBlock(au.BlockFloor, au.BlockCeiling)
			}
		}
	}

	switch u.InterimAltitude.State {
	case FieldPresent:
		rec.HasInterimAltitude = true
		rec.InterimAltitude = u.InterimAltitude.Value
	case FieldNull:
		rec.HasInterimAltitude = false
		rec.InterimAltitude = 0
	case FieldAbsent:
		// Absence only clears when the message is one of the two
		// classes authoritative for the interim altitude element; any
		// other source's silence says nothing about it.
		if u.Class == ClassCanonicalState || u.Class == ClassInterimDedicated {
			rec.HasInterimAltitude = false
			rec.InterimAltitude = 0
		}
	}

	if v, ok := u.ReportedAltitude.Get(); ok {
		rec.HasReportedAltitude = true
		rec.ReportedAltitude = v
	}
}

// applySquawk implements the beacon-code split: the dedicated
// assignment element sets both the assigned and current code, while the
// current-beacon element on its own only ever updates the current code.
func applySquawk(rec *FlightRecord, u *PartialFlightUpdate) {
	if v, ok := u.AssignedSquawkDedicated.Get(); ok {
		rec.AssignedSquawk = v
		rec.CurrentSquawk = v
	} else if v, ok := u.CurrentSquawk.Get(); ok {
		rec.CurrentSquawk = v
	}
}

// applyClearance implements the canonical-state authoritative-wipe rule:
// a canonical-state message that omits the cleared element entirely
// wipes the whole triple, while any other source's omission leaves it
// untouched. When the element is present, each sub-field is applied or
// cleared independently.
func applyClearance(rec *FlightRecord, u *PartialFlightUpdate) {
	if !u.HasCleared {
		if u.Class == ClassCanonicalState {
			rec.Clearance.Clear()
		}
		return
	}
	if v, ok := u.Clearance.Heading.Get(); ok {
		rec.Clearance.HasHeading = true
		rec.Clearance.Heading = v
	} else {
		rec.Clearance.HasHeading = false
		rec.Clearance.Heading = 0
	}
	if v, ok := u.Clearance.Speed.Get(); ok {
		rec.Clearance.HasSpeed = true
		rec.Clearance.Speed = v
	} else {
		rec.Clearance.HasSpeed = false
		rec.Clearance.Speed = 0
	}
	if v, ok := u.Clearance.Text.Get(); ok {
		rec.Clearance.Text = v
	} else {
		rec.Clearance.Text = ""
	}
}

// applyHandoff updates the transferring/receiving/accepting sub-fields
// whenever the wire carries them, regardless of whether an event tag is
// present; the event text itself is only ever updated when the wire
// carries an explicit event tag. A message eligible to represent an
// assumed handoff sets the forced flag when its event text announces an
// acceptance or an execution. Once the controlling unit catches up to
// the receiving unit, the whole triple and the forced flag are cleared.
func applyHandoff(rec *FlightRecord, u *PartialFlightUpdate) {
	if v, ok := u.Handoff.Transferring.Get(); ok {
		rec.Handoff.Transferring = v
	}
	if v, ok := u.Handoff.Receiving.Get(); ok {
		rec.Handoff.Receiving = v
	}
	if v, ok := u.Handoff.Accepting.Get(); ok {
		rec.Handoff.Accepting = v
	}
	if u.Handoff.HasEvent {
		rec.Handoff.Event = u.Handoff.Event
		if u.Class == ClassAssumedHandoff {
			ev := strings.ToUpper(strings.TrimSpace(u.Handoff.Event))
			if strings.HasPrefix(ev, "ACCEPT") || ev == "EXECUTION" {
				rec.Handoff.Forced = true
			}
		}
	}
}

// clearHandoffIfComplete clears a pending handoff once the controlling
// unit recorded by coordination matches the receiving unit. It must run
// after applyCoordination, since that's what actually moves control.
func clearHandoffIfComplete(rec *FlightRecord) {
	if rec.Handoff.Receiving != "" && controllingUnit(rec) == rec.Handoff.Receiving {
		rec.Handoff.Clear()
	}
}

func controllingUnit(rec *FlightRecord) string {
	if rec.ControllingSector == "" {
		return rec.ControllingFacility
	}
	return rec.ControllingFacility + "/" + rec.ControllingSector
}

// applyPointOut stamps the originating/receiving pair and the time it
// was last seen; expiry of a stale point-out is the sweep loop's job,
// not the merge engine's, since it must fire even with no further
// traffic for that flight.
func applyPointOut(rec *FlightRecord, u *PartialFlightUpdate) {
	if v, ok := u.PointOut.Get(); ok {
		v.Time = u.Timestamp
		rec.PointOut = v
	}
}

func applyCoordination(rec *FlightRecord, u *PartialFlightUpdate) {
	if v, ok := u.CoordinationFix.Get(); ok {
		rec.CoordinationFix = v
	}
	if v, ok := u.CoordinationTime.Get(); ok {
		rec.CoordinationTime = v
	}
	if v, ok := u.ControllingFacility.Get(); ok {
		rec.ControllingFacility = v
	}
	if v, ok := u.ControllingSector.Get(); ok {
		rec.ControllingSector = v
	}
	if v, ok := u.ERAMPosition.Get(); ok {
		rec.HasERAMPosition = true
		rec.ERAMPosition = v
	}
	if v, ok := u.ERAMAltitude.Get(); ok {
		rec.HasERAMAltitude = true
		rec.ERAMAltitude = v
	}
}

func applySupplement(rec *FlightRecord, u *PartialFlightUpdate) {
	if v, ok := u.AFTNOriginator.Get(); ok {
		rec.Supplemental.AFTNOriginator = v
	}
	for name, value := range u.Supplement {
		switch name {
		case "4TH_ADAPTED_FIELD":
			rec.Supplemental.FourthAdaptedField = value
		case "TMI_IDS":
			rec.Supplemental.TMIIDs = strings.Fields(value)
		}
		// FDPS_GUFI and any other name carry no state of their own;
		// the identifier itself is captured as rec.ID at record
		// creation.
	}
	for fir, eet := range u.EETs {
		rec.EETs[fir] = eet
	}
}

// applyStatus advances the record through its lifecycle states. Only
// the transitions a real source can announce are honored; anything else
// is ignored rather than trusted blindly.
func applyStatus(rec *FlightRecord, u *PartialFlightUpdate) {
	if rec.Status == StatusNew {
		rec.Status = StatusActive
	}
	v, ok := u.Status.Get()
	if !ok {
		return
	}
	switch v {
	case StatusDropped:
		if rec.Status == StatusActive {
			rec.Status = StatusDropped
		}
	case StatusCancelled:
		if rec.Status == StatusActive || rec.Status == StatusDropped {
			rec.Status = StatusCancelled
		}
	case StatusActive:
		if rec.Status == StatusDropped {
			rec.Status = StatusActive
		}
	}
}

// applyPosition archives the outgoing position into the ring before
// overwriting, provided it moved more than the noise floor. The symbol
// stamped on the archived point reflects the record's state as of this
// same update, since callsign/altitude/squawk are applied earlier in
// ApplyFlightUpdate.
func applyPosition(rec *FlightRecord, u *PartialFlightUpdate) {
	pos, ok := u.Position.Get()
	if !ok {
		if v, ok := u.GroundSpeed.Get(); ok {
			rec.GroundSpeed = v
		}
		if v, ok := u.TrackVX.Get(); ok {
			rec.TrackVX = v
		}
		if v, ok := u.TrackVY.Get(); ok {
			rec.TrackVY = v
		}
		if v, ok := u.Coast.Get(); ok {
			rec.Coast = v
		}
		return
	}

	if rec.HasPosition && (absDiff(rec.Position.Lat, pos.Lat) > positionEpsilon || absDiff(rec.Position.Lon, pos.Lon) > positionEpsilon) {
		rec.Positions.Add(PositionRecord{
			Lat:    rec.Position.Lat,
			Lon:    rec.Position.Lon,
			Tick:   rec.LastPosition,
			Symbol: positionSymbol(rec),
		})
	}

	rec.Position = pos
	rec.HasPosition = true
	rec.LastPosition = u.Timestamp

	if v, ok := u.GroundSpeed.Get(); ok {
		rec.GroundSpeed = v
	}
	if v, ok := u.TrackVX.Get(); ok {
		rec.TrackVX = v
	}
	if v, ok := u.TrackVY.Get(); ok {
		rec.TrackVY = v
	}
	if v, ok := u.Coast.Get(); ok {
		rec.Coast = v
	}
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// positionSymbol derives the one-character display symbol for a position
// history entry: a full datablock bullet when a callsign is known and
// the flight is at or below 23,000 feet, a backslash for a callsign-only
// track above that, a slash for a squawk with no callsign, and a plus
// when nothing else identifies the point.
func positionSymbol(rec *FlightRecord) rune {
	altitude := rec.ReportedAltitude
	if !rec.HasReportedAltitude {
		altitude = rec.AssignedAltitude.SimpleFeet
	}
	switch {
	case rec.Callsign != "" && altitude <= 23000:
		return '•'
	case rec.Callsign != "":
		return '\\'
	case rec.CurrentSquawk != "":
		return '/'
	default:
		return '+'
	}
}

// appendEvent records one line of history for this update: a bounded
// ring for live display and an unbounded archive slice flushed to disk
// when the record is purged. Raw payload text is retained only for
// messages carrying state worth replaying later; heartbeats and
// position-only reports are too frequent to be worth the memory.
func appendEvent(rec *FlightRecord, u *PartialFlightUpdate) {
	ev := EventRecord{
		Time:    u.Timestamp,
		Source:  u.WireSource,
		Centre:  u.Centre,
		Summary: summarize(u),
	}
	if u.Class != ClassHeartbeat && u.Class != ClassPosition {
		ev.Raw = u.RawPayload
	}
	rec.Events.Add(ev)
	rec.Archive = append(rec.Archive, ev)
}

func summarize(u *PartialFlightUpdate) string {
	switch u.Class {
	case ClassHeartbeat:
		return fmt.Sprintf("%s heartbeat", u.WireSource)
	case ClassPosition:
		return fmt.Sprintf("%s position report", u.WireSource)
	case ClassAssumedHandoff:
		if u.Handoff.HasEvent {
			return fmt.Sprintf("%s handoff event %s", u.WireSource, u.Handoff.Event)
		}
		return fmt.Sprintf("%s handoff update", u.WireSource)
	case ClassCanonicalState, ClassInterimDedicated:
		return fmt.Sprintf("%s canonical state update", u.WireSource)
	default:
		return fmt.Sprintf("%s track update", u.WireSource)
	}
}

// Purge transitions an active or dropped record to purged, flushing its
// archive to the returned slice for the caller to hand to the daily
// archive writer. Calling Purge on an already-cancelled or already-
// purged record returns nil, since those end states are already final.
func Purge(rec *FlightRecord) []EventRecord {
	if rec.Status != StatusActive && rec.Status != StatusDropped {
		return nil
	}
	rec.Status = StatusPurged
	return rec.Archive
}

// ExpirePointOut clears rec's point-out triple if it has been standing
// longer than ttl as of now; it reports whether it cleared anything.
func ExpirePointOut(rec *FlightRecord, now time.Time, ttl time.Duration) bool {
	if rec.PointOut.Receiving == "" && rec.PointOut.Originating == "" {
		return false
	}
	if now.Sub(rec.PointOut.Time) < ttl {
		return false
	}
	rec.PointOut = PointOut{}
	return true
}
