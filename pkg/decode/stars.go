// pkg/decode/stars.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package decode

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/swimfuse/swimfuse/pkg/flight"
)

// DecodeSTARS decodes one TAIS payload into one partial per record.
func DecodeSTARS(payload string, tel *Telemetry) ([]*flight.TerminalPartial, error) {
	root, err := parseXML(strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decode stars: %w", err)
	}
	if root == nil || root.name != "TATrackAndFlightPlan" {
		if root != nil {
			tel.note(root.name)
		}
		return nil, fmt.Errorf("decode stars: unexpected root element")
	}
	facility := root.attrs["src"]

	var out []*flight.TerminalPartial
	for _, rec := range root.allChildren("record") {
		tr := rec.child("track")
		if tr == nil {
			tel.note("TATrackAndFlightPlan.record")
			continue
		}
		trackNum := tr.child("trackNum").trimText()
		if trackNum == "" {
			continue
		}
		u := &flight.TerminalPartial{Facility: facility, TrackNum: trackNum, Timestamp: time.Now()}
		decodeTrack(tr, u)
		if fp := rec.child("flightPlan"); fp != nil {
			decodeSTARSFlightPlan(fp, u)
		}
		out = append(out, u)
	}
	return out, nil
}

func decodeTrack(tr *node, u *flight.TerminalPartial) {
	if v := tr.child("reportedBeaconCode").trimText(); !isUnavailable(v) {
		u.ReportedSquawk = v
	}
	if v, ok := parseInt(tr.child("reportedAltitude").trimText()); ok {
		u.AltitudeFeet = v
		u.HasAltitude = true
	}
	if v, ok := parseFloat(tr.child("vVert").trimText()); ok {
		u.VerticalRate = v
	}
	u.Frozen = tr.child("frozen").trimText() == "true"
	u.Pseudo = tr.child("pseudo").trimText() == "true"
	if v := tr.child("acAddress").trimText(); !isUnavailable(v) && strings.Trim(v, "0") != "" {
		u.ModeSHex = strings.ToUpper(v)
	}

	vx, hasVX := parseFloat(tr.child("vx").trimText())
	vy, hasVY := parseFloat(tr.child("vy").trimText())
	if hasVX && hasVY {
		u.GroundSpeed = groundSpeedFromComponents(vx, vy)
	}

	if pos := tr.child("position"); pos != nil {
		if p, ok := parseLatLon(pos.trimText()); ok {
			u.Position = p
			u.HasPosition = true
		}
	}
}

func groundSpeedFromComponents(vx, vy float64) float64 {
	return math.Hypot(vx, vy)
}

func decodeSTARSFlightPlan(fp *node, u *flight.TerminalPartial) {
	if v := fp.child("acid").trimText(); !isUnavailable(v) {
		u.Callsign = v
	}
	if v := fp.child("acType").trimText(); !isUnavailable(v) {
		u.Equipment = v
	}
	if v := fp.child("eqptSuffix").trimText(); !isUnavailable(v) {
		u.Wake = v
	}
	if v := fp.child("flightRules").trimText(); !isUnavailable(v) {
		u.Rules = v
	}
	if v := fp.child("entryFix").trimText(); !isUnavailable(v) {
		u.EntryFix = v
	}
	if v := fp.child("exitFix").trimText(); !isUnavailable(v) {
		u.ExitFix = v
	}
	if v := fp.child("assignedBeaconCode").trimText(); !isUnavailable(v) {
		u.AssignedSquawk = v
	}
	if v, ok := parseInt(fp.child("requestedAltitude").trimText()); ok {
		u.RequestedAltitude = v
		u.HasRequestedAlt = true
	}
	if v := fp.child("runway").trimText(); !isUnavailable(v) {
		u.Runway = v
	}
	if v := fp.child("scratchPad1").trimText(); !isUnavailable(v) {
		u.Scratchpad1 = v
	}
	if v := fp.child("scratchPad2").trimText(); !isUnavailable(v) {
		u.Scratchpad2 = v
	}
	if v := fp.child("cps").trimText(); !isUnavailable(v) {
		u.Owner = v
	}
	if v := fp.child("pendingHandoff").trimText(); !isUnavailable(v) {
		u.PendingHandoff = v
	}
	if ed := fp.child("enhancedData"); ed != nil {
		if v := ed.child("departureAirport").trimText(); !isUnavailable(v) {
			u.Origin = v
		}
		if v := ed.child("destinationAirport").trimText(); !isUnavailable(v) {
			u.Destination = v
		}
	}
}
