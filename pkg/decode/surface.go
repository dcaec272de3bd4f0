// pkg/decode/surface.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package decode

import (
	"fmt"
	"strings"
	"time"

	"github.com/swimfuse/swimfuse/pkg/flight"
	"github.com/swimfuse/swimfuse/pkg/geo"
)

// DecodeSurface decodes one ASDE-X/SMES payload. The root must be
// asdexMsg; SafetyLogicHoldBar messages are silently dropped, matching
// the producer's own noise.
func DecodeSurface(airport, payload string, tel *Telemetry) (*flight.SurfacePartial, error) {
	root, err := parseXML(strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decode surface: %w", err)
	}
	if root == nil || root.name != "asdexMsg" {
		if root != nil {
			tel.note(root.name)
		}
		return nil, fmt.Errorf("decode surface: unexpected root element")
	}

	if root.child("SafetyLogicHoldBar") != nil {
		return nil, nil
	}

	if pr := root.child("positionReport"); pr != nil {
		return decodePositionReport(airport, pr), nil
	}
	if ar := root.path("adsbReport.report.basicReport"); ar != nil {
		return decodeBasicReport(airport, ar), nil
	}
	tel.note(root.name)
	return nil, nil
}

func decodePositionReport(airport string, pr *node) *flight.SurfacePartial {
	u := &flight.SurfacePartial{Airport: airport, Timestamp: time.Now()}
	u.Full = pr.attrs["full"] == "true"

	if fi := pr.child("flightId"); fi != nil {
		u.TrackID = fi.child("aircraftId").trimText()
		u.Squawk = fi.child("mode3ACode").trimText()
	}
	u.Callsign = u.TrackID

	if info := pr.child("flightInfo"); info != nil {
		u.AircraftType = info.child("acType").trimText()
		u.TargetType = info.child("tgtType").trimText()
	}

	if lat, ok := parseFloat(pr.child("latitude").trimText()); ok {
		if lon, ok2 := parseFloat(pr.child("longitude").trimText()); ok2 {
			u.Position = geo.Point{Lat: lat, Lon: lon}
			u.HasPosition = true
		}
	}

	if mv := pr.child("movement"); mv != nil {
		if v, ok := parseFloat(mv.child("speed").trimText()); ok {
			u.SpeedKnots = v
		}
		if v, ok := parseFloat(mv.child("heading").trimText()); ok {
			u.Heading = v
		}
	}

	if v := pr.path("enhancedData.eramGufi").trimText(); v != "" {
		u.ERAMXRef = v
	}

	return u
}

// decodeBasicReport decodes an ADS-B report paired with an earlier
// positionReport. It carries no track identity of its own; the caller
// resolves it to an existing track by ERAM cross-reference identifier.
func decodeBasicReport(airport string, br *node) *flight.SurfacePartial {
	u := &flight.SurfacePartial{Airport: airport, Timestamp: time.Now(), Full: false}
	if lat, ok := parseFloat(br.child("lat").trimText()); ok {
		if lon, ok2 := parseFloat(br.child("lon").trimText()); ok2 {
			u.Position = geo.Point{Lat: lat, Lon: lon}
			u.HasPosition = true
		}
	}
	if v := br.path("enhancedData.eramGufi").trimText(); v != "" {
		u.ERAMXRef = v
	}
	return u
}
