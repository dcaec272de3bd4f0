// pkg/flight/terminal.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

import (
	"time"

	"github.com/swimfuse/swimfuse/pkg/geo"
)

// TerminalPartial carries one decoded STARS track report.
type TerminalPartial struct {
	Facility  string
	TrackNum  string
	Timestamp time.Time

	Callsign          string
	Equipment         string
	Wake              string
	Rules             string
	Origin            string
	Destination       string
	EntryFix          string
	ExitFix           string
	AssignedSquawk    string
	ReportedSquawk    string
	HasRequestedAlt   bool
	RequestedAltitude int
	Runway            string
	Scratchpad1       string
	Scratchpad2       string
	Owner             string
	PendingHandoff    string

	Position     geo.Point
	HasPosition  bool
	AltitudeFeet int
	HasAltitude  bool
	GroundSpeed  float64
	VerticalRate float64
	ModeSHex     string
	Frozen       bool
	Pseudo       bool
}

// ApplyTerminalUpdate merges a decoded STARS report into trk, deriving
// the displayed track heading from the change in position rather than
// trusting any single velocity field the feed might carry.
func ApplyTerminalUpdate(trk *TerminalTrack, u *TerminalPartial) {
	if u.Callsign != "" {
		trk.Callsign = u.Callsign
	}
	if u.Equipment != "" {
		trk.Equipment = u.Equipment
	}
	if u.Wake != "" {
		trk.Wake = u.Wake
	}
	if u.Rules != "" {
		trk.Rules = u.Rules
	}
	if u.Origin != "" {
		trk.Origin = u.Origin
	}
	if u.Destination != "" {
		trk.Destination = u.Destination
	}
	if u.EntryFix != "" {
		trk.EntryFix = u.EntryFix
	}
	if u.ExitFix != "" {
		trk.ExitFix = u.ExitFix
	}
	if u.AssignedSquawk != "" {
		trk.AssignedSquawk = u.AssignedSquawk
	}
	if u.ReportedSquawk != "" {
		trk.ReportedSquawk = u.ReportedSquawk
	}
	if u.HasRequestedAlt {
		trk.RequestedAltitude = u.RequestedAltitude
	}
	if u.Runway != "" {
		trk.Runway = u.Runway
	}
	if u.Scratchpad1 != "" {
		trk.Scratchpad1 = u.Scratchpad1
	}
	if u.Scratchpad2 != "" {
		trk.Scratchpad2 = u.Scratchpad2
	}
	if u.Owner != "" {
		trk.Owner = u.Owner
	}
	trk.PendingHandoff = u.PendingHandoff
	if u.ModeSHex != "" {
		trk.ModeSHex = u.ModeSHex
	}
	trk.Frozen = u.Frozen
	trk.Pseudo = u.Pseudo

	if u.HasPosition {
		if trk.Position.IsZero() {
			trk.Track = 0
		} else if dLat, dLon := u.Position.Lat-trk.Position.Lat, u.Position.Lon-trk.Position.Lon; dLat != 0 || dLon != 0 {
			trk.Track = geo.Bearing(trk.Position, u.Position)
		}
		trk.Position = u.Position
	}
	if u.HasAltitude {
		trk.VerticalRate = verticalRate(trk.AltitudeFeet, u.AltitudeFeet, trk.LastSeen, u.Timestamp)
		trk.AltitudeFeet = u.AltitudeFeet
	}
	if u.GroundSpeed != 0 {
		trk.GroundSpeed = u.GroundSpeed
	}
	trk.LastSeen = u.Timestamp
}

func verticalRate(prevFeet, curFeet int, prevTime, curTime time.Time) float64 {
	dt := curTime.Sub(prevTime).Minutes()
	if dt <= 0 || prevTime.IsZero() {
		return 0
	}
	return float64(curFeet-prevFeet) / dt
}
