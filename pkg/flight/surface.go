// pkg/flight/surface.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

import (
	"time"

	"github.com/swimfuse/swimfuse/pkg/geo"
)

// SurfacePartial carries one decoded ASDE-X/SMES track report. Unlike
// the en-route flight record, surface tracks have no clear-semantics
// exceptions: a present field overwrites (descriptive fields only on a
// full report, see ApplySurfaceUpdate) and nothing is ever cleared, since
// the surface feed is a single authoritative source per airport rather
// than several competing ones.
type SurfacePartial struct {
	Airport      string
	TrackID      string
	Timestamp    time.Time
	Full         bool // true for a full report, false for a position-only update
	Callsign     string
	Squawk       string
	AircraftType string
	TargetType   string
	Position     geo.Point
	HasPosition  bool
	AltitudeFeet int
	HasAltitude  bool
	SpeedKnots   float64
	Heading      float64
	ERAMXRef     string
}

// ApplySurfaceUpdate merges a decoded surface report into trk. Position
// updates always apply; the remaining descriptive fields only apply on
// a full report, since a position-only message carries none of them and
// must not be read as clearing what is already known.
func ApplySurfaceUpdate(trk *SurfaceTrack, u *SurfacePartial) {
	if u.HasPosition {
		trk.Position = u.Position
	}
	if u.Full {
		if u.Callsign != "" {
			trk.Callsign = u.Callsign
		}
		if u.Squawk != "" {
			trk.Squawk = u.Squawk
		}
		if u.AircraftType != "" {
			trk.AircraftType = u.AircraftType
		}
		if u.TargetType != "" {
			trk.TargetType = u.TargetType
		}
		if u.HasAltitude {
			trk.AltitudeFeet = u.AltitudeFeet
		}
		if u.SpeedKnots != 0 {
			trk.SpeedKnots = u.SpeedKnots
		}
		if u.ERAMXRef != "" {
			trk.ERAMXRef = u.ERAMXRef
		}
		trk.Heading = u.Heading
	}
	trk.LastSeen = u.Timestamp
}
