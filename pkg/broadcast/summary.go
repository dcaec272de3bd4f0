// pkg/broadcast/summary.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package broadcast

import (
	"github.com/swimfuse/swimfuse/pkg/flight"
)

// FlightSummary is the broadcast-facing projection of a FlightRecord;
// callers must hold rec.Mu while building one.
type FlightSummary struct {
	ID          string     `json:"id"`
	Callsign    string     `json:"callsign"`
	Status      flight.Status `json:"status"`
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	Lat         float64    `json:"lat"`
	Lon         float64    `json:"lon"`
	AltitudeFeet int       `json:"altitudeFeet"`
	GroundSpeed float64    `json:"groundSpeed"`
	Squawk      string     `json:"squawk"`
	Facility    string     `json:"facility"`
	Sector      string     `json:"sector"`
}

func summarizeFlight(rec *flight.FlightRecord) FlightSummary {
	alt := rec.ReportedAltitude
	if !rec.HasReportedAltitude {
		alt = rec.AssignedAltitude.SimpleFeet
	}
	return FlightSummary{
		ID:           rec.ID,
		Callsign:     rec.Callsign,
		Status:       rec.Status,
		Origin:       rec.Origin,
		Destination:  rec.Destination,
		Lat:          rec.Position.Lat,
		Lon:          rec.Position.Lon,
		AltitudeFeet: alt,
		GroundSpeed:  rec.GroundSpeed,
		Squawk:       rec.CurrentSquawk,
		Facility:     rec.ControllingFacility,
		Sector:       rec.ControllingSector,
	}
}

type SurfaceSummary struct {
	Airport      string  `json:"airport"`
	TrackID      string  `json:"trackId"`
	Callsign     string  `json:"callsign"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	AltitudeFeet int     `json:"altitudeFeet"`
	Heading      float64 `json:"heading"`
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	Gate         string  `json:"gate"`
	GateCode     string  `json:"gateCode"`
}

func summarizeSurface(trk *flight.SurfaceTrack) SurfaceSummary {
	return SurfaceSummary{
		Airport:      trk.Airport,
		TrackID:      trk.TrackID,
		Callsign:     trk.Callsign,
		Lat:          trk.Position.Lat,
		Lon:          trk.Position.Lon,
		AltitudeFeet: trk.AltitudeFeet,
		Heading:      trk.Heading,
		Origin:       trk.DerivedOrigin,
		Destination:  trk.DerivedDestination,
		Gate:         trk.DerivedGate,
		GateCode:     trk.DerivedGateCode,
	}
}

type TerminalSummary struct {
	Facility     string  `json:"facility"`
	TrackNum     string  `json:"trackNum"`
	Callsign     string  `json:"callsign"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	AltitudeFeet int     `json:"altitudeFeet"`
	Track        float64 `json:"track"`
	Runway       string  `json:"runway"`
	Scratchpad1  string  `json:"scratchpad1"`
}

func summarizeTerminal(trk *flight.TerminalTrack) TerminalSummary {
	return TerminalSummary{
		Facility:     trk.Facility,
		TrackNum:     trk.TrackNum,
		Callsign:     trk.Callsign,
		Lat:          trk.Position.Lat,
		Lon:          trk.Position.Lon,
		AltitudeFeet: trk.AltitudeFeet,
		Track:        trk.Track,
		Runway:       trk.Runway,
		Scratchpad1:  trk.Scratchpad1,
	}
}

type TowerSummary struct {
	Airport    string `json:"airport"`
	AircraftID string `json:"aircraftId"`
	EventCount int    `json:"eventCount"`
}

func summarizeTower(ac *flight.TowerAircraft) TowerSummary {
	return TowerSummary{Airport: ac.Airport, AircraftID: ac.AircraftID, EventCount: len(ac.Events)}
}

// DownstreamUpdate is the scope-display protocol's position/flight-plan
// record, keyed by a stable GUID rather than the internal record id.
type DownstreamUpdate struct {
	GUID        string  `msgpack:"guid"`
	Callsign    string  `msgpack:"callsign"`
	Lat         float64 `msgpack:"lat"`
	Lon         float64 `msgpack:"lon"`
	AltitudeFeet int    `msgpack:"altitudeFeet"`
	Squawk      string  `msgpack:"squawk"`
	Origin      string  `msgpack:"origin"`
	Destination string  `msgpack:"destination"`
}

func summarizeDownstream(store *flight.Store, rec *flight.FlightRecord) DownstreamUpdate {
	key := rec.ModeSHex
	if key == "" {
		key = rec.ID
	}
	alt := rec.ReportedAltitude
	if !rec.HasReportedAltitude {
		alt = rec.AssignedAltitude.SimpleFeet
	}
	return DownstreamUpdate{
		GUID:         store.GUIDFor(key),
		Callsign:     rec.Callsign,
		Lat:          rec.Position.Lat,
		Lon:          rec.Position.Lon,
		AltitudeFeet: alt,
		Squawk:       rec.CurrentSquawk,
		Origin:       rec.Origin,
		Destination:  rec.Destination,
	}
}
