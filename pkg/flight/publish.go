// pkg/flight/publish.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

// Ingest applies a decoded or synthesized partial update to the
// record it names, creating the record on first sight, and marks it
// dirty for the next broadcast flush. This is the single entry point
// both the wire decode pipeline and the enrichment loops use to touch
// flight state.
func (s *Store) Ingest(u *PartialFlightUpdate) {
	rec, _ := s.GetOrCreateFlight(u.ID)
	rec.Mu.Lock()
	ApplyFlightUpdate(rec, u)
	rec.Mu.Unlock()
	s.FlightDirty.Mark(u.ID)
}

// StorePublisher adapts a Store to the enrichment loop's narrow
// publishing interface.
type StorePublisher struct {
	Store *Store
}

func (p StorePublisher) PublishFlightPlan(id string, u *PartialFlightUpdate) {
	u.ID = id
	p.Store.Ingest(u)
}

func (p StorePublisher) PublishPosition(id string, u *PartialFlightUpdate) {
	u.ID = id
	p.Store.Ingest(u)
}

// IngestSurface applies a decoded surface update, creating the track
// on first sight, and marks its airport dirty. An update without a track
// id (an ADS-B basic report) is applied to the airport's existing track
// with the same ERAM cross-reference, and dropped when there is none.
func (s *Store) IngestSurface(u *SurfacePartial) {
	if u.TrackID == "" {
		s.Surface.Range(func(_ string, t *SurfaceTrack) bool {
			t.Mu.Lock()
			if u.ERAMXRef != "" && t.Airport == u.Airport && t.ERAMXRef == u.ERAMXRef {
				u.TrackID = t.TrackID
			}
			t.Mu.Unlock()
			return u.TrackID == ""
		})
		if u.TrackID == "" {
			return
		}
	}
	trk, _ := s.GetOrCreateSurface(u.Airport, u.TrackID)
	trk.Mu.Lock()
	ApplySurfaceUpdate(trk, u)
	trk.Mu.Unlock()
	s.AirportDirty.Mark(u.Airport)
}

// IngestTerminal applies a decoded terminal update, creating the track
// on first sight, and marks its facility dirty.
func (s *Store) IngestTerminal(u *TerminalPartial) {
	trk, _ := s.GetOrCreateTerminal(u.Facility, u.TrackNum)
	trk.Mu.Lock()
	ApplyTerminalUpdate(trk, u)
	trk.Mu.Unlock()
	s.FacilityDirty.Mark(u.Facility)
}

// IngestTower appends a decoded tower event, creating the aircraft
// history on first sight, and marks its airport dirty.
func (s *Store) IngestTower(airport, aircraftID string, ev TowerEvent) {
	ac, _ := s.GetOrCreateTower(airport, aircraftID)
	ac.Mu.Lock()
	ApplyTowerEvent(ac, ev)
	ac.Mu.Unlock()
	s.TowerDirty.Mark(airport)
}
