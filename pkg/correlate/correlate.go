// pkg/correlate/correlate.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package correlate cross-references surface tracks against en-route
// flight-plan state and tower datalink clearances, deriving the
// display-only fields a surface-scope subscriber wants (origin,
// destination, procedure, route, gate, gate code) without ever writing
// back into the authoritative SFDPS record.
package correlate

import (
	"strings"
	"sync"
	"time"

	"github.com/swimfuse/swimfuse/pkg/flight"
)

const rebuildInterval = 30 * time.Second

// Correlator rebuilds a callsign secondary index periodically and uses
// it, plus direct ERAM cross-reference lookups, to enrich surface
// tracks in the broadcast path.
type Correlator struct {
	store *flight.Store
	gates *GateCodeStore

	mu          sync.RWMutex
	byCallsign  map[string][]*flight.FlightRecord
	lastBuilt   time.Time
}

func New(store *flight.Store, gates *GateCodeStore) *Correlator {
	return &Correlator{store: store, gates: gates}
}

// MaybeRebuild rebuilds the callsign index if it is older than
// rebuildInterval. Call this once per surface-track broadcast batch;
// it is cheap to call more often than that since it no-ops until due.
func (c *Correlator) MaybeRebuild(now time.Time) {
	c.mu.RLock()
	due := now.Sub(c.lastBuilt) >= rebuildInterval
	c.mu.RUnlock()
	if !due {
		return
	}

	idx := make(map[string][]*flight.FlightRecord)
	c.store.Flights.Range(func(_ string, rec *flight.FlightRecord) bool {
		rec.Mu.Lock()
		cs := rec.Callsign
		rec.Mu.Unlock()
		if cs == "" {
			return true
		}
		key := strings.ToUpper(cs)
		idx[key] = append(idx[key], rec)
		return true
	})

	c.mu.Lock()
	c.byCallsign = idx
	c.lastBuilt = now
	c.mu.Unlock()
}

// Enrich populates the derived fields on trk. Call this after
// MaybeRebuild and before serializing the track into a broadcast batch.
func (c *Correlator) Enrich(trk *flight.SurfaceTrack) {
	trk.Mu.Lock()
	eramXRef := trk.ERAMXRef
	callsign := trk.Callsign
	airport := trk.Airport
	trk.Mu.Unlock()

	var fl *flight.FlightRecord
	if eramXRef != "" {
		fl, _ = c.store.Flights.Get(eramXRef)
	}
	if fl == nil && callsign != "" {
		fl = c.bestCallsignMatch(callsign, airport)
	}

	var origin, destination, procedure, route string
	if fl != nil {
		fl.Mu.Lock()
		origin, destination, procedure, route = fl.Origin, fl.Destination, fl.ArrivalProcedure, fl.Route
		fl.Mu.Unlock()
	}

	var gate, runway string
	if callsign != "" {
		if ac, ok := c.towerLookup(airport, callsign); ok {
			ac.Mu.Lock()
			if dep, ok := flight.LatestDeparture(ac); ok {
				gate, runway = dep.Gate, dep.Runway
			}
			if destination == "" {
				if dl, ok := flight.LatestDatalink(ac); ok {
					destination = destinationFromDatalink(dl.Body)
				}
			}
			ac.Mu.Unlock()
		}
	}

	gateCode := c.gates.Derive(airport, route)

	trk.Mu.Lock()
	trk.DerivedOrigin = origin
	trk.DerivedDestination = destination
	trk.DerivedProcedure = procedure
	trk.DerivedRoute = route
	trk.DerivedGate = gate
	trk.DerivedRunway = runway
	trk.DerivedGateCode = gateCode
	trk.Mu.Unlock()
}

// bestCallsignMatch prefers the flight whose origin matches airport
// (a departure leg) over one whose destination matches (an arrival
// leg), since airlines reuse callsigns across turnover legs.
func (c *Correlator) bestCallsignMatch(callsign, airport string) *flight.FlightRecord {
	c.mu.RLock()
	candidates := c.byCallsign[strings.ToUpper(callsign)]
	c.mu.RUnlock()
	if len(candidates) == 0 {
		return nil
	}

	var departureLeg, arrivalLeg, any *flight.FlightRecord
	for _, fl := range candidates {
		fl.Mu.Lock()
		origin, destination := fl.Origin, fl.Destination
		fl.Mu.Unlock()
		any = fl
		if strings.EqualFold(origin, airport) && departureLeg == nil {
			departureLeg = fl
		}
		if strings.EqualFold(destination, airport) && arrivalLeg == nil {
			arrivalLeg = fl
		}
	}
	switch {
	case departureLeg != nil:
		return departureLeg
	case arrivalLeg != nil:
		return arrivalLeg
	default:
		return any
	}
}

// towerLookup finds the tower aircraft event history for (airport,
// callsign), case-insensitively.
func (c *Correlator) towerLookup(airport, callsign string) (*flight.TowerAircraft, bool) {
	var found *flight.TowerAircraft
	c.store.Tower.Range(func(_ string, ac *flight.TowerAircraft) bool {
		if strings.EqualFold(ac.Airport, airport) && strings.EqualFold(ac.AircraftID, callsign) {
			found = ac
			return false
		}
		return true
	})
	return found, found != nil
}

// destinationFromDatalink pulls a trailing destination-looking token
// out of a datalink clearance body; CPDLC clearance text has no fixed
// grammar here so this is a best-effort scan for a 3-4 letter token
// following "TO".
func destinationFromDatalink(body string) string {
	fields := strings.Fields(strings.ToUpper(body))
	for i, f := range fields {
		if f == "TO" && i+1 < len(fields) {
			cand := strings.Trim(fields[i+1], ".,")
			if len(cand) >= 3 && len(cand) <= 4 {
				return cand
			}
		}
	}
	return ""
}
