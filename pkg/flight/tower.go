// pkg/flight/tower.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

// ApplyTowerEvent appends a decoded TDLS/tower event to the per-aircraft
// event history. Tower events are append-only: the feed is a log of
// discrete occurrences, not a state snapshot, so there is nothing to
// merge field by field.
func ApplyTowerEvent(ac *TowerAircraft, ev TowerEvent) {
	ac.Events = append(ac.Events, ev)
}

// LatestDeparture returns the most recent departure payload recorded
// for this aircraft, if any, for gate/runway correlation lookups.
func LatestDeparture(ac *TowerAircraft) (*DeparturePayload, bool) {
	for i := len(ac.Events) - 1; i >= 0; i-- {
		if ac.Events[i].Kind == TowerEventDeparture && ac.Events[i].Departure != nil {
			return ac.Events[i].Departure, true
		}
	}
	return nil, false
}

// LatestDatalink returns the most recent datalink clearance payload, if
// any.
func LatestDatalink(ac *TowerAircraft) (*DatalinkPayload, bool) {
	for i := len(ac.Events) - 1; i >= 0; i-- {
		if ac.Events[i].Kind == TowerEventDatalinkClearance && ac.Events[i].Datalink != nil {
			return ac.Events[i].Datalink, true
		}
	}
	return nil, false
}
