// pkg/enrich/loop.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package enrich

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/swimfuse/swimfuse/pkg/flight"
	"github.com/swimfuse/swimfuse/pkg/geo"
	"github.com/swimfuse/swimfuse/pkg/log"
)

const (
	defaultSnapshotRefresh = 60 * time.Second
	militaryRefresh        = 60 * time.Second
	maxHexFallbacksPerCycle = 50
	matchRadiusNM           = 5.0
	matchAltitudeFeet       = 1000
)

// CoverageArea is one military-injection polling region.
type CoverageArea struct {
	Facility string
	Center   geo.Point
	RadiusNM float64
}

func DefaultCoverageAreas() []CoverageArea {
	return []CoverageArea{
		{Facility: "ZZZ", Center: geo.Point{Lat: 39.0, Lon: -98.0}, RadiusNM: 150},
	}
}

// Publisher is the narrow slice of the merge engine the enrichment
// loops need: synthesize a partial update and apply it under the
// record's own lock the same way a decoded wire message would be.
type Publisher interface {
	PublishFlightPlan(id string, u *flight.PartialFlightUpdate)
	PublishPosition(id string, u *flight.PartialFlightUpdate)
}

// Loop drives both the regional snapshot loop and the military
// injection loop against a flight store.
type Loop struct {
	client    *Client
	store     *flight.Store
	pub       Publisher
	regions   []Region
	coverage  []CoverageArea
	refresh   time.Duration
	lg        *log.Logger

	mu          sync.Mutex
	hexIndex    map[string]Aircraft
	squawkIndex map[string][]Aircraft
}

func NewLoop(client *Client, store *flight.Store, pub Publisher, regions []Region, coverage []CoverageArea, lg *log.Logger) *Loop {
	return &Loop{
		client:   client,
		store:    store,
		pub:      pub,
		regions:  regions,
		coverage: coverage,
		refresh:  defaultSnapshotRefresh,
		lg:       lg,
	}
}

// Run drives the two loops until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); l.runSnapshotLoop(ctx) }()
	go func() { defer wg.Done(); l.runMilitaryLoop(ctx) }()
	wg.Wait()
}

func (l *Loop) runSnapshotLoop(ctx context.Context) {
	t := time.NewTicker(l.refresh)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.snapshotCycle(ctx)
		}
	}
}

func (l *Loop) snapshotCycle(ctx context.Context) {
	hexIdx := make(map[string]Aircraft)
	squawkIdx := make(map[string][]Aircraft)
	seen := make(map[string]bool)

	for _, r := range l.regions {
		acs, err := l.client.FetchArea(ctx, r.Center, r.RadiusNM)
		if err != nil {
			l.lg.Warnf("enrich: region %s fetch failed: %v", r.Name, err)
			continue
		}
		for _, a := range acs {
			if a.Hex == "" || seen[a.Hex] {
				continue
			}
			seen[a.Hex] = true
			hexIdx[a.Hex] = a
			if a.Squawk != "" {
				squawkIdx[a.Squawk] = append(squawkIdx[a.Squawk], a)
			}
		}
	}

	l.mu.Lock()
	l.hexIndex = hexIdx
	l.squawkIndex = squawkIdx
	l.mu.Unlock()

	l.matchPendingWork(ctx, hexIdx, squawkIdx)
}

// pendingWorkItem is a record that lacks a callsign and carries either
// a Mode-S hex or a squawk.
type pendingWorkItem struct {
	id          string
	hex         string
	squawk      string
	altFeet     int
	hasAlt      bool
	position    geo.Point
	hasPosition bool
	facility    string
}

func (l *Loop) collectPendingWork() []pendingWorkItem {
	var out []pendingWorkItem
	l.store.Flights.Range(func(id string, rec *flight.FlightRecord) bool {
		rec.Mu.Lock()
		defer rec.Mu.Unlock()
		if rec.Callsign != "" {
			return true
		}
		if rec.ModeSHex == "" && rec.CurrentSquawk == "" {
			return true
		}
		item := pendingWorkItem{id: id, hex: rec.ModeSHex, squawk: rec.CurrentSquawk, facility: rec.ControllingFacility}
		if rec.HasReportedAltitude {
			item.altFeet, item.hasAlt = rec.ReportedAltitude, true
		} else if rec.AssignedAltitude.Kind == flight.AltitudeSimple {
			item.altFeet, item.hasAlt = rec.AssignedAltitude.SimpleFeet, true
		}
		if rec.HasPosition {
			item.position, item.hasPosition = rec.Position, true
		}
		out = append(out, item)
		return true
	})
	return out
}

func (l *Loop) matchPendingWork(ctx context.Context, hexIdx map[string]Aircraft, squawkIdx map[string][]Aircraft) {
	fallbacks := 0
	for _, item := range l.collectPendingWork() {
		var match Aircraft
		var ok bool

		if item.hex != "" {
			match, ok = hexIdx[strings.ToUpper(item.hex)]
			if !ok && fallbacks < maxHexFallbacksPerCycle {
				fallbacks++
				match, ok = l.client.FetchHex(ctx, item.hex)
			}
		} else if item.squawk != "" {
			match, ok = nearestSquawkMatch(squawkIdx[item.squawk], item)
		}
		if !ok || match.Callsign == "" {
			continue
		}

		if l.callsignInUse(item.facility, match.Callsign) {
			continue
		}

		l.publishMatch(item, match)
	}
}

// nearestSquawkMatch picks the nearest candidate within matchRadiusNM
// and matchAltitudeFeet of the record. The altitude gate is skipped when
// the record has no altitude or it reads zero (no Mode-C); the distance
// gate is skipped when the record has no position, and every candidate
// then ties at distance zero, so the first one that passes wins.
func nearestSquawkMatch(candidates []Aircraft, item pendingWorkItem) (Aircraft, bool) {
	best := -1
	bestDist := 0.0
	for i, c := range candidates {
		if item.hasAlt && item.altFeet != 0 && abs(c.AltFeet-item.altFeet) > matchAltitudeFeet {
			continue
		}
		d := 0.0
		if item.hasPosition {
			d = geo.NMDistance(item.position, c.Position)
			if d > matchRadiusNM {
				continue
			}
		}
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best == -1 {
		return Aircraft{}, false
	}
	return candidates[best], true
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func (l *Loop) callsignInUse(facility, callsign string) bool {
	inUse := false
	l.store.Flights.Range(func(_ string, rec *flight.FlightRecord) bool {
		rec.Mu.Lock()
		defer rec.Mu.Unlock()
		if rec.Callsign == callsign && rec.ControllingFacility == facility {
			inUse = true
			return false
		}
		return true
	})
	return inUse
}

// publishMatch synthesizes a flight-plan (and, when altitude is newly
// known, a position) update for the given pending record.
func (l *Loop) publishMatch(item pendingWorkItem, match Aircraft) {
	u := &flight.PartialFlightUpdate{
		ID:         item.id,
		WireSource: "adsb-enrich",
		Timestamp:  time.Now(),
		Class:      flight.ClassTrack,
	}

	if item.hex != "" && strings.EqualFold(item.hex, match.Hex) {
		u.Callsign = flight.Present(match.Callsign)
		if match.Squawk != "" {
			u.CurrentSquawk = flight.Present(match.Squawk)
		}
	} else if redirectID, redirect := l.findModeSTrack(match.Hex); redirect {
		u.ID = redirectID
		u.Callsign = flight.Present(match.Callsign)
	} else {
		u.Callsign = flight.Present(match.Callsign)
		if match.Squawk != "" {
			u.CurrentSquawk = flight.Present(match.Squawk)
		}
	}

	l.pub.PublishFlightPlan(u.ID, u)

	if !item.hasAlt && match.AltFeet != 0 {
		pu := &flight.PartialFlightUpdate{
			ID:         u.ID,
			WireSource: "adsb-enrich",
			Timestamp:  time.Now(),
			Class:      flight.ClassPosition,
			Position:   flight.Present(match.Position),
			ReportedAltitude: flight.Present(match.AltFeet),
		}
		l.pub.PublishPosition(pu.ID, pu)
	}
}

func (l *Loop) findModeSTrack(hex string) (string, bool) {
	found := ""
	l.store.Flights.Range(func(id string, rec *flight.FlightRecord) bool {
		rec.Mu.Lock()
		match := strings.EqualFold(rec.ModeSHex, hex)
		rec.Mu.Unlock()
		if match {
			found = id
			return false
		}
		return true
	})
	return found, found != ""
}

func (l *Loop) runMilitaryLoop(ctx context.Context) {
	t := time.NewTicker(militaryRefresh)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.militaryCycle(ctx)
		}
	}
}

func (l *Loop) militaryCycle(ctx context.Context) {
	for _, area := range l.coverage {
		acs, err := l.client.FetchArea(ctx, area.Center, area.RadiusNM)
		if err != nil {
			l.lg.Warnf("enrich: military area %s fetch failed: %v", area.Facility, err)
			continue
		}
		for _, a := range acs {
			if !a.Military || a.Hex == "" {
				continue
			}
			if _, tracked := l.findModeSTrack(a.Hex); tracked {
				continue
			}
			l.publishMilitary(area.Facility, a)
		}
	}
}

func (l *Loop) publishMilitary(facility string, a Aircraft) {
	id := "MIL-" + a.Hex
	now := time.Now()
	fp := &flight.PartialFlightUpdate{
		ID:                  id,
		WireSource:          "adsb-military",
		Timestamp:           now,
		Class:               flight.ClassTrack,
		Callsign:            flight.Present(a.Callsign),
		ModeSHex:            flight.Present(a.Hex),
		ControllingFacility: flight.Present(facility),
	}
	if a.Squawk != "" {
		fp.CurrentSquawk = flight.Present(a.Squawk)
	}
	l.pub.PublishFlightPlan(id, fp)

	pos := &flight.PartialFlightUpdate{
		ID:               id,
		WireSource:       "adsb-military",
		Timestamp:        now,
		Class:            flight.ClassPosition,
		Position:         flight.Present(a.Position),
		ReportedAltitude: flight.Present(a.AltFeet),
	}
	l.pub.PublishPosition(id, pos)
}
