// pkg/sweep/cache.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package sweep owns the periodic maintenance jobs that sit outside
// the hot update path: warm-cache save/load, daily archive append and
// size-budget enforcement, purge/point-out expiry sweeps, and the
// statistics heartbeat.
package sweep

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/swimfuse/swimfuse/pkg/flight"
	"github.com/swimfuse/swimfuse/pkg/log"
	"github.com/swimfuse/swimfuse/pkg/util"
)

const warmCacheMaxAge = 60 * time.Minute

// FlightSnapshot is the persisted shape of one flight record, a plain
// copy of the fields that survive a save/load round trip.
type FlightSnapshot struct {
	ID           string                 `json:"id"`
	Callsign     string                 `json:"callsign"`
	ComputerIDs  map[string]string      `json:"computerIds"`
	Operator     string                 `json:"operator"`
	Status       flight.Status          `json:"status"`
	Origin       string                 `json:"origin"`
	Destination  string                 `json:"destination"`
	AircraftType string                 `json:"aircraftType"`
	FlightRules  string                 `json:"flightRules"`
	FlightType   string                 `json:"flightType"`
	Route        string                 `json:"route"`
	ModeSHex     string                 `json:"modeSHex"`
	AssignedAltitude flight.AssignedAltitude `json:"assignedAltitude"`
	Lat          float64                `json:"lat"`
	Lon          float64                `json:"lon"`
	HasPosition  bool                   `json:"hasPosition"`
	LastSeen     time.Time              `json:"lastSeen"`
	Positions    []flight.PositionRecord `json:"positions"`
	Events       []flight.EventRecord   `json:"events"`
}

type WarmCache struct {
	SavedAt time.Time        `json:"savedAt"`
	Flights []FlightSnapshot `json:"flights"`
}

// Save snapshots all non-cancelled, non-purged flight records to path
// via a temp-file-then-atomic-rename write.
func Save(store *flight.Store, path string, lg *log.Logger) error {
	var snapshots []FlightSnapshot
	store.Flights.Range(func(_ string, rec *flight.FlightRecord) bool {
		rec.Mu.Lock()
		defer rec.Mu.Unlock()
		if rec.Status == flight.StatusCancelled || rec.Status == flight.StatusPurged {
			return true
		}
		backfillDerivedFields(rec)
		snapshots = append(snapshots, FlightSnapshot{
			ID:               rec.ID,
			Callsign:         rec.Callsign,
			ComputerIDs:      util.DuplicateMap(rec.ComputerIDs),
			Operator:         rec.Operator,
			Status:           rec.Status,
			Origin:           rec.Origin,
			Destination:      rec.Destination,
			AircraftType:     rec.AircraftType,
			FlightRules:      rec.FlightRules,
			FlightType:       rec.FlightType,
			Route:            rec.Route,
			ModeSHex:         rec.ModeSHex,
			AssignedAltitude: rec.AssignedAltitude,
			Lat:              rec.Position.Lat,
			Lon:              rec.Position.Lon,
			HasPosition:      rec.HasPosition,
			LastSeen:         rec.LastSeen,
			Positions:        rec.Positions.Items(),
			Events:           rec.Events.Items(),
		})
		return true
	})

	cache := WarmCache{SavedAt: time.Now(), Flights: snapshots}
	data, err := json.Marshal(cache)
	if err != nil {
		return fmt.Errorf("marshal warm cache: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
		lg.Warnf("sweep: warm cache save failed: %v", err)
		return err
	}
	lg.Infof("sweep: warm cache saved (%d flights)", len(snapshots))
	return nil
}

// backfillDerivedFields fills in fields (e.g. flight type) that may
// not be set on the live record but can be recovered from the event
// log summaries, so they survive a save/restore cycle.
func backfillDerivedFields(rec *flight.FlightRecord) {
	if rec.FlightType != "" {
		return
	}
	for _, ev := range rec.Events.Items() {
		if ev.Summary == "" {
			continue
		}
		rec.FlightType = classifyFromSummary(ev.Summary)
		if rec.FlightType != "" {
			return
		}
	}
}

func classifyFromSummary(summary string) string {
	switch {
	case strings.Contains(summary, "heartbeat"):
		return "surveillance-only"
	case strings.Contains(summary, "handoff"):
		return "controlled"
	default:
		return ""
	}
}

// Load restores a warm cache from path if its age is within
// warmCacheMaxAge, repopulating the store's flight map including
// position and event rings.
func Load(store *flight.Store, path string, lg *log.Logger) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat warm cache: %w", err)
	}
	if time.Since(info.ModTime()) > warmCacheMaxAge {
		lg.Infof("sweep: warm cache at %s too old (%s), skipping load", path, time.Since(info.ModTime()))
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read warm cache: %w", err)
	}
	var cache WarmCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return fmt.Errorf("parse warm cache: %w", err)
	}

	for _, snap := range cache.Flights {
		rec, _ := store.GetOrCreateFlight(snap.ID)
		rec.Mu.Lock()
		rec.Callsign = snap.Callsign
		rec.ComputerIDs = snap.ComputerIDs
		rec.Operator = snap.Operator
		rec.Status = snap.Status
		rec.Origin = snap.Origin
		rec.Destination = snap.Destination
		rec.AircraftType = snap.AircraftType
		rec.FlightRules = snap.FlightRules
		rec.FlightType = snap.FlightType
		rec.Route = snap.Route
		rec.ModeSHex = snap.ModeSHex
		rec.AssignedAltitude = snap.AssignedAltitude
		rec.Position.Lat, rec.Position.Lon = snap.Lat, snap.Lon
		rec.HasPosition = snap.HasPosition
		rec.LastSeen = snap.LastSeen
		for _, p := range snap.Positions {
			rec.Positions.Add(p)
		}
		for _, e := range snap.Events {
			rec.Events.Add(e)
		}
		rec.Mu.Unlock()
	}
	lg.Infof("sweep: warm cache loaded (%d flights) from %s", len(cache.Flights), path)
	return nil
}

func defaultCacheDir(dir string) string {
	if dir == "" {
		return "flight-cache"
	}
	return dir
}

func CachePath(dir string) string {
	return filepath.Join(defaultCacheDir(dir), "warm.json")
}
