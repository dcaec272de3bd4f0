// pkg/httpapi/handlers_stats.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/swimfuse/swimfuse/pkg/flight"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	active := 0
	s.Store.Flights.Range(func(_ string, rec *flight.FlightRecord) bool {
		rec.Mu.Lock()
		if rec.Status == flight.StatusActive {
			active++
		}
		rec.Mu.Unlock()
		return true
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"uptimeSeconds": time.Since(s.startedAt).Seconds(),
		"totalMessages": s.Counters.Total.Load(),
		"activeFlights": active,
		"flightCount":   s.Store.Flights.Len(),
		"surfaceCount":  s.Store.Surface.Len(),
		"terminalCount": s.Store.Terminal.Len(),
		"towerCount":    s.Store.Tower.Len(),
	})
}

func (s *Server) handleFlight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, ok := s.Store.Flights.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "flight not found")
		return
	}
	rec.Mu.Lock()
	defer rec.Mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"id":               rec.ID,
		"callsign":         rec.Callsign,
		"status":           rec.Status,
		"origin":           rec.Origin,
		"destination":      rec.Destination,
		"route":            rec.Route,
		"aircraftType":     rec.AircraftType,
		"assignedAltitude": rec.AssignedAltitude,
		"position":         rec.Position,
		"hasPosition":      rec.HasPosition,
		"lastSeen":         rec.LastSeen,
		"events":           rec.Events.Items(),
		"positions":        rec.Positions.Items(),
	})
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, ok := s.Store.Flights.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "flight not found")
		return
	}
	rec.Mu.Lock()
	origin, destination, routeText := rec.Origin, rec.Destination, rec.Route
	rec.Mu.Unlock()

	poly := s.Resolver.Resolve(routeText, origin, destination)
	writeJSON(w, http.StatusOK, map[string]any{
		"origin":      origin,
		"destination": destination,
		"route":       routeText,
		"polyline":    poly,
	})
}
