// pkg/httpapi/handlers_tdls.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/swimfuse/swimfuse/pkg/flight"
)

type towerEventView struct {
	Kind       flight.TowerEventKind `json:"kind"`
	Beacon     string                `json:"beacon"`
	AircraftType string              `json:"aircraftType"`
}

type towerAircraftView struct {
	Airport    string           `json:"airport"`
	AircraftID string           `json:"aircraftId"`
	Events     []towerEventView `json:"events"`
}

func viewTowerAircraft(ac *flight.TowerAircraft) towerAircraftView {
	ac.Mu.Lock()
	defer ac.Mu.Unlock()
	v := towerAircraftView{Airport: ac.Airport, AircraftID: ac.AircraftID}
	for _, ev := range ac.Events {
		v.Events = append(v.Events, towerEventView{Kind: ev.Kind, Beacon: ev.Beacon, AircraftType: ev.AircraftType})
	}
	return v
}

func (s *Server) handleTDLSAll(w http.ResponseWriter, r *http.Request) {
	var out []towerAircraftView
	s.Store.Tower.Range(func(_ string, ac *flight.TowerAircraft) bool {
		out = append(out, viewTowerAircraft(ac))
		return true
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTDLSAirport(w http.ResponseWriter, r *http.Request) {
	airport := strings.ToUpper(chi.URLParam(r, "airport"))
	var out []towerAircraftView
	s.Store.Tower.Range(func(_ string, ac *flight.TowerAircraft) bool {
		ac.Mu.Lock()
		match := strings.EqualFold(ac.Airport, airport)
		ac.Mu.Unlock()
		if match {
			out = append(out, viewTowerAircraft(ac))
		}
		return true
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTDLSAircraft(w http.ResponseWriter, r *http.Request) {
	airport := strings.ToUpper(chi.URLParam(r, "airport"))
	aircraftID := strings.ToUpper(chi.URLParam(r, "aircraftId"))
	var found *flight.TowerAircraft
	s.Store.Tower.Range(func(_ string, ac *flight.TowerAircraft) bool {
		ac.Mu.Lock()
		match := strings.EqualFold(ac.Airport, airport) && strings.EqualFold(ac.AircraftID, aircraftID)
		ac.Mu.Unlock()
		if match {
			found = ac
			return false
		}
		return true
	})
	if found == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, viewTowerAircraft(found))
}
