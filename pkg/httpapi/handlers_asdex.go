// pkg/httpapi/handlers_asdex.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/swimfuse/swimfuse/pkg/flight"
)

// surfaceTrackView is the locked, tagged projection of a SurfaceTrack
// served over REST; it exists so a response never carries the track's
// mutex or is read without holding it.
type surfaceTrackView struct {
	Airport      string  `json:"airport"`
	TrackID      string  `json:"trackId"`
	Callsign     string  `json:"callsign"`
	Squawk       string  `json:"squawk"`
	AircraftType string  `json:"aircraftType"`
	Position     geoPointView `json:"position"`
	AltitudeFeet int     `json:"altitudeFeet"`
	SpeedKnots   float64 `json:"speedKnots"`
	Heading      float64 `json:"heading"`
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	Gate         string  `json:"gate"`
	GateCode     string  `json:"gateCode"`
}

type geoPointView struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func viewSurfaceTrack(trk *flight.SurfaceTrack) surfaceTrackView {
	trk.Mu.Lock()
	defer trk.Mu.Unlock()
	return surfaceTrackView{
		Airport:      trk.Airport,
		TrackID:      trk.TrackID,
		Callsign:     trk.Callsign,
		Squawk:       trk.Squawk,
		AircraftType: trk.AircraftType,
		Position:     geoPointView{trk.Position.Lat, trk.Position.Lon},
		AltitudeFeet: trk.AltitudeFeet,
		SpeedKnots:   trk.SpeedKnots,
		Heading:      trk.Heading,
		Origin:       trk.DerivedOrigin,
		Destination:  trk.DerivedDestination,
		Gate:         trk.DerivedGate,
		GateCode:     trk.DerivedGateCode,
	}
}

func (s *Server) handleASDEXAll(w http.ResponseWriter, r *http.Request) {
	var out []surfaceTrackView
	s.Store.Surface.Range(func(_ string, trk *flight.SurfaceTrack) bool {
		out = append(out, viewSurfaceTrack(trk))
		return true
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleASDEXAirport(w http.ResponseWriter, r *http.Request) {
	airport := strings.ToUpper(chi.URLParam(r, "airport"))
	var out []surfaceTrackView
	s.Store.Surface.Range(func(_ string, trk *flight.SurfaceTrack) bool {
		trk.Mu.Lock()
		match := strings.EqualFold(trk.Airport, airport)
		trk.Mu.Unlock()
		if match {
			out = append(out, viewSurfaceTrack(trk))
		}
		return true
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGateCodesGet(w http.ResponseWriter, r *http.Request) {
	airport := strings.ToUpper(chi.URLParam(r, "airport"))
	writeJSON(w, http.StatusOK, s.Gates.Get(airport))
}

func (s *Server) handleGateCodesPut(w http.ResponseWriter, r *http.Request) {
	airport := strings.ToUpper(chi.URLParam(r, "airport"))
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	var patterns map[string]string
	if err := json.Unmarshal(body, &patterns); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	s.Gates.Put(airport, patterns)
	if err := s.Gates.Save(); err != nil {
		s.Lg.Warnf("httpapi: gate code save failed: %v", err)
	}
	writeJSON(w, http.StatusOK, patterns)
}
