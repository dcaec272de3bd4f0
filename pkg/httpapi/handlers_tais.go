// pkg/httpapi/handlers_tais.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/swimfuse/swimfuse/pkg/flight"
)

type terminalTrackView struct {
	Facility     string  `json:"facility"`
	TrackNum     string  `json:"trackNum"`
	Callsign     string  `json:"callsign"`
	Equipment    string  `json:"equipment"`
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	Position     geoPointView `json:"position"`
	AltitudeFeet int     `json:"altitudeFeet"`
	GroundSpeed  float64 `json:"groundSpeed"`
	Track        float64 `json:"track"`
	Runway       string  `json:"runway"`
	Frozen       bool    `json:"frozen"`
	Pseudo       bool    `json:"pseudo"`
}

func viewTerminalTrack(trk *flight.TerminalTrack) terminalTrackView {
	trk.Mu.Lock()
	defer trk.Mu.Unlock()
	return terminalTrackView{
		Facility:     trk.Facility,
		TrackNum:     trk.TrackNum,
		Callsign:     trk.Callsign,
		Equipment:    trk.Equipment,
		Origin:       trk.Origin,
		Destination:  trk.Destination,
		Position:     geoPointView{trk.Position.Lat, trk.Position.Lon},
		AltitudeFeet: trk.AltitudeFeet,
		GroundSpeed:  trk.GroundSpeed,
		Track:        trk.Track,
		Runway:       trk.Runway,
		Frozen:       trk.Frozen,
		Pseudo:       trk.Pseudo,
	}
}

func (s *Server) handleTAISAll(w http.ResponseWriter, r *http.Request) {
	var out []terminalTrackView
	s.Store.Terminal.Range(func(_ string, trk *flight.TerminalTrack) bool {
		out = append(out, viewTerminalTrack(trk))
		return true
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTAISFacility(w http.ResponseWriter, r *http.Request) {
	facility := strings.ToUpper(chi.URLParam(r, "facility"))
	var out []terminalTrackView
	s.Store.Terminal.Range(func(_ string, trk *flight.TerminalTrack) bool {
		trk.Mu.Lock()
		match := strings.EqualFold(trk.Facility, facility)
		trk.Mu.Unlock()
		if match {
			out = append(out, viewTerminalTrack(trk))
		}
		return true
	})
	writeJSON(w, http.StatusOK, out)
}
