// pkg/httpapi/handlers_nasr.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/swimfuse/swimfuse/pkg/airspace"
	"github.com/swimfuse/swimfuse/pkg/geo"
)

func (s *Server) handleNASRStatus(w http.ResponseWriter, r *http.Request) {
	idx := s.Airspace.Active()
	writeJSON(w, http.StatusOK, map[string]any{"cycle": idx.Cycle})
}

func (s *Server) handleNASRFind(w http.ResponseWriter, r *http.Request) {
	id := strings.ToUpper(chi.URLParam(r, "id"))
	idx := s.Airspace.Active()

	anchor := geo.Point{}
	if p, ok := idx.Point(id, anchor); ok {
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "point": p})
		return
	}
	writeError(w, http.StatusNotFound, "not found")
}

func (s *Server) handleNASRAirways(w http.ResponseWriter, r *http.Request) {
	idx := s.Airspace.Active()
	id := strings.ToUpper(r.URL.Query().Get("type"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "type required")
		return
	}
	fixes, ok := idx.Airway(id)
	if !ok {
		writeError(w, http.StatusNotFound, "airway not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "fixes": fixes})
}

func (s *Server) handleNASRProcedures(w http.ResponseWriter, r *http.Request) {
	idx := s.Airspace.Active()
	airport := strings.ToUpper(r.URL.Query().Get("airport"))
	ptype := strings.ToUpper(r.URL.Query().Get("type"))
	if airport == "" {
		writeError(w, http.StatusBadRequest, "airport required")
		return
	}

	var out []*airspace.ProcedureDefinition
	for _, proc := range idx.ProceduresForAirport(airport) {
		if ptype != "" && string(proc.Type) != ptype {
			continue
		}
		out = append(out, proc)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNASRProcGeo(w http.ResponseWriter, r *http.Request) {
	idx := s.Airspace.Active()
	q := strings.ToUpper(r.URL.Query().Get("q"))
	ptype := strings.ToUpper(r.URL.Query().Get("type"))

	procs := idx.Procedure(q)
	var out []map[string]any
	for _, p := range procs {
		if ptype != "" && string(p.Type) != ptype {
			continue
		}
		out = append(out, map[string]any{
			"id":          p.ID,
			"airport":     p.Airport,
			"type":        p.Type,
			"body":        p.Body,
			"transitions": p.Transitions,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNASRNavaids(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "use /api/nasr/find/{id} for a specific navaid"})
}

func (s *Server) handleNASRAirports(w http.ResponseWriter, r *http.Request) {
	idx := s.Airspace.Active()
	writeJSON(w, http.StatusOK, idx.Overlay())
}

func (s *Server) handleNASRCenterlines(w http.ResponseWriter, r *http.Request) {
	idx := s.Airspace.Active()
	writeJSON(w, http.StatusOK, idx.Centerlines())
}
