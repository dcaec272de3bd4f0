// pkg/httpapi/handlers_debug.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swimfuse/swimfuse/pkg/util"
)

func (s *Server) telemetryFor(source string) *util.PathTelemetry {
	switch source {
	case "enroute":
		return s.EnrouteTel
	case "surface", "terminal", "tower":
		return s.SurfaceTel
	default:
		return nil
	}
}

func (s *Server) handleDebugSample(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	tel := s.telemetryFor(source)
	if tel == nil {
		writeError(w, http.StatusNotFound, "unknown source")
		return
	}
	writeJSON(w, http.StatusOK, tel.Samples(source))
}

func (s *Server) handleDebugPaths(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	tel := s.telemetryFor(source)
	if tel == nil {
		writeError(w, http.StatusNotFound, "unknown source")
		return
	}
	writeJSON(w, http.StatusOK, tel.Paths())
}
