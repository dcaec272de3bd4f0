// pkg/httpapi/handlers_stream.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/swimfuse/swimfuse/pkg/broadcast"
)

func (s *Server) handleStreamEnroute(w http.ResponseWriter, r *http.Request) {
	broadcast.ServeWebSocket(s.Hub, broadcast.Scope{Kind: "enroute"}, uuid.NewString(), w, r, s.Lg)
}

func (s *Server) handleStreamSurface(w http.ResponseWriter, r *http.Request) {
	airport := strings.ToUpper(chi.URLParam(r, "airport"))
	broadcast.ServeWebSocket(s.Hub, broadcast.Scope{Kind: "surface", Key: airport}, uuid.NewString(), w, r, s.Lg)
}

func (s *Server) handleStreamTerminal(w http.ResponseWriter, r *http.Request) {
	facility := strings.ToUpper(chi.URLParam(r, "facility"))
	broadcast.ServeWebSocket(s.Hub, broadcast.Scope{Kind: "terminal", Key: facility}, uuid.NewString(), w, r, s.Lg)
}

func (s *Server) handleStreamTower(w http.ResponseWriter, r *http.Request) {
	airport := strings.ToUpper(chi.URLParam(r, "airport"))
	broadcast.ServeWebSocket(s.Hub, broadcast.Scope{Kind: "tower", Key: airport}, uuid.NewString(), w, r, s.Lg)
}
