// pkg/httpapi/router.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package httpapi wires the REST surface and streaming upgrade points
// onto the flight/airspace/correlate stores, using chi for routing and
// cors for browser-facing front ends.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/swimfuse/swimfuse/pkg/airspace"
	"github.com/swimfuse/swimfuse/pkg/broadcast"
	"github.com/swimfuse/swimfuse/pkg/correlate"
	"github.com/swimfuse/swimfuse/pkg/flight"
	"github.com/swimfuse/swimfuse/pkg/log"
	"github.com/swimfuse/swimfuse/pkg/sweep"
	"github.com/swimfuse/swimfuse/pkg/util"
)

// Server bundles every store the HTTP surface reads from.
type Server struct {
	Store      *flight.Store
	Airspace   *airspace.Store
	Resolver   *airspace.Resolver
	Gates      *correlate.GateCodeStore
	Hub        *broadcast.Hub
	Counters   *sweep.Counters
	EnrouteTel *util.PathTelemetry
	SurfaceTel *util.PathTelemetry
	Lg         *log.Logger

	startedAt time.Time
}

func NewServer(store *flight.Store, as *airspace.Store, resolver *airspace.Resolver, gates *correlate.GateCodeStore, hub *broadcast.Hub, counters *sweep.Counters, lg *log.Logger) *Server {
	return &Server{
		Store: store, Airspace: as, Resolver: resolver, Gates: gates,
		Hub: hub, Counters: counters, Lg: lg, startedAt: time.Now(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/flights/{id}", s.handleFlight)
		r.Get("/route/{id}", s.handleRoute)

		r.Route("/nasr", func(r chi.Router) {
			r.Get("/status", s.handleNASRStatus)
			r.Get("/find/{id}", s.handleNASRFind)
			r.Get("/airways", s.handleNASRAirways)
			r.Get("/procedures", s.handleNASRProcedures)
			r.Get("/procgeo", s.handleNASRProcGeo)
			r.Get("/navaids", s.handleNASRNavaids)
			r.Get("/airports", s.handleNASRAirports)
			r.Get("/centerlines", s.handleNASRCenterlines)
		})

		r.Route("/asdex", func(r chi.Router) {
			r.Get("/", s.handleASDEXAll)
			r.Get("/{airport}", s.handleASDEXAirport)
			r.Get("/{airport}/gatecodes", s.handleGateCodesGet)
			r.Put("/{airport}/gatecodes", s.handleGateCodesPut)
		})

		r.Route("/tdls", func(r chi.Router) {
			r.Get("/", s.handleTDLSAll)
			r.Get("/{airport}", s.handleTDLSAirport)
			r.Get("/{airport}/{aircraftId}", s.handleTDLSAircraft)
		})

		r.Route("/tais", func(r chi.Router) {
			r.Get("/", s.handleTAISAll)
			r.Get("/{facility}", s.handleTAISFacility)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleHistoryQuery)
			r.Get("/dates", s.handleHistoryDates)
		})

		r.Route("/debug", func(r chi.Router) {
			r.Get("/sample/{source}", s.handleDebugSample)
			r.Get("/paths/{source}", s.handleDebugPaths)
		})

		r.Get("/stream/enroute", s.handleStreamEnroute)
		r.Get("/stream/surface/{airport}", s.handleStreamSurface)
		r.Get("/stream/terminal/{facility}", s.handleStreamTerminal)
		r.Get("/stream/tower/{airport}", s.handleStreamTower)
	})

	return r
}
