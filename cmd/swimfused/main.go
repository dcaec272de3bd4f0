// cmd/swimfused/main.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// swimfused wires the broker sessions, decoders, state merge engine,
// enrichment/correlation layers, subscriber fabric, and REST surface
// into one running service.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/swimfuse/swimfuse/pkg/airspace"
	"github.com/swimfuse/swimfuse/pkg/broadcast"
	"github.com/swimfuse/swimfuse/pkg/config"
	"github.com/swimfuse/swimfuse/pkg/correlate"
	"github.com/swimfuse/swimfuse/pkg/decode"
	"github.com/swimfuse/swimfuse/pkg/enrich"
	"github.com/swimfuse/swimfuse/pkg/flight"
	"github.com/swimfuse/swimfuse/pkg/httpapi"
	"github.com/swimfuse/swimfuse/pkg/log"
	"github.com/swimfuse/swimfuse/pkg/sweep"
	"github.com/swimfuse/swimfuse/pkg/swim"
	"github.com/swimfuse/swimfuse/pkg/util"
)

var configPath = flag.String("config", "", "path to a TOML configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "swimfused: %v\n", err)
		os.Exit(1)
	}

	lg := log.New(cfg.LogLevel, cfg.LogDir)
	lg.Infof("swimfused starting")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store := flight.NewStore()
	if err := sweep.Load(store, sweep.CachePath(cfg.CacheDir), lg); err != nil {
		lg.Warnf("warm cache load: %v", err)
	}

	gates := correlate.NewGateCodeStore(cfg.GateCodesPath)
	if err := gates.Load(); err != nil {
		lg.Warnf("gate codes load: %v", err)
	}

	airspaceStore := airspace.NewStore()
	loader := airspace.NewLoader(cfg.AirspaceBaseURL, cfg.AirspaceDataDir, lg)
	if idx, err := loader.Load(ctx, time.Now()); err != nil {
		lg.Errorf("airspace cycle load: %v", err)
	} else {
		airspaceStore.Swap(idx)
		lg.Infof("airspace cycle %s loaded", idx.Cycle)
	}
	resolver := airspace.NewResolver(airspaceStore, 4096)

	enRouteTel := util.NewPathTelemetry()
	surfaceTel := util.NewPathTelemetry()

	hub := broadcast.NewHub(store)
	correlator := correlate.New(store, gates)
	hub.SetCorrelator(correlator)

	counters := sweep.NewCounters()
	archive := sweep.NewArchive(cfg.ArchiveDir, lg)

	enRouteSession := swim.NewSession("enroute", swim.Config{
		Host: cfg.EnRoute.Host, VPN: cfg.EnRoute.VPN, User: cfg.EnRoute.User,
		Pass: cfg.EnRoute.Pass, Queue: cfg.EnRoute.Queue,
	}, lg, func(m swim.Message) {
		onEnRouteMessage(store, counters, enRouteTel, lg, m)
	})

	terminalSession := swim.NewSession("terminal", swim.Config{
		Host: cfg.Terminal.Host, VPN: cfg.Terminal.VPN, User: cfg.Terminal.User,
		Pass: cfg.Terminal.Pass, Queue: cfg.Terminal.Queue,
		TopicPfx: []string{"SMES/", "TAIS/", "TDES/"},
	}, lg, func(m swim.Message) {
		onTerminalMessage(store, counters, surfaceTel, lg, m)
	})

	adsbClient := enrich.NewClient(cfg.ADSBBaseURL, lg)
	enrichLoop := enrich.NewLoop(adsbClient, store, flight.StorePublisher{Store: store}, cfg.Regions(), cfg.Coverage(), lg)

	sweepLoop := sweep.NewLoop(store, hub, archive, counters, cfg.CacheDir, cfg.ArchiveDir, cfg.SizeBudgetBytes,
		time.Duration(cfg.PurgeIdleAfterMinutes)*time.Minute,
		[]sweep.BrokerStatus{enRouteSession, terminalSession}, lg)

	server := httpapi.NewServer(store, airspaceStore, resolver, gates, hub, counters, lg)
	server.EnrouteTel = enRouteTel
	server.SurfaceTel = surfaceTel

	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: server.Router()}

	go enRouteSession.Run(ctx)
	go terminalSession.Run(ctx)
	go enrichLoop.Run(ctx)
	go hub.Run(ctx)
	go sweepLoop.Run(ctx)
	go runAirspaceRefresh(ctx, loader, airspaceStore, lg)

	go func() {
		lg.Infof("http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Errorf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	lg.Infof("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	if err := sweep.Save(store, sweep.CachePath(cfg.CacheDir), lg); err != nil {
		lg.Errorf("final warm cache save: %v", err)
	}
	if err := gates.Save(); err != nil {
		lg.Errorf("final gate codes save: %v", err)
	}
}

func onEnRouteMessage(store *flight.Store, counters *sweep.Counters, tel *util.PathTelemetry, lg *log.Logger, m swim.Message) {
	defer lg.CatchAndReportCrash()
	counters.Inc()
	updates, err := decode.DecodeEnRoute(string(m.Payload), decode.NewTelemetry(tel))
	if err != nil {
		lg.Debugf("enroute decode: %v", err)
		return
	}
	for _, u := range updates {
		store.Ingest(u)
	}
}

func onTerminalMessage(store *flight.Store, counters *sweep.Counters, tel *util.PathTelemetry, lg *log.Logger, m swim.Message) {
	defer lg.CatchAndReportCrash()
	counters.Inc()
	t := decode.NewTelemetry(tel)
	switch {
	case strings.HasPrefix(m.Topic, "SMES/"):
		airport := topicAirport(m.Topic)
		u, err := decode.DecodeSurface(airport, string(m.Payload), t)
		if err != nil {
			lg.Debugf("surface decode: %v", err)
			return
		}
		if u != nil {
			store.IngestSurface(u)
		}
	case strings.HasPrefix(m.Topic, "TAIS/"):
		updates, err := decode.DecodeSTARS(string(m.Payload), t)
		if err != nil {
			lg.Debugf("stars decode: %v", err)
			return
		}
		for _, u := range updates {
			store.IngestTerminal(u)
		}
	case strings.HasPrefix(m.Topic, "TDES/"):
		airport := topicAirport(m.Topic)
		tp, err := decode.DecodeTower(airport, string(m.Payload), t)
		if err != nil {
			lg.Debugf("tower decode: %v", err)
			return
		}
		if tp != nil {
			store.IngestTower(tp.Airport, tp.AircraftID, tp.Event)
		}
	default:
		lg.Debugf("terminal message with unrecognized topic %s", m.Topic)
	}
}

// topicAirport extracts the airport code from a topic of the form
// "SMES/KJFK/..." or "TDES/KJFK/...".
func topicAirport(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

const airspaceRefreshCheck = 1 * time.Hour

// runAirspaceRefresh polls for a new AIRAC cycle once an hour and swaps
// the active index in place when one becomes available; a failed
// refresh leaves the previous cycle serving.
func runAirspaceRefresh(ctx context.Context, loader *airspace.Loader, store *airspace.Store, lg *log.Logger) {
	t := time.NewTicker(airspaceRefreshCheck)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			idx, err := loader.Load(ctx, time.Now())
			if err != nil {
				lg.Warnf("airspace cycle refresh: %v", err)
				continue
			}
			if idx.Cycle != store.Active().Cycle {
				store.Swap(idx)
				lg.Infof("airspace cycle %s active", idx.Cycle)
			}
		}
	}
}
