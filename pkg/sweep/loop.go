// pkg/sweep/loop.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sweep

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/swimfuse/swimfuse/pkg/broadcast"
	"github.com/swimfuse/swimfuse/pkg/flight"
	"github.com/swimfuse/swimfuse/pkg/log"
)

const (
	warmCacheInterval  = 5 * time.Minute
	sizeBudgetInterval = 1 * time.Hour
	statsInterval      = 5 * time.Second
	silenceCheckInterval = 60 * time.Second
	silenceWarnThreshold = 60 * time.Second
	pointOutTTL        = 3 * time.Minute
	purgeSweepInterval = 30 * time.Second
	defaultPurgeIdleAfter = 60 * time.Minute
)

// BrokerStatus is the narrow view of a broker session the heartbeat
// needs: connected flag and how long it has been silent.
type BrokerStatus interface {
	Connected() bool
	SilentFor() time.Duration
}

// Stats is the global counters published on the 5 s heartbeat.
type Stats struct {
	Connected      bool          `json:"connected"`
	TotalMessages  int64         `json:"totalMessages"`
	RatePerSecond  float64       `json:"ratePerSecond"`
	ElapsedSeconds float64       `json:"elapsedSeconds"`
	ActiveFlights  int           `json:"activeFlights"`
}

// Counters is shared, atomically-updated message counting state fed
// by the decode pipeline.
type Counters struct {
	Total atomic.Int64
	start time.Time
	last  atomic.Int64
}

func NewCounters() *Counters {
	return &Counters{start: time.Now()}
}

func (c *Counters) Inc() { c.Total.Add(1) }

// Loop owns the sweep package's background jobs: warm-cache save,
// archive size-budget enforcement, purge/point-out expiry, and the
// stats/silence heartbeats.
type Loop struct {
	store    *flight.Store
	hub      *broadcast.Hub
	archive  *Archive
	counters *Counters
	cacheDir string
	archiveDir string
	sizeBudget int64
	idleAfter  time.Duration
	brokers  []BrokerStatus
	lg       *log.Logger
}

func NewLoop(store *flight.Store, hub *broadcast.Hub, archive *Archive, counters *Counters, cacheDir, archiveDir string, sizeBudget int64, idleAfter time.Duration, brokers []BrokerStatus, lg *log.Logger) *Loop {
	if idleAfter <= 0 {
		idleAfter = defaultPurgeIdleAfter
	}
	return &Loop{
		store: store, hub: hub, archive: archive, counters: counters,
		cacheDir: cacheDir, archiveDir: archiveDir, sizeBudget: sizeBudget,
		idleAfter: idleAfter, brokers: brokers, lg: lg,
	}
}

// Run drives all the periodic jobs until ctx is cancelled, saving the
// warm cache one last time before returning.
func (l *Loop) Run(ctx context.Context) {
	cacheT := time.NewTicker(warmCacheInterval)
	defer cacheT.Stop()
	budgetT := time.NewTicker(sizeBudgetInterval)
	defer budgetT.Stop()
	statsT := time.NewTicker(statsInterval)
	defer statsT.Stop()
	silenceT := time.NewTicker(silenceCheckInterval)
	defer silenceT.Stop()
	purgeT := time.NewTicker(purgeSweepInterval)
	defer purgeT.Stop()

	for {
		select {
		case <-ctx.Done():
			Save(l.store, CachePath(l.cacheDir), l.lg)
			return
		case <-cacheT.C:
			Save(l.store, CachePath(l.cacheDir), l.lg)
		case <-budgetT.C:
			EnforceSizeBudget(l.archiveDir, l.sizeBudget, time.Now(), l.lg)
		case <-statsT.C:
			l.publishStats()
		case <-silenceT.C:
			l.checkSilence()
		case <-purgeT.C:
			l.purgeSweep()
		}
	}
}

func (l *Loop) publishStats() {
	var active int
	l.store.Flights.Range(func(_ string, rec *flight.FlightRecord) bool {
		rec.Mu.Lock()
		if rec.Status == flight.StatusActive {
			active++
		}
		rec.Mu.Unlock()
		return true
	})

	connected := false
	for _, b := range l.brokers {
		if b.Connected() {
			connected = true
			break
		}
	}

	elapsed := time.Since(l.counters.start).Seconds()
	total := l.counters.Total.Load()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(total) / elapsed
	}

	l.hub.PublishStats(Stats{
		Connected:      connected,
		TotalMessages:  total,
		RatePerSecond:  rate,
		ElapsedSeconds: elapsed,
		ActiveFlights:  active,
	})
}

func (l *Loop) checkSilence() {
	for _, b := range l.brokers {
		if b.SilentFor() > silenceWarnThreshold {
			l.lg.Warnf("sweep: broker session silent for %s", b.SilentFor())
		}
	}
}

// purgeSweep expires overdue point-outs and purges flight records
// that have gone idle, archiving their event history.
func (l *Loop) purgeSweep() {
	now := time.Now()
	var toPurge []string

	l.store.Flights.Range(func(id string, rec *flight.FlightRecord) bool {
		rec.Mu.Lock()
		flight.ExpirePointOut(rec, now, pointOutTTL)
		idle := now.Sub(rec.LastSeen) > l.idleAfter
		eligible := rec.Status == flight.StatusActive || rec.Status == flight.StatusDropped
		rec.Mu.Unlock()
		if idle && eligible {
			toPurge = append(toPurge, id)
		}
		return true
	})

	for _, id := range toPurge {
		rec, ok := l.store.Flights.Get(id)
		if !ok {
			continue
		}
		rec.Mu.Lock()
		callsign := rec.Callsign
		archived := flight.Purge(rec)
		rec.Mu.Unlock()
		if archived == nil {
			continue
		}
		if err := l.archive.Append(id, callsign, archived, now); err != nil {
			continue
		}
		l.store.Flights.Delete(id)
	}
}
