// pkg/broadcast/broadcast.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package broadcast implements the subscriber fabric: per-scope
// registries of bounded, drop-oldest channels, a 1 s dirty-flush tick,
// and a staleness sweep that emits explicit deletion messages.
package broadcast

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/swimfuse/swimfuse/pkg/correlate"
	"github.com/swimfuse/swimfuse/pkg/flight"
)

const subscriberChannelCapacity = 512
const flushTick = 1 * time.Second
const enRouteStaleAge = 60 * time.Second

type MessageType string

const (
	TypeSnapshot MessageType = "snapshot"
	TypeBatch    MessageType = "batch"
	TypeUpdate   MessageType = "update"
	TypeRemove   MessageType = "remove"
	TypeStats    MessageType = "stats"
)

// Envelope is the wire-level message shape, identical across scopes
// and transports (WebSocket, NDJSON, downstream protocol).
type Envelope struct {
	Type MessageType `json:"type"`
	Data any         `json:"data"`
}

// Scope identifies one subscription fan-out group.
type Scope struct {
	Kind string // "enroute", "surface", "terminal", "tower", "downstream"
	Key  string // airport/facility id; empty for "enroute"
}

// Subscriber is one connected consumer's bounded outbound channel.
type Subscriber struct {
	ID    string
	Scope Scope
	ch    chan Envelope
}

func (s *Subscriber) Chan() <-chan Envelope { return s.ch }

// send applies drop-oldest backpressure: if the channel is full, the
// oldest queued message is discarded to make room rather than blocking
// the flush tick.
func (s *Subscriber) send(e Envelope) {
	select {
	case s.ch <- e:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- e:
	default:
	}
}

// Hub owns all subscriber registries and drives the flush/staleness
// ticks.
type Hub struct {
	store      *flight.Store
	correlator *correlate.Correlator

	mu   sync.RWMutex
	subs map[string]*Subscriber // subscriber id -> subscriber
	byScope map[Scope]map[string]*Subscriber

	staleWindows map[string]time.Duration // scope kind -> staleness window
}

// SetCorrelator wires the surface-track correlator into the flush
// path; until called, surface batches carry no cross-source
// enrichment.
func (h *Hub) SetCorrelator(c *correlate.Correlator) { h.correlator = c }

func NewHub(store *flight.Store) *Hub {
	return &Hub{
		store:   store,
		subs:    make(map[string]*Subscriber),
		byScope: make(map[Scope]map[string]*Subscriber),
		staleWindows: map[string]time.Duration{
			"enroute":    60 * time.Second,
			"surface":    30 * time.Second,
			"terminal":   30 * time.Second,
			"tower":      60 * time.Second,
			"downstream": 60 * time.Second,
		},
	}
}

// Subscribe registers a new subscriber under scope, sends it an
// immediate filtered snapshot, and returns it for the caller to drain.
func (h *Hub) Subscribe(id string, scope Scope) *Subscriber {
	sub := &Subscriber{ID: id, Scope: scope, ch: make(chan Envelope, subscriberChannelCapacity)}

	h.mu.Lock()
	h.subs[id] = sub
	if h.byScope[scope] == nil {
		h.byScope[scope] = make(map[string]*Subscriber)
	}
	h.byScope[scope][id] = sub
	h.mu.Unlock()

	sub.send(Envelope{Type: TypeSnapshot, Data: h.snapshot(scope)})
	return sub
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	if m := h.byScope[sub.Scope]; m != nil {
		delete(m, id)
	}
	close(sub.ch)
}

// snapshot builds the filtered initial frame for a newly-connecting
// subscriber: records with a position, excluding cancelled, excluding
// records whose last-position age exceeds the en-route staleness
// window (en-route scope only).
func (h *Hub) snapshot(scope Scope) []any {
	var out []any
	now := time.Now()
	switch scope.Kind {
	case "enroute":
		h.store.Flights.Range(func(_ string, rec *flight.FlightRecord) bool {
			rec.Mu.Lock()
			defer rec.Mu.Unlock()
			if !rec.HasPosition || rec.Status == flight.StatusCancelled || rec.Status == flight.StatusPurged {
				return true
			}
			if now.Sub(rec.LastPosition) > enRouteStaleAge {
				return true
			}
			out = append(out, summarizeFlight(rec))
			return true
		})
	case "surface":
		h.store.Surface.Range(func(_ string, trk *flight.SurfaceTrack) bool {
			trk.Mu.Lock()
			defer trk.Mu.Unlock()
			if trk.Airport != scope.Key || trk.Position.IsZero() {
				return true
			}
			out = append(out, summarizeSurface(trk))
			return true
		})
	case "terminal":
		h.store.Terminal.Range(func(_ string, trk *flight.TerminalTrack) bool {
			trk.Mu.Lock()
			defer trk.Mu.Unlock()
			if trk.Facility != scope.Key || trk.Position.IsZero() {
				return true
			}
			out = append(out, summarizeTerminal(trk))
			return true
		})
	case "tower":
		h.store.Tower.Range(func(_ string, ac *flight.TowerAircraft) bool {
			ac.Mu.Lock()
			defer ac.Mu.Unlock()
			if ac.Airport != scope.Key || len(ac.Events) == 0 {
				return true
			}
			out = append(out, summarizeTower(ac))
			return true
		})
	case "downstream":
		h.store.Flights.Range(func(_ string, rec *flight.FlightRecord) bool {
			rec.Mu.Lock()
			defer rec.Mu.Unlock()
			if !rec.HasPosition || rec.Status == flight.StatusCancelled || rec.ControllingFacility != scope.Key {
				return true
			}
			out = append(out, summarizeDownstream(h.store, rec))
			return true
		})
	}
	return out
}

// Run drives the 1 s flush tick and the staleness sweep until ctx is
// cancelled.
func (h *Hub) Run(ctx context.Context) {
	flushT := time.NewTicker(flushTick)
	defer flushT.Stop()
	sweepT := time.NewTicker(10 * time.Second)
	defer sweepT.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-flushT.C:
			h.flush()
		case <-sweepT.C:
			h.sweep()
		}
	}
}

func (h *Hub) flush() {
	for _, id := range h.store.FlightDirty.Drain() {
		rec, ok := h.store.Flights.Get(id)
		if !ok {
			continue
		}
		rec.Mu.Lock()
		summary := summarizeFlight(rec)
		facility := rec.ControllingFacility
		var down DownstreamUpdate
		if facility != "" {
			down = summarizeDownstream(h.store, rec)
		}
		rec.Mu.Unlock()
		h.publish(Scope{Kind: "enroute"}, TypeBatch, []any{summary})
		if facility != "" {
			h.publish(Scope{Kind: "downstream", Key: facility}, TypeUpdate, down)
		}
	}
	if h.correlator != nil {
		h.correlator.MaybeRebuild(time.Now())
	}
	for _, airport := range h.store.AirportDirty.Drain() {
		var batch []any
		h.store.Surface.Range(func(_ string, trk *flight.SurfaceTrack) bool {
			trk.Mu.Lock()
			match := trk.Airport == airport
			trk.Mu.Unlock()
			if !match {
				return true
			}
			if h.correlator != nil {
				h.correlator.Enrich(trk)
			}
			trk.Mu.Lock()
			defer trk.Mu.Unlock()
			batch = append(batch, summarizeSurface(trk))
			return true
		})
		if len(batch) > 0 {
			h.publish(Scope{Kind: "surface", Key: airport}, TypeBatch, batch)
		}
	}
	for _, facility := range h.store.FacilityDirty.Drain() {
		var batch []any
		h.store.Terminal.Range(func(_ string, trk *flight.TerminalTrack) bool {
			trk.Mu.Lock()
			defer trk.Mu.Unlock()
			if trk.Facility == facility {
				batch = append(batch, summarizeTerminal(trk))
			}
			return true
		})
		if len(batch) > 0 {
			h.publish(Scope{Kind: "terminal", Key: facility}, TypeBatch, batch)
		}
	}
	for _, airport := range h.store.TowerDirty.Drain() {
		var batch []any
		h.store.Tower.Range(func(_ string, ac *flight.TowerAircraft) bool {
			ac.Mu.Lock()
			defer ac.Mu.Unlock()
			if ac.Airport == airport {
				batch = append(batch, summarizeTower(ac))
			}
			return true
		})
		if len(batch) > 0 {
			h.publish(Scope{Kind: "tower", Key: airport}, TypeBatch, batch)
		}
	}
}

// sweep emits explicit deletion messages to the enroute scope, and to the
// flight's downstream facility scope, for every flight record idle past
// the enroute staleness window. It does not delete records from the
// store, and surface, terminal and tower records are not swept here.
func (h *Hub) sweep() {
	now := time.Now()
	h.store.Flights.Range(func(id string, rec *flight.FlightRecord) bool {
		rec.Mu.Lock()
		idle := now.Sub(rec.LastSeen) > h.staleWindows["enroute"]
		facility := rec.ControllingFacility
		rec.Mu.Unlock()
		if idle {
			h.publish(Scope{Kind: "enroute"}, TypeRemove, id)
			if facility != "" {
				h.publish(Scope{Kind: "downstream", Key: facility}, TypeRemove, id)
			}
		}
		return true
	})
}

func (h *Hub) publish(scope Scope, t MessageType, data any) {
	env := Envelope{Type: t, Data: data}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.byScope[scope] {
		sub.send(env)
	}
}

// PublishStats broadcasts a stats envelope to every enroute subscriber;
// the sweep package calls this on its 5 s heartbeat.
func (h *Hub) PublishStats(stats any) {
	h.publish(Scope{Kind: "enroute"}, TypeStats, stats)
}

// Encode serializes an envelope as a single JSON line, for the NDJSON
// streaming transport.
func Encode(e Envelope) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
