// pkg/flight/store.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

import (
	"hash/maphash"
	"sync"
)

const shardCount = 32

// shardedMap is a fixed-shard-count concurrent map: each shard owns its
// own mutex, so readers/writers on different keys never contend. No
// corpus repo reaches for a concurrent-map library, so this follows the
// common habit of hand-rolling small concurrency primitives.
type shardedMap[V any] struct {
	seed   maphash.Seed
	shards [shardCount]shard[V]
}

type shard[V any] struct {
	mu sync.RWMutex
	m  map[string]V
}

func newShardedMap[V any]() *shardedMap[V] {
	sm := &shardedMap[V]{seed: maphash.MakeSeed()}
	for i := range sm.shards {
		sm.shards[i].m = make(map[string]V)
	}
	return sm
}

func (sm *shardedMap[V]) shardFor(key string) *shard[V] {
	var h maphash.Hash
	h.SetSeed(sm.seed)
	h.WriteString(key)
	return &sm.shards[h.Sum64()%shardCount]
}

func (sm *shardedMap[V]) Get(key string) (V, bool) {
	s := sm.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

// GetOrCreate returns the existing value for key, or creates and stores
// one via make, atomically with respect to other callers on this shard.
func (sm *shardedMap[V]) GetOrCreate(key string, make func() V) (V, bool) {
	s := sm.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.m[key]; ok {
		return v, false
	}
	v := make()
	s.m[key] = v
	return v, true
}

func (sm *shardedMap[V]) Delete(key string) {
	s := sm.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

func (sm *shardedMap[V]) Len() int {
	n := 0
	for i := range sm.shards {
		sm.shards[i].mu.RLock()
		n += len(sm.shards[i].m)
		sm.shards[i].mu.RUnlock()
	}
	return n
}

// Range calls f for every entry across all shards. f must not mutate the
// store.
func (sm *shardedMap[V]) Range(f func(key string, v V) bool) {
	for i := range sm.shards {
		sm.shards[i].mu.RLock()
		for k, v := range sm.shards[i].m {
			if !f(k, v) {
				sm.shards[i].mu.RUnlock()
				return
			}
		}
		sm.shards[i].mu.RUnlock()
	}
}

// dirtySet is a concurrent set of string keys, drained atomically.
type dirtySet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newDirtySet() *dirtySet {
	return &dirtySet{keys: make(map[string]struct{})}
}

func (d *dirtySet) Mark(key string) {
	d.mu.Lock()
	d.keys[key] = struct{}{}
	d.mu.Unlock()
}

// Drain returns and clears the current key set.
func (d *dirtySet) Drain() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.keys) == 0 {
		return nil
	}
	out := make([]string, 0, len(d.keys))
	for k := range d.keys {
		out = append(out, k)
	}
	d.keys = make(map[string]struct{})
	return out
}

// Store owns the four concurrent record maps and their dirty sets.
type Store struct {
	Flights  *shardedMap[*FlightRecord]
	Surface  *shardedMap[*SurfaceTrack]
	Terminal *shardedMap[*TerminalTrack]
	Tower    *shardedMap[*TowerAircraft]

	FlightDirty  *dirtySet // keyed by flight id
	AirportDirty *dirtySet // keyed by airport (surface scope)
	FacilityDirty *dirtySet // keyed by facility (terminal scope)
	TowerDirty   *dirtySet // keyed by airport (tower scope)

	guids *shardedMap[string] // identity key (mode-s hex or flight id) -> minted GUID
}

func NewStore() *Store {
	return &Store{
		Flights:       newShardedMap[*FlightRecord](),
		Surface:       newShardedMap[*SurfaceTrack](),
		Terminal:      newShardedMap[*TerminalTrack](),
		Tower:         newShardedMap[*TowerAircraft](),
		FlightDirty:   newDirtySet(),
		AirportDirty:  newDirtySet(),
		FacilityDirty: newDirtySet(),
		TowerDirty:    newDirtySet(),
		guids:         newShardedMap[string](),
	}
}

func surfaceKey(airport, trackID string) string  { return airport + "\x00" + trackID }
func terminalKey(facility, trackNum string) string { return facility + "\x00" + trackNum }
func towerKey(airport, aircraftID string) string { return airport + "\x00" + aircraftID }

func (s *Store) GetOrCreateFlight(id string) (*FlightRecord, bool) {
	return s.Flights.GetOrCreate(id, func() *FlightRecord { return NewFlightRecord(id) })
}

func (s *Store) GetOrCreateSurface(airport, trackID string) (*SurfaceTrack, bool) {
	return s.Surface.GetOrCreate(surfaceKey(airport, trackID), func() *SurfaceTrack {
		return NewSurfaceTrack(airport, trackID)
	})
}

func (s *Store) GetOrCreateTerminal(facility, trackNum string) (*TerminalTrack, bool) {
	return s.Terminal.GetOrCreate(terminalKey(facility, trackNum), func() *TerminalTrack {
		return NewTerminalTrack(facility, trackNum)
	})
}

func (s *Store) GetOrCreateTower(airport, aircraftID string) (*TowerAircraft, bool) {
	return s.Tower.GetOrCreate(towerKey(airport, aircraftID), func() *TowerAircraft {
		return NewTowerAircraft(airport, aircraftID)
	})
}

// GUIDFor mints a stable GUID on first sight of the given identity key,
// for the downstream scope-display protocol. Its caller keys a flight by
// its Mode-S hex, or by its flight record id when no hex is known; no
// facility+track-number key is used.
func (s *Store) GUIDFor(key string) string {
	if g, ok := s.guids.Get(key); ok {
		return g
	}
	g, _ := s.guids.GetOrCreate(key, func() string { return newGUID() })
	return g
}
