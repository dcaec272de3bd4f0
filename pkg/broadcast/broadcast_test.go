// pkg/broadcast/broadcast_test.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package broadcast

import (
	"testing"
	"time"

	"github.com/swimfuse/swimfuse/pkg/flight"
)

func TestSnapshotFiltersEnrouteByPositionAndStatus(t *testing.T) {
	store := flight.NewStore()

	withPos, _ := store.GetOrCreateFlight("FL1")
	withPos.HasPosition = true
	withPos.LastPosition = time.Now()

	noPos, _ := store.GetOrCreateFlight("FL2")
	noPos.HasPosition = false

	cancelled, _ := store.GetOrCreateFlight("FL3")
	cancelled.HasPosition = true
	cancelled.Status = flight.StatusCancelled
	cancelled.LastPosition = time.Now()

	stale, _ := store.GetOrCreateFlight("FL4")
	stale.HasPosition = true
	stale.LastPosition = time.Now().Add(-2 * time.Minute)

	hub := NewHub(store)
	out := hub.snapshot(Scope{Kind: "enroute"})
	if len(out) != 1 {
		t.Fatalf("expected exactly one surviving record, got %d: %+v", len(out), out)
	}
}

func TestSnapshotFiltersSurfaceByAirportAndPosition(t *testing.T) {
	store := flight.NewStore()

	match, _ := store.GetOrCreateSurface("KBOS", "T1")
	match.Position.Lat = 42.3

	noPos, _ := store.GetOrCreateSurface("KBOS", "T2")

	otherAirport, _ := store.GetOrCreateSurface("KJFK", "T3")
	otherAirport.Position.Lat = 40.6

	_ = noPos

	hub := NewHub(store)
	out := hub.snapshot(Scope{Kind: "surface", Key: "KBOS"})
	if len(out) != 1 {
		t.Fatalf("expected one KBOS surface track with a position, got %d", len(out))
	}
}

func TestSubscribeSendsImmediateSnapshot(t *testing.T) {
	store := flight.NewStore()
	rec, _ := store.GetOrCreateFlight("FL1")
	rec.HasPosition = true
	rec.LastPosition = time.Now()

	hub := NewHub(store)
	sub := hub.Subscribe("sub1", Scope{Kind: "enroute"})
	defer hub.Unsubscribe("sub1")

	select {
	case env := <-sub.Chan():
		if env.Type != TypeSnapshot {
			t.Fatalf("expected a snapshot envelope first, got %v", env.Type)
		}
	default:
		t.Fatal("expected an immediate snapshot to be queued")
	}
}

func TestSubscriberSendDropsOldestUnderBackpressure(t *testing.T) {
	sub := &Subscriber{ID: "sub", ch: make(chan Envelope, subscriberChannelCapacity)}

	for i := 0; i < subscriberChannelCapacity; i++ {
		sub.send(Envelope{Type: TypeUpdate, Data: i})
	}
	// One more push should evict the oldest (0) rather than block.
	sub.send(Envelope{Type: TypeUpdate, Data: subscriberChannelCapacity})

	if len(sub.ch) != subscriberChannelCapacity {
		t.Fatalf("expected the channel to stay at capacity %d, got %d", subscriberChannelCapacity, len(sub.ch))
	}
	first := <-sub.ch
	if first.Data != 1 {
		t.Fatalf("expected the oldest entry (0) to have been dropped, first remaining is %v", first.Data)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	store := flight.NewStore()
	hub := NewHub(store)
	sub := hub.Subscribe("sub1", Scope{Kind: "enroute"})
	<-sub.Chan() // drain the initial snapshot

	hub.Unsubscribe("sub1")
	if _, ok := <-sub.Chan(); ok {
		t.Fatal("expected the subscriber channel to be closed after Unsubscribe")
	}
}

func TestPublishOnlyReachesMatchingScope(t *testing.T) {
	store := flight.NewStore()
	hub := NewHub(store)

	bos := hub.Subscribe("bos", Scope{Kind: "surface", Key: "KBOS"})
	jfk := hub.Subscribe("jfk", Scope{Kind: "surface", Key: "KJFK"})
	<-bos.Chan()
	<-jfk.Chan()

	hub.publish(Scope{Kind: "surface", Key: "KBOS"}, TypeBatch, []any{"x"})

	select {
	case env := <-bos.Chan():
		if env.Type != TypeBatch {
			t.Fatalf("expected a batch envelope, got %v", env.Type)
		}
	default:
		t.Fatal("expected the KBOS subscriber to receive the publish")
	}
	select {
	case env := <-jfk.Chan():
		t.Fatalf("expected the KJFK subscriber to receive nothing, got %+v", env)
	default:
	}
}
