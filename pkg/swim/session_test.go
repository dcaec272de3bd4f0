// pkg/swim/session_test.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package swim

import (
	"testing"
	"time"
)

func TestTopicAllowedNoFilter(t *testing.T) {
	s := NewSession("test", Config{}, nil, func(Message) {})
	if !s.topicAllowed("SMES/KJFK/position") {
		t.Fatal("expected every topic to pass with no configured prefixes")
	}
}

func TestTopicAllowedWithPrefixes(t *testing.T) {
	cfg := Config{TopicPfx: []string{"SMES/", "TAIS/"}}
	s := NewSession("test", cfg, nil, func(Message) {})

	cases := []struct {
		topic string
		want  bool
	}{
		{"SMES/KJFK/position", true},
		{"TAIS/N90/track", true},
		{"TDES/KBOS/departure", false},
		{"", false},
	}
	for _, c := range cases {
		if got := s.topicAllowed(c.topic); got != c.want {
			t.Errorf("topicAllowed(%q) = %v, want %v", c.topic, got, c.want)
		}
	}
}

func TestSessionConnectedDefaultsFalse(t *testing.T) {
	s := NewSession("test", Config{}, nil, func(Message) {})
	if s.Connected() {
		t.Fatal("expected a freshly constructed session to report disconnected")
	}
}

func TestSessionSilentForStartsNearZero(t *testing.T) {
	s := NewSession("test", Config{}, nil, func(Message) {})
	if s.SilentFor() > time.Second {
		t.Fatalf("expected silence to start near zero, got %s", s.SilentFor())
	}
}
