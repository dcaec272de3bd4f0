// pkg/util/telemetry.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import "sync"

const maxTelemetryPaths = 2000
const maxSamplesPerSource = 8

// PathTelemetry records every distinct XML element path and attribute
// name a decoder has seen, plus a handful of raw sample payloads per
// source tag. It exists so an operator can answer "what does this feed
// actually send us" without guessing, while a hostile or malformed feed
// can't grow it without bound: once maxTelemetryPaths is reached, new
// paths are silently dropped (existing ones still get counted).
type PathTelemetry struct {
	mu      sync.Mutex
	paths   map[string]int64
	samples map[string][]string
}

func NewPathTelemetry() *PathTelemetry {
	return &PathTelemetry{paths: make(map[string]int64), samples: make(map[string][]string)}
}

func (p *PathTelemetry) NotePath(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.paths[path]; !ok && len(p.paths) >= maxTelemetryPaths {
		return
	}
	p.paths[path]++
}

func (p *PathTelemetry) NoteSample(source, payload string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.samples[source]
	if len(s) >= maxSamplesPerSource {
		return
	}
	p.samples[source] = append(s, payload)
}

func (p *PathTelemetry) Paths() map[string]int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return DuplicateMap(p.paths)
}

func (p *PathTelemetry) Samples(source string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.samples[source]...)
}

func DuplicateMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
