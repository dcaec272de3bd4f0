// pkg/correlate/gatecodes.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package correlate

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/swimfuse/swimfuse/pkg/util"
)

// GateCodeStore holds one persisted pattern map per airport: each
// entry maps a whitespace-separated token pattern to a short gate
// code, loaded from and saved to a single JSON file.
type GateCodeStore struct {
	path string

	mu      sync.RWMutex
	patterns map[string]map[string]string // airport -> pattern -> code
}

func NewGateCodeStore(path string) *GateCodeStore {
	return &GateCodeStore{path: path, patterns: make(map[string]map[string]string)}
}

func (g *GateCodeStore) Load() error {
	data, err := os.ReadFile(g.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read gate codes: %w", err)
	}
	var m map[string]map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse gate codes: %w", err)
	}
	g.mu.Lock()
	g.patterns = m
	g.mu.Unlock()
	return nil
}

func (g *GateCodeStore) Save() error {
	g.mu.RLock()
	data, err := json.MarshalIndent(g.patterns, "", "  ")
	g.mu.RUnlock()
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(g.path, data, 0o644)
}

func (g *GateCodeStore) Get(airport string) map[string]string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return util.DuplicateMap(g.patterns[airport])
}

func (g *GateCodeStore) Put(airport string, patterns map[string]string) {
	g.mu.Lock()
	g.patterns[airport] = patterns
	g.mu.Unlock()
}

// Derive produces a short gate code for routeText at airport using the
// persisted pattern map, falling back to a truncated FAA LID of airport
// itself when nothing matches; no destination is consulted. Patterns are
// held in a map, so when more than one matches, which pattern's code is
// returned is not defined.
func (g *GateCodeStore) Derive(airport, routeText string) string {
	tokens := routeTokenSet(routeText)

	g.mu.RLock()
	patterns := g.patterns[airport]
	g.mu.RUnlock()

	for pattern, code := range patterns {
		if patternMatches(pattern, tokens) {
			return code
		}
	}
	return faaLIDFallback(airport)
}

// routeTokenSet builds the set of route tokens, indexing each one both
// as written and with its trailing digits stripped, e.g. "RNAV5" indexes
// as "RNAV5" and "RNAV", and "FL350" as "FL350" and "FL".
func routeTokenSet(routeText string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(routeText) {
		set[stripTrailingDigits(tok)] = true
		set[tok] = true
	}
	return set
}

func stripTrailingDigits(tok string) string {
	i := len(tok)
	for i > 0 && tok[i-1] >= '0' && tok[i-1] <= '9' {
		i--
	}
	return tok[:i]
}

// patternMatches reports whether every whitespace-separated token of
// pattern appears in tokens; a trailing '#' on a pattern token matches
// the token with its trailing digits stripped.
func patternMatches(pattern string, tokens map[string]bool) bool {
	for _, ptok := range strings.Fields(pattern) {
		if strings.HasSuffix(ptok, "#") {
			base := strings.TrimSuffix(ptok, "#")
			if !tokens[base] {
				return false
			}
			continue
		}
		if !tokens[ptok] {
			return false
		}
	}
	return true
}

// faaLIDFallback strips a leading K or P from a 4-letter ICAO-style
// airport code to approximate the domestic FAA LID.
func faaLIDFallback(code string) string {
	code = strings.ToUpper(code)
	if len(code) == 4 && (code[0] == 'K' || code[0] == 'P') {
		return code[1:]
	}
	return code
}
