// pkg/airspace/route.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package airspace

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/swimfuse/swimfuse/pkg/geo"
)

var airwayPattern = regexp.MustCompile(`^[JVQTLMNP]\d+$`)
var frdPattern = regexp.MustCompile(`^([A-Z]{2,5})(\d{3})(\d{3})$`)

// Resolver resolves filed route strings to polylines against one
// Store's active cycle, caching results until the cycle rolls over.
type Resolver struct {
	store *Store

	mu    sync.Mutex
	cache *lru.Cache[string, []geo.Point]
	cycle string
}

func NewResolver(store *Store, cacheSize int) *Resolver {
	c, _ := lru.New[string, []geo.Point](cacheSize)
	return &Resolver{store: store, cache: c}
}

// Resolve returns the polyline for routeText between origin and
// destination, consulting and populating the cache. The cache is
// cleared whenever the active cycle changes underneath it.
func (res *Resolver) Resolve(routeText, origin, destination string) []geo.Point {
	idx := res.store.Active()

	res.mu.Lock()
	if res.cycle != idx.Cycle {
		res.cache.Purge()
		res.cycle = idx.Cycle
	}
	res.mu.Unlock()

	key := origin + ":" + destination + ":" + routeText
	if cached, ok := res.cache.Get(key); ok {
		return cached
	}
	poly := resolveRoute(idx, routeText, origin, destination)
	res.cache.Add(key, poly)
	return poly
}

func resolveRoute(idx *Index, routeText, origin, destination string) []geo.Point {
	var poly []geo.Point
	anchor := geo.Point{}
	lastFix := ""

	if a, ok := idx.AirportByLID(origin); ok {
		poly = append(poly, a.Pos)
		anchor = a.Pos
	} else if a, ok := idx.AirportByICAO(origin); ok {
		poly = append(poly, a.Pos)
		anchor = a.Pos
	}

	tokens := tokenizeRoute(routeText)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok == origin || tok == destination:
			continue

		case airwayPattern.MatchString(tok):
			fixes, ok := idx.Airway(tok)
			if !ok {
				continue
			}
			exit := ""
			if i+1 < len(tokens) {
				exit = tokens[i+1]
			}
			pts, consumed := walkAirway(idx, fixes, anchor, exit)
			poly = append(poly, pts...)
			if len(pts) > 0 {
				anchor = pts[len(pts)-1]
				lastFix = exit
			}
			if consumed {
				i++
			}

		default:
			if p, ok := idx.Point(tok, anchor); ok {
				poly = append(poly, p)
				anchor = p
				lastFix = tok
				continue
			}
			if p, ok := resolveFRD(idx, tok, anchor); ok {
				poly = append(poly, p)
				anchor = p
				lastFix = ""
				continue
			}
			if pts, newAnchor, newFix, ok := resolveProcedureToken(idx, tokens, &i, origin, destination, anchor, lastFix); ok {
				poly = append(poly, pts...)
				anchor = newAnchor
				lastFix = newFix
			}
		}
	}

	if a, ok := idx.AirportByLID(destination); ok {
		poly = append(poly, a.Pos)
	} else if a, ok := idx.AirportByICAO(destination); ok {
		poly = append(poly, a.Pos)
	}
	return poly
}

// tokenizeRoute splits on spaces and dots, dropping "DCT" and bare
// "/", and stripping a trailing speed/altitude qualifier after the
// first slash in a token.
func tokenizeRoute(route string) []string {
	raw := strings.FieldsFunc(route, func(r rune) bool { return r == ' ' || r == '.' })
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if t == "DCT" || t == "/" || t == "" {
			continue
		}
		if i := strings.IndexByte(t, '/'); i >= 0 {
			t = t[:i]
		}
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// walkAirway walks fixes from the one nearest anchor to exit (or to the
// last fix if exit is not found on the airway), returning the points in
// that direction and whether it consumed the exit token.
func walkAirway(idx *Index, fixes []string, anchor geo.Point, exit string) ([]geo.Point, bool) {
	if len(fixes) == 0 {
		return nil, false
	}
	startIdx := nearestFixIndex(idx, fixes, anchor)
	endIdx := len(fixes) - 1
	consumed := false
	for i, f := range fixes {
		if f == exit {
			endIdx = i
			consumed = true
			break
		}
	}

	var pts []geo.Point
	if startIdx <= endIdx {
		for i := startIdx; i <= endIdx; i++ {
			if p, ok := idx.Point(fixes[i], anchor); ok {
				pts = append(pts, p)
			}
		}
	} else {
		for i := startIdx; i >= endIdx; i-- {
			if p, ok := idx.Point(fixes[i], anchor); ok {
				pts = append(pts, p)
			}
		}
	}
	return pts, consumed
}

func nearestFixIndex(idx *Index, fixes []string, anchor geo.Point) int {
	best, bestDist := 0, -1.0
	for i, f := range fixes {
		p, ok := idx.Point(f, anchor)
		if !ok {
			continue
		}
		d := geo.NMDistanceSqApprox(anchor, p)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// resolveFRD parses a fix-radial-distance token, e.g. "ABC123456"
// (navaid ABC, radial 123, distance 456 NM), projecting it along a
// great circle from the navaid.
func resolveFRD(idx *Index, tok string, anchor geo.Point) (geo.Point, bool) {
	m := frdPattern.FindStringSubmatch(tok)
	if m == nil {
		return geo.Point{}, false
	}
	navaid, radialStr, distStr := m[1], m[2], m[3]
	base, ok := idx.Point(navaid, anchor)
	if !ok {
		return geo.Point{}, false
	}
	radial, err1 := strconv.Atoi(radialStr)
	dist, err2 := strconv.Atoi(distStr)
	if err1 != nil || err2 != nil {
		return geo.Point{}, false
	}
	return geo.Offset(base, float64(radial), float64(dist)), true
}

// resolveProcedureToken handles a SID/STAR token, mutating *i past any
// transition-endpoint token it consumes. It returns the points to
// append, the new anchor, and the name of the last fix plotted.
func resolveProcedureToken(idx *Index, tokens []string, i *int, origin, destination string, anchor geo.Point, lastFix string) ([]geo.Point, geo.Point, string, bool) {
	tok := tokens[*i]
	procs := idx.Procedure(tok)
	if len(procs) == 0 {
		return nil, anchor, lastFix, false
	}
	var pd *ProcedureDefinition
	for _, p := range procs {
		if p.Airport == origin || p.Airport == destination {
			pd = p
			break
		}
	}
	if pd == nil {
		pd = procs[0]
	}

	var pts []geo.Point
	newFix := lastFix
	switch pd.Type {
	case ProcedureSTAR:
		if tname, ok := pd.ByEndpoint[lastFix]; ok {
			if fixes := pd.Transitions[tname]; len(fixes) > 1 {
				pts = append(pts, resolveFixList(idx, fixes[1:], &anchor, &newFix)...)
			}
		}
		pts = append(pts, resolveFixList(idx, pd.Body, &anchor, &newFix)...)
	case ProcedureSID:
		nextIsTransition := false
		if *i+1 < len(tokens) {
			if _, ok := pd.Transitions[tokens[*i+1]]; ok {
				nextIsTransition = true
			}
		}
		bodyStart := 0
		for idx2, fix := range pd.Body {
			if fix == lastFix {
				bodyStart = idx2 + 1
				continue
			}
			if p, ok := idx.Point(fix, anchor); ok && geo.NMDistance(p, anchor) < 1.0 {
				bodyStart = idx2 + 1
			}
		}
		pts = append(pts, resolveFixList(idx, pd.Body[bodyStart:], &anchor, &newFix)...)
		if nextIsTransition {
			*i++
			pts = append(pts, resolveFixList(idx, pd.Transitions[tokens[*i]], &anchor, &newFix)...)
		}
	}

	return pts, anchor, newFix, true
}

func resolveFixList(idx *Index, fixes []string, anchor *geo.Point, lastFix *string) []geo.Point {
	var pts []geo.Point
	for _, f := range fixes {
		if p, ok := idx.Point(f, *anchor); ok {
			pts = append(pts, p)
			*anchor = p
			*lastFix = f
		}
	}
	return pts
}
