// pkg/airspace/lookup.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package airspace

import "github.com/swimfuse/swimfuse/pkg/geo"

// Navaid returns the navaid nearest anchor among all sharing id, or the
// sole candidate if there is exactly one.
func (idx *Index) Navaid(id string, anchor geo.Point) (Navaid, bool) {
	cands := idx.navaids[id]
	if len(cands) == 0 {
		return Navaid{}, false
	}
	best := 0
	if len(cands) > 1 {
		pts := make([]geo.Point, len(cands))
		for i, c := range cands {
			pts[i] = c.Pos
		}
		best = geo.Nearest(anchor, pts)
	}
	return cands[best], true
}

func (idx *Index) Fix(id string, anchor geo.Point) (Fix, bool) {
	cands := idx.fixes[id]
	if len(cands) == 0 {
		return Fix{}, false
	}
	best := 0
	if len(cands) > 1 {
		pts := make([]geo.Point, len(cands))
		for i, c := range cands {
			pts[i] = c.Pos
		}
		best = geo.Nearest(anchor, pts)
	}
	return cands[best], true
}

func (idx *Index) AirportByLID(lid string) (Airport, bool) {
	a, ok := idx.byLID[lid]
	return a, ok
}

func (idx *Index) AirportByICAO(icao string) (Airport, bool) {
	a, ok := idx.byICAO[icao]
	return a, ok
}

// Point resolves id to a position by trying navaid, then fix, then
// airport (LID, then ICAO), nearest to anchor when several candidates
// of the same kind exist.
func (idx *Index) Point(id string, anchor geo.Point) (geo.Point, bool) {
	if n, ok := idx.Navaid(id, anchor); ok {
		return n.Pos, true
	}
	if f, ok := idx.Fix(id, anchor); ok {
		return f.Pos, true
	}
	if a, ok := idx.AirportByLID(id); ok {
		return a.Pos, true
	}
	if a, ok := idx.AirportByICAO(id); ok {
		return a.Pos, true
	}
	return geo.Point{}, false
}

func (idx *Index) Airway(id string) ([]string, bool) {
	fixes, ok := idx.airways[id]
	return fixes, ok
}

// Procedure returns the procedure instances registered under name,
// typically filtered further by the caller on Airport/Type.
func (idx *Index) Procedure(name string) []*ProcedureDefinition {
	return idx.procs[name]
}

// ProceduresForAirport returns every SID/STAR registered at the given
// airport LID/ICAO, for the procedures-by-airport REST listing.
func (idx *Index) ProceduresForAirport(airport string) []*ProcedureDefinition {
	return idx.byAirport[airport]
}

func (idx *Index) Overlay() []Airport { return idx.overlay }

func (idx *Index) Centerlines() []CenterlineSegment { return idx.centerlines }
