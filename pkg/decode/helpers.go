// pkg/decode/helpers.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package decode

import (
	"strconv"
	"strings"
	"time"

	"github.com/swimfuse/swimfuse/pkg/geo"
	"github.com/swimfuse/swimfuse/pkg/util"
)

// Telemetry receives a note for every element path visited and a sample
// of the raw payload per source tag, bounded internally. A nil
// Telemetry is accepted and simply does nothing, so tests don't need to
// wire one up.
type Telemetry struct {
	paths *util.PathTelemetry
}

func NewTelemetry(paths *util.PathTelemetry) *Telemetry { return &Telemetry{paths: paths} }

func (t *Telemetry) note(path string) {
	if t == nil || t.paths == nil {
		return
	}
	t.paths.NotePath(path)
}

func (t *Telemetry) sample(source, payload string) {
	if t == nil || t.paths == nil {
		return
	}
	t.paths.NoteSample(source, payload)
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	return v, err == nil
}

// parseLatLon parses a "lat lon" pair as found in the en-route pos
// element, space separated, decimal degrees.
func parseLatLon(s string) (geo.Point, bool) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return geo.Point{}, false
	}
	lat, ok1 := parseFloat(parts[0])
	lon, ok2 := parseFloat(parts[1])
	if !ok1 || !ok2 {
		return geo.Point{}, false
	}
	return geo.Point{Lat: lat, Lon: lon}, true
}

// isUnavailable recognizes the STARS sentinel strings that decode as
// absent rather than as literal values.
func isUnavailable(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unavailable", "unassigned":
		return true
	default:
		return false
	}
}

// parseISODuration parses a small subset of ISO-8601 durations
// (PnDTnHnMnS) sufficient for estimated-elapsed-time values, which are
// always well under a day.
func parseISODuration(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "P") {
		return 0, false
	}
	s = s[1:]
	var datePart, timePart string
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		datePart, timePart = s[:i], s[i+1:]
	} else {
		datePart = s
	}
	var total time.Duration
	if datePart != "" {
		if d, ok := consumeDurationUnit(&datePart, 'D'); ok {
			total += time.Duration(d) * 24 * time.Hour
		}
	}
	if timePart != "" {
		if h, ok := consumeDurationUnit(&timePart, 'H'); ok {
			total += time.Duration(h) * time.Hour
		}
		if m, ok := consumeDurationUnit(&timePart, 'M'); ok {
			total += time.Duration(m) * time.Minute
		}
		if sec, ok := consumeDurationUnit(&timePart, 'S'); ok {
			total += time.Duration(sec) * time.Second
		}
	}
	return total, true
}

func consumeDurationUnit(s *string, unit byte) (int, bool) {
	idx := strings.IndexByte(*s, unit)
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi((*s)[:idx])
	*s = (*s)[idx+1:]
	return n, err == nil
}

// parseDatalinkTime parses the TDLS fixed-width MMddyyyyHHmmss format.
func parseDatalinkTime(s string) (time.Time, bool) {
	t, err := time.Parse("01022006150405", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseISOTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
