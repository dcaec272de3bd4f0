// pkg/airspace/airac.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package airspace loads the national airspace data release into a
// queryable in-memory index and resolves filed route strings against
// it.
package airspace

import "time"

const cycleDays = 28

// referenceCycle is a known AIRAC cycle effective date; every cycle
// boundary is an exact multiple of 28 days from it.
var referenceCycle = time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC)

// CurrentCycle returns the effective date of the AIRAC cycle containing
// now.
func CurrentCycle(now time.Time) time.Time {
	elapsed := now.UTC().Sub(referenceCycle)
	cycles := int(elapsed / (cycleDays * 24 * time.Hour))
	return referenceCycle.AddDate(0, 0, cycles*cycleDays)
}

// NextCycle returns the effective date of the cycle following the one
// containing now.
func NextCycle(now time.Time) time.Time {
	return CurrentCycle(now).AddDate(0, 0, cycleDays)
}

func cycleDirName(effective time.Time) string {
	return effective.Format("2006-01-02")
}
