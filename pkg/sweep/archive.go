// pkg/sweep/archive.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sweep

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/swimfuse/swimfuse/pkg/flight"
	"github.com/swimfuse/swimfuse/pkg/log"
	"github.com/swimfuse/swimfuse/pkg/util"
)

const defaultSizeBudgetBytes = 14 << 30 // ~14 GB

// ArchiveEntry is one purged flight's full event history, as written
// to the daily JSON-line file.
type ArchiveEntry struct {
	ID       string              `json:"id"`
	Callsign string              `json:"callsign"`
	PurgedAt time.Time           `json:"purgedAt"`
	Events   []flight.EventRecord `json:"events"`
}

// Archive appends one purge's full event history to the current day's
// file under dir, serializing concurrent writers per file path.
type Archive struct {
	dir string
	lg  *log.Logger

	mu sync.Mutex
}

func NewArchive(dir string, lg *log.Logger) *Archive {
	return &Archive{dir: dir, lg: lg}
}

func (a *Archive) Append(id, callsign string, events []flight.EventRecord, when time.Time) error {
	entry := ArchiveEntry{ID: id, Callsign: callsign, PurgedAt: when, Events: events}
	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	path := filepath.Join(a.dir, when.Format("2006-01-02")+".jsonl")
	if err := util.AppendLine(path, line); err != nil {
		a.lg.Warnf("sweep: archive append to %s failed: %v", path, err)
		return err
	}
	return nil
}

// EnforceSizeBudget deletes the oldest archive files until the
// directory's total size is under budgetBytes, never deleting the
// file for the current day.
func EnforceSizeBudget(dir string, budgetBytes int64, now time.Time, lg *log.Logger) {
	if budgetBytes <= 0 {
		budgetBytes = defaultSizeBudgetBytes
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	today := now.Format("2006-01-02") + ".jsonl"

	type fileInfo struct {
		name string
		size int64
	}
	var files []fileInfo
	var total int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{name: e.Name(), size: info.Size()})
		total += info.Size()
	}
	if total <= budgetBytes {
		return
	}

	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	for _, f := range files {
		if total <= budgetBytes {
			break
		}
		if f.name == today {
			continue
		}
		path := filepath.Join(dir, f.name)
		if err := os.Remove(path); err != nil {
			lg.Warnf("sweep: failed to remove archive file %s: %v", path, err)
			continue
		}
		total -= f.size
		lg.Infof("sweep: removed archive file %s to stay under size budget", path)
	}
}
