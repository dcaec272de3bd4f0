// pkg/httpapi/handlers_history.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package httpapi

import (
	"bufio"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const archiveDirDefault = "flight-history"

func (s *Server) handleHistoryDates(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(archiveDirDefault)
	if err != nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	var dates []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			dates = append(dates, strings.TrimSuffix(e.Name(), ".jsonl"))
		}
	}
	sort.Strings(dates)
	writeJSON(w, http.StatusOK, dates)
}

// handleHistoryQuery scans one day's archive file for lines containing
// q as a raw substring; a line-oriented grep is sufficient here since
// each entry is already a compact JSON object and an operator-facing
// debug query doesn't need structured filtering.
func (s *Server) handleHistoryQuery(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	q := r.URL.Query().Get("q")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date required")
		return
	}
	path := filepath.Join(archiveDirDefault, date+".jsonl")
	f, err := os.Open(path)
	if err != nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	defer f.Close()

	var matches []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if q == "" || strings.Contains(line, q) {
			matches = append(matches, line)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte("["))
	for i, m := range matches {
		if i > 0 {
			w.Write([]byte(","))
		}
		w.Write([]byte(m))
	}
	w.Write([]byte("]"))
}
