// pkg/airspace/load.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package airspace

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	kflate "github.com/klauspost/compress/flate"
	"github.com/westphae/geomag/pkg/wmm"

	"github.com/swimfuse/swimfuse/pkg/geo"
	"github.com/swimfuse/swimfuse/pkg/log"
)

func init() {
	// The klauspost decompressor is a drop-in faster inflate; registering
	// it once makes every archive/zip.Reader in this package use it.
	zip.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return kflate.NewReader(r)
	})
}

// requiredFiles must all be present in an extracted cycle for it to be
// accepted; a cycle missing one of these fails the load and leaves the
// previous cycle active.
var requiredFiles = []string{"APT.csv", "NAV.csv", "FIX.csv", "AWY.csv", "STARDP.csv", "ILS.csv"}

// Loader downloads, extracts, and parses one AIRAC cycle.
type Loader struct {
	BaseURL string // dated archive base, e.g. https://nfdc.faa.gov/webContent/28DaySub
	DataDir string
	HTTP    *http.Client
	Log     *log.Logger
}

func NewLoader(baseURL, dataDir string, lg *log.Logger) *Loader {
	return &Loader{
		BaseURL: baseURL,
		DataDir: dataDir,
		HTTP:    &http.Client{Timeout: 10 * time.Minute},
		Log:     lg,
	}
}

// Load produces an Index for the cycle effective at now, from a cached
// extraction on disk if present, otherwise by downloading and
// extracting it first.
func (l *Loader) Load(ctx context.Context, now time.Time) (*Index, error) {
	cycle := CurrentCycle(now)
	dir := filepath.Join(l.DataDir, cycleDirName(cycle))

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := l.fetchAndExtract(ctx, cycle, dir); err != nil {
			return nil, fmt.Errorf("fetch cycle %s: %w", cycleDirName(cycle), err)
		}
	}
	for _, f := range requiredFiles {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("cycle %s missing required file %s", cycleDirName(cycle), f)
		}
	}
	return buildIndex(dir, cycleDirName(cycle))
}

// fetchAndExtract streams the outer archive to a temp file before
// extracting, then recurses into the inner (nested) zip it contains,
// so the full archive is never held in memory.
func (l *Loader) fetchAndExtract(ctx context.Context, cycle time.Time, destDir string) error {
	url := fmt.Sprintf("%s/%s.zip", l.BaseURL, cycle.Format("2006-01-02"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := l.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	tmp, err := os.CreateTemp("", "swimfuse-airac-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return fmt.Errorf("stream download: %w", err)
	}

	outerStat, err := tmp.Stat()
	if err != nil {
		return err
	}
	outer, err := zip.NewReader(tmp, outerStat.Size())
	if err != nil {
		return fmt.Errorf("open outer archive: %w", err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	for _, f := range outer.File {
		if strings.EqualFold(filepath.Ext(f.Name), ".zip") {
			if err := extractInnerZip(f, destDir); err != nil {
				return fmt.Errorf("extract inner archive %s: %w", f.Name, err)
			}
			continue
		}
		if strings.EqualFold(filepath.Ext(f.Name), ".csv") {
			if err := extractFile(f, destDir); err != nil {
				return err
			}
		}
	}
	return nil
}

func extractInnerZip(f *zip.File, destDir string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "swimfuse-airac-inner-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, rc); err != nil {
		return err
	}
	stat, err := tmp.Stat()
	if err != nil {
		return err
	}
	inner, err := zip.NewReader(tmp, stat.Size())
	if err != nil {
		return err
	}
	for _, inf := range inner.File {
		if !strings.EqualFold(filepath.Ext(inf.Name), ".csv") {
			continue
		}
		if err := extractFile(inf, destDir); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, destDir string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(filepath.Join(destDir, filepath.Base(f.Name)))
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, rc)
	return err
}

func buildIndex(dir, cycle string) (*Index, error) {
	idx := newIndex(cycle)

	if err := loadAirports(dir, idx); err != nil {
		return nil, err
	}
	if err := loadNavaidsAndFixes(dir, idx); err != nil {
		return nil, err
	}
	if err := loadAirways(dir, idx); err != nil {
		return nil, err
	}
	if err := loadProcedures(dir, idx); err != nil {
		return nil, err
	}
	if err := loadCenterlines(dir, idx); err != nil {
		return nil, err
	}
	return idx, nil
}

func openCSV(dir, name string) ([]map[string]string, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCSV(f)
}

func loadAirports(dir string, idx *Index) error {
	rows, err := openCSV(dir, "APT.csv")
	if err != nil {
		return err
	}
	for _, r := range rows {
		lat, _ := strconv.ParseFloat(r["ARPLatitude"], 64)
		lon, _ := strconv.ParseFloat(r["ARPLongitude"], 64)
		a := Airport{
			LID:         r["LocationID"],
			ICAO:        r["ICAOID"],
			Name:        r["ArptName"],
			Pos:         geo.Point{Lat: lat, Lon: lon},
			TowerType:   r["TowerTypeCode"],
			Far139Index: r["Far139Index"],
		}
		a.Class = derivedAirspaceClass(a)
		if a.LID != "" {
			idx.byLID[a.LID] = a
		}
		if a.ICAO != "" {
			idx.byICAO[a.ICAO] = a
		}
		if r["FacilityUse"] == "PU" {
			idx.overlay = append(idx.overlay, a)
		}
	}
	return nil
}

// derivedAirspaceClass follows the certification/tower-type rule: class
// B for a FAR-139 index-I-E airport, else C for a TRACON/RAPCON/RATCF/A/C
// tower, else D for a plain ATCT, else E.
func derivedAirspaceClass(a Airport) AirspaceClass {
	if a.Far139Index == "I" || a.Far139Index == "E" {
		return ClassB
	}
	switch strings.ToUpper(a.TowerType) {
	case "TRACON", "RAPCON", "RATCF", "A", "C":
		return ClassC
	case "ATCT":
		return ClassD
	default:
		return ClassE
	}
}

func loadNavaidsAndFixes(dir string, idx *Index) error {
	navRows, err := openCSV(dir, "NAV.csv")
	if err != nil {
		return err
	}
	for _, r := range navRows {
		lat, _ := strconv.ParseFloat(r["NavaidLatitude"], 64)
		lon, _ := strconv.ParseFloat(r["NavaidLongitude"], 64)
		n := Navaid{ID: r["NavaidID"], Name: r["NavaidName"], Pos: geo.Point{Lat: lat, Lon: lon}, Type: NavaidType(r["NavaidType"])}
		idx.navaids[n.ID] = append(idx.navaids[n.ID], n)
	}

	fixRows, err := openCSV(dir, "FIX.csv")
	if err != nil {
		return err
	}
	for _, r := range fixRows {
		lat, _ := strconv.ParseFloat(r["FixLatitude"], 64)
		lon, _ := strconv.ParseFloat(r["FixLongitude"], 64)
		f := Fix{ID: r["FixID"], Pos: geo.Point{Lat: lat, Lon: lon}}
		idx.fixes[f.ID] = append(idx.fixes[f.ID], f)
	}
	return nil
}

func loadAirways(dir string, idx *Index) error {
	rows, err := openCSV(dir, "AWY.csv")
	if err != nil {
		return err
	}
	order := make(map[string][]int)
	fixesByOrder := make(map[string]map[int]string)
	for _, r := range rows {
		id := r["AirwayID"]
		seq, _ := strconv.Atoi(r["PointSeq"])
		if fixesByOrder[id] == nil {
			fixesByOrder[id] = make(map[int]string)
		}
		fixesByOrder[id][seq] = r["PointName"]
		order[id] = append(order[id], seq)
	}
	for id, seqs := range order {
		sort.Ints(seqs)
		fixes := make([]string, 0, len(seqs))
		for _, s := range seqs {
			fixes = append(fixes, fixesByOrder[id][s])
		}
		idx.airways[id] = fixes
	}
	return nil
}

func loadProcedures(dir string, idx *Index) error {
	rows, err := openCSV(dir, "STARDP.csv")
	if err != nil {
		return err
	}
	type legKey struct{ proc, variant string }
	legsByVariant := make(map[legKey][]string)
	transitions := make(map[string]map[string][]string) // proc -> transition name -> fixes
	procMeta := make(map[string]*ProcedureDefinition)

	for _, r := range rows {
		id := r["ProcedureID"]
		pd, ok := procMeta[id]
		if !ok {
			pd = &ProcedureDefinition{
				ID:          id,
				Airport:     r["ArptID"],
				Type:        ProcedureType(strings.ToUpper(r["ProcedureType"])),
				Transitions: make(map[string][]string),
				ByEndpoint:  make(map[string]string),
			}
			procMeta[id] = pd
			transitions[id] = make(map[string][]string)
		}
		fix := r["FixID"]
		if fix == "" {
			continue
		}
		if tname := r["TransitionName"]; tname != "" {
			transitions[id][tname] = append(transitions[id][tname], fix)
			continue
		}
		variant := r["RunwayTransition"]
		if variant == "" {
			variant = "*"
		}
		legsByVariant[legKey{id, variant}] = append(legsByVariant[legKey{id, variant}], fix)
	}

	for id, pd := range procMeta {
		variants := make([][]string, 0)
		for k, fixes := range legsByVariant {
			if k.proc == id {
				variants = append(variants, fixes)
			}
		}
		pd.Body = reverseStrings(commonBody(variants))
		for tname, fixes := range transitions[id] {
			rev := reverseStrings(fixes)
			pd.Transitions[tname] = rev
			if len(rev) == 0 {
				continue
			}
			if pd.Type == ProcedureSTAR {
				pd.ByEndpoint[rev[0]] = tname
			} else {
				pd.ByEndpoint[rev[len(rev)-1]] = tname
			}
		}
		idx.procs[id] = append(idx.procs[id], pd)
		idx.byAirport[pd.Airport] = append(idx.byAirport[pd.Airport], pd)
	}
	return nil
}

// commonBody intersects per-runway leg variants, preserving the order
// of the first variant, to produce the body fixes shared by every
// runway transition of the procedure.
func commonBody(variants [][]string) []string {
	if len(variants) == 0 {
		return nil
	}
	if len(variants) == 1 {
		return variants[0]
	}
	shared := make(map[string]int)
	for _, v := range variants {
		seen := make(map[string]bool)
		for _, fix := range v {
			if !seen[fix] {
				shared[fix]++
				seen[fix] = true
			}
		}
	}
	var out []string
	for _, fix := range variants[0] {
		if shared[fix] == len(variants) {
			out = append(out, fix)
		}
	}
	return out
}

func reverseStrings(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

func loadCenterlines(dir string, idx *Index) error {
	rows, err := openCSV(dir, "ILS.csv")
	if err != nil {
		return err
	}
	for _, r := range rows {
		kind := strings.ToUpper(r["ILSType"])
		switch kind {
		case "ILS", "LOC", "LDA", "SDF":
		default:
			continue
		}
		lat, _ := strconv.ParseFloat(r["LocLatitude"], 64)
		lon, _ := strconv.ParseFloat(r["LocLongitude"], 64)
		locPos := geo.Point{Lat: lat, Lon: lon}
		trueBearing, _ := strconv.ParseFloat(r["TrueBearing"], 64)
		variation, err := strconv.ParseFloat(r["MagVar"], 64)
		if err != nil {
			variation = magneticVariation(locPos, time.Now())
		}
		runwayLengthNM, _ := strconv.ParseFloat(r["RunwayLengthNM"], 64)
		if runwayLengthNM == 0 {
			runwayLengthNM = 2.0
		}
		magBearing := geo.NormalizeHeading(trueBearing + variation)
		reciprocal := geo.OppositeHeading(magBearing)
		threshold := geo.Offset(locPos, reciprocal, runwayLengthNM)
		outbound := geo.Offset(threshold, magBearing, 15.0)

		idx.centerlines = append(idx.centerlines, CenterlineSegment{
			Airport:   r["ArptID"],
			Runway:    r["RunwayID"],
			Kind:      kind,
			Threshold: threshold,
			Outbound:  outbound,
		})
	}
	return nil
}

// magneticVariation falls back to the World Magnetic Model when a row
// lacks its own published MagVar column, which happens only on a
// handful of older ILS entries.
func magneticVariation(pos geo.Point, when time.Time) float64 {
	model, err := wmm.NewWMM(decimalYear(when))
	if err != nil {
		return 0
	}
	field, err := model.Calculate(pos.Lat, pos.Lon, 0, decimalYear(when))
	if err != nil {
		return 0
	}
	return field.D
}

func decimalYear(t time.Time) float64 {
	start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(t.Year()+1, 1, 1, 0, 0, 0, 0, time.UTC)
	frac := float64(t.Sub(start)) / float64(end.Sub(start))
	return float64(t.Year()) + frac
}
