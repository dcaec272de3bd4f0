// pkg/enrich/adsb.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package enrich cross-populates flight records from a public ADS-B
// feed: a regional snapshot loop for callsign/type enrichment, and a
// military-injection loop that synthesizes track/flight-plan updates
// for aircraft no other feed carries.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/swimfuse/swimfuse/pkg/geo"
	"github.com/swimfuse/swimfuse/pkg/log"
)

const minRequestInterval = 1100 * time.Millisecond

// Aircraft is one entry off the ADS-B feed.
type Aircraft struct {
	Hex      string
	Squawk   string
	Callsign string
	Position geo.Point
	AltFeet  int
	Military bool
}

// Region is a circular polling area (center, radius) for the regional
// snapshot loop.
type Region struct {
	Name   string
	Center geo.Point
	RadiusNM float64
}

// DefaultCONUSRegions covers the continental US with five overlapping
// 250 NM circles, deduplicated by hex at merge time.
func DefaultCONUSRegions() []Region {
	return []Region{
		{Name: "NE", Center: geo.Point{Lat: 41.0, Lon: -75.0}, RadiusNM: 250},
		{Name: "SE", Center: geo.Point{Lat: 33.0, Lon: -84.0}, RadiusNM: 250},
		{Name: "MW", Center: geo.Point{Lat: 41.5, Lon: -93.0}, RadiusNM: 250},
		{Name: "SW", Center: geo.Point{Lat: 33.5, Lon: -112.0}, RadiusNM: 250},
		{Name: "NW", Center: geo.Point{Lat: 45.5, Lon: -122.5}, RadiusNM: 250},
	}
}

// Client polls the public ADS-B service for both loops. Request starts
// are spaced at least minRequestInterval apart, and concurrent identical
// requests share one fetch; requests for different areas or hexes are
// not serialized and can be in flight at the same time.
type Client struct {
	baseURL string
	http    *http.Client
	sf      singleflight.Group

	mu       sync.Mutex
	lastCall time.Time

	negativeCache *lru.LRU[string, struct{}]
	lg            *log.Logger
}

func NewClient(baseURL string, lg *log.Logger) *Client {
	return &Client{
		baseURL:       baseURL,
		http:          &http.Client{Timeout: 10 * time.Second},
		negativeCache: lru.NewLRU[string, struct{}](4096, nil, 5*time.Minute),
		lg:            lg,
	}
}

func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if wait := minRequestInterval - time.Since(c.lastCall); wait > 0 {
		time.Sleep(wait)
	}
	c.lastCall = time.Now()
}

type rawAircraft struct {
	Hex      string  `json:"hex"`
	Squawk   string  `json:"squawk"`
	Flight   string  `json:"flight"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	AltBaro  any     `json:"alt_baro"`
}

type rawResponse struct {
	AC []rawAircraft `json:"ac"`
}

// FetchArea fetches all aircraft within radiusNm of center.
func (c *Client) FetchArea(ctx context.Context, center geo.Point, radiusNm float64) ([]Aircraft, error) {
	key := fmt.Sprintf("area:%.3f:%.3f:%.0f", center.Lat, center.Lon, radiusNm)
	v, err, _ := c.sf.Do(key, func() (any, error) {
		c.throttle()
		url := fmt.Sprintf("%s/v3/lat/%f/lon/%f/dist/%f", c.baseURL, center.Lat, center.Lon, radiusNm)
		return c.fetch(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Aircraft), nil
}

// FetchHex fetches one aircraft by Mode-S hex, consulting and updating
// the negative-result cache.
func (c *Client) FetchHex(ctx context.Context, hex string) (Aircraft, bool) {
	hex = strings.ToLower(hex)
	if _, negative := c.negativeCache.Get(hex); negative {
		return Aircraft{}, false
	}
	key := "hex:" + hex
	v, err, _ := c.sf.Do(key, func() (any, error) {
		c.throttle()
		url := fmt.Sprintf("%s/v2/hex/%s", c.baseURL, hex)
		return c.fetch(ctx, url)
	})
	if err != nil || len(v.([]Aircraft)) == 0 {
		c.negativeCache.Add(hex, struct{}{})
		return Aircraft{}, false
	}
	return v.([]Aircraft)[0], true
}

func (c *Client) fetch(ctx context.Context, url string) ([]Aircraft, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.lg.Warnf("adsb fetch failed: %v", err)
		return nil, err
	}
	defer resp.Body.Close()
	var raw rawResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode adsb response: %w", err)
	}
	out := make([]Aircraft, 0, len(raw.AC))
	for _, a := range raw.AC {
		alt := 0
		if f, ok := a.AltBaro.(float64); ok {
			alt = int(f)
		}
		out = append(out, Aircraft{
			Hex:      strings.ToUpper(a.Hex),
			Squawk:   a.Squawk,
			Callsign: strings.TrimSpace(a.Flight),
			Position: geo.Point{Lat: a.Lat, Lon: a.Lon},
			AltFeet:  alt,
			Military: strings.HasPrefix(strings.ToUpper(a.Hex), "AE") || strings.HasPrefix(strings.ToUpper(a.Hex), "AF"),
		})
	}
	return out, nil
}
