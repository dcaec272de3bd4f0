// pkg/config/config.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package config loads cmd/swimfused's TOML configuration file and
// applies environment-variable overrides on top of it, mirroring the
// teacher's preference for a small file-backed struct rather than a
// flags-only service.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/swimfuse/swimfuse/pkg/enrich"
	"github.com/swimfuse/swimfuse/pkg/geo"
)

// BrokerConfig describes one configured SWIM source.
type BrokerConfig struct {
	Host  string
	VPN   string
	User  string
	Pass  string
	Queue string
}

// RegionConfig is a JSON/TOML-friendly mirror of enrich.Region.
type RegionConfig struct {
	Name     string
	Lat      float64
	Lon      float64
	RadiusNM float64
}

// CoverageConfig is a JSON/TOML-friendly mirror of enrich.CoverageArea.
type CoverageConfig struct {
	Facility string
	Lat      float64
	Lon      float64
	RadiusNM float64
}

// Config is the full set of recognized settings, all optional with the
// defaults set in Default.
type Config struct {
	EnRoute  BrokerConfig
	Terminal BrokerConfig

	ADSBBaseURL string

	AirspaceBaseURL string
	AirspaceDataDir string
	CacheDir        string
	ArchiveDir      string
	GateCodesPath   string

	HTTPAddr string
	LogDir   string
	LogLevel string

	EnrichmentRegions []RegionConfig
	CoverageAreas     []CoverageConfig

	SizeBudgetBytes int64

	// PurgeIdleAfterMinutes is how long a flight record may go without
	// an update before it is purged and archived.
	PurgeIdleAfterMinutes int
}

// Default returns the configuration a bare invocation runs with: no
// broker credentials (those sessions simply sit backed off and
// reconnecting, per 4.A), the public ADS-B base URL, and CONUS-wide
// enrichment coverage.
func Default() Config {
	return Config{
		EnRoute:         BrokerConfig{Queue: "enroute"},
		Terminal:        BrokerConfig{Queue: "terminal"},
		ADSBBaseURL:     "https://adsbexchange.com/api/aircraft",
		AirspaceBaseURL: "https://nfdc.faa.gov/webContent/28DaySub",
		AirspaceDataDir: "airspace-data",
		CacheDir:        "flight-cache",
		ArchiveDir:      "flight-history",
		GateCodesPath:   "gate-codes.json",
		HTTPAddr:        ":8080",
		LogDir:          "swimfuse-logs",
		LogLevel:        "info",
		SizeBudgetBytes: 14 << 30,
		PurgeIdleAfterMinutes: 60,
	}
}

// Load reads path (if non-empty and present) over Default, then applies
// environment overrides. A missing path is not an error: the service
// runs on defaults plus whatever the environment supplies.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	str(&cfg.EnRoute.Host, "SWIMFUSE_ENROUTE_HOST")
	str(&cfg.EnRoute.VPN, "SWIMFUSE_ENROUTE_VPN")
	str(&cfg.EnRoute.User, "SWIMFUSE_ENROUTE_USER")
	str(&cfg.EnRoute.Pass, "SWIMFUSE_ENROUTE_PASS")
	str(&cfg.EnRoute.Queue, "SWIMFUSE_ENROUTE_QUEUE")

	str(&cfg.Terminal.Host, "SWIMFUSE_TERMINAL_HOST")
	str(&cfg.Terminal.VPN, "SWIMFUSE_TERMINAL_VPN")
	str(&cfg.Terminal.User, "SWIMFUSE_TERMINAL_USER")
	str(&cfg.Terminal.Pass, "SWIMFUSE_TERMINAL_PASS")
	str(&cfg.Terminal.Queue, "SWIMFUSE_TERMINAL_QUEUE")

	str(&cfg.ADSBBaseURL, "SWIMFUSE_ADSB_BASE_URL")
	str(&cfg.AirspaceBaseURL, "SWIMFUSE_AIRSPACE_BASE_URL")
	str(&cfg.AirspaceDataDir, "SWIMFUSE_AIRSPACE_DATA_DIR")
	str(&cfg.CacheDir, "SWIMFUSE_CACHE_DIR")
	str(&cfg.ArchiveDir, "SWIMFUSE_ARCHIVE_DIR")
	str(&cfg.GateCodesPath, "SWIMFUSE_GATE_CODES_PATH")
	str(&cfg.HTTPAddr, "SWIMFUSE_HTTP_ADDR")
	str(&cfg.LogDir, "SWIMFUSE_LOG_DIR")
	str(&cfg.LogLevel, "SWIMFUSE_LOG_LEVEL")

	if v := os.Getenv("SWIMFUSE_SIZE_BUDGET_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.SizeBudgetBytes = n
		}
	}
	if v := os.Getenv("SWIMFUSE_PURGE_IDLE_AFTER_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PurgeIdleAfterMinutes = n
		}
	}
}

func str(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

// Regions converts the configured enrichment regions to enrich.Region,
// falling back to enrich.DefaultCONUSRegions when none are configured.
func (c Config) Regions() []enrich.Region {
	if len(c.EnrichmentRegions) == 0 {
		return enrich.DefaultCONUSRegions()
	}
	out := make([]enrich.Region, 0, len(c.EnrichmentRegions))
	for _, r := range c.EnrichmentRegions {
		out = append(out, enrich.Region{
			Name:     r.Name,
			Center:   geo.Point{Lat: r.Lat, Lon: r.Lon},
			RadiusNM: r.RadiusNM,
		})
	}
	return out
}

// Coverage converts the configured military coverage areas to
// enrich.CoverageArea, falling back to enrich.DefaultCoverageAreas when
// none are configured.
func (c Config) Coverage() []enrich.CoverageArea {
	if len(c.CoverageAreas) == 0 {
		return enrich.DefaultCoverageAreas()
	}
	out := make([]enrich.CoverageArea, 0, len(c.CoverageAreas))
	for _, a := range c.CoverageAreas {
		out = append(out, enrich.CoverageArea{
			Facility: a.Facility,
			Center:   geo.Point{Lat: a.Lat, Lon: a.Lon},
			RadiusNM: a.RadiusNM,
		})
	}
	return out
}
