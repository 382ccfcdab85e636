// Package config loads CLI settings from a YAML file and PANORAMIO_*
// environment variables. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/1F47E/geo-photo-search/pkg/logger"
	"github.com/1F47E/geo-photo-search/pkg/models"
	"gopkg.in/yaml.v3"
)

type Search struct {
	Lat       float64  `yaml:"lat"`
	Lon       float64  `yaml:"lon"`
	RadiusKm  float64  `yaml:"radius_km"`
	Set       string   `yaml:"set"`
	Size      string   `yaml:"size"`
	Order     string   `yaml:"order"`
	Count     int      `yaml:"count"`
	From      int      `yaml:"from"`
	BaseURL   string   `yaml:"base_url"`
	UserAgent string   `yaml:"user_agent"`
	Headers   []string `yaml:"headers"`
}

type HTTP struct {
	Timeout   time.Duration `yaml:"timeout"`
	CacheSize int           `yaml:"cache_size"`
}

type Index struct {
	File string `yaml:"file"`
}

type Archive struct {
	DSN string `yaml:"dsn"`
}

// Config structure for YAML configuration
type Config struct {
	Search  Search        `yaml:"search"`
	HTTP    HTTP          `yaml:"http"`
	Log     logger.Config `yaml:"log"`
	Index   Index         `yaml:"index"`
	Archive Archive       `yaml:"archive"`
}

// Default returns the configuration used when no file or variable says otherwise
func Default() Config {
	sc := models.DefaultSearchConfig()
	return Config{
		Search: Search{
			Lat:       sc.Center.Lat,
			Lon:       sc.Center.Lon,
			RadiusKm:  sc.RadiusKm,
			Set:       sc.Set,
			Size:      sc.Size,
			Order:     sc.Order,
			Count:     sc.Count,
			From:      sc.From,
			BaseURL:   sc.BaseURL,
			UserAgent: sc.UserAgent,
			Headers:   sc.Headers,
		},
		HTTP: HTTP{
			Timeout: 30 * time.Second,
		},
		Log: logger.Config{
			Level: "info",
		},
		Index: Index{
			File: "photos.gob",
		},
	}
}

// Load reads path over the defaults and then applies environment overrides.
// An empty path or a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Search.Lat = getfloat("PANORAMIO_LAT", c.Search.Lat)
	c.Search.Lon = getfloat("PANORAMIO_LON", c.Search.Lon)
	c.Search.RadiusKm = getfloat("PANORAMIO_RADIUS_KM", c.Search.RadiusKm)
	c.Search.Set = getenv("PANORAMIO_SET", c.Search.Set)
	c.Search.Size = getenv("PANORAMIO_SIZE", c.Search.Size)
	c.Search.Order = getenv("PANORAMIO_ORDER", c.Search.Order)
	c.Search.Count = getint("PANORAMIO_COUNT", c.Search.Count)
	c.Search.From = getint("PANORAMIO_FROM", c.Search.From)
	c.Search.BaseURL = getenv("PANORAMIO_BASE_URL", c.Search.BaseURL)
	c.Search.UserAgent = getenv("PANORAMIO_USER_AGENT", c.Search.UserAgent)
	if v := os.Getenv("PANORAMIO_HEADERS"); v != "" {
		c.Search.Headers = splitHeaders(v)
	}

	c.HTTP.Timeout = getduration("PANORAMIO_TIMEOUT", c.HTTP.Timeout)
	c.HTTP.CacheSize = getint("PANORAMIO_CACHE_SIZE", c.HTTP.CacheSize)

	c.Log.Level = getenv("PANORAMIO_LOG_LEVEL", c.Log.Level)
	c.Log.Console = getbool("PANORAMIO_LOG_CONSOLE", c.Log.Console)

	c.Index.File = getenv("PANORAMIO_INDEX_FILE", c.Index.File)
	c.Archive.DSN = getenv("PANORAMIO_ARCHIVE_DSN", c.Archive.DSN)
}

// ToSearchConfig maps the search section onto the client configuration
func (c Config) ToSearchConfig() models.SearchConfig {
	sc := models.DefaultSearchConfig()
	sc.Center = models.Location{Lat: c.Search.Lat, Lon: c.Search.Lon}
	sc.RadiusKm = c.Search.RadiusKm
	sc.Set = c.Search.Set
	sc.Size = c.Search.Size
	sc.Order = c.Search.Order
	sc.Count = c.Search.Count
	sc.From = c.Search.From
	sc.BaseURL = c.Search.BaseURL
	sc.UserAgent = c.Search.UserAgent
	sc.Headers = append([]string(nil), c.Search.Headers...)
	return sc
}

// splitHeaders parses "A: 1|B: 2"
func splitHeaders(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
