package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultGeoDataURL serves the coordinates of every Brazilian municipality.
const DefaultGeoDataURL = "https://raw.githubusercontent.com/kelvins/Municipios-Brasileiros/main/csv/municipios.csv"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	Dataset Dataset
}

// Dataset describes the two input tables and how the map is drawn.
// The skip count and region code are tied to the current dataset release.
type Dataset struct {
	HealthCSVPath   string        `env:"HEALTH_CSV_PATH"   envDefault:"hipertensao_diabetes.csv"`
	HealthSkipLines int           `env:"HEALTH_SKIP_LINES" envDefault:"25"`
	GeoDataURL      string        `env:"GEO_DATA_URL"      envDefault:"https://raw.githubusercontent.com/kelvins/Municipios-Brasileiros/main/csv/municipios.csv"`
	RegionCode      int           `env:"GEO_REGION_CODE"   envDefault:"35"`
	GeoTimeout      time.Duration `env:"GEO_TIMEOUT"       envDefault:"30s"`
	GeoMaxRetries   int           `env:"GEO_MAX_RETRIES"   envDefault:"2"`
	MemoCacheSize   int           `env:"MEMO_CACHE_SIZE"   envDefault:"16"`
	MapZoom         int           `env:"MAP_ZOOM"          envDefault:"7"`
	MapRadius       int           `env:"MAP_RADIUS"        envDefault:"15"`
	PreviewRows     int           `env:"PREVIEW_ROWS"      envDefault:"5"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	ds, err := LoadDataset()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		Dataset:         ds,
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("HTTP_ADDR is required")
	}

	return cfg, nil
}

// LoadDataset reads only the dataset section. The report command uses it
// without the service settings.
func LoadDataset() (Dataset, error) {
	var ds Dataset
	if err := env.Parse(&ds); err != nil {
		return Dataset{}, fmt.Errorf("parse env: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

// Validate checks value ranges. Errors name the offending variable.
func (d Dataset) Validate() error {
	if d.HealthCSVPath == "" {
		return errors.New("HEALTH_CSV_PATH is required")
	}
	if d.HealthSkipLines < 0 {
		return errors.New("HEALTH_SKIP_LINES must not be negative")
	}
	if u, err := url.Parse(d.GeoDataURL); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("GEO_DATA_URL must be an absolute URL")
	}
	if d.RegionCode <= 0 {
		return errors.New("GEO_REGION_CODE must be positive")
	}
	if d.GeoTimeout <= 0 {
		return errors.New("invalid GEO_TIMEOUT")
	}
	if d.GeoMaxRetries < 0 {
		return errors.New("GEO_MAX_RETRIES must not be negative")
	}
	if d.MemoCacheSize <= 0 {
		return errors.New("MEMO_CACHE_SIZE must be positive")
	}
	if d.MapZoom <= 0 || d.MapZoom > 18 {
		return errors.New("MAP_ZOOM must be between 1 and 18")
	}
	if d.MapRadius <= 0 {
		return errors.New("MAP_RADIUS must be positive")
	}
	if d.PreviewRows <= 0 {
		return errors.New("PREVIEW_ROWS must be positive")
	}
	return nil
}
