package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	ds := cfg.Dataset
	assert.Equal(t, "hipertensao_diabetes.csv", ds.HealthCSVPath)
	assert.Equal(t, 25, ds.HealthSkipLines)
	assert.Equal(t, DefaultGeoDataURL, ds.GeoDataURL)
	assert.Equal(t, 35, ds.RegionCode)
	assert.Equal(t, 30*time.Second, ds.GeoTimeout)
	assert.Equal(t, 2, ds.GeoMaxRetries)
	assert.Equal(t, 16, ds.MemoCacheSize)
	assert.Equal(t, 7, ds.MapZoom)
	assert.Equal(t, 15, ds.MapRadius)
	assert.Equal(t, 5, ds.PreviewRows)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("HEALTH_CSV_PATH", "/data/rj.csv")
	t.Setenv("HEALTH_SKIP_LINES", "3")
	t.Setenv("GEO_DATA_URL", "http://localhost:8000/municipios.csv")
	t.Setenv("GEO_REGION_CODE", "33")
	t.Setenv("GEO_TIMEOUT", "5s")
	t.Setenv("GEO_MAX_RETRIES", "0")
	t.Setenv("MEMO_CACHE_SIZE", "4")
	t.Setenv("MAP_ZOOM", "9")
	t.Setenv("MAP_RADIUS", "20")
	t.Setenv("PREVIEW_ROWS", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)

	assert.Equal(t, Dataset{
		HealthCSVPath:   "/data/rj.csv",
		HealthSkipLines: 3,
		GeoDataURL:      "http://localhost:8000/municipios.csv",
		RegionCode:      33,
		GeoTimeout:      5 * time.Second,
		GeoMaxRetries:   0,
		MemoCacheSize:   4,
		MapZoom:         9,
		MapRadius:       20,
		PreviewRows:     10,
	}, cfg.Dataset)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_UnparseableDatasetValue(t *testing.T) {
	t.Setenv("GEO_REGION_CODE", "sp")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestLoadDataset_Validation(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"HEALTH_SKIP_LINES", "-1", "HEALTH_SKIP_LINES"},
		{"GEO_DATA_URL", "not a url", "GEO_DATA_URL"},
		{"GEO_REGION_CODE", "0", "GEO_REGION_CODE"},
		{"GEO_TIMEOUT", "-5s", "GEO_TIMEOUT"},
		{"GEO_MAX_RETRIES", "-1", "GEO_MAX_RETRIES"},
		{"MEMO_CACHE_SIZE", "0", "MEMO_CACHE_SIZE"},
		{"MAP_ZOOM", "30", "MAP_ZOOM"},
		{"MAP_RADIUS", "0", "MAP_RADIUS"},
		{"PREVIEW_ROWS", "0", "PREVIEW_ROWS"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadDataset()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDataset_ValidateEmptyPath(t *testing.T) {
	ds, err := LoadDataset()
	require.NoError(t, err)

	ds.HealthCSVPath = ""
	err = ds.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HEALTH_CSV_PATH")
}
