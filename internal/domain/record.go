package domain

import (
	"context"
	"time"
)

// HealthRecord is one cleaned row of the health incidence table.
type HealthRecord struct {
	UF           string  `json:"uf"`
	IBGE         int     `json:"ibge"`
	Municipality string  `json:"municipio"`
	Diabetes     float64 `json:"diabetes"`
	Hypertension float64 `json:"hipertensao_arterial"`
}

// GeoRecord is one municipality coordinate row, already filtered to a single state.
// Coordinates are nil when the source value is missing or unparseable.
type GeoRecord struct {
	IBGE      int      `json:"ibge"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// JoinedRecord is a health record matched with its coordinates.
type JoinedRecord struct {
	HealthRecord
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	TotalCases float64 `json:"total_casos"`
}

// HealthSource loads health records from a local table.
type HealthSource interface {
	Load(ctx context.Context, path string) ([]HealthRecord, error)
}

// GeoSource fetches municipality coordinates for one state code.
type GeoSource interface {
	Fetch(ctx context.Context, regionCode int) ([]GeoRecord, error)
}

// Result is the output of one pipeline run.
type Result struct {
	Rows        []JoinedRecord `json:"rows"`
	HeatMap     HeatMap        `json:"heat_map"`
	Preview     []JoinedRecord `json:"preview"`
	Summary     Summary        `json:"summary"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// View is what the presentation layer renders: either a result or a
// user-facing message. Kind is the ErrorKind of a failure.
type View struct {
	Result  Result
	Message string
	Kind    string
	Failed  bool
}
