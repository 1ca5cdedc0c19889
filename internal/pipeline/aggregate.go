package pipeline

import (
	"github.com/couchcryptid/sp-health-heatmap/internal/domain"
)

// Aggregator turns loaded tables into the presentation result.
type Aggregator struct {
	heatMap     domain.HeatMapOptions
	previewRows int
}

// NewAggregator creates an Aggregator. Zero options use the domain defaults.
func NewAggregator(heatMap domain.HeatMapOptions, previewRows int) *Aggregator {
	return &Aggregator{heatMap: heatMap, previewRows: previewRows}
}

// Aggregate joins the two tables and derives the heat-map, preview and summary.
func (a *Aggregator) Aggregate(health []domain.HealthRecord, geo []domain.GeoRecord) domain.Result {
	rows := domain.Join(health, geo)
	return domain.Result{
		Rows:        rows,
		HeatMap:     domain.BuildHeatMap(rows, a.heatMap),
		Preview:     domain.Preview(rows, a.previewRows),
		Summary:     domain.Summarize(rows),
		GeneratedAt: domain.Now(),
	}
}
