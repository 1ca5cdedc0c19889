package domain

// Map defaults.
const (
	DefaultRadius      = 15
	DefaultZoom        = 7
	DefaultPreviewRows = 5
)

// HeatPoint is one weighted point of the heat layer.
type HeatPoint struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Weight float64 `json:"weight"`
}

// LatLon is a map coordinate.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HeatMapOptions controls map presentation. Zero values fall back to defaults.
type HeatMapOptions struct {
	Radius int
	Zoom   int
}

// HeatMap is everything the presentation layer needs to draw the heat layer.
// Center is meaningless when Empty is true.
type HeatMap struct {
	Points []HeatPoint `json:"points"`
	Center LatLon      `json:"center"`
	Radius int         `json:"radius"`
	Zoom   int         `json:"zoom"`
	Empty  bool        `json:"empty"`
}

// BuildHeatMap weights each row by TotalCases and centres the view on the mean
// latitude and longitude of all rows.
func BuildHeatMap(rows []JoinedRecord, opts HeatMapOptions) HeatMap {
	hm := HeatMap{
		Points: make([]HeatPoint, 0, len(rows)),
		Radius: opts.Radius,
		Zoom:   opts.Zoom,
		Empty:  len(rows) == 0,
	}
	if hm.Radius <= 0 {
		hm.Radius = DefaultRadius
	}
	if hm.Zoom <= 0 {
		hm.Zoom = DefaultZoom
	}
	if hm.Empty {
		return hm
	}

	var sumLat, sumLon float64
	for i := range rows {
		r := &rows[i]
		hm.Points = append(hm.Points, HeatPoint{Lat: r.Latitude, Lon: r.Longitude, Weight: r.TotalCases})
		sumLat += r.Latitude
		sumLon += r.Longitude
	}
	n := float64(len(rows))
	hm.Center = LatLon{Lat: sumLat / n, Lon: sumLon / n}
	return hm
}

// Preview returns at most n leading rows. n <= 0 uses DefaultPreviewRows.
func Preview(rows []JoinedRecord, n int) []JoinedRecord {
	if n <= 0 {
		n = DefaultPreviewRows
	}
	out := make([]JoinedRecord, min(n, len(rows)))
	copy(out, rows)
	return out
}

// Summary aggregates the joined table.
type Summary struct {
	Municipalities int     `json:"municipios"`
	Diabetes       float64 `json:"diabetes"`
	Hypertension   float64 `json:"hipertensao_arterial"`
	TotalCases     float64 `json:"total_casos"`
	// Peak is the municipality with the highest TotalCases; zero when there are no rows.
	Peak JoinedRecord `json:"pico"`
}

// Summarize totals the joined rows. Ties for Peak keep the earliest row.
func Summarize(rows []JoinedRecord) Summary {
	s := Summary{Municipalities: len(rows)}
	for i := range rows {
		r := &rows[i]
		s.Diabetes += r.Diabetes
		s.Hypertension += r.Hypertension
		s.TotalCases += r.TotalCases
		if i == 0 || r.TotalCases > s.Peak.TotalCases {
			s.Peak = *r
		}
	}
	return s
}
