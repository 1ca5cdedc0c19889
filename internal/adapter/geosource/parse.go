// Package geosource fetches municipality coordinates from the
// kelvins/Municipios-Brasileiros CSV and filters them to one state.
package geosource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/sp-health-heatmap/internal/domain"
)

// Column names in the upstream table.
const (
	ColRegionCode = "codigo_uf"
	ColIBGE       = "codigo_ibge"
	ColLatitude   = "latitude"
	ColLongitude  = "longitude"
)

// ParseStats counts rows seen and kept by Parse.
type ParseStats struct {
	Rows        int
	Kept        int
	InvalidIBGE int
}

// Parse reads a comma-delimited municipality table with a header row and
// keeps rows whose codigo_uf equals regionCode. Unparseable coordinates
// become nil and are dropped later by the join.
func Parse(r io.Reader, regionCode int) ([]domain.GeoRecord, ParseStats, error) {
	var stats ParseStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty response body")
		}
		return nil, stats, &domain.DataProcessingError{Op: "parse municipality table header", Err: err}
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		idx[h] = i
	}
	var missing []string
	for _, col := range []string{ColRegionCode, ColIBGE, ColLatitude, ColLongitude} {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, stats, &domain.DataProcessingError{
			Op:  "parse municipality table header",
			Err: fmt.Errorf("missing columns: %s", strings.Join(missing, ", ")),
		}
	}

	get := func(row []string, col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := []domain.GeoRecord{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, &domain.DataProcessingError{Op: "parse municipality table", Err: err}
		}
		stats.Rows++

		uf, ok := parseInt(get(row, ColRegionCode))
		if !ok || uf != regionCode {
			continue
		}
		ibge, ok := parseInt(get(row, ColIBGE))
		if !ok {
			stats.InvalidIBGE++
			continue
		}

		records = append(records, domain.GeoRecord{
			IBGE:      ibge,
			Latitude:  parseCoord(get(row, ColLatitude)),
			Longitude: parseCoord(get(row, ColLongitude)),
		})
		stats.Kept++
	}
	return records, stats, nil
}

func parseInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func parseCoord(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
