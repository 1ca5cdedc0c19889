// Package healthcsv reads the semicolon-delimited, ISO-8859-1 encoded
// diabetes/hypertension table exported by DATASUS.
package healthcsv

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/sp-health-heatmap/internal/domain"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DefaultSkipLines is the number of metadata lines above the header row.
const DefaultSkipLines = 25

// Fixed column layout: Uf;Ibge;Municipio;Diabetes;Hipertensao_arterial;Vazio
// The sixth column only exists because of the trailing delimiter.
const (
	colUF = iota
	colIBGE
	colMunicipality
	colDiabetes
	colHypertension
	colEmpty

	numColumns
)

// ctxCheckEvery bounds how many rows are parsed between context checks.
const ctxCheckEvery = 512

// LoadStats counts what happened to each data row.
type LoadStats struct {
	Rows          int
	Kept          int
	MissingIBGE   int
	InvalidIBGE   int
	InvalidCounts int
}

// Loader implements domain.HealthSource for local files.
type Loader struct {
	skipLines int
	logger    *slog.Logger
}

// NewLoader creates a Loader that skips skipLines lines before the header row.
func NewLoader(skipLines int, logger *slog.Logger) *Loader {
	return &Loader{skipLines: skipLines, logger: logger}
}

// Load reads and cleans the health table at path.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.HealthRecord, error) {
	records, _, err := l.LoadWithStats(ctx, path)
	return records, err
}

// LoadWithStats is Load plus per-row drop counts.
func (l *Loader) LoadWithStats(ctx context.Context, path string) ([]domain.HealthRecord, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, LoadStats{}, fmt.Errorf("open %s: %w", path, domain.ErrFileNotFound)
		}
		return nil, LoadStats{}, &domain.DataProcessingError{Op: "open health table", Err: err}
	}
	defer f.Close()

	records, stats, err := Parse(ctx, f, l.skipLines)
	if err != nil {
		return nil, stats, err
	}

	l.logger.Debug("health table loaded",
		"path", path,
		"rows", stats.Rows,
		"kept", stats.Kept,
		"missing_ibge", stats.MissingIBGE,
		"invalid_ibge", stats.InvalidIBGE,
		"invalid_counts", stats.InvalidCounts,
	)
	return records, stats, nil
}

// Parse decodes an ISO-8859-1 health table from r. The first skipLines lines
// are discarded, the next line is the header (ignored, the layout is fixed),
// and every remaining line is a data row.
func Parse(ctx context.Context, r io.Reader, skipLines int) ([]domain.HealthRecord, LoadStats, error) {
	var stats LoadStats

	br := bufio.NewReader(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))
	for i := 0; i < skipLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, stats, &domain.DataProcessingError{
					Op:  "parse health table",
					Err: fmt.Errorf("file ends after %d lines, before the header row", i),
				}
			}
			return nil, stats, &domain.DataProcessingError{Op: "read health table", Err: err}
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = ';'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("missing header row")
		}
		return nil, stats, &domain.DataProcessingError{Op: "parse health table header", Err: err}
	}
	if len(header) != numColumns {
		return nil, stats, &domain.DataProcessingError{
			Op:  "parse health table header",
			Err: fmt.Errorf("expected %d columns, got %d", numColumns, len(header)),
		}
	}

	var records []domain.HealthRecord
	for {
		if stats.Rows%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, &domain.DataProcessingError{Op: "parse health table", Err: err}
		}
		stats.Rows++

		if len(row) > numColumns {
			line, _ := cr.FieldPos(0)
			return nil, stats, &domain.DataProcessingError{
				Op:  "parse health table",
				Err: fmt.Errorf("line %d: expected %d fields, got %d", line+skipLines, numColumns, len(row)),
			}
		}

		rec, reason := parseRow(row)
		switch reason {
		case dropNone:
			stats.Kept++
			records = append(records, rec)
		case dropMissingIBGE:
			stats.MissingIBGE++
		case dropInvalidIBGE:
			stats.InvalidIBGE++
		case dropInvalidCount:
			stats.InvalidCounts++
		}
	}

	if records == nil {
		records = []domain.HealthRecord{}
	}
	return records, stats, nil
}

type dropReason int

const (
	dropNone dropReason = iota
	dropMissingIBGE
	dropInvalidIBGE
	dropInvalidCount
)

func parseRow(row []string) (domain.HealthRecord, dropReason) {
	field := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	ibgeStr := field(colIBGE)
	if ibgeStr == "" {
		return domain.HealthRecord{}, dropMissingIBGE
	}
	ibge, ok := parseIBGE(ibgeStr)
	if !ok {
		return domain.HealthRecord{}, dropInvalidIBGE
	}

	diabetes, okD := parseCount(field(colDiabetes))
	hypertension, okH := parseCount(field(colHypertension))
	if !okD || !okH {
		return domain.HealthRecord{}, dropInvalidCount
	}

	return domain.HealthRecord{
		UF:           field(colUF),
		IBGE:         ibge,
		Municipality: field(colMunicipality),
		Diabetes:     diabetes,
		Hypertension: hypertension,
	}, dropNone
}

// parseIBGE accepts plain integers and integral floats ("350010.0").
func parseIBGE(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// parseCount strips "." thousands separators and parses the rest as a number:
// "1.234" -> 1234. Empty, NaN and non-numeric values are rejected.
func parseCount(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ".", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
