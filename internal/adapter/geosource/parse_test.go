package geosource

import (
	"strings"
	"testing"

	"github.com/couchcryptid/sp-health-heatmap/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RegionFilter(t *testing.T) {
	body := `codigo_ibge,codigo_uf,latitude,longitude
3550308,35,-23.5329,-46.6395
3304557,33,-22.9129,-43.2003
`
	got, stats, err := Parse(strings.NewReader(body), regionSP)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, 3550308, got[0].IBGE)
	assert.Equal(t, ParseStats{Rows: 2, Kept: 1}, stats)
}

func TestParse_ColumnOrderAndBOM(t *testing.T) {
	body := "\ufefflongitude,latitude,codigo_uf,codigo_ibge\n-46.6,-23.5,35,3550308\n"

	got, _, err := Parse(strings.NewReader(body), regionSP)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, -23.5, *got[0].Latitude)
	assert.Equal(t, -46.6, *got[0].Longitude)
}

func TestParse_InvalidValues(t *testing.T) {
	body := `codigo_ibge,codigo_uf,latitude,longitude
abc,35,-23.5,-46.6
3550308,35,north,-46.6
3500105,35.0,-21.6,-51.0
3500204,SP,-21.6,-51.0
`
	got, stats, err := Parse(strings.NewReader(body), regionSP)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, 3550308, got[0].IBGE)
	assert.Nil(t, got[0].Latitude)
	assert.NotNil(t, got[0].Longitude)
	assert.Equal(t, 3500105, got[1].IBGE, "integral float region codes are accepted")
	assert.Equal(t, ParseStats{Rows: 4, Kept: 2, InvalidIBGE: 1}, stats)
}

func TestParse_MissingColumns(t *testing.T) {
	_, _, err := Parse(strings.NewReader("codigo_ibge,nome\n1,A\n"), regionSP)

	var dpe *domain.DataProcessingError
	require.ErrorAs(t, err, &dpe)
	assert.Contains(t, err.Error(), "codigo_uf, latitude, longitude")
}

func TestParse_EmptyBody(t *testing.T) {
	_, _, err := Parse(strings.NewReader(""), regionSP)

	var dpe *domain.DataProcessingError
	require.ErrorAs(t, err, &dpe)
	assert.Contains(t, err.Error(), "empty response body")
}

func TestParse_ShortRows(t *testing.T) {
	body := "codigo_ibge,codigo_uf,latitude,longitude\n3550308,35\n"

	got, _, err := Parse(strings.NewReader(body), regionSP)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Latitude)
	assert.Nil(t, got[0].Longitude)
}

func TestParse_JoinKeyMatchesHealthRecords(t *testing.T) {
	body := "codigo_ibge,codigo_uf,latitude,longitude\n3550308,35,-23.5,-46.6\n3304557,33,-22.9,-43.2\n"
	geo, _, err := Parse(strings.NewReader(body), regionSP)
	require.NoError(t, err)

	health := []domain.HealthRecord{
		{IBGE: 3550308, Diabetes: 1, Hypertension: 2},
		{IBGE: 3304557, Diabetes: 3, Hypertension: 4}, // matches a geo row, but in state 33
	}
	joined := domain.Join(health, geo)

	require.Len(t, joined, 1)
	assert.Equal(t, 3550308, joined[0].IBGE)
	assert.Equal(t, 3.0, joined[0].TotalCases)
}
