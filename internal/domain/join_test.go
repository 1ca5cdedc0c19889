package domain

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func health(ibge int, name string, diabetes, hypertension float64) HealthRecord {
	return HealthRecord{UF: "SP", IBGE: ibge, Municipality: name, Diabetes: diabetes, Hypertension: hypertension}
}

func geo(ibge int, lat, lon float64) GeoRecord {
	return GeoRecord{IBGE: ibge, Latitude: ptr(lat), Longitude: ptr(lon)}
}

func TestJoin(t *testing.T) {
	healthRows := []HealthRecord{
		health(3500105, "ADAMANTINA", 1234, 3456),
		health(3500204, "ADOLFO", 10, 20),
		health(3550308, "SAO PAULO", 500000, 1500000),
	}
	geoRows := []GeoRecord{
		geo(3550308, -23.5329, -46.6395),
		geo(3500105, -21.682, -51.0737),
		geo(3509502, -22.9099, -47.0626), // no health data
	}

	got := Join(healthRows, geoRows)

	want := []JoinedRecord{
		{HealthRecord: healthRows[0], Latitude: -21.682, Longitude: -51.0737, TotalCases: 4690},
		{HealthRecord: healthRows[2], Latitude: -23.5329, Longitude: -46.6395, TotalCases: 2000000},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Join mismatch (-want +got):\n%s", diff)
	}
}

func TestJoin_TotalCasesIsExactSum(t *testing.T) {
	healthRows := []HealthRecord{
		health(1, "A", 0.5, 0.25),
		health(2, "B", 1e9, 1),
		health(3, "C", 0, 0),
	}
	geoRows := []GeoRecord{geo(1, 1, 1), geo(2, 2, 2), geo(3, 3, 3)}

	for _, r := range Join(healthRows, geoRows) {
		assert.Equal(t, r.Diabetes+r.Hypertension, r.TotalCases)
	}
}

func TestJoin_DropsNullCoordinates(t *testing.T) {
	healthRows := []HealthRecord{health(1, "A", 1, 1), health(2, "B", 1, 1), health(3, "C", 1, 1)}
	geoRows := []GeoRecord{
		{IBGE: 1, Latitude: nil, Longitude: ptr(-46)},
		{IBGE: 2, Latitude: ptr(-23), Longitude: nil},
		geo(3, -22, -47),
	}

	got := Join(healthRows, geoRows)

	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].IBGE)
}

func TestJoin_EmptyIntersection(t *testing.T) {
	got := Join([]HealthRecord{health(9999, "NOWHERE", 1, 2)}, []GeoRecord{geo(3550308, -23.5, -46.6)})

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestJoin_EmptyInputs(t *testing.T) {
	assert.Empty(t, Join(nil, nil))
	assert.Empty(t, Join([]HealthRecord{health(1, "A", 1, 1)}, nil))
	assert.Empty(t, Join(nil, []GeoRecord{geo(1, 1, 1)}))
}

func TestJoin_DuplicateGeoRowsYieldOneRowPerMatch(t *testing.T) {
	got := Join(
		[]HealthRecord{health(1, "A", 1, 2)},
		[]GeoRecord{geo(1, 10, 20), geo(1, 11, 21)},
	)

	require.Len(t, got, 2)
	assert.Equal(t, 10.0, got[0].Latitude)
	assert.Equal(t, 11.0, got[1].Latitude)
}

func TestJoin_InnerJoinMembership(t *testing.T) {
	healthRows := []HealthRecord{health(1, "A", 1, 1), health(2, "B", 1, 1), health(4, "D", 1, 1)}
	geoRows := []GeoRecord{geo(2, 1, 1), geo(3, 1, 1), geo(4, 1, 1), {IBGE: 1}}

	var ids []int
	for _, r := range Join(healthRows, geoRows) {
		ids = append(ids, r.IBGE)
	}

	assert.Equal(t, []int{2, 4}, ids)
}

func TestJoin_Idempotent(t *testing.T) {
	healthRows := []HealthRecord{health(3, "C", 3, 3), health(1, "A", 1, 1), health(2, "B", 2, 2)}
	geoRows := []GeoRecord{geo(2, 2, 2), geo(1, 1, 1), geo(3, 3, 3)}

	first := Join(healthRows, geoRows)
	second := Join(healthRows, geoRows)
	assert.Equal(t, first, second)

	byID := func(rows []JoinedRecord) {
		sort.Slice(rows, func(i, j int) bool { return rows[i].IBGE < rows[j].IBGE })
	}
	byID(first)
	byID(second)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeat join differs (-first +second):\n%s", diff)
	}
}
