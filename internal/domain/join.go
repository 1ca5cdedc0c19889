package domain

// Join inner-joins health and geo records on the IBGE code, drops rows without
// coordinates and derives TotalCases.
//
// Output follows health input order; a health row matching several geo rows
// yields one row per match in geo input order. The result is never nil.
func Join(health []HealthRecord, geo []GeoRecord) []JoinedRecord {
	byIBGE := make(map[int][]GeoRecord, len(geo))
	for _, g := range geo {
		byIBGE[g.IBGE] = append(byIBGE[g.IBGE], g)
	}

	out := make([]JoinedRecord, 0, min(len(health), len(geo)))
	for _, h := range health {
		for _, g := range byIBGE[h.IBGE] {
			if g.Latitude == nil || g.Longitude == nil {
				continue
			}
			out = append(out, JoinedRecord{
				HealthRecord: h,
				Latitude:     *g.Latitude,
				Longitude:    *g.Longitude,
				TotalCases:   h.Diabetes + h.Hypertension,
			})
		}
	}
	return out
}
