// Package domain models the municipal diabetes/hypertension data shown on the
// São Paulo heat-map.
//
// # Data Sources
//
// Health counts come from a DATASUS-style export ("hipertensao_diabetes.csv"):
//
//	25 lines of title/filter metadata
//	Uf;Ibge;Municipio;Diabetes;Hipertensao_arterial;   <- header, trailing ';'
//	SP;350010;ADAMANTINA;1.234;3.456;
//
// The file is ISO-8859-1 encoded. Counts use "." as a thousands separator, so
// "1.234" means 1234. The trailing delimiter produces a sixth, always-empty
// column which is discarded.
//
// Coordinates come from the kelvins/Municipios-Brasileiros dataset, a
// comma-delimited table with a header row. The relevant columns are
// codigo_ibge (municipality), codigo_uf (state, 35 = São Paulo), latitude and
// longitude.
//
// # Join
//
// The IBGE municipality code is the join key. [Join] is a relational inner
// join: municipalities missing from either side contribute nothing, and rows
// whose coordinates are null are dropped afterwards. Each surviving row gets
// TotalCases = Diabetes + Hypertension, which is the heat-map weight.
//
// # Errors
//
// Loaders classify failures as [ErrFileNotFound], [*NetworkError] or
// [*DataProcessingError]. [UserMessage] converts any of them into the text
// shown to the user.
package domain
