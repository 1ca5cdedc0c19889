package http

import (
	"context"
	"html/template"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/couchcryptid/sp-health-heatmap/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Intro describes the page under the title.
const Intro = "Este aplicativo visualiza a densidade de casos de <strong>diabetes e hipertensão</strong> " +
	"nos municípios do estado de São Paulo. Os dados são carregados, combinados com coordenadas " +
	"geográficas e exibidos como um mapa de calor interativo."

// EmptyMessage is shown in place of the map when the join produced no rows.
const EmptyMessage = "Nenhum dado para exibir."

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Mapa de Calor: Diabetes e Hipertensão em SP</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<style>
body { font-family: sans-serif; margin: 0 auto; max-width: 1100px; padding: 1rem; }
#map { height: 600px; }
.alert { background: #fdecea; border: 1px solid #f5c2c0; color: #611a15; padding: .75rem 1rem; }
.info { background: #e8f4fd; border: 1px solid #b6dcfb; padding: .75rem 1rem; }
table { border-collapse: collapse; margin-top: .5rem; width: 100%; }
th, td { border-bottom: 1px solid #ddd; padding: .25rem .5rem; text-align: right; }
th:nth-child(-n+3), td:nth-child(-n+3) { text-align: left; }
</style>
</head>
<body>
<h1>Mapa de Calor: Diabetes e Hipertensão em SP</h1>
<p>` + Intro + `</p>
{{- if .Failed}}
<div class="alert" role="alert">{{.Message}}</div>
{{- else}}
<h2>Pré-visualização dos dados combinados</h2>
<table>
<thead><tr><th>UF</th><th>IBGE</th><th>Município</th><th>Diabetes</th><th>Hipertensão arterial</th><th>Latitude</th><th>Longitude</th><th>Total de casos</th></tr></thead>
<tbody>
{{- range .Preview}}
<tr><td>{{.UF}}</td><td>{{.IBGE}}</td><td>{{.Municipality}}</td><td>{{.Diabetes}}</td><td>{{.Hypertension}}</td><td>{{.Latitude}}</td><td>{{.Longitude}}</td><td>{{.Total}}</td></tr>
{{- end}}
</tbody>
</table>
{{- if .Empty}}
<p class="info">` + EmptyMessage + `</p>
{{- else}}
<p>{{.Municipalities}} municípios, {{.TotalCases}} casos no total. Maior incidência: {{.PeakName}} ({{.PeakTotal}}).</p>
<div id="map"></div>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://unpkg.com/leaflet.heat@0.2.0/dist/leaflet-heat.js"></script>
<script>
var map = L.map("map").setView({{.Center}}, {{.Zoom}});
L.tileLayer("https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", {
  attribution: "&copy; OpenStreetMap contributors"
}).addTo(map);
L.heatLayer({{.Points}}, {radius: {{.Radius}}, max: {{.Max}}}).addTo(map);
</script>
{{- end}}
{{- end}}
</body>
</html>
`))

type previewRow struct {
	UF           string
	IBGE         string
	Municipality string
	Diabetes     string
	Hypertension string
	Latitude     string
	Longitude    string
	Total        string
}

type pageData struct {
	Failed  bool
	Message string
	Empty   bool

	Preview        []previewRow
	Municipalities string
	TotalCases     string
	PeakName       string
	PeakTotal      string

	Center [2]float64
	Zoom   int
	Radius int
	Points [][3]float64
	Max    float64
}

// Page renders the full heat-map document for a view.
func Page(view domain.View) templ.Component {
	data := newPageData(view, message.NewPrinter(language.BrazilianPortuguese))
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return pageTemplate.Execute(w, data)
	})
}

func newPageData(view domain.View, p *message.Printer) pageData {
	if view.Failed {
		return pageData{Failed: true, Message: view.Message}
	}

	res := view.Result
	count := func(v float64) string { return p.Sprint(number.Decimal(v, number.MaxFractionDigits(0))) }
	coord := func(v float64) string { return p.Sprint(number.Decimal(v, number.MaxFractionDigits(4))) }

	data := pageData{
		Empty:          res.HeatMap.Empty,
		Preview:        make([]previewRow, 0, len(res.Preview)),
		Municipalities: p.Sprint(number.Decimal(res.Summary.Municipalities)),
		TotalCases:     count(res.Summary.TotalCases),
		PeakName:       res.Summary.Peak.Municipality,
		PeakTotal:      count(res.Summary.Peak.TotalCases),
		Center:         [2]float64{res.HeatMap.Center.Lat, res.HeatMap.Center.Lon},
		Zoom:           res.HeatMap.Zoom,
		Radius:         res.HeatMap.Radius,
		Points:         make([][3]float64, 0, len(res.HeatMap.Points)),
		Max:            res.Summary.Peak.TotalCases,
	}
	for _, r := range res.Preview {
		data.Preview = append(data.Preview, previewRow{
			UF:           r.UF,
			IBGE:         strconv.Itoa(r.IBGE),
			Municipality: r.Municipality,
			Diabetes:     count(r.Diabetes),
			Hypertension: count(r.Hypertension),
			Latitude:     coord(r.Latitude),
			Longitude:    coord(r.Longitude),
			Total:        count(r.TotalCases),
		})
	}
	for _, pt := range res.HeatMap.Points {
		data.Points = append(data.Points, [3]float64{pt.Lat, pt.Lon, pt.Weight})
	}
	if data.Max <= 0 {
		data.Max = 1
	}
	return data
}
