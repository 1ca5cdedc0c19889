// Command report runs the load-join-aggregate pipeline once and prints the
// preview table and totals to stdout, without starting the web service.
// Defaults come from the same environment variables the service reads.
//
// Usage:
//
//	go run ./cmd/report \
//	  -health hipertensao_diabetes.csv \
//	  -region 35 \
//	  -rows 10
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/couchcryptid/sp-health-heatmap/internal/adapter/geosource"
	"github.com/couchcryptid/sp-health-heatmap/internal/adapter/healthcsv"
	"github.com/couchcryptid/sp-health-heatmap/internal/config"
	"github.com/couchcryptid/sp-health-heatmap/internal/domain"
	"github.com/couchcryptid/sp-health-heatmap/internal/observability"
	"github.com/couchcryptid/sp-health-heatmap/internal/pipeline"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

type options struct {
	healthPath string
	skipLines  int
	geoURL     string
	regionCode int
	timeout    time.Duration
	retries    int
	rows       int
}

func main() {
	ds, err := config.LoadDataset()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	var opts options
	flag.StringVar(&opts.healthPath, "health", ds.HealthCSVPath, "path to the Latin-1 health incidence table")
	flag.IntVar(&opts.skipLines, "skip", ds.HealthSkipLines, "metadata lines before the health table header")
	flag.StringVar(&opts.geoURL, "geo-url", ds.GeoDataURL, "URL of the municipality coordinate table")
	flag.IntVar(&opts.regionCode, "region", ds.RegionCode, "state code (codigo_uf) to keep")
	flag.DurationVar(&opts.timeout, "timeout", ds.GeoTimeout, "timeout for the coordinate download")
	flag.IntVar(&opts.retries, "retries", ds.GeoMaxRetries, "retries for the coordinate download")
	flag.IntVar(&opts.rows, "rows", ds.PreviewRows, "preview rows to print")
	flag.Parse()

	if opts.rows < 1 {
		flag.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if code := run(ctx, opts, os.Stdout, os.Stderr, logger, observability.NewMetrics()); code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer, logger *slog.Logger, metrics *observability.Metrics) int {
	fail := func(err error) int {
		fmt.Fprintln(stderr, domain.UserMessage(err, filepath.Base(opts.healthPath)))
		return 1
	}

	health, stats, err := healthcsv.NewLoader(opts.skipLines, logger).LoadWithStats(ctx, opts.healthPath)
	if err != nil {
		return fail(err)
	}

	client := geosource.NewClient(opts.geoURL, opts.timeout, opts.retries, logger, metrics)
	geo, err := client.Fetch(ctx, opts.regionCode)
	if err != nil {
		return fail(err)
	}

	result := pipeline.NewAggregator(domain.HeatMapOptions{}, opts.rows).Aggregate(health, geo)

	p := message.NewPrinter(language.BrazilianPortuguese)
	count := func(v float64) string { return p.Sprint(number.Decimal(v, number.MaxFractionDigits(0))) }

	fmt.Fprintln(stdout, "=== Diabetes e Hipertensão por município ===")
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Tabela de saúde: %d linhas lidas, %d válidas (%d sem IBGE, %d IBGE inválido, %d contagens inválidas)\n",
		stats.Rows, stats.Kept, stats.MissingIBGE, stats.InvalidIBGE, stats.InvalidCounts)
	fmt.Fprintf(stdout, "Coordenadas: %d municípios na UF %d\n", len(geo), opts.regionCode)
	fmt.Fprintf(stdout, "Combinados: %d municípios\n", len(result.Rows))
	fmt.Fprintln(stdout)

	if len(result.Rows) == 0 {
		fmt.Fprintln(stdout, "Nenhum dado para exibir.")
		return 0
	}

	fmt.Fprintf(stdout, "  %-3s %-8s %-32s %12s %12s %10s %10s %12s\n",
		"UF", "IBGE", "Município", "Diabetes", "Hipertensão", "Latitude", "Longitude", "Total")
	for _, r := range result.Preview {
		fmt.Fprintf(stdout, "  %-3s %-8s %-32s %12s %12s %10.4f %10.4f %12s\n",
			r.UF, strconv.Itoa(r.IBGE), r.Municipality,
			count(r.Diabetes), count(r.Hypertension), r.Latitude, r.Longitude, count(r.TotalCases))
	}

	s := result.Summary
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Total de casos: %s (diabetes %s, hipertensão %s)\n",
		count(s.TotalCases), count(s.Diabetes), count(s.Hypertension))
	fmt.Fprintf(stdout, "Maior incidência: %s (%s)\n", s.Peak.Municipality, count(s.Peak.TotalCases))
	fmt.Fprintf(stdout, "Centro do mapa: %.4f, %.4f\n", result.HeatMap.Center.Lat, result.HeatMap.Center.Lon)
	return 0
}
