// cmd/flightnorm/main.go

// Command flightnorm normalizes a saved or live flight-search payload and exports
// the result as JSON, CSV and/or XLSX.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/gewnthar/flightscrape/config"
	"github.com/gewnthar/flightscrape/database"
	"github.com/gewnthar/flightscrape/exporter"
	"github.com/gewnthar/flightscrape/logging"
	"github.com/gewnthar/flightscrape/models"
	"github.com/gewnthar/flightscrape/scraper"
	"github.com/gewnthar/flightscrape/services"
)

type options struct {
	configPath  string
	input       string
	url         string
	origin      string
	destination string
	date        string
	selector    string
	outDir      string
	name        string
	format      string
	saveRaw     string
	summary     bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("flightnorm", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "path to config.yaml (optional)")
	fs.StringVar(&o.input, "input", "", "path to a saved JSON or HTML search payload")
	fs.StringVar(&o.url, "url", "", "search URL to fetch instead of -input")
	fs.StringVar(&o.origin, "origin", "", "default origin airport code")
	fs.StringVar(&o.destination, "destination", "", "default destination airport code")
	fs.StringVar(&o.date, "date", "", "search date, YYYY-MM-DD")
	fs.StringVar(&o.selector, "selector", "", "CSS selector for JSON embedded in HTML pages")
	fs.StringVar(&o.outDir, "out", "", "output directory (default from config)")
	fs.StringVar(&o.name, "name", "itineraries", "base name of the exported files")
	fs.StringVar(&o.format, "format", "json,csv", "json, csv, xlsx, all, or a comma-separated list")
	fs.StringVar(&o.saveRaw, "save-raw", "", "with -url, keep the fetched body at this path")
	fs.BoolVar(&o.summary, "summary", false, "print the exported CSV rows")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	if (o.input == "") == (o.url == "") {
		return o, errors.New("exactly one of -input or -url is required")
	}
	if o.saveRaw != "" && o.url == "" {
		return o, errors.New("-save-raw needs -url")
	}
	return o, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "flightnorm:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		logging.L().Errorf("flightnorm: %v", err)
		logging.Sync()
		os.Exit(1)
	}
	logging.Sync()
}

func run(ctx context.Context, opts options) error {
	if err := config.LoadConfig(opts.configPath); err != nil {
		return err
	}
	cfg := config.AppConfig
	if err := logging.Init(cfg.Logging.Level, true); err != nil {
		return err
	}

	if cfg.Database.Driver != "" {
		if err := database.InitDB(cfg.Database); err != nil {
			return err
		}
		defer database.CloseDB()
	}
	if err := services.Init(cfg); err != nil {
		return err
	}

	formats, err := services.ParseFormats(opts.format)
	if err != nil {
		return err
	}

	req := models.FetchRequest{
		URL:         opts.url,
		Origin:      opts.origin,
		Destination: opts.destination,
		Date:        opts.date,
		Selector:    opts.selector,
	}

	var result *models.FetchResult
	switch {
	case opts.url != "" && opts.saveRaw != "":
		result, err = downloadAndIngest(ctx, cfg.Source, opts.url, opts.saveRaw, req)
	case opts.url != "":
		result, err = services.FetchAndNormalize(ctx, req)
	default:
		var body []byte
		body, err = os.ReadFile(opts.input)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		result, err = services.IngestPayload(fileSource(opts.input), body, req)
	}
	if err != nil {
		return err
	}

	exported, err := services.ExportItineraries(ctx, opts.name, result.Itineraries, formats, opts.outDir)
	if err != nil {
		return err
	}

	log := logging.L()
	log.Infof("Normalized %d itineraries (run %s)", len(result.Itineraries), result.Run.RunID)
	for _, f := range exported.Files {
		log.Infof("Wrote %s", f)
	}
	for _, u := range exported.Uploaded {
		log.Infof("Uploaded %s", u)
	}

	if opts.summary {
		return printSummary(exported.Files)
	}
	return nil
}

// downloadAndIngest keeps a copy of the upstream body at savePath and
// normalizes that copy, so the archived file is exactly what was processed.
func downloadAndIngest(ctx context.Context, src config.SourceConfig, url, savePath string, req models.FetchRequest) (*models.FetchResult, error) {
	client, err := scraper.NewHTTPClient(scraper.OptionsFromConfig(src))
	if err != nil {
		return nil, err
	}
	if err := client.DownloadFile(ctx, url, savePath); err != nil {
		return nil, err
	}
	body, err := os.ReadFile(savePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", savePath, err)
	}
	return services.IngestPayload(url, body, req)
}

var absPath = filepath.Abs

// fileSource is the source URL recorded for a local input file.
func fileSource(path string) string {
	abs, err := absPath(path)
	if err != nil {
		logging.L().Warnf("flightnorm: cannot resolve %s: %v", path, err)
		return "file://" + filepath.ToSlash(path)
	}
	return "file://" + filepath.ToSlash(abs)
}

func printSummary(files []string) error {
	for _, path := range files {
		if !strings.EqualFold(filepath.Ext(path), ".csv") {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()

		rows, err := exporter.ReadCSV(f)
		if err != nil {
			return err
		}
		for _, r := range rows {
			price := "-"
			if r.MinDisplayPrice != nil {
				price = fmt.Sprintf("%.2f %s", *r.MinDisplayPrice, r.ProviderCurrency)
			}
			fmt.Printf("%s-%s  %-3s %-22s %2d legs %2d segs  %s\n",
				r.Origin, r.Destination, r.CabinCode, r.DisplayAirlineName, r.Legs, r.Segments, price)
		}
		return nil
	}
	fmt.Println("(summary needs the csv format)")
	return nil
}
