// services/export_service.go
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gewnthar/flightscrape/config"
	"github.com/gewnthar/flightscrape/database"
	"github.com/gewnthar/flightscrape/exporter"
	"github.com/gewnthar/flightscrape/logging"
	"github.com/gewnthar/flightscrape/models"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatAll  = "all"
)

var allFormats = []string{FormatJSON, FormatCSV, FormatXLSX}

var uploader exporter.Uploader

// SetUploader sets where exports are pushed after being written. nil
// keeps exports local.
func SetUploader(u exporter.Uploader) {
	stateMu.Lock()
	defer stateMu.Unlock()
	uploader = u
}

// ParseFormats accepts "json", "csv", "xlsx", "all" or a comma-separated
// list of them. Duplicates are dropped; order follows the input.
func ParseFormats(list string) ([]string, error) {
	seen := map[string]bool{}
	var formats []string
	for _, part := range strings.Split(list, ",") {
		f := strings.ToLower(strings.TrimSpace(part))
		if f == "" {
			continue
		}
		var expanded []string
		switch f {
		case FormatAll:
			expanded = allFormats
		case FormatJSON, FormatCSV, FormatXLSX:
			expanded = []string{f}
		default:
			return nil, fmt.Errorf("%w: unknown export format %q (use json, csv, xlsx or all)", ErrInvalidRequest, f)
		}
		for _, e := range expanded {
			if !seen[e] {
				seen[e] = true
				formats = append(formats, e)
			}
		}
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("%w: no export format given", ErrInvalidRequest)
	}
	return formats, nil
}

// ExportRun writes the stored itineraries of runID.
func ExportRun(ctx context.Context, runID string, formats []string, dir string) (*models.ExportResult, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, fmt.Errorf("%w: run_id is required", ErrInvalidRequest)
	}
	run, err := database.GetFetchRun(runID)
	if err != nil {
		return nil, err
	}
	records, err := database.GetItinerariesForRun(run.RunID)
	if err != nil {
		return nil, err
	}

	result, err := ExportItineraries(ctx, ExportName(*run), records, formats, dir)
	if err != nil {
		return nil, err
	}
	result.RunID = run.RunID
	return result, nil
}

// ExportItineraries writes records as <dir>/<name>.<format> for each format,
// validating them first when export.validate_schema is set, and uploads the
// files when an uploader is configured. Empty formats and dir fall back to
// the export config section.
func ExportItineraries(ctx context.Context, name string, records []models.NormalizedItinerary, formats []string, dir string) (*models.ExportResult, error) {
	cfg := config.AppConfig.Export
	if len(formats) == 0 {
		formats = cfg.Formats
	}
	if len(formats) == 0 {
		formats = config.Default().Export.Formats
	}
	formats, err := ParseFormats(strings.Join(formats, ","))
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = cfg.Dir
	}
	if dir == "" {
		dir = config.Default().Export.Dir
	}
	name = sanitizeName(name)

	if cfg.ValidateSchema {
		if err := exporter.ValidateRecords(records); err != nil {
			return nil, fmt.Errorf("export of %s rejected: %w", name, err)
		}
	}

	result := &models.ExportResult{Files: []string{}}
	for _, format := range formats {
		path := filepath.Join(dir, name+"."+format)
		var werr error
		switch format {
		case FormatJSON:
			werr = exporter.WriteJSON(records, path)
		case FormatCSV:
			werr = exporter.WriteCSV(records, path)
		case FormatXLSX:
			werr = exporter.WriteXLSX(records, path)
		}
		if werr != nil {
			return nil, fmt.Errorf("failed to export %s: %w", format, werr)
		}
		logging.L().Infof("Service: wrote %d itineraries to %s", len(records), path)
		result.Files = append(result.Files, path)
	}

	stateMu.RLock()
	up := uploader
	stateMu.RUnlock()
	if up != nil {
		for _, path := range result.Files {
			location, err := up.Upload(ctx, path)
			if err != nil {
				return nil, fmt.Errorf("failed to upload %s: %w", path, err)
			}
			result.Uploaded = append(result.Uploaded, location)
		}
	}
	return result, nil
}

// ExportName builds the default file name for a stored run.
func ExportName(run models.FetchRun) string {
	parts := []string{"itineraries"}
	if run.Origin != "" && run.Destination != "" {
		parts = append(parts, run.Origin+"-"+run.Destination)
	}
	if run.SearchDate != "" {
		parts = append(parts, run.SearchDate)
	}
	id := run.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	if id != "" {
		parts = append(parts, id)
	}
	return strings.Join(parts, "_")
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitizeName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".csv", ".xlsx":
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "itineraries"
	}
	return name
}
