// exporter/json.go
package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gewnthar/flightscrape/models"
	"github.com/gewnthar/flightscrape/utils"
)

// WriteJSON writes records as an indented UTF-8 JSON array. Non-ASCII text
// and HTML characters are written as-is.
func WriteJSON(records []models.NormalizedItinerary, path string) error {
	if records == nil {
		records = []models.NormalizedItinerary{}
	}
	if err := ensureParent(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to write JSON to %s: %w", path, err)
	}
	return f.Close()
}

// ReadJSON loads records written by WriteJSON.
func ReadJSON(path string) ([]models.NormalizedItinerary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var records []models.NormalizedItinerary
	if err := utils.DecodeJSON(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return records, nil
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
