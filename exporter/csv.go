// exporter/csv.go
package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jszwec/csvutil"

	"github.com/gewnthar/flightscrape/models"
)

// WriteCSV writes one flattened row per record. The header is written even
// when records is empty.
func WriteCSV(records []models.NormalizedItinerary, path string) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := EncodeCSV(f, records); err != nil {
		return fmt.Errorf("failed to write CSV to %s: %w", path, err)
	}
	return f.Close()
}

// EncodeCSV is WriteCSV for an arbitrary writer.
func EncodeCSV(w io.Writer, records []models.NormalizedItinerary) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	rows := FlattenAll(records)
	if len(rows) == 0 {
		if err := enc.EncodeHeader(models.ItineraryRow{}); err != nil {
			return fmt.Errorf("failed to encode CSV header: %w", err)
		}
	} else if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode CSV rows: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV decodes rows written by WriteCSV. The header must match the csv
// tags of models.ItineraryRow; a header-only or empty input yields no rows.
func ReadCSV(r io.Reader) ([]models.ItineraryRow, error) {
	var rows []models.ItineraryRow

	decoder, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		return nil, fmt.Errorf("failed to create CSV decoder: %w", err)
	}
	if err := decoder.Decode(&rows); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode itinerary rows: %w", err)
	}
	return rows, nil
}
