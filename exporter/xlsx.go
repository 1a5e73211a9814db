// exporter/xlsx.go
package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/gewnthar/flightscrape/models"
)

// SheetName is the worksheet WriteXLSX fills.
const SheetName = "Itineraries"

// WriteXLSX writes the flattened rows to a single-sheet workbook with a
// bold, frozen header row.
func WriteXLSX(records []models.NormalizedItinerary, path string) error {
	if err := ensureParent(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header row: %w", err)
	}

	for i, row := range FlattenAll(records) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := rowValues(row)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// ReadXLSX returns every row of the Itineraries sheet, header included.
func ReadXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", SheetName, err)
	}
	return rows, nil
}

// rowValues lists a row in Columns order; missing numbers become empty cells.
func rowValues(r models.ItineraryRow) []interface{} {
	return []interface{}{
		r.Origin,
		r.Destination,
		r.CabinCode,
		r.DisplayAirlineCode,
		r.DisplayAirlineName,
		floatOrNil(r.MinDisplayPrice),
		r.ProviderName,
		r.ProviderCurrency,
		r.Legs,
		r.Segments,
		r.FirstLegDuration,
		floatOrNil(r.CO2EstimatedKg),
	}
}

func floatOrNil(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
