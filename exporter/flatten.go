// exporter/flatten.go
package exporter

import (
	"fmt"

	"github.com/gewnthar/flightscrape/models"
)

// Columns is the flat export header, in order.
var Columns = []string{
	"origin",
	"destination",
	"cabinCode",
	"displayAirlineCode",
	"displayAirlineName",
	"minDisplayPrice",
	"providerName",
	"providerCurrency",
	"legs",
	"segments",
	"firstLegDuration",
	"co2EstimatedKg",
}

// Flatten summarizes a normalized itinerary into one row.
func Flatten(it models.NormalizedItinerary) models.ItineraryRow {
	row := models.ItineraryRow{
		Origin:             text(it.Origin),
		Destination:        text(it.Destination),
		CabinCode:          it.CabinCode,
		DisplayAirlineCode: deref(it.DisplayAirline.Code),
		DisplayAirlineName: deref(it.DisplayAirline.Name),
		MinDisplayPrice:    it.MinDisplayPrice,
		ProviderName:       deref(it.ProviderInfo.Name),
		ProviderCurrency:   deref(it.ProviderInfo.Currency),
		Legs:               len(it.Legs),
		Segments:           it.SegmentCount(),
		CO2EstimatedKg:     it.CO2Info.EstimatedKgCO2,
	}
	if len(it.Legs) > 0 {
		row.FirstLegDuration = text(it.Legs[0].LegDurationDisplay)
	}
	return row
}

// FlattenAll maps Flatten over records.
func FlattenAll(records []models.NormalizedItinerary) []models.ItineraryRow {
	rows := make([]models.ItineraryRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, Flatten(r))
	}
	return rows
}

func text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	}
	return fmt.Sprint(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
