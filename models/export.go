// models/export.go
package models

// ItineraryRow is the flat, one-row-per-itinerary view used by the CSV and
// XLSX exporters. Nested legs and segments are summarized into counts.
type ItineraryRow struct {
	Origin             string   `csv:"origin"`
	Destination        string   `csv:"destination"`
	CabinCode          string   `csv:"cabinCode"`
	DisplayAirlineCode string   `csv:"displayAirlineCode"`
	DisplayAirlineName string   `csv:"displayAirlineName"`
	MinDisplayPrice    *float64 `csv:"minDisplayPrice"`
	ProviderName       string   `csv:"providerName"`
	ProviderCurrency   string   `csv:"providerCurrency"`
	Legs               int      `csv:"legs"`
	Segments           int      `csv:"segments"`
	FirstLegDuration   string   `csv:"firstLegDuration"`
	CO2EstimatedKg     *float64 `csv:"co2EstimatedKg"`
}
