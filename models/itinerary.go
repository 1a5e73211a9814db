// models/itinerary.go
package models

// AirlineIdentity is the canonical airline reference attached to itineraries.
// Code is upper-cased when set; Name is nil rather than empty.
type AirlineIdentity struct {
	Code *string `json:"code"`
	Name *string `json:"name"`
	Logo *string `json:"logo"`
}

// NormalizedSegment is one non-stop hop. Departure, Arrival, Duration,
// FlightNumber and Aircraft carry whatever value the source supplied.
type NormalizedSegment struct {
	Airline      *string `json:"airline"`
	Departure    any     `json:"departure"`
	Arrival      any     `json:"arrival"`
	Duration     any     `json:"duration"`
	FlightNumber any     `json:"flightNumber"`
	Aircraft     any     `json:"aircraft"`
}

// NormalizedLeg is one directional trip made of ordered segments.
type NormalizedLeg struct {
	LegDurationDisplay any                 `json:"legDurationDisplay"`
	Overnight          bool                `json:"overnight"`
	Segments           []NormalizedSegment `json:"segments"`
}

// ProviderInfo describes who sells the itinerary. Currency is passed through
// as-is; prices are never converted.
type ProviderInfo struct {
	Name     *string `json:"name"`
	Logo     *string `json:"logo"`
	Currency *string `json:"currency"`
}

// NormalizedItinerary is the canonical record produced for every raw itinerary.
type NormalizedItinerary struct {
	CabinCode              string            `json:"cabinCode"`
	DisplayAirline         AirlineIdentity   `json:"displayAirline"`
	DistinctAirlines       []AirlineIdentity `json:"distinctAirlines"`
	Legs                   []NormalizedLeg   `json:"legs"`
	OptionsByFare          []any             `json:"optionsByFare"`
	MinDisplayPrice        *float64          `json:"minDisplayPrice"`
	ProviderInfo           ProviderInfo      `json:"providerInfo"`
	CO2Info                CO2Estimate       `json:"co2Info"`
	Origin                 any               `json:"origin"`
	Destination            any               `json:"destination"`
	OperationalDisclosures []any             `json:"operationalDisclosures"`
}

// SegmentCount returns the number of segments across all legs.
func (it NormalizedItinerary) SegmentCount() int {
	n := 0
	for _, leg := range it.Legs {
		n += len(leg.Segments)
	}
	return n
}
