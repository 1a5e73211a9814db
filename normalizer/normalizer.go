// normalizer/normalizer.go

// Package normalizer turns loosely structured flight-search payloads into
// canonical itinerary records.
//
// Every field has a default: missing, malformed or unknown data degrades to
// that default instead of producing an error. The package does no I/O and
// keeps no mutable state, so a Normalizer may be shared across goroutines.
package normalizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gewnthar/flightscrape/airlines"
	"github.com/gewnthar/flightscrape/models"
	"github.com/gewnthar/flightscrape/utils"
)

const (
	defaultCabinCode      = "e"
	defaultDisplayAirline = "Multiple Airlines"
)

// Defaults fill origin and destination when a record has none.
type Defaults struct {
	Origin      string
	Destination string
}

// Normalizer resolves airline identities against a Directory.
type Normalizer struct {
	directory *airlines.Directory
}

// New returns a Normalizer; a nil directory means airlines.Default().
func New(dir *airlines.Directory) *Normalizer {
	if dir == nil {
		dir = airlines.Default()
	}
	return &Normalizer{directory: dir}
}

// Normalize runs the default Normalizer.
func Normalize(payload any, defaults Defaults) []models.NormalizedItinerary {
	return New(nil).Normalize(payload, defaults)
}

// NormalizeJSON decodes data and normalizes it. Only a JSON syntax error is
// reported; anything that decodes is handled by Normalize. Numbers are kept
// as json.Number so pass-through values are not rounded.
func NormalizeJSON(data []byte, defaults Defaults) ([]models.NormalizedItinerary, error) {
	var payload any
	if err := utils.DecodeJSON(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return Normalize(payload, defaults), nil
}

// LocateItineraries finds the itinerary list: the payload itself when it is
// a list, otherwise the first list stored under results, data, items,
// itineraries or flights. It returns nil when there is none.
func LocateItineraries(payload any) []any {
	if list, ok := asList(payload); ok {
		return list
	}
	m, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	for _, key := range containerKeys {
		if list, ok := asList(m[key]); ok {
			return list
		}
	}
	return nil
}

// Normalize returns one record per discovered itinerary, in input order.
func (n *Normalizer) Normalize(payload any, defaults Defaults) []models.NormalizedItinerary {
	items := LocateItineraries(payload)
	out := make([]models.NormalizedItinerary, 0, len(items))
	for _, item := range items {
		out = append(out, n.normalizeItinerary(asMap(item), defaults))
	}
	return out
}

func (n *Normalizer) normalizeItinerary(item map[string]any, defaults Defaults) models.NormalizedItinerary {
	rawLegs, _ := asList(item["legs"])
	legs := make([]models.NormalizedLeg, 0, len(rawLegs))
	for _, l := range rawLegs {
		legs = append(legs, normalizeLeg(l))
	}

	options, _ := asList(item["optionsByFare"])
	if options == nil {
		options = []any{}
	}

	co2, ok := co2FromSource(item["co2Info"])
	if !ok {
		co2 = EstimateCO2(legs)
	}

	disclosures, _ := asList(item["operationalDisclosures"])
	if disclosures == nil {
		disclosures = []any{}
	}

	return models.NormalizedItinerary{
		CabinCode:              cabinCode(item),
		DisplayAirline:         n.displayAirline(item),
		DistinctAirlines:       n.distinctAirlines(item, legs),
		Legs:                   legs,
		OptionsByFare:          options,
		MinDisplayPrice:        MinDisplayPrice(options),
		ProviderInfo:           providerInfo(item, options),
		CO2Info:                co2,
		Origin:                 valueOrDefault(item["origin"], defaults.Origin),
		Destination:            valueOrDefault(item["destination"], defaults.Destination),
		OperationalDisclosures: disclosures,
	}
}

func cabinCode(item map[string]any) string {
	raw := strings.ToLower(stringOf(firstPresent(item, cabinKeys)))
	if raw == "" {
		return defaultCabinCode
	}
	r, size := utf8.DecodeRuneInString(raw)
	if r == utf8.RuneError && size <= 1 {
		return raw[:1]
	}
	return string(r)
}

func (n *Normalizer) displayAirline(item map[string]any) models.AirlineIdentity {
	disp := asMap(item["displayAirline"])
	name := stringOf(disp["name"])
	if name == "" {
		name = defaultDisplayAirline
	}
	return n.directory.Resolve(stringOf(disp["code"]), name)
}

func (n *Normalizer) distinctAirlines(item map[string]any, legs []models.NormalizedLeg) []models.AirlineIdentity {
	if explicit, _ := asList(item["distinctAirlines"]); len(explicit) > 0 {
		out := make([]models.AirlineIdentity, 0, len(explicit))
		for _, a := range explicit {
			if name, ok := a.(string); ok {
				out = append(out, n.directory.Resolve("", name))
				continue
			}
			m := asMap(a)
			out = append(out, n.directory.Resolve(stringOf(m["code"]), stringOf(m["name"])))
		}
		return out
	}

	names := collectDistinctAirlines(legs)
	out := make([]models.AirlineIdentity, 0, len(names))
	for _, name := range names {
		out = append(out, n.directory.Resolve("", name))
	}
	return out
}

func providerInfo(item map[string]any, options []any) models.ProviderInfo {
	p := asMap(item["providerInfo"])
	name := stringOf(p["name"])
	if name == "" && len(options) > 0 {
		name = stringOf(asMap(options[0])["provider"])
	}
	return models.ProviderInfo{
		Name:     optional(name),
		Logo:     optional(stringOf(p["logo"])),
		Currency: optional(stringOf(p["currency"])),
	}
}

func valueOrDefault(v any, fallback string) any {
	if !isBlank(v) {
		return v
	}
	if fallback != "" {
		return fallback
	}
	return nil
}
