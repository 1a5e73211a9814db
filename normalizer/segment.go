// normalizer/segment.go
package normalizer

import (
	"strings"

	"github.com/gewnthar/flightscrape/models"
)

// InferSegmentAirline looks for an airline under the carrier-bearing keys
// (carrier, marketingAirline, operatingAirline, in that order). Objects yield
// their name, or their code when the name is missing.
func InferSegmentAirline(seg map[string]any) *string {
	for _, key := range segmentCarrierKeys {
		if label := airlineLabel(seg[key]); label != "" {
			return &label
		}
	}
	return nil
}

func airlineLabel(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if name := stringOf(val["name"]); name != "" {
			return name
		}
		return stringOf(val["code"])
	}
	return ""
}

func normalizeSegment(raw any) models.NormalizedSegment {
	seg := asMap(raw)

	airline := optional(airlineLabel(seg["airline"]))
	if airline == nil {
		airline = InferSegmentAirline(seg)
	}

	return models.NormalizedSegment{
		Airline:      airline,
		Departure:    firstPresent(seg, segmentDepartureKeys),
		Arrival:      firstPresent(seg, segmentArrivalKeys),
		Duration:     firstPresent(seg, segmentDurationKeys),
		FlightNumber: seg["flightNumber"],
		Aircraft:     seg["aircraft"],
	}
}

func normalizeLeg(raw any) models.NormalizedLeg {
	leg := asMap(raw)
	rawSegments, _ := asList(leg["segments"])

	segments := make([]models.NormalizedSegment, 0, len(rawSegments))
	for _, s := range rawSegments {
		segments = append(segments, normalizeSegment(s))
	}

	overnight, _ := leg["overnight"].(bool)
	return models.NormalizedLeg{
		LegDurationDisplay: firstPresent(leg, legDurationKeys),
		Overnight:          overnight,
		Segments:           segments,
	}
}

// collectDistinctAirlines returns one name per airline seen across segments,
// compared case-insensitively after trimming. The first spelling and first
// position win.
func collectDistinctAirlines(legs []models.NormalizedLeg) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, leg := range legs {
		for _, seg := range leg.Segments {
			if seg.Airline == nil {
				continue
			}
			key := strings.ToLower(strings.TrimSpace(*seg.Airline))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			names = append(names, *seg.Airline)
		}
	}
	return names
}
