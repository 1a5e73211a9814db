// normalizer/co2.go
package normalizer

import (
	"math"
	"strconv"
	"strings"

	"github.com/gewnthar/flightscrape/models"
)

// CO2Factor converts weighted segment minutes to kilograms of CO2. It is a
// coarse demonstration proxy with no physical calibration; estimates built on
// it are order-of-magnitude figures only.
const CO2Factor = 2.3

// DefaultSegmentWeight is the weight, in minutes, of a segment whose
// duration is missing or unusable.
const DefaultSegmentWeight = 60.0

// DurationWeight turns a duration into a positive weight in minutes.
// Numbers are taken as minutes; text such as "11h 35m" is parsed leniently.
func DurationWeight(v any) float64 {
	var total float64
	if n, ok := numeric(v); ok {
		total = n
	} else {
		total = parseDurationText(textOf(v))
	}
	if !(total > 0) || math.IsInf(total, 0) {
		return DefaultSegmentWeight
	}
	return total
}

// SegmentWeight is DurationWeight applied to a raw segment's duration field.
func SegmentWeight(seg map[string]any) float64 {
	return DurationWeight(firstPresent(seg, segmentDurationKeys))
}

// parseDurationText reads "<hours>h <minutes>m". Components that do not
// parse count as zero.
func parseDurationText(s string) float64 {
	var hours, minutes float64
	if i := strings.Index(s, "h"); i >= 0 {
		hours = parseDurationComponent(s[:i])
		if strings.Contains(s, "m") {
			rest := s[i+1:]
			if j := strings.Index(rest, "h"); j >= 0 {
				rest = rest[:j]
			}
			minutes = parseDurationComponent(strings.SplitN(rest, "m", 2)[0])
		}
	} else if i := strings.Index(s, "m"); i >= 0 {
		minutes = parseDurationComponent(s[:i])
	}
	return hours*60 + minutes
}

func parseDurationComponent(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// EstimateCO2 weights every segment of the given legs by duration.
func EstimateCO2(legs []models.NormalizedLeg) models.CO2Estimate {
	var weights []float64
	for _, leg := range legs {
		for _, seg := range leg.Segments {
			weights = append(weights, DurationWeight(seg.Duration))
		}
	}
	return estimateFromWeights(weights)
}

// EstimateCO2ForRawLegs does the same for legs that were never normalized.
func EstimateCO2ForRawLegs(legs []any) models.CO2Estimate {
	var weights []float64
	for _, l := range legs {
		segments, _ := asList(asMap(l)["segments"])
		for _, s := range segments {
			weights = append(weights, SegmentWeight(asMap(s)))
		}
	}
	return estimateFromWeights(weights)
}

func estimateFromWeights(weights []float64) models.CO2Estimate {
	if len(weights) == 0 {
		return models.CO2Estimate{Method: models.CO2MethodNone}
	}
	var sum float64
	for _, w := range weights {
		sum += w
	}
	total := sum * CO2Factor
	avg := total / float64(len(weights))

	total, avg = round2(total), round2(avg)
	return models.CO2Estimate{
		EstimatedKgCO2:      &total,
		AveragePerSegmentKg: &avg,
		Method:              models.CO2MethodHeuristicDuration,
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// co2FromSource maps an upstream co2Info value onto a CO2Estimate. Values
// that are not already an estimate are carried through unchanged. ok is
// false only when the value is blank.
func co2FromSource(v any) (models.CO2Estimate, bool) {
	if isBlank(v) {
		return models.CO2Estimate{}, false
	}
	return models.CO2EstimateFromSource(v), true
}
