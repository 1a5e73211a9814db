// models/co2.go
package models

import (
	"encoding/json"

	"github.com/gewnthar/flightscrape/utils"
)

const (
	CO2MethodHeuristicDuration = "heuristic-duration"
	CO2MethodNone              = "none"
	// CO2MethodSource marks figures copied from the upstream record when it
	// did not name a method itself.
	CO2MethodSource = "source"
)

// CO2Estimate holds emissions figures in kilograms.
//
// Source keeps an upstream co2Info value that is not already in this shape.
// When set it is serialized verbatim; the typed fields then only carry
// whatever could be read from it, for flat exports.
type CO2Estimate struct {
	EstimatedKgCO2      *float64 `json:"estimatedKgCO2"`
	AveragePerSegmentKg *float64 `json:"averagePerSegmentKg"`
	Method              string   `json:"method"`
	Source              any      `json:"-"`
}

type co2Fields CO2Estimate

// MarshalJSON writes Source unchanged when present.
func (c CO2Estimate) MarshalJSON() ([]byte, error) {
	if c.Source != nil {
		return json.Marshal(c.Source)
	}
	return json.Marshal(co2Fields(c))
}

// UnmarshalJSON accepts any JSON value; see CO2EstimateFromSource.
func (c *CO2Estimate) UnmarshalJSON(data []byte) error {
	var raw any
	if err := utils.DecodeJSON(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*c = CO2Estimate{}
		return nil
	}
	*c = CO2EstimateFromSource(raw)
	return nil
}

// CO2EstimateFromSource maps an upstream co2Info value. An object with
// exactly estimatedKgCO2, averagePerSegmentKg and a method becomes a plain
// estimate; anything else is kept as Source.
func CO2EstimateFromSource(v any) CO2Estimate {
	m, isMap := v.(map[string]any)
	if isMap && isEstimateShape(m) {
		est := CO2Estimate{Method: m["method"].(string)}
		est.EstimatedKgCO2, _ = floatOf(m["estimatedKgCO2"])
		est.AveragePerSegmentKg, _ = floatOf(m["averagePerSegmentKg"])
		return est
	}

	est := CO2Estimate{Method: CO2MethodSource, Source: v}
	if !isMap {
		est.EstimatedKgCO2, _ = floatOf(v)
		return est
	}
	if method, ok := m["method"].(string); ok && method != "" {
		est.Method = method
	}
	est.EstimatedKgCO2, _ = floatOf(m["estimatedKgCO2"])
	est.AveragePerSegmentKg, _ = floatOf(m["averagePerSegmentKg"])
	return est
}

func isEstimateShape(m map[string]any) bool {
	if len(m) != 3 {
		return false
	}
	if method, ok := m["method"].(string); !ok || method == "" {
		return false
	}
	for _, k := range []string{"estimatedKgCO2", "averagePerSegmentKg"} {
		v, present := m[k]
		if !present {
			return false
		}
		if _, ok := floatOf(v); !ok && v != nil {
			return false
		}
	}
	return true
}

func floatOf(v any) (*float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil, false
		}
		f = parsed
	default:
		return nil, false
	}
	return &f, true
}
