// normalizer/price.go
package normalizer

import (
	"strconv"
	"strings"
)

// MinDisplayPrice returns the lowest price found across fare options, reading
// displayPrice then price. Currency symbols, thousands separators and
// surrounding text are ignored; options that still fail to parse are skipped.
func MinDisplayPrice(options []any) *float64 {
	var best *float64
	for _, o := range options {
		opt, ok := o.(map[string]any)
		if !ok {
			continue
		}
		val, ok := parsePrice(firstPresent(opt, fareDisplayPriceKeys))
		if !ok {
			continue
		}
		if best == nil || val < *best {
			v := val
			best = &v
		}
	}
	return best
}

func parsePrice(raw any) (float64, bool) {
	text := textOf(raw)
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
