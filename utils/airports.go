// utils/airports.go
package utils

import "strings"

// NormalizeAirportCode upper-cases and trims an airport code, and converts
// 4-letter US ICAO codes (e.g., "KJFK") to their 3-letter IATA form ("JFK").
// Other codes are returned as is.
func NormalizeAirportCode(code string) string {
	upperCode := strings.ToUpper(strings.TrimSpace(code))
	if len(upperCode) == 4 && strings.HasPrefix(upperCode, "K") {
		return upperCode[1:]
	}
	return upperCode
}
