package weather

import (
	"fmt"
	"strings"
)

// ParseUnit accepts "F" or "C" in either case.
func ParseUnit(s string) (Unit, error) {
	switch Unit(strings.ToUpper(strings.TrimSpace(s))) {
	case Fahrenheit:
		return Fahrenheit, nil
	case Celsius:
		return Celsius, nil
	default:
		return "", fmt.Errorf("unsupported temperature unit %q", s)
	}
}

// ConvertTemperature converts value from one unit to another. The value is
// returned unchanged when it is nil, when from is empty or equal to to, and
// for any pair other than F<->C.
func ConvertTemperature(value *float64, from string, to Unit) *float64 {
	if value == nil || from == "" || Unit(from) == to {
		return value
	}

	var out float64
	switch {
	case Unit(from) == Fahrenheit && to == Celsius:
		out = (*value - 32) * 5 / 9
	case Unit(from) == Celsius && to == Fahrenheit:
		out = (*value * 9 / 5) + 32
	default:
		return value
	}
	return &out
}
