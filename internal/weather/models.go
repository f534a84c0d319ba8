package weather

import (
	"bytes"
	"encoding/json"
)

// Unit is a temperature unit as reported by the forecast service.
type Unit string

const (
	Fahrenheit Unit = "F"
	Celsius    Unit = "C"
)

// Location is a named point for which a report is built.
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Number is a JSON scalar that may be absent. Nulls, missing keys and
// non-numeric values all decode to an absent Number without error.
type Number struct {
	value *float64
}

// NewNumber returns a present Number holding v.
func NewNumber(v float64) Number {
	return Number{value: &v}
}

// Ptr returns the value, or nil when absent.
func (n Number) Ptr() *float64 {
	if n.value == nil {
		return nil
	}
	v := *n.value
	return &v
}

// Valid reports whether a numeric value is present.
func (n Number) Valid() bool {
	return n.value != nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	n.value = nil
	var v float64
	if err := json.Unmarshal(data, &v); err == nil && !bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.value = &v
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.value)
}

// Quantity is a measurement that the service sends either as a bare scalar
// or wrapped as {"value": x, "unitCode": ...}. Both forms unwrap to a Number.
// A field sent with any value other than null or "" is Present, even when it
// does not unwrap to a number.
type Quantity struct {
	Number
	present bool
}

// NewQuantity returns a present Quantity holding v.
func NewQuantity(v float64) Quantity {
	return Quantity{Number: NewNumber(v), present: true}
}

// Present reports whether the field carried a non-null, non-empty value.
func (q Quantity) Present() bool {
	return q.present
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	q.Number = Number{}
	q.present = !bytes.Equal(trimmed, []byte("null")) && !bytes.Equal(trimmed, []byte(`""`))

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Value Number `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err == nil {
			q.Number = wrapped.Value
		}
		return nil
	}
	return q.Number.UnmarshalJSON(trimmed)
}

// ForecastPeriod is one forecast time slot ("Tonight", "Monday") as returned
// by the forecast endpoint.
type ForecastPeriod struct {
	StartTime       string `json:"startTime"`
	IsDaytime       bool   `json:"isDaytime"`
	Name            string `json:"name"`
	Temperature     Number `json:"temperature"`
	TemperatureUnit string `json:"temperatureUnit"`
	ShortForecast   string `json:"shortForecast"`
	WindSpeed       string `json:"windSpeed"`
	WindDirection   string `json:"windDirection"`

	RelativeHumidity    Quantity `json:"relativeHumidity"`
	UVIndex             Quantity `json:"uvIndex"`
	ApparentTemperature Quantity `json:"apparentTemperature"`
	HeatIndex           Quantity `json:"heatIndex"`
	WindChill           Quantity `json:"windChill"`
}

// DaySummary reduces all periods sharing a calendar date to one record.
type DaySummary struct {
	Date            string   `json:"date"`
	Label           string   `json:"label"`
	ShortForecast   string   `json:"shortForecast"`
	WindSpeed       string   `json:"windSpeed"`
	WindDirection   string   `json:"windDirection"`
	TemperatureHigh *float64 `json:"temperatureHigh"`
	TemperatureLow  *float64 `json:"temperatureLow"`
	TemperatureUnit string   `json:"temperatureUnit"`

	Humidity *float64 `json:"humidity,omitempty"`
	UVIndex  *float64 `json:"uvIndex,omitempty"`
	RealFeel *float64 `json:"realFeel,omitempty"`
}
