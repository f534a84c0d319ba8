package weather

import "time"

// startTimeLayouts are tried in order when dating a period.
var startTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// periodDate returns the calendar date of a period in the offset of its own
// timestamp, or false when the start time is missing or unparsable.
func periodDate(p ForecastPeriod) (string, bool) {
	if p.StartTime == "" {
		return "", false
	}
	for _, layout := range startTimeLayouts {
		if ts, err := time.Parse(layout, p.StartTime); err == nil {
			return ts.Format(time.DateOnly), true
		}
	}
	return "", false
}

// BuildDaySummaries buckets periods by calendar date and reduces each bucket
// to a DaySummary. Dates appear in first-seen order; periods that cannot be
// dated are dropped.
func BuildDaySummaries(periods []ForecastPeriod) []DaySummary {
	byDate := make(map[string][]ForecastPeriod)
	var order []string

	for _, p := range periods {
		date, ok := periodDate(p)
		if !ok {
			continue
		}
		if _, seen := byDate[date]; !seen {
			order = append(order, date)
		}
		byDate[date] = append(byDate[date], p)
	}

	summaries := make([]DaySummary, 0, len(order))
	for _, date := range order {
		summaries = append(summaries, summarizeDay(date, byDate[date]))
	}
	return summaries
}

func summarizeDay(date string, items []ForecastPeriod) DaySummary {
	// A night-only group borrows the first period's metadata.
	rep := items[0]
	for _, p := range items {
		if p.IsDaytime {
			rep = p
			break
		}
	}

	label := rep.Name
	if label == "" {
		label = date
	}

	s := DaySummary{
		Date:            date,
		Label:           label,
		ShortForecast:   rep.ShortForecast,
		WindSpeed:       rep.WindSpeed,
		WindDirection:   rep.WindDirection,
		TemperatureUnit: rep.TemperatureUnit,
	}

	var high, low float64
	found := false
	for _, p := range items {
		if !p.Temperature.Valid() {
			continue
		}
		t := *p.Temperature.value
		if !found {
			high, low = t, t
			found = true
			continue
		}
		high = max(high, t)
		low = min(low, t)
	}
	if found {
		s.TemperatureHigh = &high
		s.TemperatureLow = &low
	}

	s.Humidity = firstQuantity(items, func(p ForecastPeriod) Quantity { return p.RelativeHumidity })
	s.UVIndex = firstQuantity(items, func(p ForecastPeriod) Quantity { return p.UVIndex })
	s.RealFeel = realFeel(items)

	return s
}

// firstQuantity unwraps the first present value of field within items. A
// present value that is not numeric ends the search as absent.
func firstQuantity(items []ForecastPeriod, field func(ForecastPeriod) Quantity) *float64 {
	for _, p := range items {
		if q := field(p); q.Present() {
			return q.Ptr()
		}
	}
	return nil
}

// realFeel prefers apparent temperature, then heat index, then wind chill.
func realFeel(items []ForecastPeriod) *float64 {
	fields := []func(ForecastPeriod) Quantity{
		func(p ForecastPeriod) Quantity { return p.ApparentTemperature },
		func(p ForecastPeriod) Quantity { return p.HeatIndex },
		func(p ForecastPeriod) Quantity { return p.WindChill },
	}
	for _, field := range fields {
		if v := firstQuantity(items, field); v != nil {
			return v
		}
	}
	return nil
}
