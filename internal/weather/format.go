package weather

import (
	"strconv"
	"strings"
)

const notAvailable = "N/A"

// FormatOptions selects the optional segments of a day line. Enabled segments
// always render in field order; disabled ones are omitted.
type FormatOptions struct {
	TempRange  bool `json:"tempRange"`
	Conditions bool `json:"conditions"`
	Wind       bool `json:"wind"`
	Humidity   bool `json:"humidity"`
	UVIndex    bool `json:"uvIndex"`
	AirQuality bool `json:"airQuality"`
	RealFeel   bool `json:"realFeel"`
}

// Any reports whether at least one segment is enabled.
func (o FormatOptions) Any() bool {
	return o.TempRange || o.Conditions || o.Wind || o.Humidity || o.UVIndex || o.AirQuality || o.RealFeel
}

func rounded(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func roundedOrNA(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return rounded(*v)
}

// FormatNow renders the nearest-term period converted to target, with the
// observed humidity appended when present.
func FormatNow(p ForecastPeriod, humidity *float64, target Unit) string {
	from := p.TemperatureUnit
	if from == "" {
		from = string(Fahrenheit)
	}

	temp := ConvertTemperature(p.Temperature.Ptr(), from, target)
	line := "Now: " + roundedOrNA(temp) + " " + string(target) + " - " + p.ShortForecast
	if humidity != nil {
		line += " | Humidity: " + rounded(*humidity) + "%"
	}
	return line
}

// FormatDays renders up to days summaries as fixed-width aligned lines.
func FormatDays(summaries []DaySummary, days int, opts FormatOptions, target Unit) []string {
	return FixedWidth.FormatDays(summaries, days, opts, target)
}

// FormatDays renders up to days summaries. Columns are measured across every
// rendered day first and padded second, so each segment column and the
// detail start offset line up across the table.
func (a Aligner) FormatDays(summaries []DaySummary, days int, opts FormatOptions, target Unit) []string {
	days = max(0, min(days, len(summaries)))
	rows := summaries[:days]

	labels := make([]string, len(rows))
	segments := make([][]string, len(rows))
	labelWidth := 0
	for i, s := range rows {
		labels[i] = dayLabel(s)
		segments[i] = daySegments(s, opts, target)
		if len(segments[i]) > 0 {
			labelWidth = max(labelWidth, a.Measure(labels[i]+":"))
		}
	}
	widths := a.ColumnWidths(segments)

	lines := make([]string, 0, len(rows))
	for i, segs := range segments {
		if len(segs) == 0 {
			lines = append(lines, labels[i])
			continue
		}

		parts := make([]string, len(segs))
		for j, seg := range segs {
			if j == len(segs)-1 {
				parts[j] = seg
				continue
			}
			parts[j] = a.Pad(seg, widths[j])
		}
		lines = append(lines, a.Pad(labels[i]+":", labelWidth)+" "+strings.Join(parts, " | "))
	}
	return lines
}

func dayLabel(s DaySummary) string {
	switch {
	case s.Label != "":
		return s.Label
	case s.Date != "":
		return s.Date
	default:
		return "Day"
	}
}

func daySegments(s DaySummary, opts FormatOptions, target Unit) []string {
	var segs []string
	add := func(label, value string) {
		if value == "" {
			value = notAvailable
		}
		segs = append(segs, label+": "+value)
	}

	if opts.TempRange {
		low := ConvertTemperature(s.TemperatureLow, s.TemperatureUnit, target)
		high := ConvertTemperature(s.TemperatureHigh, s.TemperatureUnit, target)
		if low == nil && high == nil {
			add("Temp range", notAvailable)
		} else {
			add("Temp range", roundedOrNA(low)+"-"+roundedOrNA(high)+" "+string(target))
		}
	}
	if opts.Conditions {
		add("Conditions", strings.TrimSpace(s.ShortForecast))
	}
	if opts.Wind {
		add("Wind", strings.TrimSpace(s.WindDirection+" "+s.WindSpeed))
	}
	if opts.Humidity {
		v := notAvailable
		if s.Humidity != nil {
			v = rounded(*s.Humidity) + "%"
		}
		add("Humidity", v)
	}
	if opts.UVIndex {
		add("UV Index", roundedOrNA(s.UVIndex))
	}
	if opts.AirQuality {
		add("Air quality", notAvailable)
	}
	if opts.RealFeel {
		v := notAvailable
		if rf := ConvertTemperature(s.RealFeel, s.TemperatureUnit, target); rf != nil {
			v = rounded(*rf) + " " + string(target)
		}
		add("Real feel", v)
	}
	return segs
}
