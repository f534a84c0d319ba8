package weather

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportRequest controls what a report contains. Days of zero skips the
// per-day section.
type ReportRequest struct {
	Days    int
	Unit    Unit
	Options FormatOptions
}

// Report is the rendered result of one fetch-summarize-format cycle.
type Report struct {
	ID       string   `json:"id"`
	Location Location `json:"location"`
	Unit     Unit     `json:"unit"`
	Now      string   `json:"now"`
	Humidity *float64 `json:"humidity"`

	// RequestedDays is the day count asked for. Days and Summaries hold fewer
	// entries when the forecast covers fewer dates.
	RequestedDays int          `json:"requestedDays"`
	Days          []string     `json:"days"`
	Summaries     []DaySummary `json:"summaries"`
}

// Lines renders the report as a text block.
func (r Report) Lines() []string {
	lines := []string{
		"City: " + r.Location.Name,
		fmt.Sprintf("Coords: %.4f, %.4f", r.Location.Lat, r.Location.Lon),
		"",
		r.Now,
	}
	if n := r.RequestedDays; n > 0 {
		plural := "s"
		if n == 1 {
			plural = ""
		}
		lines = append(lines, "", fmt.Sprintf("Forecast (next %d day%s):", n, plural))
		lines = append(lines, r.Days...)
	}
	return lines
}

// Service runs the report pipeline against a forecast source.
type Service struct {
	source ForecastSource
	log    *zap.Logger
}

// NewService creates a new Service.
func NewService(source ForecastSource, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		source: source,
		log:    log.Named("report"),
	}
}

// Report fetches forecast periods and current humidity for loc, then
// summarizes and formats them. Every call builds fresh data; fetch errors
// are returned as-is.
func (s *Service) Report(ctx context.Context, loc Location, req ReportRequest) (Report, error) {
	if req.Unit == "" {
		req.Unit = Fahrenheit
	}

	report := Report{
		ID:       uuid.NewString(),
		Location: loc,
		Unit:     req.Unit,
	}
	log := s.log.With(zap.String("report_id", report.ID), zap.String("city", loc.Name))

	periods, err := s.source.FetchForecastPeriods(ctx, loc.Lat, loc.Lon)
	if err != nil {
		log.Warn("forecast fetch failed", zap.Error(err))
		return Report{}, err
	}
	if len(periods) == 0 {
		return Report{}, ErrEmptyForecast
	}

	humidity, err := s.source.FetchLatestRelativeHumidity(ctx, loc.Lat, loc.Lon)
	if err != nil {
		log.Warn("humidity fetch failed", zap.Error(err))
		return Report{}, err
	}
	if humidity == nil {
		log.Debug("no station reported relative humidity")
	}

	report.Humidity = humidity
	report.Now = FormatNow(periods[0], humidity, req.Unit)

	if req.Days > 0 {
		summaries := BuildDaySummaries(periods)
		report.RequestedDays = req.Days
		report.Days = FormatDays(summaries, req.Days, req.Options, req.Unit)
		report.Summaries = summaries[:len(report.Days)]
	}

	log.Info("report built",
		zap.Int("periods", len(periods)),
		zap.Int("days", len(report.Days)),
		zap.String("unit", string(req.Unit)))
	return report, nil
}
