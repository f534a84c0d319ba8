package weather

import "context"

// ForecastSource abstracts the forecast service. Implementations perform
// blocking network calls and must honour ctx.
type ForecastSource interface {
	// FetchForecastPeriods returns the ordered forecast periods for a point.
	// It fails with *UpstreamError or ErrEmptyForecast.
	FetchForecastPeriods(ctx context.Context, lat, lon float64) ([]ForecastPeriod, error)

	// FetchLatestRelativeHumidity returns the latest observed relative
	// humidity near a point, or nil when no nearby station reports one.
	FetchLatestRelativeHumidity(ctx context.Context, lat, lon float64) (*float64, error)
}

// StationProbe asks a single observation station for its latest relative
// humidity. ok is false when the station failed or did not report a value.
type StationProbe interface {
	TryLatestHumidity(ctx context.Context, stationID string) (humidity float64, ok bool)
}
