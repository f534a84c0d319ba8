package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-report/internal/common"
	"github.com/i474232898/weather-report/internal/weather"
)

const (
	DefaultNWSBaseURL  = "https://api.weather.gov"
	DefaultMaxStations = 10

	geoJSON = "application/geo+json"
)

// NWSConfig configures an NWSProvider.
type NWSConfig struct {
	BaseURL   string
	UserAgent string

	// MaxStations caps the humidity fallback scan.
	MaxStations int

	Limiter *rate.Limiter
}

// NWSProvider implements weather.ForecastSource against api.weather.gov.
type NWSProvider struct {
	name        string
	baseURL     string
	maxStations int
	httpCfg     HTTPClientConfig
	circuit     *gobreaker.CircuitBreaker
	log         *zap.Logger
}

func NewNWSProvider(client *http.Client, cfg NWSConfig, log *zap.Logger) *NWSProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNWSBaseURL
	}
	if cfg.MaxStations <= 0 {
		cfg.MaxStations = DefaultMaxStations
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &NWSProvider{
		name:        "nws",
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		maxStations: cfg.MaxStations,
		httpCfg: HTTPClientConfig{
			Client:    client,
			UserAgent: cfg.UserAgent,
			Accept:    geoJSON,
			Limiter:   cfg.Limiter,
		},
		circuit: newCircuitBreaker("nws"),
		log:     log.Named("nws"),
	}
}

func (p *NWSProvider) Name() string {
	return p.name
}

type pointsResponse struct {
	Properties struct {
		Forecast            string `json:"forecast"`
		ObservationStations string `json:"observationStations"`
	} `json:"properties"`
}

type forecastResponse struct {
	Properties struct {
		Periods *[]weather.ForecastPeriod `json:"periods"`
	} `json:"properties"`
}

type stationsResponse struct {
	Features []struct {
		ID         string `json:"id"`
		Properties struct {
			StationIdentifier string `json:"stationIdentifier"`
		} `json:"properties"`
	} `json:"features"`
}

type observationResponse struct {
	Properties struct {
		RelativeHumidity weather.Quantity `json:"relativeHumidity"`
	} `json:"properties"`
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (p *NWSProvider) pointsURL(lat, lon float64) string {
	return fmt.Sprintf("%s/points/%s,%s", p.baseURL, formatCoord(lat), formatCoord(lon))
}

func (p *NWSProvider) latestObservationURL(stationID string) string {
	return fmt.Sprintf("%s/stations/%s/observations/latest", p.baseURL, url.PathEscape(stationID))
}

func upstreamError(op, u string, err error) error {
	ue := &weather.UpstreamError{Op: op, URL: u, Err: err}
	var se *StatusError
	if errors.As(err, &se) {
		ue.StatusCode = se.StatusCode
	}
	return ue
}

func (p *NWSProvider) points(ctx context.Context, lat, lon float64) (pointsResponse, error) {
	var points pointsResponse
	u := p.pointsURL(lat, lon)
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &points); err != nil {
		return pointsResponse{}, upstreamError("points lookup", u, err)
	}
	return points, nil
}

// FetchForecastPeriods resolves the point metadata, follows its forecast
// link and returns the periods in service order.
func (p *NWSProvider) FetchForecastPeriods(ctx context.Context, lat, lon float64) ([]weather.ForecastPeriod, error) {
	points, err := p.points(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	forecastURL := points.Properties.Forecast
	if forecastURL == "" {
		return nil, upstreamError("points lookup", p.pointsURL(lat, lon),
			errors.New("response missing properties.forecast"))
	}

	var forecast forecastResponse
	if err := getJSON(ctx, p.httpCfg, p.circuit, forecastURL, &forecast); err != nil {
		return nil, upstreamError("forecast fetch", forecastURL, err)
	}
	if forecast.Properties.Periods == nil {
		return nil, upstreamError("forecast fetch", forecastURL,
			errors.New("response missing properties.periods"))
	}

	periods := *forecast.Properties.Periods
	if len(periods) == 0 {
		return nil, weather.ErrEmptyForecast
	}

	p.log.Debug("forecast fetched",
		zap.String("url", forecastURL),
		zap.Int("periods", len(periods)))
	return periods, nil
}

// FetchLatestRelativeHumidity scans the nearest observation stations in
// directory order and returns the first relative humidity reported. Only a
// failed points or station directory call is an error; silent stations are
// skipped.
func (p *NWSProvider) FetchLatestRelativeHumidity(ctx context.Context, lat, lon float64) (*float64, error) {
	points, err := p.points(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	stationsURL := points.Properties.ObservationStations
	if stationsURL == "" {
		p.log.Debug("point has no observation stations", zap.Float64("lat", lat), zap.Float64("lon", lon))
		return nil, nil
	}

	var stations stationsResponse
	if err := getJSON(ctx, p.httpCfg, p.circuit, stationsURL, &stations); err != nil {
		return nil, upstreamError("station directory", stationsURL, err)
	}
	if len(stations.Features) == 0 {
		return nil, nil
	}

	features := stations.Features[:min(p.maxStations, len(stations.Features))]
	ids := make([]string, 0, len(features))
	for _, f := range features {
		id := f.Properties.StationIdentifier
		if id == "" {
			id = common.LastPathSegment(f.ID)
		}
		ids = append(ids, id)
	}

	return weather.FirstHumidity(ctx, p, ids, p.maxStations)
}

// TryLatestHumidity implements weather.StationProbe.
func (p *NWSProvider) TryLatestHumidity(ctx context.Context, stationID string) (float64, bool) {
	if stationID == "" {
		return 0, false
	}

	// Station failures are expected and skipped, so they bypass the breaker
	// guarding the points, forecast and directory calls.
	u := p.latestObservationURL(stationID)
	var obs observationResponse
	if err := getJSON(ctx, p.httpCfg, nil, u, &obs); err != nil {
		p.log.Debug("station skipped", zap.String("station", stationID), zap.Error(err))
		return 0, false
	}

	rh := obs.Properties.RelativeHumidity.Ptr()
	if rh == nil {
		p.log.Debug("station reported no relative humidity", zap.String("station", stationID))
		return 0, false
	}
	return *rh, true
}

var (
	_ weather.ForecastSource = (*NWSProvider)(nil)
	_ weather.StationProbe   = (*NWSProvider)(nil)
)
