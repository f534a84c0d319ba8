package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-report/internal/weather"
)

const testUserAgent = "weather-report-test (test@example.com)"

// fakeNWS serves canned bodies by path and records every request path.
type fakeNWS struct {
	t      *testing.T
	mu     sync.Mutex
	routes map[string]fakeRoute
	hits   []string
}

type fakeRoute struct {
	status int
	body   string
}

func newFakeNWS(t *testing.T) (*fakeNWS, *httptest.Server) {
	f := &fakeNWS{t: t, routes: make(map[string]fakeRoute)}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeNWS) handle(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = fakeRoute{status: status, body: body}
}

func (f *fakeNWS) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits = append(f.hits, r.URL.Path)
	route, ok := f.routes[r.URL.Path]
	f.mu.Unlock()

	if ua := r.Header.Get("User-Agent"); ua != testUserAgent {
		f.t.Errorf("request %s sent User-Agent %q", r.URL.Path, ua)
	}
	if accept := r.Header.Get("Accept"); accept != "application/geo+json" {
		f.t.Errorf("request %s sent Accept %q", r.URL.Path, accept)
	}

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(route.status)
	fmt.Fprint(w, route.body)
}

func (f *fakeNWS) requested(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, h := range f.hits {
		if strings.HasPrefix(h, prefix) {
			out = append(out, h)
		}
	}
	return out
}

func newTestProvider(srv *httptest.Server) *NWSProvider {
	return NewNWSProvider(&http.Client{Timeout: 5 * time.Second}, NWSConfig{
		BaseURL:   srv.URL,
		UserAgent: testUserAgent,
	}, zap.NewNop())
}

const (
	lat        = 40.4406
	lon        = -79.9959
	pointsPath = "/points/40.4406,-79.9959"
)

func pointsBody(srv *httptest.Server, withStations bool) string {
	stations := ""
	if withStations {
		stations = fmt.Sprintf(`, "observationStations": "%s/gridpoints/PBZ/77,65/stations"`, srv.URL)
	}
	return fmt.Sprintf(`{"properties": {"forecast": "%s/gridpoints/PBZ/77,65/forecast"%s}}`, srv.URL, stations)
}

func observationBody(value string) string {
	return fmt.Sprintf(`{"properties": {"relativeHumidity": {"unitCode": "wmoUnit:percent", "value": %s}}}`, value)
}

func TestFetchForecastPeriods(t *testing.T) {
	f, srv := newFakeNWS(t)
	f.handle(pointsPath, http.StatusOK, pointsBody(srv, true))
	f.handle("/gridpoints/PBZ/77,65/forecast", http.StatusOK, `{"properties": {"periods": [
		{"number": 1, "name": "Tonight", "startTime": "2024-01-01T18:00:00-05:00", "isDaytime": false,
		 "temperature": 31, "temperatureUnit": "F", "windSpeed": "5 mph", "windDirection": "SW",
		 "shortForecast": "Mostly Cloudy", "relativeHumidity": {"unitCode": "wmoUnit:percent", "value": 80}},
		{"number": 2, "name": "Tuesday", "startTime": "2024-01-02T06:00:00-05:00", "isDaytime": true,
		 "temperature": 40, "temperatureUnit": "F", "windSpeed": "10 mph", "windDirection": "W",
		 "shortForecast": "Sunny"}
	]}}`)

	periods, err := newTestProvider(srv).FetchForecastPeriods(context.Background(), lat, lon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(periods) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(periods))
	}
	if periods[0].Name != "Tonight" || periods[1].Name != "Tuesday" {
		t.Fatalf("periods out of service order: %q, %q", periods[0].Name, periods[1].Name)
	}
	if rh := periods[0].RelativeHumidity.Ptr(); rh == nil || *rh != 80 {
		t.Fatalf("expected unwrapped humidity 80, got %v", rh)
	}
}

func TestFetchForecastPeriodsMissingForecastURL(t *testing.T) {
	f, srv := newFakeNWS(t)
	f.handle(pointsPath, http.StatusOK, `{"properties": {"gridId": "PBZ"}}`)

	_, err := newTestProvider(srv).FetchForecastPeriods(context.Background(), lat, lon)

	var ue *weather.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *weather.UpstreamError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "properties.forecast") {
		t.Fatalf("error should name the missing field: %v", err)
	}
}

func TestFetchForecastPeriodsBadStatus(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(f *fakeNWS, srv *httptest.Server)
		status int
	}{
		{
			name: "points not found",
			setup: func(f *fakeNWS, srv *httptest.Server) {
				f.handle(pointsPath, http.StatusNotFound, `{"title": "Data Unavailable For Requested Point"}`)
			},
			status: http.StatusNotFound,
		},
		{
			name: "forecast server error",
			setup: func(f *fakeNWS, srv *httptest.Server) {
				f.handle(pointsPath, http.StatusOK, pointsBody(srv, false))
				f.handle("/gridpoints/PBZ/77,65/forecast", http.StatusInternalServerError, `{}`)
			},
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, srv := newFakeNWS(t)
			tt.setup(f, srv)

			_, err := newTestProvider(srv).FetchForecastPeriods(context.Background(), lat, lon)

			var ue *weather.UpstreamError
			if !errors.As(err, &ue) {
				t.Fatalf("expected *weather.UpstreamError, got %v", err)
			}
			if ue.StatusCode != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, ue.StatusCode)
			}
		})
	}
}

func TestFetchForecastPeriodsEmptyAndMissing(t *testing.T) {
	f, srv := newFakeNWS(t)
	f.handle(pointsPath, http.StatusOK, pointsBody(srv, false))
	p := newTestProvider(srv)

	f.handle("/gridpoints/PBZ/77,65/forecast", http.StatusOK, `{"properties": {"periods": []}}`)
	if _, err := p.FetchForecastPeriods(context.Background(), lat, lon); !errors.Is(err, weather.ErrEmptyForecast) {
		t.Fatalf("expected ErrEmptyForecast, got %v", err)
	}

	f.handle("/gridpoints/PBZ/77,65/forecast", http.StatusOK, `{"properties": {}}`)
	_, err := p.FetchForecastPeriods(context.Background(), lat, lon)
	if !errors.Is(err, weather.ErrUpstream) || errors.Is(err, weather.ErrEmptyForecast) {
		t.Fatalf("expected upstream error for missing periods, got %v", err)
	}
}

func TestFetchLatestRelativeHumidityFallsBackAcrossStations(t *testing.T) {
	f, srv := newFakeNWS(t)
	f.handle(pointsPath, http.StatusOK, pointsBody(srv, true))
	f.handle("/gridpoints/PBZ/77,65/stations", http.StatusOK, `{"features": [
		{"id": "https://api.weather.gov/stations/KAGC", "properties": {"stationIdentifier": "KAGC"}},
		{"id": "https://api.weather.gov/stations/KPIT", "properties": {}},
		{"id": "https://api.weather.gov/stations/KBTP", "properties": {"stationIdentifier": "KBTP"}},
		{"id": "https://api.weather.gov/stations/KFFF", "properties": {"stationIdentifier": "KFFF"}}
	]}`)
	f.handle("/stations/KAGC/observations/latest", http.StatusOK, observationBody("null"))
	f.handle("/stations/KPIT/observations/latest", http.StatusOK, `{"properties": {"temperature": {"value": 3}}}`)
	f.handle("/stations/KBTP/observations/latest", http.StatusOK, observationBody("45.0"))
	f.handle("/stations/KFFF/observations/latest", http.StatusOK, observationBody("99"))

	rh, err := newTestProvider(srv).FetchLatestRelativeHumidity(context.Background(), lat, lon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rh == nil || *rh != 45.0 {
		t.Fatalf("expected 45.0, got %v", rh)
	}

	got := f.requested("/stations/")
	want := []string{
		"/stations/KAGC/observations/latest",
		"/stations/KPIT/observations/latest",
		"/stations/KBTP/observations/latest",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected station requests %v, got %v", want, got)
	}
}

func TestFetchLatestRelativeHumiditySkipsFailedStations(t *testing.T) {
	f, srv := newFakeNWS(t)
	f.handle(pointsPath, http.StatusOK, pointsBody(srv, true))
	f.handle("/gridpoints/PBZ/77,65/stations", http.StatusOK, `{"features": [
		{"properties": {"stationIdentifier": "KBAD"}},
		{"properties": {"stationIdentifier": "KGOOD"}}
	]}`)
	f.handle("/stations/KBAD/observations/latest", http.StatusServiceUnavailable, `{}`)
	f.handle("/stations/KGOOD/observations/latest", http.StatusOK, observationBody("62.5"))

	rh, err := newTestProvider(srv).FetchLatestRelativeHumidity(context.Background(), lat, lon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rh == nil || *rh != 62.5 {
		t.Fatalf("expected 62.5, got %v", rh)
	}
	if n := len(f.requested("/stations/KBAD")); n != 1 {
		t.Fatalf("failed station should be tried exactly once, got %d", n)
	}
}

func TestFetchLatestRelativeHumidityCapsScan(t *testing.T) {
	f, srv := newFakeNWS(t)
	f.handle(pointsPath, http.StatusOK, pointsBody(srv, true))

	var features []string
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("K%03d", i)
		features = append(features, fmt.Sprintf(`{"properties": {"stationIdentifier": "%s"}}`, id))
		f.handle("/stations/"+id+"/observations/latest", http.StatusOK, observationBody("null"))
	}
	f.handle("/gridpoints/PBZ/77,65/stations", http.StatusOK, `{"features": [`+strings.Join(features, ",")+`]}`)

	rh, err := newTestProvider(srv).FetchLatestRelativeHumidity(context.Background(), lat, lon)
	if err != nil || rh != nil {
		t.Fatalf("expected absent humidity, got %v, %v", rh, err)
	}
	if n := len(f.requested("/stations/")); n != DefaultMaxStations {
		t.Fatalf("expected %d station requests, got %d", DefaultMaxStations, n)
	}
}

func TestFetchLatestRelativeHumidityAbsentCases(t *testing.T) {
	t.Run("no station directory", func(t *testing.T) {
		f, srv := newFakeNWS(t)
		f.handle(pointsPath, http.StatusOK, pointsBody(srv, false))

		rh, err := newTestProvider(srv).FetchLatestRelativeHumidity(context.Background(), lat, lon)
		if err != nil || rh != nil {
			t.Fatalf("expected absent humidity, got %v, %v", rh, err)
		}
	})

	t.Run("empty station directory", func(t *testing.T) {
		f, srv := newFakeNWS(t)
		f.handle(pointsPath, http.StatusOK, pointsBody(srv, true))
		f.handle("/gridpoints/PBZ/77,65/stations", http.StatusOK, `{"features": []}`)

		rh, err := newTestProvider(srv).FetchLatestRelativeHumidity(context.Background(), lat, lon)
		if err != nil || rh != nil {
			t.Fatalf("expected absent humidity, got %v, %v", rh, err)
		}
	})
}

func TestFetchLatestRelativeHumidityDirectoryFailure(t *testing.T) {
	f, srv := newFakeNWS(t)
	f.handle(pointsPath, http.StatusOK, pointsBody(srv, true))
	f.handle("/gridpoints/PBZ/77,65/stations", http.StatusBadGateway, `{}`)

	_, err := newTestProvider(srv).FetchLatestRelativeHumidity(context.Background(), lat, lon)
	var ue *weather.UpstreamError
	if !errors.As(err, &ue) || ue.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected upstream 502, got %v", err)
	}
}

func TestRequestsRequireUserAgent(t *testing.T) {
	_, srv := newFakeNWS(t)
	p := NewNWSProvider(srv.Client(), NWSConfig{BaseURL: srv.URL}, nil)

	_, err := p.FetchForecastPeriods(context.Background(), lat, lon)
	if !errors.Is(err, errNoUserAgent) {
		t.Fatalf("expected errNoUserAgent, got %v", err)
	}
}

func TestFailingStationsDoNotTripBreaker(t *testing.T) {
	f, srv := newFakeNWS(t)
	f.handle(pointsPath, http.StatusOK, pointsBody(srv, true))
	f.handle("/gridpoints/PBZ/77,65/forecast", http.StatusOK, `{"properties": {"periods": [
		{"name": "Today", "startTime": "2024-01-01T06:00:00-05:00", "isDaytime": true, "temperature": 40}
	]}}`)

	var features []string
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("K%03d", i)
		features = append(features, fmt.Sprintf(`{"properties": {"stationIdentifier": "%s"}}`, id))
		if i < 7 {
			f.handle("/stations/"+id+"/observations/latest", http.StatusServiceUnavailable, `{}`)
		} else {
			f.handle("/stations/"+id+"/observations/latest", http.StatusOK, observationBody("55"))
		}
	}
	f.handle("/gridpoints/PBZ/77,65/stations", http.StatusOK, `{"features": [`+strings.Join(features, ",")+`]}`)

	p := newTestProvider(srv)
	for round := 1; round <= 2; round++ {
		rh, err := p.FetchLatestRelativeHumidity(context.Background(), lat, lon)
		if err != nil {
			t.Fatalf("round %d: unexpected error: %v", round, err)
		}
		if rh == nil || *rh != 55 {
			t.Fatalf("round %d: expected 55 from the 8th station, got %v", round, rh)
		}
		if n := len(f.requested("/stations/")); n != 8*round {
			t.Fatalf("round %d: expected %d station requests, got %d", round, 8*round, n)
		}
	}

	periods, err := p.FetchForecastPeriods(context.Background(), lat, lon)
	if err != nil {
		t.Fatalf("forecast after failing stations: %v", err)
	}
	if len(periods) != 1 {
		t.Fatalf("expected 1 period, got %d", len(periods))
	}
}

func TestRequiredCallFailuresOpenBreaker(t *testing.T) {
	f, srv := newFakeNWS(t)
	f.handle(pointsPath, http.StatusInternalServerError, `{}`)

	p := newTestProvider(srv)
	for i := 0; i < 6; i++ {
		if _, err := p.FetchForecastPeriods(context.Background(), lat, lon); !errors.Is(err, weather.ErrUpstream) {
			t.Fatalf("call %d: expected upstream error, got %v", i, err)
		}
	}

	_, err := p.FetchForecastPeriods(context.Background(), lat, lon)
	if !errors.Is(err, errCircuitOpen) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if n := len(f.requested(pointsPath)); n != 6 {
		t.Fatalf("expected 6 points requests before the breaker opened, got %d", n)
	}
}
