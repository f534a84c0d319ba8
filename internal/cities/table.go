package cities

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/i474232898/weather-report/internal/weather"
)

var (
	// ErrNotFound is returned when a city is not in the table.
	ErrNotFound = errors.New("city not found")
)

// City is a named coordinate pair.
type City struct {
	Name string  `toml:"name" json:"name"`
	Lat  float64 `toml:"lat" json:"lat"`
	Lon  float64 `toml:"lon" json:"lon"`
}

// Location converts the city to a weather.Location.
func (c City) Location() weather.Location {
	return weather.Location{Name: c.Name, Lat: c.Lat, Lon: c.Lon}
}

// Table is a concurrency-safe name to coordinate index.
type Table struct {
	mu sync.RWMutex

	byName map[string]City
	names  []string // sorted
}

// NewTable creates a table holding cities. Later duplicates replace earlier ones.
func NewTable(cities ...City) *Table {
	t := &Table{byName: make(map[string]City)}
	t.Add(cities...)
	return t
}

// Default returns a table preloaded with the built-in city list.
func Default() *Table {
	return NewTable(defaultCities...)
}

// Add inserts or replaces cities by name.
func (t *Table) Add(cities ...City) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, c := range cities {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		t.byName[c.Name] = c
	}

	t.names = t.names[:0]
	for name := range t.byName {
		t.names = append(t.names, name)
	}
	sort.Strings(t.names)
}

// Lookup returns the city with the exact given name.
func (t *Table) Lookup(name string) (City, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.byName[strings.TrimSpace(name)]
	if !ok {
		return City{}, ErrNotFound
	}
	return c, nil
}

// Len returns the number of cities.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byName)
}

// Names returns every city name, sorted.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]string, len(t.names))
	copy(result, t.names)
	return result
}

// Search returns the sorted names containing q, ignoring case. An empty
// query matches everything.
func (t *Table) Search(q string) []string {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return t.Names()
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var result []string
	for _, name := range t.names {
		if strings.Contains(strings.ToLower(name), q) {
			result = append(result, name)
		}
	}
	return result
}

var defaultCities = []City{
	{Name: "Pittsburgh, PA", Lat: 40.4406, Lon: -79.9959},
	{Name: "Philadelphia, PA", Lat: 39.9526, Lon: -75.1652},
	{Name: "New York, NY", Lat: 40.7128, Lon: -74.0060},
	{Name: "Boston, MA", Lat: 42.3601, Lon: -71.0589},
	{Name: "Washington, DC", Lat: 38.9072, Lon: -77.0369},
	{Name: "Chicago, IL", Lat: 41.8781, Lon: -87.6298},
	{Name: "Los Angeles, CA", Lat: 34.0522, Lon: -118.2437},
	{Name: "San Francisco, CA", Lat: 37.7749, Lon: -122.4194},
	{Name: "San Diego, CA", Lat: 32.7157, Lon: -117.1611},
	{Name: "Seattle, WA", Lat: 47.6062, Lon: -122.3321},
	{Name: "Portland, OR", Lat: 45.5152, Lon: -122.6784},
	{Name: "Austin, TX", Lat: 30.2672, Lon: -97.7431},
	{Name: "Dallas, TX", Lat: 32.7767, Lon: -96.7970},
	{Name: "Houston, TX", Lat: 29.7604, Lon: -95.3698},
	{Name: "Miami, FL", Lat: 25.7617, Lon: -80.1918},
	{Name: "Atlanta, GA", Lat: 33.7490, Lon: -84.3880},
	{Name: "Denver, CO", Lat: 39.7392, Lon: -104.9903},
	{Name: "Phoenix, AZ", Lat: 33.4484, Lon: -112.0740},
	{Name: "Las Vegas, NV", Lat: 36.1699, Lon: -115.1398},
}
