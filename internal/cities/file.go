package cities

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type cityFile struct {
	Cities []City `toml:"city"`
}

// LoadTOMLFile reads extra cities from a TOML file of [[city]] tables, each
// with name, lat and lon keys.
func LoadTOMLFile(path string) ([]City, error) {
	var f cityFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("error decoding cities file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("cities file %s: unknown keys %v", path, undecoded)
	}

	for i, c := range f.Cities {
		if err := validate(c); err != nil {
			return nil, fmt.Errorf("cities file %s: entry %d: %w", path, i+1, err)
		}
	}
	return f.Cities, nil
}

func validate(c City) error {
	switch {
	case c.Name == "":
		return fmt.Errorf("name is required")
	case c.Lat < -90 || c.Lat > 90:
		return fmt.Errorf("%s: latitude %v out of range", c.Name, c.Lat)
	case c.Lon < -180 || c.Lon > 180:
		return fmt.Errorf("%s: longitude %v out of range", c.Name, c.Lon)
	}
	return nil
}
