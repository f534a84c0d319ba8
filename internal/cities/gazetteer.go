package cities

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Gazetteer filter thresholds: incorporated cities (LSAD 25) with active
// status and at least 10 km² of land.
const (
	keepLSAD     = "25"
	keepFuncStat = "A"
	minLandArea  = 10_000_000
)

var placeSuffixes = []string{" city", " town", " village", " borough", " municipality", " CDP"}

func newTSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr
}

// columnIndex maps trimmed header names to positions.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func field(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// FilterGazetteer copies the header and every active city row with enough
// land area from a Census place gazetteer TSV. It returns the number of rows
// kept.
func FilterGazetteer(r io.Reader, w io.Writer) (int, error) {
	cr := newTSVReader(r)
	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("error reading gazetteer header: %w", err)
	}
	idx := columnIndex(header)

	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	kept := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return kept, fmt.Errorf("error reading gazetteer row: %w", err)
		}

		if field(row, idx, "LSAD") != keepLSAD || field(row, idx, "FUNCSTAT") != keepFuncStat {
			continue
		}
		aland, err := strconv.ParseInt(field(row, idx, "ALAND"), 10, 64)
		if err != nil || aland < minLandArea {
			continue
		}

		if err := cw.Write(row); err != nil {
			return kept, err
		}
		kept++
	}

	cw.Flush()
	return kept, cw.Error()
}

// LoadGazetteer reads cities from a (filtered) gazetteer TSV. Names become
// "Place, ST" with the place-type suffix dropped; rows without usable
// coordinates are skipped.
func LoadGazetteer(r io.Reader) ([]City, error) {
	cr := newTSVReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading gazetteer header: %w", err)
	}
	idx := columnIndex(header)
	for _, col := range []string{"NAME", "INTPTLAT", "INTPTLONG"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("gazetteer missing column %s", col)
		}
	}

	var result []City
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading gazetteer row: %w", err)
		}

		lat, errLat := strconv.ParseFloat(field(row, idx, "INTPTLAT"), 64)
		lon, errLon := strconv.ParseFloat(field(row, idx, "INTPTLONG"), 64)
		if errLat != nil || errLon != nil {
			continue
		}

		c := City{Name: placeName(field(row, idx, "NAME"), field(row, idx, "USPS")), Lat: lat, Lon: lon}
		if validate(c) != nil {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

// LoadGazetteerFile opens path and calls LoadGazetteer.
func LoadGazetteerFile(path string) ([]City, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadGazetteer(f)
}

func placeName(name, state string) string {
	for _, suffix := range placeSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}
	if state == "" {
		return name
	}
	return name + ", " + state
}
