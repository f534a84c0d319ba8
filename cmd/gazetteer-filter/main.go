package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/i474232898/weather-report/internal/cities"
)

// gazetteer-filter reduces a Census place gazetteer to active cities with at
// least 10 km² of land, ready for GAZETTEER_FILE.
func main() {
	in := flag.String("in", "2023_Gaz_place_national.txt", "Census place gazetteer TSV")
	out := flag.String("out", "cities_filtered.tsv", "Filtered output TSV")
	flag.Parse()

	if err := run(*in, *out); err != nil {
		fmt.Fprintf(os.Stderr, "gazetteer-filter: %v\n", err)
		os.Exit(1)
	}
}

func run(inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}

	kept, err := cities.FilterGazetteer(in, out)
	if err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	fmt.Printf("Wrote: %s (%d cities)\n", outPath, kept)
	return nil
}
