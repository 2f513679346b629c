// Package main provides pnrconvert, a command-line front end for the PNR
// parser.
//
// Usage:
//
//	pnrconvert [options] [file]
//
// The PNR dump is read from file, or from stdin when no file is given. The
// result is printed as JSON on stdout.
//
// Options:
//
//	-data DIR           Reference JSON directory (default: data, env: REFERENCE_DATA_DIR)
//	-segment-format F   Segment clock, 24h or 12h (default: 24h)
//	-transit-format F   Transit clock, 24h or 12h (default: 24h)
//	-max-bytes N        Input size limit (default: 65536)
//	-compact            Print JSON on a single line
//	-v                  Log parser decisions to stderr
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"

	"pnr-itinerary-service/internal/domain/entity"
	repo "pnr-itinerary-service/internal/interface/repository"
	"pnr-itinerary-service/internal/usecase"
	"pnr-itinerary-service/pkg/logger"
	"pnr-itinerary-service/pkg/metrics"
	"pnr-itinerary-service/pkg/pnr"
)

// output is the printed document
type output struct {
	Result     pnr.Result `json:"result"`
	Suspicious bool       `json:"suspicious"`
	Reasons    []string   `json:"reasons,omitempty"`
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "pnrconvert:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pnrconvert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dataDir := fs.String("data", envOrDefault("REFERENCE_DATA_DIR", "data"), "Reference JSON directory")
	segmentFormat := fs.String("segment-format", "24h", "Segment clock, 24h or 12h")
	transitFormat := fs.String("transit-format", "24h", "Transit clock, 24h or 12h")
	maxBytes := fs.Int("max-bytes", 64*1024, "Input size limit in bytes")
	compact := fs.Bool("compact", false, "Print JSON on a single line")
	verbose := fs.Bool("v", false, "Log parser decisions to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	input := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}

	text, err := io.ReadAll(io.LimitReader(input, int64(*maxBytes)+1))
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	log := logger.NewNopLogger()
	if *verbose {
		log = logger.NewLoggerWithLevel("debug")
	}

	files := repo.NewFileReferenceRepository(*dataDir)
	m := metrics.NewMetricsWith(prometheus.NewRegistry(), "pnrconvert")
	tables, err := usecase.NewReferenceLoader(files.Airports(), files.Airlines(), files.AircraftTypes(), m, log).Load(ctx)
	if err != nil {
		return err
	}

	converter := usecase.NewConverterService(pnr.NewParser(tables).WithLogger(log), nil, nil, m, usecase.ConverterDefaults{
		MaxInputBytes:     *maxBytes,
		SegmentTimeFormat: pnr.TimeFormat(strings.ToLower(*segmentFormat)),
		TransitTimeFormat: pnr.TimeFormat(strings.ToLower(*transitFormat)),
	}, log)

	resp, err := converter.Convert(ctx, usecase.ConvertRequest{Text: string(text), Source: entity.SourceCLI})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	if !*compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(output{Result: resp.Result, Suspicious: resp.Suspicious, Reasons: resp.Reasons})
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
