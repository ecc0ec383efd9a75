package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	"imagery-dataset/internal/annotation"
	"imagery-dataset/internal/plan"
)

const usage = `usage: imagery-dataset <command> [flags]

commands:
  plan      print the tiles of a run without fetching them
  fetch     download the planned tiles into the save directory
  annotate  label tile images from line commands on stdin
  crop      cut labeled regions into positive/negative samples
  config    write the effective settings to a file
`

func main() {
	log.SetOutput(os.Stderr)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:], os.Stdin, os.Stdout); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	sf := bindSettingsFlags(fs)

	switch command {
	case "plan":
		format := fs.String("format", "tsv", "output format: tsv, json or geojson")
		summary := fs.Bool("summary", false, "log ground coverage of the plan")
		if err := fs.Parse(args); err != nil {
			return err
		}
		app, err := newAppFromFlags(sf)
		if err != nil {
			return err
		}
		defer app.Shutdown()
		return runPlan(app, *format, *summary, stdout)

	case "fetch":
		if err := fs.Parse(args); err != nil {
			return err
		}
		app, err := newAppFromFlags(sf)
		if err != nil {
			return err
		}
		defer app.Shutdown()

		entries, err := app.Plan()
		if err != nil {
			return err
		}
		start := time.Now()
		report, err := app.Fetch(ctx, entries)
		if report != nil {
			log.Printf("Fetched %d, skipped %d of %d tiles in %s",
				report.Fetched, report.Skipped, report.Total, time.Since(start).Round(time.Millisecond))
		}
		return err

	case "annotate":
		list := fs.String("list", "", "file listing image filenames, one per line (default: every tile in -path)")
		path := fs.String("path", "", "directory holding the images")
		seenPath := fs.String("json", "", "records of images already labeled")
		shuffle := fs.Bool("shuffle", true, "present images in random order")
		seed := fs.Int64("seed", 0, "shuffle seed (default: current time)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		app, err := newAppFromFlags(sf)
		if err != nil {
			return err
		}
		defer app.Shutdown()

		images, err := readImages(app, *list, *path)
		if err != nil {
			return err
		}
		var seen []annotation.Record
		if *seenPath != "" {
			if seen, err = annotation.LoadRecords(*seenPath); err != nil {
				return err
			}
		}
		var rng *rand.Rand
		if *shuffle {
			if *seed == 0 {
				*seed = time.Now().UnixNano()
			}
			rng = rand.New(rand.NewSource(*seed))
		}

		records, err := app.Annotate(stdin, images, seen, rng)
		if err != nil {
			return err
		}
		return annotation.WriteRecords(stdout, records)

	case "crop":
		imagesDir := fs.String("path", "", "directory holding the images")
		outDir := fs.String("outpath", "", "directory to create positive_samples/negative_samples in")
		number := fs.Int("number", 0, "number of the first sample file")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("crop expects one records file, got %d arguments", fs.NArg())
		}
		app, err := newAppFromFlags(sf)
		if err != nil {
			return err
		}
		defer app.Shutdown()

		records, err := annotation.LoadRecords(fs.Arg(0))
		if err != nil {
			return err
		}
		results, err := app.Crop(records, *imagesDir, *outDir, *number)
		if err != nil {
			return err
		}
		return json.NewEncoder(stdout).Encode(results)

	case "config":
		out := fs.String("out", "", "file to write (.json or .toml)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *out == "" {
			return fmt.Errorf("config requires -out")
		}
		app, err := newAppFromFlags(sf)
		if err != nil {
			return err
		}
		defer app.Shutdown()
		return app.SaveSettings(*out)

	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func newAppFromFlags(sf *settingsFlags) (*App, error) {
	settings, err := sf.load()
	if err != nil {
		return nil, err
	}
	return NewApp(settings), nil
}

func runPlan(app *App, format string, summary bool, stdout io.Writer) error {
	entries, err := app.Plan()
	if err != nil {
		return err
	}
	cfg := app.GetSettings().Projection()

	if summary {
		s, err := plan.Summarize(entries, cfg)
		if err != nil {
			return err
		}
		log.Printf("[Plan] %d tiles, %dx%d grid, %.0f m per image, %.0f m step, %.0f m radius",
			s.Tiles, s.Bounds.Cols(), s.Bounds.Rows(), s.ImageMeters, s.StepMeters, s.CoverageRadiusMeters)
	}

	switch format {
	case "tsv":
		for _, e := range entries {
			if _, err := fmt.Fprintf(stdout, "%s\t%s\n", e.Filename, app.TileURL(e)); err != nil {
				return err
			}
		}
		return nil
	case "json":
		return json.NewEncoder(stdout).Encode(entries)
	case "geojson":
		return json.NewEncoder(stdout).Encode(plan.FeatureCollection(entries, cfg))
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func readImages(app *App, listPath, dir string) ([]string, error) {
	if listPath == "" {
		return app.Images(dir)
	}
	f, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image list: %w", err)
	}
	defer f.Close()
	return annotation.ReadImageList(f)
}
