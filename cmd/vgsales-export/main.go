package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"vgsales/internal/config"
	"vgsales/internal/exporter"
	"vgsales/internal/infrastructure"
	"vgsales/internal/services"
	"vgsales/internal/validation"
	"vgsales/pkg/contracts"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// optionalInt is an int flag that remembers whether it was set
type optionalInt struct {
	value *int
}

func (o *optionalInt) String() string {
	if o.value == nil {
		return ""
	}
	return strconv.Itoa(*o.value)
}

func (o *optionalInt) Set(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be an integer")
	}
	o.value = &v
	return nil
}

// listFlag is a comma-separated list flag. Set is distinguished from empty.
type listFlag struct {
	values []string
	set    bool
}

func (l *listFlag) String() string { return strings.Join(l.values, ",") }

func (l *listFlag) Set(s string) error {
	l.set = true
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			l.values = append(l.values, part)
		}
	}
	return nil
}

type options struct {
	source    string
	yearMin   optionalInt
	yearMax   optionalInt
	platforms listFlag
	genres    listFlag
	format    string
	out       string
	version   bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

// run exports one filtered selection of the dataset to a file and returns
// the process exit code
func run(ctx context.Context, args []string, stderr io.Writer) int {
	var opts options

	fs := flag.NewFlagSet("vgsales-export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.source, "source", "", "sales dataset path (defaults to the configured dataset)")
	fs.Var(&opts.yearMin, "year-min", "lowest release year to include (defaults to the 25th percentile year)")
	fs.Var(&opts.yearMax, "year-max", "highest release year to include (defaults to the 75th percentile year)")
	fs.Var(&opts.platforms, "platforms", "comma-separated platforms (defaults to the configured platforms)")
	fs.Var(&opts.genres, "genres", "comma-separated genres (defaults to the configured genres)")
	fs.StringVar(&opts.format, "format", "csv", "export format: csv or xlsx")
	fs.StringVar(&opts.out, "out", "", "output file (defaults to the standard export filename)")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if opts.version {
		fmt.Fprintln(stderr, contracts.GetFullVersionString("vgsales-export"))
		return exitOK
	}

	format, err := exporter.ParseFormat(opts.format)
	if err != nil {
		fmt.Fprintf(stderr, "invalid -format: %v\n", err)
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config, using defaults: %v\n", err)
		cfg = config.Default()
	}
	if opts.source != "" {
		cfg.Dataset.Path = opts.source
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		logger = slog.New(slog.NewJSONHandler(stderr, nil))
	}
	ctx = infrastructure.EnsureTraceID(ctx)

	out := opts.out
	if out == "" {
		out = format.Filename()
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateSource(cfg.Dataset.Path); err != nil {
		logger.Error("Dataset could not be loaded", slog.String("error", err.Error()))
		return exitError
	}
	if err := validator.ValidateOutputFile(out); err != nil {
		logger.Error("Output is not writable", slog.String("error", err.Error()))
		return exitError
	}

	svc := services.NewSalesService(cfg.Dataset, nil, nil, logger)

	defaults, err := svc.DefaultFilter(ctx)
	if err != nil {
		logger.Error("Dataset could not be loaded", slog.String("error", err.Error()))
		return exitError
	}

	req := services.FilterRequest{
		YearMin:   opts.yearMin.value,
		YearMax:   opts.yearMax.value,
		Platforms: defaults.Platforms,
		Genres:    defaults.Genres,
	}
	if req.YearMin == nil {
		req.YearMin = &defaults.YearMin
	}
	if req.YearMax == nil {
		req.YearMax = &defaults.YearMax
	}
	if opts.platforms.set {
		req.Platforms = opts.platforms.values
	}
	if opts.genres.set {
		req.Genres = opts.genres.values
	}

	spec, err := svc.ResolveFilter(ctx, req)
	if err != nil {
		logger.Error("Invalid filter", slog.String("error", err.Error()))
		return exitUsage
	}

	res, err := svc.Export(ctx, spec, string(format))
	if err != nil {
		logger.Error("Export failed", slog.String("error", err.Error()))
		return exitError
	}

	if res.Rows == 0 {
		logger.Warn("Selection matched no rows, writing header only",
			slog.Any("filter", spec))
	} else if summary, err := svc.Summary(ctx, spec); err == nil {
		attrs := []any{
			slog.Int("count", summary.Count),
			slog.Float64("total_global_sales", summary.TotalGlobalSales),
			slog.Float64("average_global_sales", summary.AverageGlobalSales),
		}
		if summary.HasYearSpan {
			attrs = append(attrs, slog.String("time_span", fmt.Sprintf("%d - %d", summary.YearMin, summary.YearMax)))
		}
		logger.InfoContext(ctx, "Selection summary", attrs...)
	}

	if err := exporter.WriteFile(out, res.Data); err != nil {
		logger.Error("Failed to write export",
			slog.String("path", out),
			slog.String("error", err.Error()))
		return exitError
	}

	logger.Info("Export written",
		slog.String("path", out),
		slog.String("format", string(res.Format)),
		slog.Int("rows", res.Rows),
		slog.Int("bytes", len(res.Data)))
	return exitOK
}
