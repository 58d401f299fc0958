package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/okian/adsim/internal/adapters/render"
	"github.com/okian/adsim/internal/adapters/source"
	"github.com/okian/adsim/internal/app"
	"github.com/okian/adsim/internal/config"
	"github.com/okian/adsim/internal/domain/formula"
	"github.com/okian/adsim/internal/domain/model"
	"github.com/okian/adsim/pkg/logger"
	"github.com/okian/adsim/pkg/metrics"
)

// Process exit codes.
const (
	exitOK            = 0
	exitFailure       = 1
	exitConfiguration = 2
	exitValidation    = 3
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one simulation and returns the process exit code. Reports go
// to stdout, logs and errors to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// Load configuration (defaults -> optional file -> env), then flags.
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "failed to load config: "+err.Error())
		return exitConfiguration
	}

	fs := flag.NewFlagSet("adsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	list := fs.Bool("list", false, "print the available formulas and data source kinds, then exit")
	fs.StringVar(&cfg.Data, "data", cfg.Data, "competition data as kind:location ("+strings.Join(source.Kinds(), ", ")+")")
	fs.StringVar(&cfg.Formula, "formula", cfg.Formula, "comma-separated formulas to run")
	fs.Var(optionalInt{&cfg.FromRound}, "from-round", "first scored round (default: first round of the data)")
	fs.Var(optionalInt{&cfg.ToRound}, "to-round", "last scored round (default: last round of the data)")
	fs.Var(optionalFloat{&cfg.ScaleTo}, "scale-to", "rescale so that the leader holds this total")
	fs.BoolVar(&cfg.ScaleSeries, "scale-series", cfg.ScaleSeries, "apply the final scale factor to the series too")
	fs.StringVar(&cfg.OutputFormat, "output-format", cfg.OutputFormat, "output format: "+strings.Join(render.Formats(), ", "))
	fs.BoolVar(&cfg.Series, "series", cfg.Series, "include the per-round series")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "rounds scored concurrently per formula")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write run metrics in Prometheus text format to this file")
	fs.StringVar(&cfg.NOPTeam, "nop-team", cfg.NOPTeam, "team whose flags and captures are not scored")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format on stderr: text, json")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitConfiguration
	}

	if *list {
		fmt.Fprintln(stdout, "formulas: "+strings.Join(formula.Names(), ", "))
		fmt.Fprintln(stdout, "sources:  "+strings.Join(source.Kinds(), ", "))
		return exitOK
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitConfiguration
	}

	if err := logger.Init(logger.WithOutput(stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging: "+err.Error())
		return exitConfiguration
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	renderer, err := render.New(cfg.OutputFormat)
	if err != nil {
		return fail(ctx, log, err)
	}
	src, err := source.Parse(cfg.Data)
	if err != nil {
		return fail(ctx, log, err)
	}

	opts := []app.Option{
		app.WithLogger(log),
		app.WithWorkers(cfg.Workers),
		app.WithFormulaParams(cfg.Formulas),
		app.WithScaleSeries(cfg.ScaleSeries),
		app.WithSeries(cfg.Series),
		app.WithNOPTeam(cfg.NOPTeam),
	}
	if cfg.ScaleTo != nil {
		opts = append(opts, app.WithScaleTo(*cfg.ScaleTo))
	}
	svc := app.New(opts...)

	reports, err := svc.Simulate(ctx, src, cfg.FormulaNames(), bound(cfg.FromRound), bound(cfg.ToRound))
	code := exitOK
	if err != nil {
		code = fail(ctx, log, err)
	} else if err := renderer.Render(stdout, reports); err != nil {
		code = fail(ctx, log, err)
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error(ctx, "failed to write metrics", logger.String("path", cfg.MetricsFile), logger.Error(err))
			if code == exitOK {
				code = exitFailure
			}
		}
	}
	return code
}

func bound(v *int) model.Round {
	if v == nil {
		return app.Unbounded
	}
	return model.Round(*v)
}

// optionalInt is an int flag that stays nil unless given.
type optionalInt struct{ p **int }

func (o optionalInt) String() string {
	if o.p == nil || *o.p == nil {
		return ""
	}
	return strconv.Itoa(**o.p)
}

func (o optionalInt) Set(raw string) error {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return err
	}
	*o.p = &v
	return nil
}

// optionalFloat is a float flag that stays nil unless given.
type optionalFloat struct{ p **float64 }

func (o optionalFloat) String() string {
	if o.p == nil || *o.p == nil {
		return ""
	}
	return strconv.FormatFloat(**o.p, 'g', -1, 64)
}

func (o optionalFloat) Set(raw string) error {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	*o.p = &v
	return nil
}

// fail logs err and maps it to an exit code.
func fail(ctx context.Context, log logger.Logger, err error) int {
	log.Error(ctx, "simulation failed", logger.Error(err))
	switch {
	case errors.Is(err, model.ErrConfiguration):
		return exitConfiguration
	case errors.Is(err, model.ErrValidation):
		return exitValidation
	default:
		return exitFailure
	}
}
