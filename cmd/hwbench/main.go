// hwbench runs a hardware qualification test on a bench machine: it
// holds the CPU at a target load while sampling one sensor per second,
// and prints PASS or FAIL against a target value and tolerance.
//
//	# CPU clock under 100% load, 5 samples, 3000 MHz ± 2000
//	hwbench --task check --hw CPU --sensor Clock -- 5 3000 2000 100
//
//	# memory load, print only
//	hwbench --task print --hw RAM --sensor Load --duration 3
//
//	# bench plan from a file (or HWBENCH_CONFIG)
//	hwbench --config plans/cpu-clock.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/alexshd/hwbench"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		configPath string
		verbose    bool
		cfg        = hwbench.DefaultConfig()
	)

	flagSet := pflag.NewFlagSet("hwbench", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", os.Getenv(hwbench.EnvConfig), "bench plan YAML (default $"+hwbench.EnvConfig+")")
	flagSet.StringVar(&cfg.Source, "source", cfg.Source, "sensor source: os or replay")
	flagSet.StringVar(&cfg.Task, "task", cfg.Task, "check, print or data")
	flagSet.StringVar(&cfg.Hardware, "hw", cfg.Hardware, "hardware type (CPU, RAM, ALL, ...)")
	flagSet.StringVar(&cfg.Sensor, "sensor", cfg.Sensor, "sensor type (Clock, Load, Temperature, ...)")
	flagSet.IntVar(&cfg.Duration, "duration", cfg.Duration, "number of one-second samples")
	flagSet.Float64Var(&cfg.Target, "target", cfg.Target, "expected sensor value")
	flagSet.Float64Var(&cfg.Tolerance, "tolerance", cfg.Tolerance, "allowed deviation from target")
	flagSet.Float64Var(&cfg.Load, "load", cfg.Load, "synthetic CPU load percent for CPU clock/load tests")
	flagSet.DurationVar(&cfg.Interval, "interval", cfg.Interval, "delay before each sample")
	flagSet.BoolVar(&cfg.Full, "full", cfg.Full, "report std deviation and per-sensor details")
	flagSet.IntVar(&cfg.Workers, "workers", cfg.Workers, "load workers (0 = one per logical CPU)")
	flagSet.Float64SliceVar(&cfg.Replay, "replay", nil, "readings for the replay source")
	flagSet.StringVar(&cfg.MetricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after the run")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	flagSet.SetInterspersed(true)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		fmt.Fprintln(os.Stderr, "Run 'hwbench --help' for usage.")
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	}))
	slog.SetDefault(logger)

	if configPath != "" {
		fileCfg, err := hwbench.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = overlay(fileCfg, cfg, flagSet)
	}
	if err := applyPositional(&cfg, flagSet.Args()); err != nil {
		return err
	}

	hw, st, params, err := cfg.TestParams()
	if err != nil {
		return err
	}
	src, err := cfg.NewSource(logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := hwbench.NewMetrics(reg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tester := hwbench.NewTester(src, hw, st, params,
		hwbench.WithLogger(logger),
		hwbench.WithMetrics(metrics),
		hwbench.WithSourceName(cfg.Source),
		hwbench.WithPool(hwbench.PoolConfig{Workers: cfg.Workers, Pin: true}),
	)
	report := tester.Report()
	fmt.Println(report.Start())

	start := time.Now()
	results, runErr := tester.Run(ctx)
	logger.Debug("run finished", "elapsed", time.Since(start), "state", tester.State())
	fmt.Println(report.Summary())

	if cfg.MetricsTextfile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsTextfile, reg); err != nil {
			logger.Error("metrics textfile not written", "path", cfg.MetricsTextfile, "error", err)
		}
	}

	if params.Mode == hwbench.ModeData {
		fmt.Println(results.Data)
	} else {
		out, err := results.JSON()
		if err != nil {
			return errors.Join(runErr, err)
		}
		fmt.Println(string(out))
	}
	return runErr
}

// overlay returns file with every flag the operator set explicitly
// copied over from flags.
func overlay(file, flags hwbench.Config, fs *pflag.FlagSet) hwbench.Config {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("source", func() { file.Source = flags.Source })
	set("task", func() { file.Task = flags.Task })
	set("hw", func() { file.Hardware = flags.Hardware })
	set("sensor", func() { file.Sensor = flags.Sensor })
	set("duration", func() { file.Duration = flags.Duration })
	set("target", func() { file.Target = flags.Target })
	set("tolerance", func() { file.Tolerance = flags.Tolerance })
	set("load", func() { file.Load = flags.Load })
	set("interval", func() { file.Interval = flags.Interval })
	set("full", func() { file.Full = flags.Full })
	set("workers", func() { file.Workers = flags.Workers })
	set("replay", func() { file.Replay = flags.Replay })
	set("metrics-textfile", func() { file.MetricsTextfile = flags.MetricsTextfile })
	return file
}

// applyPositional reads the trailing "<secs> <target> <tolerance> <load>"
// form. Missing trailing values keep their current setting.
func applyPositional(cfg *hwbench.Config, args []string) error {
	if len(args) > 4 {
		return fmt.Errorf("too many positional arguments: %v", args)
	}
	for i, a := range args {
		if i == 0 {
			secs, err := strconv.Atoi(a)
			if err != nil {
				return fmt.Errorf("positional argument 1 (%q): %w", a, err)
			}
			cfg.Duration = secs
			continue
		}
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("positional argument %d (%q): %w", i+1, a, err)
		}
		switch i {
		case 1:
			cfg.Target = v
		case 2:
			cfg.Tolerance = v
		case 3:
			cfg.Load = v
		}
	}
	return nil
}
