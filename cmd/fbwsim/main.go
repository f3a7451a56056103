package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fbwsim/internal/config"
	"fbwsim/internal/logging"
)

func main() {
	var opts runOptions
	var replayPath string
	var replaySpeed float64
	var dump bool
	flag.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config (defaults when empty)")
	flag.StringVar(&opts.ScenarioPath, "scenario", "", "Path to YAML scenario script")
	flag.Float64Var(&opts.Rate, "rate", 0, "Real-time factor; 0 runs as fast as possible")
	flag.BoolVar(&dump, "dump", false, "Dump the final model context to stdout")
	flag.StringVar(&replayPath, "replay", "", "Play back a flight data recorder file instead of running a scenario")
	flag.Float64Var(&replaySpeed, "replay-speed", 1, "Replay speed factor")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if replayPath != "" {
		if err := replayFile(ctx, os.Stdout, replayPath, replaySpeed); err != nil {
			log.Fatalf("replay failed: %v", err)
		}
		return
	}
	if opts.ScenarioPath == "" {
		log.Fatalf("-scenario is required")
	}

	cfg := config.Default()
	if opts.ConfigPath != "" {
		// Errors are reported again by Connect once the logger exists.
		cfg, _ = config.Load(opts.ConfigPath)
	}
	lg := logging.New(cfg.Log.Level, cfg.Log.Dir)
	defer lg.Close()
	opts.Log = lg
	if dump {
		opts.Dump = os.Stdout
	}

	res, err := run(ctx, opts)
	if err != nil {
		lg.Errorf("run failed: %v", err)
		os.Exit(1)
	}
	lg.Info("fbwsim finished", "ticks", res.Ticks, "sim_time_s", res.TimeS, "performance_warnings", res.PerformanceWarnings)
}
