package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goforj/godump"

	"fbwsim/internal/fbw"
	"fbwsim/internal/logging"
	"fbwsim/internal/sim"
)

type runOptions struct {
	ConfigPath   string
	ScenarioPath string
	// Rate is the real-time factor; 0 or less runs unpaced.
	Rate float64
	Log  *logging.Logger
	// Dump receives the final model context when non-nil.
	Dump io.Writer
}

type runResult struct {
	Ticks               uint64
	TimeS               float64
	PerformanceWarnings int
	Last                fbw.Actuators
}

// run flies the scenario closed loop until it ends or ctx is done.
func run(ctx context.Context, opts runOptions) (runResult, error) {
	var res runResult
	script, err := sim.LoadScenarioScript(opts.ScenarioPath)
	if err != nil {
		return res, fmt.Errorf("load scenario: %w", err)
	}
	scn, err := sim.NewScenario(script)
	if err != nil {
		return res, fmt.Errorf("scenario: %w", err)
	}
	host := sim.NewHost(scn)

	f := fbw.New(host, opts.ConfigPath, opts.Log)
	if err := f.Connect(); err != nil {
		return res, err
	}
	defer f.Disconnect()

	dt := f.Config().Model.NominalStep()
	opts.Log.Info("scenario starting", "path", opts.ScenarioPath, "duration", scn.Duration(), "dt", dt)

	var ticker *time.Ticker
	if opts.Rate > 0 {
		ticker = time.NewTicker(time.Duration(dt / opts.Rate * float64(time.Second)))
		defer ticker.Stop()
	}

	warned := false
	for !host.Done() {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return res, err
		}

		host.Advance(dt)
		if !f.Update(dt) {
			return res, errors.New("model update rejected")
		}
		last := host.Last()
		if last.PerformanceWarning && !warned {
			res.PerformanceWarnings++
		}
		warned = last.PerformanceWarning
	}

	c := f.Context()
	res.Ticks, res.TimeS, res.Last = c.Tick, c.TimeS, host.Last()
	if opts.Dump != nil {
		godump.Fdump(opts.Dump, c)
	}
	return res, nil
}
