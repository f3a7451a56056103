package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Model  ModelConfig  `yaml:"model"`
	FDR    FDRConfig    `yaml:"fdr"`
	Log    LogConfig    `yaml:"log"`
	Export ExportConfig `yaml:"export"`
}

type ModelConfig struct {
	AutopilotStateMachineEnabled bool `yaml:"autopilot_state_machine_enabled"`
	AutopilotLawsEnabled         bool `yaml:"autopilot_laws_enabled"`
	AutothrustEnabled            bool `yaml:"autothrust_enabled"`
	FlyByWireEnabled             bool `yaml:"fly_by_wire_enabled"`

	// Instance number held failed from start, 0 for none.
	ElacDisabled int `yaml:"elac_disabled"`
	SecDisabled  int `yaml:"sec_disabled"`
	FacDisabled  int `yaml:"fac_disabled"`

	MaxSampleTime           float64 `yaml:"max_sample_time"`
	NominalRateHz           float64 `yaml:"nominal_rate_hz"`
	LowPerformanceThreshold int     `yaml:"low_performance_threshold"`
	TailstrikeProtection    bool    `yaml:"tailstrike_protection"`
}

// NominalStep is the sample time substituted for a non-positive one.
func (m ModelConfig) NominalStep() float64 { return 1 / m.NominalRateHz }

type FDRConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Dir               string `yaml:"dir"`
	MaxSamplesPerFile int    `yaml:"max_samples_per_file"`
	MaxFiles          int    `yaml:"max_files"`
	Compress          bool   `yaml:"compress"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

type ExportConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Dest     string        `yaml:"dest"`
	Interval time.Duration `yaml:"interval"`
}

func Default() Config {
	return Config{
		Model: ModelConfig{
			AutopilotStateMachineEnabled: true,
			AutopilotLawsEnabled:         true,
			AutothrustEnabled:            true,
			FlyByWireEnabled:             true,
			MaxSampleTime:                0.11,
			NominalRateHz:                20,
			LowPerformanceThreshold:      10,
			TailstrikeProtection:         true,
		},
		FDR: FDRConfig{
			Enabled:           true,
			Dir:               "fdr",
			MaxSamplesPerFile: 72000,
			MaxFiles:          15,
			Compress:          true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Export: ExportConfig{
			Dest:     "127.0.0.1:4300",
			Interval: 100 * time.Millisecond,
		},
	}
}

// Load reads a YAML config from path on top of Default. The returned
// Config is always usable: entries that are unknown, malformed or out of
// range keep their defaults and are reported in the error, which callers
// log and otherwise ignore.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var errs []error
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		var te *yaml.TypeError
		switch {
		case errors.As(err, &te):
			// Well-formed entries were still decoded.
			for _, e := range te.Errors {
				errs = append(errs, errors.New(e))
			}
		case errors.Is(err, io.EOF):
			// Empty file.
		default:
			return Default(), fmt.Errorf("parse %s: %w", path, err)
		}
	}
	errs = append(errs, cfg.DefaultAndValidate()...)
	return cfg, errors.Join(errs...)
}

// DefaultAndValidate resets every out-of-range value to its default and
// returns one error per reset.
func (c *Config) DefaultAndValidate() []error {
	def := Default()
	var errs []error
	reset := func(key string, v any) {
		errs = append(errs, fmt.Errorf("%s: invalid value %v, using default", key, v))
	}

	m := &c.Model
	if m.ElacDisabled < 0 || m.ElacDisabled > 2 {
		reset("model.elac_disabled", m.ElacDisabled)
		m.ElacDisabled = def.Model.ElacDisabled
	}
	if m.SecDisabled < 0 || m.SecDisabled > 3 {
		reset("model.sec_disabled", m.SecDisabled)
		m.SecDisabled = def.Model.SecDisabled
	}
	if m.FacDisabled < 0 || m.FacDisabled > 2 {
		reset("model.fac_disabled", m.FacDisabled)
		m.FacDisabled = def.Model.FacDisabled
	}
	// Written so that NaN fails the range.
	if !(m.MaxSampleTime > 0 && m.MaxSampleTime <= 1) {
		reset("model.max_sample_time", m.MaxSampleTime)
		m.MaxSampleTime = def.Model.MaxSampleTime
	}
	if !(m.NominalRateHz >= 1 && m.NominalRateHz <= 1000) {
		reset("model.nominal_rate_hz", m.NominalRateHz)
		m.NominalRateHz = def.Model.NominalRateHz
	}
	if m.LowPerformanceThreshold < 1 {
		reset("model.low_performance_threshold", m.LowPerformanceThreshold)
		m.LowPerformanceThreshold = def.Model.LowPerformanceThreshold
	}

	f := &c.FDR
	if f.Dir == "" {
		f.Dir = def.FDR.Dir
	}
	if f.MaxSamplesPerFile < 1 {
		reset("fdr.max_samples_per_file", f.MaxSamplesPerFile)
		f.MaxSamplesPerFile = def.FDR.MaxSamplesPerFile
	}
	if f.MaxFiles < 1 {
		reset("fdr.max_files", f.MaxFiles)
		f.MaxFiles = def.FDR.MaxFiles
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	case "":
		c.Log.Level = def.Log.Level
	default:
		reset("log.level", c.Log.Level)
		c.Log.Level = def.Log.Level
	}

	e := &c.Export
	if e.Interval <= 0 {
		e.Interval = def.Export.Interval
	}
	if e.Enabled && e.Dest == "" {
		reset("export.dest", `""`)
		e.Dest = def.Export.Dest
	}
	return errs
}
