package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrContains(t *testing.T, err error, want ...string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	for _, w := range want {
		if !strings.Contains(err.Error(), w) {
			t.Fatalf("error=%q want it to mention %q", err.Error(), w)
		}
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeTempConfig(t, "model:\n  autothrust_enabled: false\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Model.AutothrustEnabled {
		t.Fatalf("autothrust_enabled not read")
	}
	if !cfg.Model.FlyByWireEnabled || !cfg.Model.AutopilotLawsEnabled {
		t.Fatalf("expected enable flags to default to true")
	}
	if cfg.Model.MaxSampleTime != 0.11 || cfg.Model.LowPerformanceThreshold != 10 {
		t.Fatalf("model=%+v", cfg.Model)
	}
	if cfg.Model.NominalStep() != 0.05 {
		t.Fatalf("nominal step=%v want 0.05", cfg.Model.NominalStep())
	}
	if !cfg.FDR.Enabled || !cfg.FDR.Compress || cfg.FDR.MaxFiles != 15 {
		t.Fatalf("fdr=%+v", cfg.FDR)
	}
	if cfg.Export.Interval != 100*time.Millisecond {
		t.Fatalf("export interval=%s", cfg.Export.Interval)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, ""))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("cfg=%+v want defaults", cfg)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if cfg != Default() {
		t.Fatalf("cfg=%+v want defaults", cfg)
	}
}

func TestLoad_SyntaxErrorReturnsDefaults(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, "model: [\n"))
	requireErrContains(t, err, "parse")
	if cfg != Default() {
		t.Fatalf("cfg=%+v want defaults", cfg)
	}
}

func TestLoad_MalformedEntriesFallBack(t *testing.T) {
	path := writeTempConfig(t, strings.Join([]string{
		"model:",
		"  max_sample_time: fast",
		"  elac_disabled: 2",
		"  bogus_key: 1",
		"fdr:",
		"  max_files: 3",
		"",
	}, "\n"))
	cfg, err := Load(path)
	requireErrContains(t, err, "fast", "bogus_key")
	if cfg.Model.MaxSampleTime != 0.11 {
		t.Fatalf("max_sample_time=%v want default", cfg.Model.MaxSampleTime)
	}
	if cfg.Model.ElacDisabled != 2 || cfg.FDR.MaxFiles != 3 {
		t.Fatalf("valid entries lost: %+v %+v", cfg.Model, cfg.FDR)
	}
}

func TestLoad_NaNAndInfFallBack(t *testing.T) {
	path := writeTempConfig(t, "model:\n  max_sample_time: .nan\n  nominal_rate_hz: .inf\n")
	cfg, err := Load(path)
	requireErrContains(t, err, "model.max_sample_time", "model.nominal_rate_hz")
	if cfg.Model.MaxSampleTime != 0.11 || cfg.Model.NominalRateHz != 20 {
		t.Fatalf("non-finite values kept: %+v", cfg.Model)
	}
}

func TestDefaultAndValidate(t *testing.T) {
	cases := []struct {
		name  string
		apply func(*Config)
		key   string
		check func(Config) bool
	}{
		{"elac out of range", func(c *Config) { c.Model.ElacDisabled = 3 }, "model.elac_disabled",
			func(c Config) bool { return c.Model.ElacDisabled == 0 }},
		{"sec out of range", func(c *Config) { c.Model.SecDisabled = -1 }, "model.sec_disabled",
			func(c Config) bool { return c.Model.SecDisabled == 0 }},
		{"fac out of range", func(c *Config) { c.Model.FacDisabled = 5 }, "model.fac_disabled",
			func(c Config) bool { return c.Model.FacDisabled == 0 }},
		{"zero sample time", func(c *Config) { c.Model.MaxSampleTime = 0 }, "model.max_sample_time",
			func(c Config) bool { return c.Model.MaxSampleTime == 0.11 }},
		{"NaN sample time", func(c *Config) { c.Model.MaxSampleTime = math.NaN() }, "model.max_sample_time",
			func(c Config) bool { return c.Model.MaxSampleTime == 0.11 }},
		{"rate", func(c *Config) { c.Model.NominalRateHz = 0 }, "model.nominal_rate_hz",
			func(c Config) bool { return c.Model.NominalRateHz == 20 }},
		{"NaN rate", func(c *Config) { c.Model.NominalRateHz = math.NaN() }, "model.nominal_rate_hz",
			func(c Config) bool { return c.Model.NominalRateHz == 20 }},
		{"infinite rate", func(c *Config) { c.Model.NominalRateHz = math.Inf(1) }, "model.nominal_rate_hz",
			func(c Config) bool { return c.Model.NominalRateHz == 20 }},
		{"threshold", func(c *Config) { c.Model.LowPerformanceThreshold = 0 }, "model.low_performance_threshold",
			func(c Config) bool { return c.Model.LowPerformanceThreshold == 10 }},
		{"samples per file", func(c *Config) { c.FDR.MaxSamplesPerFile = 0 }, "fdr.max_samples_per_file",
			func(c Config) bool { return c.FDR.MaxSamplesPerFile == 72000 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level",
			func(c Config) bool { return c.Log.Level == "info" }},
		{"export dest", func(c *Config) { c.Export.Enabled, c.Export.Dest = true, "" }, "export.dest",
			func(c Config) bool { return c.Export.Dest == "127.0.0.1:4300" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Default()
			c.apply(&cfg)
			errs := cfg.DefaultAndValidate()
			if len(errs) != 1 || !strings.Contains(errs[0].Error(), c.key) {
				t.Fatalf("errs=%v want one mentioning %s", errs, c.key)
			}
			if !c.check(cfg) {
				t.Fatalf("value not reset: %+v", cfg)
			}
		})
	}
}

func TestDefaultAndValidate_DefaultsAreValid(t *testing.T) {
	cfg := Default()
	if errs := cfg.DefaultAndValidate(); len(errs) != 0 {
		t.Fatalf("defaults invalid: %v", errs)
	}
}
