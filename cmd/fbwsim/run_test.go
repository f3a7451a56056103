package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fbwsim/internal/fdr"
)

const testScenario = `
duration: 3s
initial:
  altitude_ft: 10000
  cas_kn: 250
  heading_deg: 90
  n1_pct: 55
events:
  - t: 1s
    ap1_push: true
  - t: 2s
    fail: [elac1]
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRun_ScenarioRecordsAndReplays(t *testing.T) {
	dir := t.TempDir()
	fdrDir := filepath.Join(dir, "fdr")
	cfg := writeFile(t, dir, "fbw.yaml", "fdr:\n  enabled: true\n  dir: "+fdrDir+"\n  compress: true\n")
	scn := writeFile(t, dir, "scenario.yaml", testScenario)

	var dump bytes.Buffer
	res, err := run(context.Background(), runOptions{ConfigPath: cfg, ScenarioPath: scn, Dump: &dump})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Ticks != 60 {
		t.Fatalf("ticks=%d want 60", res.Ticks)
	}
	if dump.Len() == 0 {
		t.Fatalf("context dump is empty")
	}

	files, err := fdr.Files(fdrDir)
	if err != nil || len(files) != 1 {
		t.Fatalf("fdr files=%v err=%v", files, err)
	}
	var out bytes.Buffer
	if err := replayFile(context.Background(), &out, files[0], 1000); err != nil {
		t.Fatalf("replayFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 60 {
		t.Fatalf("replayed %d lines want 60", len(lines))
	}
	if !strings.HasPrefix(lines[0], "t=0.05 tick=1 ") {
		t.Fatalf("first line: %q", lines[0])
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(context.Background(), runOptions{ScenarioPath: filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Fatalf("expected error for missing scenario")
	}
	bad := writeFile(t, dir, "bad.yaml", "version: 3\nduration: 1s\n")
	if _, err := run(context.Background(), runOptions{ScenarioPath: bad}); err == nil || !strings.Contains(err.Error(), "version") {
		t.Fatalf("err=%v want version error", err)
	}

	cfg := writeFile(t, dir, "fbw.yaml", "fdr:\n  enabled: false\n")
	scn := writeFile(t, dir, "scenario.yaml", testScenario)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := run(ctx, runOptions{ConfigPath: cfg, ScenarioPath: scn}); err != context.Canceled {
		t.Fatalf("err=%v want context.Canceled", err)
	}
}

func TestReplayFile_Errors(t *testing.T) {
	if err := replayFile(context.Background(), &bytes.Buffer{}, " ", 1); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if err := replayFile(context.Background(), &bytes.Buffer{}, filepath.Join(t.TempDir(), "none.fdr"), 1); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
