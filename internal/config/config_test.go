package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.OutputDir != "flchain_report" {
		t.Fatalf("output_dir = %q", c.OutputDir)
	}
	if c.Seed != 42 || c.EvalSample != 200 || c.HeadRows != 6 {
		t.Fatalf("numeric defaults = %d/%d/%d", c.Seed, c.EvalSample, c.HeadRows)
	}
	if !c.Charts || !c.Workbook {
		t.Fatalf("charts/workbook default off")
	}
	if c.ChartWidthIn != 8 || c.ChartHeightIn != 5 {
		t.Fatalf("chart geometry = %g×%g", c.ChartWidthIn, c.ChartHeightIn)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	want := &Global{
		Dataset:    "/data/flchain.csv",
		OutputDir:  "out",
		Seed:       7,
		EvalSample: 50,
		HeadRows:   3,
		Delimiter:  ";",
		SheetIndex: 2,
		Charts:     true,
		Workbook:   false,
	}
	if err := Save(want, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Dataset != want.Dataset || got.OutputDir != want.OutputDir {
		t.Fatalf("paths = %q/%q", got.Dataset, got.OutputDir)
	}
	if got.Seed != 7 || got.EvalSample != 50 || got.HeadRows != 3 {
		t.Fatalf("numbers = %d/%d/%d", got.Seed, got.EvalSample, got.HeadRows)
	}
	if got.Delimiter != ";" || got.SheetIndex != 2 {
		t.Fatalf("reader options = %q/%d", got.Delimiter, got.SheetIndex)
	}
	if got.Workbook {
		t.Fatalf("workbook should stay false from file")
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FLCHAIN_OUTPUT_DIR", "env_out")
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.OutputDir != "env_out" {
		t.Fatalf("output_dir = %q, want env override", c.OutputDir)
	}
}
