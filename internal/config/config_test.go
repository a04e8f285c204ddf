package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	// A path that doesn't exist falls back to defaults.
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Scan.PixelDiffThreshold != 30 {
		t.Errorf("PixelDiffThreshold: got %d, want 30", cfg.Scan.PixelDiffThreshold)
	}
	if cfg.Scan.GranularityDivisor != 50 {
		t.Errorf("GranularityDivisor: got %d, want 50", cfg.Scan.GranularityDivisor)
	}
	if cfg.Scan.AmplitudeThresholdScale != 0.001 {
		t.Errorf("AmplitudeThresholdScale: got %v, want 0.001", cfg.Scan.AmplitudeThresholdScale)
	}
	if cfg.FFmpeg.BinaryPath != "ffmpeg" {
		t.Errorf("BinaryPath: got %q, want ffmpeg", cfg.FFmpeg.BinaryPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
scan:
  pixel_diff_threshold: 45
  granularity_divisor: 25
ffmpeg:
  threads: 2
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Scan.PixelDiffThreshold != 45 {
		t.Errorf("PixelDiffThreshold: got %d, want 45", cfg.Scan.PixelDiffThreshold)
	}
	if cfg.Scan.GranularityDivisor != 25 {
		t.Errorf("GranularityDivisor: got %d, want 25", cfg.Scan.GranularityDivisor)
	}
	if cfg.FFmpeg.Threads != 2 {
		t.Errorf("Threads: got %d, want 2", cfg.FFmpeg.Threads)
	}
	// Unset fields keep their defaults.
	if cfg.Scan.AmplitudeThresholdScale != 0.001 {
		t.Errorf("AmplitudeThresholdScale: got %v, want 0.001", cfg.Scan.AmplitudeThresholdScale)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("scan: ["), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := defaultConfig()
	cfg.Scan.GranularityDivisor = 100

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Scan.GranularityDivisor != 100 {
		t.Errorf("GranularityDivisor: got %d, want 100", loaded.Scan.GranularityDivisor)
	}
}
