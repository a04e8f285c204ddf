package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// TempDir is where extracted audio files are written before decoding.
	// Empty means the system temp directory.
	TempDir string `yaml:"temp_dir"`

	Scan   ScanConfig   `yaml:"scan"`
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`
}

// ScanConfig holds the activity-detection heuristics. The defaults are the
// reference values; they are exposed here so they can be tuned without
// touching the scanners.
type ScanConfig struct {
	// PixelDiffThreshold is the per-channel color difference (0-255) above
	// which two frames are considered to differ.
	PixelDiffThreshold uint8 `yaml:"pixel_diff_threshold"`

	// GranularityDivisor controls temporal smoothing: a detected active
	// frame marks the next frameCount/GranularityDivisor frames active too.
	GranularityDivisor int `yaml:"granularity_divisor"`

	// AmplitudeThresholdScale scales (peak - mean) to produce the loudness
	// threshold. A crude heuristic; percentile thresholding would be more
	// robust.
	AmplitudeThresholdScale float64 `yaml:"amplitude_threshold_scale"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
	Threads    int    `yaml:"threads"`
	SampleRate int    `yaml:"sample_rate"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		TempDir: "",
		Scan: ScanConfig{
			PixelDiffThreshold:      30,
			GranularityDivisor:      50,
			AmplitudeThresholdScale: 0.001,
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
			SampleRate: 0, // keep the source rate
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./avindex.yaml",
		"./avindex.yml",
		filepath.Join(os.Getenv("HOME"), ".avindex", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
