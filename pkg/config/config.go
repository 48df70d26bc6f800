// Package config provides configuration loading and management.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/cliprender/pkg/render"
)

// Config represents the full configuration for cliprender.
type Config struct {
	// Input/Output
	InputPath  string `yaml:"input"`
	OutputDir  string `yaml:"output_dir"`
	OutputPath string `yaml:"output"`

	// Clip
	StartSec    float64 `yaml:"start"`
	EndSec      float64 `yaml:"end"`
	Title       string  `yaml:"title"`
	AspectRatio string  `yaml:"ratio"`

	// Rendering
	SeekToleranceSec float64 `yaml:"seek_tolerance"`

	// Encoding
	Quality int `yaml:"quality"`
	Bitrate int `yaml:"bitrate"`

	// Externals
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`

	// Suggestion service
	Suggest SuggestConfig `yaml:"suggest"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// SuggestConfig represents the suggestion service settings.
type SuggestConfig struct {
	BaseURL          string `yaml:"base_url"`
	APIKey           string `yaml:"api_key"`
	Genre            string `yaml:"genre"`
	LengthPreference string `yaml:"length_preference"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		OutputDir: ".",

		AspectRatio: "9:16",

		SeekToleranceSec: render.DefaultSeekToleranceSec,

		Quality: 30,

		Suggest: SuggestConfig{
			BaseURL: "https://api.example.com",
		},

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ToRenderOptions converts Config to render.Options.
func (c Config) ToRenderOptions() render.Options {
	return render.Options{
		SeekToleranceSec: c.SeekToleranceSec,
		Quality:          c.Quality,
		Bitrate:          c.Bitrate,
	}
}
