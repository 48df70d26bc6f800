package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/user/cliprender/pkg/render"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.AspectRatio != "9:16" {
		t.Errorf("expected default ratio 9:16, got %s", cfg.AspectRatio)
	}
	if cfg.SeekToleranceSec != render.DefaultSeekToleranceSec {
		t.Errorf("expected default seek tolerance, got %v", cfg.SeekToleranceSec)
	}
	if cfg.Quality != 30 {
		t.Errorf("expected default quality 30, got %d", cfg.Quality)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
}

func TestLoadFromFile(t *testing.T) {
	yaml := `
input: talk.mp4
start: 12.5
end: 42.5
title: Big Reveal
ratio: "16:9"
quality: 20
bitrate: 4500
seek_tolerance: 0.25
ffmpeg_path: /opt/ffmpeg/bin/ffmpeg
suggest:
  base_url: https://suggest.internal
  genre: podcast
log_level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.InputPath != "talk.mp4" {
		t.Errorf("input: got %q", cfg.InputPath)
	}
	if cfg.StartSec != 12.5 || cfg.EndSec != 42.5 {
		t.Errorf("bounds: got [%v, %v]", cfg.StartSec, cfg.EndSec)
	}
	if cfg.AspectRatio != "16:9" {
		t.Errorf("ratio: got %q", cfg.AspectRatio)
	}
	if cfg.Quality != 20 || cfg.Bitrate != 4500 {
		t.Errorf("encoding: got quality %d bitrate %d", cfg.Quality, cfg.Bitrate)
	}
	if cfg.SeekToleranceSec != 0.25 {
		t.Errorf("seek tolerance: got %v", cfg.SeekToleranceSec)
	}
	if cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("ffmpeg path: got %q", cfg.FFmpegPath)
	}
	if cfg.Suggest.BaseURL != "https://suggest.internal" || cfg.Suggest.Genre != "podcast" {
		t.Errorf("suggest: got %+v", cfg.Suggest)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level: got %q", cfg.LogLevel)
	}

	// Unset keys keep defaults.
	if cfg.OutputDir != "." {
		t.Errorf("output dir default lost: %q", cfg.OutputDir)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestToRenderOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Quality = 25
	cfg.Bitrate = 3000
	cfg.SeekToleranceSec = 0.75

	opts := cfg.ToRenderOptions()
	if opts.Quality != 25 || opts.Bitrate != 3000 || opts.SeekToleranceSec != 0.75 {
		t.Errorf("unexpected options %+v", opts)
	}
}
