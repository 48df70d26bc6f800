package ffbin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func fakeBinary(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindFFmpegExplicitPath(t *testing.T) {
	path := fakeBinary(t, "ffmpeg")
	got, err := FindFFmpeg(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("expected %s, got %s", path, got)
	}
}

func TestFindFFmpegExplicitPathMissing(t *testing.T) {
	_, err := FindFFmpeg("/nonexistent/ffmpeg")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindFFmpegEnvVar(t *testing.T) {
	path := fakeBinary(t, "ffmpeg")
	t.Setenv("FFMPEG_PATH", path)

	got, err := FindFFmpeg("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("expected env path %s, got %s", path, got)
	}
}

func TestFindFFmpegExplicitBeatsEnv(t *testing.T) {
	explicit := fakeBinary(t, "ffmpeg")
	t.Setenv("FFMPEG_PATH", "/env/ffmpeg")

	got, err := FindFFmpeg(explicit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != explicit {
		t.Errorf("expected explicit path to win, got %s", got)
	}
}

func TestFindFFprobeEnvVar(t *testing.T) {
	path := fakeBinary(t, "ffprobe")
	t.Setenv("FFPROBE_PATH", path)

	got, err := FindFFprobe("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("expected env path %s, got %s", path, got)
	}
}

func TestFindFFmpegBadEnvVar(t *testing.T) {
	t.Setenv("FFMPEG_PATH", "/nonexistent/ffmpeg")
	if _, err := FindFFmpeg(""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a bad env path, got %v", err)
	}
}
