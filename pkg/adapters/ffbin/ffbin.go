// Package ffbin locates the ffmpeg and ffprobe executables.
package ffbin

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// ErrNotFound is returned when a binary cannot be located.
var ErrNotFound = errors.New("ffbin: executable not found")

// FindFFmpeg searches for ffmpeg.
// Priority: explicit path, FFMPEG_PATH env, PATH, common locations.
func FindFFmpeg(explicit string) (string, error) {
	return find("ffmpeg", explicit, os.Getenv("FFMPEG_PATH"))
}

// FindFFprobe searches for ffprobe.
// Priority: explicit path, FFPROBE_PATH env, PATH, common locations.
func FindFFprobe(explicit string) (string, error) {
	return find("ffprobe", explicit, os.Getenv("FFPROBE_PATH"))
}

func find(name, explicit, envPath string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("%w: %s not at %s", ErrNotFound, name, explicit)
	}

	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: %s not at %s", ErrNotFound, name, envPath)
	}

	execName := name
	if runtime.GOOS == "windows" {
		execName += ".exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	for _, p := range commonPaths(execName) {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

func commonPaths(execName string) []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\ffmpeg\bin\` + execName,
			`C:\Program Files\ffmpeg\bin\` + execName,
			`C:\Program Files (x86)\ffmpeg\bin\` + execName,
		}
	case "darwin":
		return []string{
			"/opt/homebrew/bin/" + execName,
			"/usr/local/bin/" + execName,
			"/usr/bin/" + execName,
		}
	default:
		return []string{
			"/usr/bin/" + execName,
			"/usr/local/bin/" + execName,
			"/snap/bin/" + execName,
		}
	}
}
