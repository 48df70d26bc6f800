// Package main provides the CLI entry point for cliprender.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"
	"github.com/joho/godotenv"

	"github.com/user/cliprender/pkg/adapters/ffmpegencoder"
	"github.com/user/cliprender/pkg/adapters/ffmpegsource"
	"github.com/user/cliprender/pkg/adapters/formatprobe"
	"github.com/user/cliprender/pkg/adapters/ggrenderer"
	"github.com/user/cliprender/pkg/adapters/logger"
	"github.com/user/cliprender/pkg/adapters/mp4probe"
	"github.com/user/cliprender/pkg/adapters/osfilesystem"
	"github.com/user/cliprender/pkg/adapters/suggestapi"
	"github.com/user/cliprender/pkg/clip"
	"github.com/user/cliprender/pkg/config"
	"github.com/user/cliprender/pkg/geometry"
	"github.com/user/cliprender/pkg/ports"
	"github.com/user/cliprender/pkg/render"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Render  RenderCmd  `cmd:"" help:"Render a clip from a source video."`
	Suggest SuggestCmd `cmd:"" help:"Suggest clip candidates for a source video."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// RenderCmd defines the render subcommand.
type RenderCmd struct {
	// Required arguments
	Input  string `arg:"" help:"Source video file path."`
	Output string `short:"o" help:"Output file path (default: derived from the clip title)."`

	// Clip bounds
	Start float64 `required:"" help:"Clip start in seconds."`
	End   float64 `required:"" help:"Clip end in seconds."`
	Title string  `default:"clip" help:"Clip title, used for the output file name."`

	// Framing
	Ratio string `short:"r" default:"9:16" help:"Target aspect ratio (9:16, 16:9, 1:1, 4:5, 5:4)."`

	// Encoding options
	Quality *int `short:"q" help:"Video quality (CRF 0-63, lower is better)."`
	Bitrate *int `help:"Target video bitrate in kbps."`

	// Externals
	FFmpegPath  string `help:"Path to ffmpeg executable (falls back to FFMPEG_PATH env, then system default)."`
	FFprobePath string `help:"Path to ffprobe executable (falls back to FFPROBE_PATH env, then system default)."`

	// Config
	Config string `short:"c" help:"Path to a YAML config file."`

	// Logging options
	LogLevel string `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// SuggestCmd defines the suggest subcommand.
type SuggestCmd struct {
	Input string `arg:"" help:"Source video file path."`

	Genre            string `default:"" help:"Content genre hint for the suggestion service."`
	LengthPreference string `default:"" help:"Preferred clip length hint (e.g. short, medium, long)."`
	Prompt           string `default:"" help:"Free-form instruction for the suggestion service."`
	Iteration        int    `default:"0" help:"Retry iteration, shifts the suggested windows."`

	BaseURL string `help:"Suggestion service base URL (falls back to SUGGEST_BASE_URL env)."`
	APIKey  string `help:"Suggestion service API key (falls back to SUGGEST_API_KEY env)."`

	FFmpegPath  string `help:"Path to ffmpeg executable."`
	FFprobePath string `help:"Path to ffprobe executable."`

	Config string `short:"c" help:"Path to a YAML config file."`

	LogLevel string `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	// Optional .env for API keys and binary paths.
	_ = godotenv.Load()

	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("cliprender"),
		kong.Description("Render standalone clip videos from source footage."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the render command.
func (cmd *RenderCmd) Run() error {
	cfg, err := loadConfig(cmd.Config)
	if err != nil {
		return err
	}
	if cmd.FFmpegPath != "" {
		cfg.FFmpegPath = cmd.FFmpegPath
	}
	if cmd.FFprobePath != "" {
		cfg.FFprobePath = cmd.FFprobePath
	}
	if cmd.Quality != nil {
		cfg.Quality = *cmd.Quality
	}
	if cmd.Bitrate != nil {
		cfg.Bitrate = *cmd.Bitrate
	}

	log := newLogger(cmd.Quiet, cmd.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn(l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	src, err := ffmpegsource.Open(cmd.Input, ffmpegsource.Options{
		FFmpegPath:  cfg.FFmpegPath,
		FFprobePath: cfg.FFprobePath,
		Logger:      log,
	})
	if err != nil {
		return err
	}
	defer src.Close()

	c := clip.Clip{StartSec: cmd.Start, EndSec: cmd.End, Title: cmd.Title}
	ratio, err := geometry.ParseAspectRatio(cmd.Ratio)
	if err != nil {
		return err
	}

	renderer := render.New(
		ffmpegencoder.New(ffmpegencoder.Options{FFmpegPath: cfg.FFmpegPath, Logger: log}),
		ffmpegencoder.NewAudioRouter(ffmpegencoder.Options{FFmpegPath: cfg.FFmpegPath, Logger: log}),
		formatprobe.New(cfg.FFmpegPath),
		ggrenderer.New(),
		mp4probe.New(),
		log,
		cfg.ToRenderOptions(),
	)

	log.Info(l10n.F("Rendering %s [%.1fs - %.1fs] at %s...", cmd.Input, cmd.Start, cmd.End, ratio))

	lastPercent := -1
	artifact, err := renderer.Render(ctx, src, c, ratio, func(percent int) {
		if percent != lastPercent {
			lastPercent = percent
			log.Debug("Progress %d%%", percent)
		}
	})
	if err != nil {
		return err
	}

	out := cmd.Output
	if out == "" {
		out = filepath.Join(cfg.OutputDir, artifact.FileName)
	}

	fs := osfilesystem.New()
	if err := fs.WriteFile(out, artifact.Data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	log.Info(l10n.F("Output saved to %s (%d bytes, %.1fs)", out, artifact.Size(), artifact.DurationSec))
	return nil
}

// Run executes the suggest command.
func (cmd *SuggestCmd) Run() error {
	cfg, err := loadConfig(cmd.Config)
	if err != nil {
		return err
	}
	if cmd.FFmpegPath != "" {
		cfg.FFmpegPath = cmd.FFmpegPath
	}
	if cmd.FFprobePath != "" {
		cfg.FFprobePath = cmd.FFprobePath
	}
	if cmd.BaseURL != "" {
		cfg.Suggest.BaseURL = cmd.BaseURL
	} else if v := os.Getenv("SUGGEST_BASE_URL"); v != "" {
		cfg.Suggest.BaseURL = v
	}
	if cmd.APIKey != "" {
		cfg.Suggest.APIKey = cmd.APIKey
	} else if v := os.Getenv("SUGGEST_API_KEY"); v != "" {
		cfg.Suggest.APIKey = v
	}
	if cmd.Genre != "" {
		cfg.Suggest.Genre = cmd.Genre
	}
	if cmd.LengthPreference != "" {
		cfg.Suggest.LengthPreference = cmd.LengthPreference
	}

	log := newLogger(cmd.Quiet, cmd.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn(l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	src, err := ffmpegsource.Open(cmd.Input, ffmpegsource.Options{
		FFmpegPath:  cfg.FFmpegPath,
		FFprobePath: cfg.FFprobePath,
		Logger:      log,
	})
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Info(ctx)
	if err != nil {
		return err
	}

	suggester := suggestapi.New(cfg.Suggest.APIKey, cfg.Suggest.BaseURL, log)
	clips, err := suggester.Suggest(ctx, ports.SuggestRequest{
		FileName:         filepath.Base(cmd.Input),
		Genre:            cfg.Suggest.Genre,
		LengthPreference: cfg.Suggest.LengthPreference,
		UserPrompt:       cmd.Prompt,
		VideoDurationSec: info.DurationSec,
		Iteration:        cmd.Iteration,
	})
	if err != nil {
		return err
	}

	for i, c := range clips {
		fmt.Printf("%d. %s [%.1fs - %.1fs] score=%d\n", i+1, c.Title, c.StartSec, c.EndSec, c.ViralityScore)
	}
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("cliprender version %s", version))
	return nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Defaults(), nil
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func newLogger(quiet bool, level string) ports.Logger {
	if quiet {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(level))
}
