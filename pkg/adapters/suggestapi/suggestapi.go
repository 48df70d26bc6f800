// Package suggestapi implements the clip suggester port against an HTTP
// suggestion service, with a deterministic local fallback when the
// service fails or returns nothing usable.
package suggestapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/user/cliprender/pkg/clip"
	"github.com/user/cliprender/pkg/ports"
)

const requestTimeout = 90 * time.Second

// Adapter implements ports.ClipSuggester over HTTP.
type Adapter struct {
	key     string
	baseURL string
	client  *http.Client
	logger  ports.Logger
}

// New creates an Adapter. baseURL has no trailing slash.
func New(apiKey, baseURL string, logger ports.Logger) *Adapter {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Adapter{
		key:     apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Minute},
		logger:  logger.WithComponent("suggest"),
	}
}

// Suggest asks the service for clip candidates. Any service failure, a
// transport error, a non-2xx status, a malformed body or an empty result,
// degrades to the deterministic fallback rather than failing the caller.
// Only cancellation of the caller's context surfaces as an error.
func (a *Adapter) Suggest(ctx context.Context, req ports.SuggestRequest) ([]clip.Clip, error) {
	payload := map[string]any{
		"fileName":         req.FileName,
		"genre":            req.Genre,
		"lengthPreference": req.LengthPreference,
		"userPrompt":       req.UserPrompt,
		"videoDuration":    req.VideoDurationSec,
		"iteration":        req.Iteration,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, "POST", a.baseURL+"/api/v1/suggest", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if a.key != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.key)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timeout after %s", requestTimeout)
		}
		a.logger.Warn("Suggestion request failed, using fallback: %v", err)
		return Fallback(req.VideoDurationSec, req.Iteration), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(resp.Body)
		a.logger.Warn("Suggestion service returned status %d, using fallback: %s", resp.StatusCode, truncate(string(rb), 400))
		return Fallback(req.VideoDurationSec, req.Iteration), nil
	}

	var raw struct {
		Clips []clip.Clip `json:"clips"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		a.logger.Warn("Malformed suggestion response, using fallback: %v", err)
		return Fallback(req.VideoDurationSec, req.Iteration), nil
	}

	out := sanitize(raw.Clips, req.VideoDurationSec)
	if len(out) == 0 {
		a.logger.Warn("Service returned no usable clips, using fallback")
		return Fallback(req.VideoDurationSec, req.Iteration), nil
	}
	return out, nil
}

// sanitize clamps every clip to the video bounds and drops the ones that
// remain invalid.
func sanitize(clips []clip.Clip, videoDurationSec float64) []clip.Clip {
	out := make([]clip.Clip, 0, len(clips))
	for _, c := range clips {
		if videoDurationSec > 0 {
			c = c.ClampTo(videoDurationSec)
		}
		if err := c.Validate(); err != nil {
			continue
		}
		if strings.TrimSpace(c.Title) == "" {
			c.Title = "Highlight"
		}
		out = append(out, c)
	}
	return out
}

// Fallback produces evenly spaced candidate clips without any service.
// Results are deterministic per (duration, iteration) so a retry shifts
// the windows instead of repeating them.
func Fallback(videoDurationSec float64, iteration int) []clip.Clip {
	if videoDurationSec <= 0 {
		videoDurationSec = 60
	}

	const count = 5
	clipLen := 30.0
	if videoDurationSec < clipLen*2 {
		clipLen = videoDurationSec / 2
	}
	if clipLen < 1 {
		clipLen = videoDurationSec
	}

	stride := (videoDurationSec - clipLen) / float64(count)
	if stride < 0 {
		stride = 0
	}
	offset := float64(iteration) * clipLen / 2

	out := make([]clip.Clip, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i)*stride + offset
		c := clip.Clip{
			StartSec:      start,
			EndSec:        start + clipLen,
			Title:         fmt.Sprintf("Highlight %d", i+1),
			ViralityScore: 50,
		}
		c = c.ClampTo(videoDurationSec)
		if c.Validate() != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var _ ports.ClipSuggester = (*Adapter)(nil)

type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{})      {}
func (noopLogger) Info(string, ...interface{})       {}
func (noopLogger) Warn(string, ...interface{})       {}
func (noopLogger) Error(string, ...interface{})      {}
func (noopLogger) WithComponent(string) ports.Logger { return noopLogger{} }
