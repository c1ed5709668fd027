package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	defaultFFmpegPath  = "ffmpeg"
	defaultFFprobePath = "ffprobe"
)

// Transcoder reshapes a downloaded video into a vertical short with ffmpeg.
type Transcoder struct {
	// FFmpegPath is the ffmpeg executable. Defaults to "ffmpeg".
	FFmpegPath string
	// FFprobePath is the ffprobe executable. Defaults to "ffprobe".
	FFprobePath string
	// Timeout bounds a single transcode. Defaults to 10 minutes.
	Timeout time.Duration
}

// TranscodeOptions configures the output clip.
type TranscodeOptions struct {
	// Width and Height of the output, e.g. 1080x1920 for a short.
	Width  int
	Height int
	// MaxDuration truncates the clip from time zero when the source is
	// longer. Zero means no trim.
	MaxDuration time.Duration
}

// NewTranscoder creates a transcoder with defaults.
func NewTranscoder() *Transcoder {
	return &Transcoder{
		FFmpegPath:  defaultFFmpegPath,
		FFprobePath: defaultFFprobePath,
		Timeout:     defaultTimeout,
	}
}

// Transcode re-encodes inPath to outPath at the configured resolution,
// filling the frame (scale up, center crop) and trimming to MaxDuration.
func (t *Transcoder) Transcode(ctx context.Context, inPath, outPath string, opts TranscodeOptions) error {
	timeout := t.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := transcodeArgs(inPath, outPath, opts)
	cmd := exec.CommandContext(cmdCtx, t.ffmpegPath(), args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("transcode %s: timed out after %s", inPath, timeout)
		}
		return fmt.Errorf("transcode %s: %w: %s", inPath, err, lastStderrLine(stderr.String()))
	}
	return nil
}

// ProbeDuration reads the container duration of a media file.
func (t *Transcoder) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, t.ffprobePath(),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("probe %s: %w: %s", path, err, lastStderrLine(stderr.String()))
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("probe %s: unexpected ffprobe output %q", path, stdout.String())
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (t *Transcoder) ffmpegPath() string {
	if t.FFmpegPath != "" {
		return t.FFmpegPath
	}
	return defaultFFmpegPath
}

func (t *Transcoder) ffprobePath() string {
	if t.FFprobePath != "" {
		return t.FFprobePath
	}
	return defaultFFprobePath
}

// transcodeArgs builds the ffmpeg argument list.
func transcodeArgs(inPath, outPath string, opts TranscodeOptions) []string {
	args := []string{"-y", "-i", inPath}

	if opts.MaxDuration > 0 {
		args = append(args, "-t", formatSeconds(opts.MaxDuration))
	}

	args = append(args,
		"-vf", fillFilter(opts.Width, opts.Height),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-c:a", "aac",
		"-movflags", "+faststart",
		outPath,
	)
	return args
}

// fillFilter scales to cover the target frame then center-crops to it.
func fillFilter(width, height int) string {
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
		width, height, width, height,
	)
}

// formatSeconds renders a duration as fractional seconds for ffmpeg -t.
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func lastStderrLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
