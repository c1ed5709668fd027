// Package media shells out to yt-dlp and ffmpeg for the processing stage:
// downloading source videos and reshaping them into vertical shorts.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrToolNotInstalled indicates a required external binary was not found.
var ErrToolNotInstalled = errors.New("media: external tool not installed")

const (
	defaultYtdlpPath = "yt-dlp"
	defaultTimeout   = 10 * time.Minute
)

// Downloader fetches source videos with yt-dlp.
type Downloader struct {
	// Path is the yt-dlp executable. Defaults to "yt-dlp".
	Path string
	// Timeout bounds a single download. Defaults to 10 minutes.
	Timeout time.Duration
	// Format is the yt-dlp format selector. Defaults to best mp4 <=1080p.
	Format string
}

// NewDownloader creates a downloader with defaults.
func NewDownloader() *Downloader {
	return &Downloader{
		Path:    defaultYtdlpPath,
		Timeout: defaultTimeout,
	}
}

// Download fetches one video into destDir as <videoID>.<ext> and returns
// the downloaded file's path.
func (d *Downloader) Download(ctx context.Context, videoID, destDir string) (string, error) {
	if err := d.checkInstalled(ctx); err != nil {
		return "", err
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("create downloads directory: %w", err)
	}

	format := d.Format
	if format == "" {
		format = "bestvideo[height<=1080]+bestaudio/best[height<=1080]/best"
	}

	args := []string{
		"-o", filepath.Join(destDir, "%(id)s.%(ext)s"),
		"--no-warnings",
		"--no-playlist",
		"-f", format,
		"--print", "after_move:filepath",
		videoID,
	}

	timeout := d.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, d.path(), args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("download %s: timed out after %s", videoID, timeout)
		}
		return "", fmt.Errorf("download %s: %w: %s", videoID, err, strings.TrimSpace(stderr.String()))
	}

	path := lastPathLine(stdout.String())
	if path == "" {
		return "", fmt.Errorf("download %s: yt-dlp did not report an output path", videoID)
	}
	return path, nil
}

func (d *Downloader) checkInstalled(ctx context.Context) error {
	if err := exec.CommandContext(ctx, d.path(), "--version").Run(); err != nil {
		return fmt.Errorf("%w: %s", ErrToolNotInstalled, d.path())
	}
	return nil
}

func (d *Downloader) path() string {
	if d.Path != "" {
		return d.Path
	}
	return defaultYtdlpPath
}

// lastPathLine extracts the final filepath printed by yt-dlp.
func lastPathLine(out string) string {
	lines := strings.Split(out, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" {
			return line
		}
	}
	return ""
}
