package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"shortsauto/media"
	"shortsauto/storage"
)

// Downloader fetches a source video into a directory and returns the
// downloaded file's path.
type Downloader interface {
	Download(ctx context.Context, videoID, destDir string) (string, error)
}

// Transcoder converts a source file into the output clip and can probe a
// file's duration.
type Transcoder interface {
	Transcode(ctx context.Context, inPath, outPath string, opts media.TranscodeOptions) error
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

// Processor runs the processing stage: download each candidate, cut it
// into a vertical short, and write the processed list file.
type Processor struct {
	Downloader Downloader
	Transcoder Transcoder

	ShortDuration time.Duration
	OutputWidth   int
	OutputHeight  int

	ListPath     string
	OutputPath   string
	DownloadsDir string
	ProcessedDir string

	Log zerolog.Logger
}

// Run executes the stage. A candidate that fails to download or transcode
// is skipped with a warning; the stage fails only when the candidate list
// cannot be read or the processed list cannot be written.
func (p *Processor) Run(ctx context.Context) error {
	candidates, err := storage.LoadCandidates(p.ListPath)
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}

	if err := os.MkdirAll(p.ProcessedDir, 0755); err != nil {
		return fmt.Errorf("process: create processed directory: %w", err)
	}

	processed := make([]storage.ProcessedVideo, 0, len(candidates))
	for _, candidate := range candidates {
		item, err := p.processOne(ctx, candidate)
		if err != nil {
			p.Log.Warn().Err(err).Str("video_id", candidate.ID).Msg("processing failed, skipping video")
			continue
		}
		processed = append(processed, *item)
	}

	if err := storage.SaveProcessed(p.OutputPath, processed); err != nil {
		return fmt.Errorf("process: %w", err)
	}

	p.Log.Info().
		Int("processed", len(processed)).
		Int("skipped", len(candidates)-len(processed)).
		Str("file", p.OutputPath).
		Msg("processing complete")
	return nil
}

func (p *Processor) processOne(ctx context.Context, candidate storage.VideoCandidate) (*storage.ProcessedVideo, error) {
	rawPath, err := p.Downloader.Download(ctx, candidate.ID, p.DownloadsDir)
	if err != nil {
		return nil, err
	}
	// The raw download is an intermediate; remove it once the clip exists.
	defer os.Remove(rawPath)

	clipDuration := p.ShortDuration
	if probed, err := p.Transcoder.ProbeDuration(ctx, rawPath); err != nil {
		p.Log.Warn().Err(err).Str("video_id", candidate.ID).Msg("could not probe duration")
	} else if probed < clipDuration {
		clipDuration = probed
	}

	outPath := filepath.Join(p.ProcessedDir, candidate.ID+"_short.mp4")
	opts := media.TranscodeOptions{
		Width:       p.OutputWidth,
		Height:      p.OutputHeight,
		MaxDuration: p.ShortDuration,
	}
	if err := p.Transcoder.Transcode(ctx, rawPath, outPath, opts); err != nil {
		return nil, err
	}

	p.Log.Info().Str("video_id", candidate.ID).Str("file", outPath).Msg("processed video")
	return &storage.ProcessedVideo{
		OriginalID:    candidate.ID,
		Title:         candidate.Title,
		ProcessedPath: outPath,
		Duration:      int(clipDuration.Seconds()),
		CreatedAt:     time.Now(),
	}, nil
}
