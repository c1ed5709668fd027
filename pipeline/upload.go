package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"shortsauto/storage"
	"shortsauto/youtube"
)

// Uploader sends one video to the platform.
type Uploader interface {
	Upload(ctx context.Context, req youtube.UploadRequest) (*storage.UploadRecord, error)
}

// UploadScheduler runs the upload stage: push processed clips until the
// daily cap is reached, pacing uploads with a fixed interval. The cap is
// enforced through the quota ledger, which is read and written under the
// upload log's file lock so concurrent runs cannot jointly exceed it.
type UploadScheduler struct {
	Uploader Uploader

	MaxDailyUploads int
	Interval        time.Duration
	// Location determines which calendar day an upload is counted against.
	Location *time.Location

	TitlePrefix string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string

	ListPath   string
	LogPath    string
	LedgerPath string

	Log zerolog.Logger

	// Sleep and Now are overridable for tests. Nil means the real thing.
	Sleep func(time.Duration)
	Now   func() time.Time
}

// Run executes the stage. When the daily cap is already reached it returns
// without making any remote calls. A clip whose file is missing is skipped;
// a failed upload is logged and does not stop later clips. Successful
// uploads are persisted even when some uploads fail.
func (s *UploadScheduler) Run(ctx context.Context) error {
	clips, err := storage.LoadProcessed(s.ListPath)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}

	log, err := storage.OpenUploadLog(s.LogPath, s.LedgerPath)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer log.Close()

	if remaining := s.remaining(log); remaining <= 0 {
		s.Log.Info().Int("max_daily", s.MaxDailyUploads).Msg("daily upload quota reached, nothing to do")
		return nil
	}

	uploaded := 0
	for _, clip := range clips {
		// Re-check on every iteration so a midnight rollover mid-run is
		// counted against the right day.
		date := s.today()
		if s.MaxDailyUploads-log.CountForDate(date) <= 0 {
			s.Log.Info().Int("uploaded", uploaded).Msg("daily upload quota reached")
			break
		}

		if _, err := os.Stat(clip.ProcessedPath); err != nil {
			s.Log.Warn().Str("file", clip.ProcessedPath).Msg("processed file missing, skipping")
			continue
		}

		if uploaded > 0 {
			s.sleep(s.Interval)
		}

		record, err := s.Uploader.Upload(ctx, youtube.UploadRequest{
			FilePath:    clip.ProcessedPath,
			Title:       s.TitlePrefix + clip.Title,
			Description: s.Description,
			Tags:        s.Tags,
			CategoryID:  s.CategoryID,
			Privacy:     s.Privacy,
		})
		if err != nil {
			s.Log.Warn().Err(err).Str("file", clip.ProcessedPath).Msg("upload failed, skipping")
			continue
		}

		record.UploadedAt = s.now()
		log.Append(*record, date)
		uploaded++
		s.Log.Info().Str("video_id", record.ID).Str("title", record.Title).Msg("uploaded video")
	}

	if uploaded > 0 {
		if err := log.Save(); err != nil {
			return fmt.Errorf("upload: %w", err)
		}
	}

	s.Log.Info().Int("uploaded", uploaded).Msg("upload stage complete")
	return nil
}

func (s *UploadScheduler) remaining(log *storage.UploadLog) int {
	return s.MaxDailyUploads - log.CountForDate(s.today())
}

func (s *UploadScheduler) today() string {
	return s.now().In(s.location()).Format("2006-01-02")
}

func (s *UploadScheduler) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

func (s *UploadScheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *UploadScheduler) sleep(d time.Duration) {
	if s.Sleep != nil {
		s.Sleep(d)
		return
	}
	time.Sleep(d)
}
