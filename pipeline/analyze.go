package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"shortsauto/storage"
	"shortsauto/youtube"
)

// DetailsFetcher resolves current statistics for one video.
type DetailsFetcher interface {
	GetDetails(ctx context.Context, videoID string) (*youtube.VideoDetails, error)
}

var reportHeader = []string{"VideoID", "Title", "UploadDate", "Views", "Likes"}

// Analyzer runs the analysis stage: fetch statistics for every uploaded
// video and write the CSV report.
type Analyzer struct {
	Details    DetailsFetcher
	LogPath    string
	ReportPath string
	Log        zerolog.Logger
}

// Run executes the stage. Videos that no longer resolve (deleted, made
// private) are skipped with a warning; so are ones whose stats fetch
// fails. The report is rewritten in full on every run.
func (a *Analyzer) Run(ctx context.Context) error {
	records, err := storage.LoadUploadRecords(a.LogPath)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		details, err := a.Details.GetDetails(ctx, rec.ID)
		if err != nil {
			a.Log.Warn().Err(err).Str("video_id", rec.ID).Msg("stats fetch failed, skipping")
			continue
		}
		if details == nil {
			a.Log.Warn().Str("video_id", rec.ID).Msg("video no longer available, skipping")
			continue
		}
		rows = append(rows, []string{
			rec.ID,
			details.Title,
			rec.UploadedAt.Format(time.RFC3339),
			strconv.FormatUint(details.Views, 10),
			strconv.FormatUint(details.Likes, 10),
		})
	}

	if err := a.writeReport(rows); err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	a.Log.Info().Int("videos", len(rows)).Str("file", a.ReportPath).Msg("analysis complete")
	return nil
}

func (a *Analyzer) writeReport(rows [][]string) error {
	writer, err := storage.NewAtomicWriter(a.ReportPath)
	if err != nil {
		return err
	}

	w := csv.NewWriter(writer)
	if err := w.Write(reportHeader); err != nil {
		writer.Abort()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		writer.Abort()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		writer.Abort()
		return err
	}
	return writer.Commit()
}
