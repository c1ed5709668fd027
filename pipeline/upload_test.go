package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortsauto/storage"
	"shortsauto/youtube"
)

type fakeUploader struct {
	calls  []youtube.UploadRequest
	errOn  map[int]error // call index -> error
	nextID int
}

func (f *fakeUploader) Upload(_ context.Context, req youtube.UploadRequest) (*storage.UploadRecord, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, req)
	if err := f.errOn[idx]; err != nil {
		return nil, err
	}
	f.nextID++
	return &storage.UploadRecord{ID: fmt.Sprintf("vid-%d", f.nextID), Title: req.Title}, nil
}

type schedulerFixture struct {
	scheduler *UploadScheduler
	uploader  *fakeUploader
	sleeps    []time.Duration
	dir       string
}

func newSchedulerFixture(t *testing.T, maxDaily int, clips []storage.ProcessedVideo) *schedulerFixture {
	t.Helper()
	dir := t.TempDir()

	listPath := filepath.Join(dir, "processed_videos.json")
	require.NoError(t, storage.SaveProcessed(listPath, clips))

	f := &schedulerFixture{
		uploader: &fakeUploader{errOn: map[int]error{}},
		dir:      dir,
	}

	clock := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	f.scheduler = &UploadScheduler{
		Uploader:        f.uploader,
		MaxDailyUploads: maxDaily,
		Interval:        time.Minute,
		Location:        time.UTC,
		TitlePrefix:     "Cool Short - ",
		Description:     "desc",
		Tags:            []string{"shorts"},
		CategoryID:      "24",
		Privacy:         "private",
		ListPath:        listPath,
		LogPath:         filepath.Join(dir, "uploaded_videos.json"),
		LedgerPath:      filepath.Join(dir, "upload_quota.json"),
		Log:             zerolog.Nop(),
		Sleep:           func(d time.Duration) { f.sleeps = append(f.sleeps, d) },
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}
	return f
}

// makeClips writes n clip files into dir and returns their records.
func makeClips(t *testing.T, dir string, n int) []storage.ProcessedVideo {
	t.Helper()
	clips := make([]storage.ProcessedVideo, n)
	for i := range clips {
		path := filepath.Join(dir, fmt.Sprintf("clip-%d.mp4", i))
		require.NoError(t, os.WriteFile(path, []byte("video"), 0644))
		clips[i] = storage.ProcessedVideo{
			OriginalID:    fmt.Sprintf("src-%d", i),
			Title:         fmt.Sprintf("Clip %d", i),
			ProcessedPath: path,
			Duration:      59,
		}
	}
	return clips
}

func savedRecords(t *testing.T, f *schedulerFixture) []storage.UploadRecord {
	t.Helper()
	records, err := storage.LoadUploadRecords(f.scheduler.LogPath)
	require.NoError(t, err)
	return records
}

func TestSchedulerUploadsUpToCap(t *testing.T) {
	dir := t.TempDir()
	clips := makeClips(t, dir, 5)
	f := newSchedulerFixture(t, 3, clips)

	require.NoError(t, f.scheduler.Run(context.Background()))

	assert.Len(t, f.uploader.calls, 3)
	assert.Equal(t, "Cool Short - Clip 0", f.uploader.calls[0].Title)

	records := savedRecords(t, f)
	require.Len(t, records, 3)
	for i := 1; i < len(records); i++ {
		assert.True(t, records[i].UploadedAt.After(records[i-1].UploadedAt),
			"upload timestamps must be strictly increasing")
	}
}

func TestSchedulerSleepsBetweenUploadsOnly(t *testing.T) {
	dir := t.TempDir()
	f := newSchedulerFixture(t, 3, makeClips(t, dir, 5))

	require.NoError(t, f.scheduler.Run(context.Background()))

	// 3 uploads mean exactly 2 pacing delays.
	require.Len(t, f.sleeps, 2)
	assert.Equal(t, time.Minute, f.sleeps[0])
}

func TestSchedulerNoCallsWhenQuotaExhausted(t *testing.T) {
	dir := t.TempDir()
	f := newSchedulerFixture(t, 3, makeClips(t, dir, 2))

	ledger := []byte(`{"2026-09-01": 3}`)
	require.NoError(t, os.WriteFile(f.scheduler.LedgerPath, ledger, 0644))

	require.NoError(t, f.scheduler.Run(context.Background()))

	assert.Empty(t, f.uploader.calls)
	assert.Empty(t, f.sleeps)
	_, err := os.Stat(f.scheduler.LogPath)
	assert.True(t, os.IsNotExist(err), "log must not be written when nothing uploaded")
}

func TestSchedulerHonorsExistingDailyCount(t *testing.T) {
	dir := t.TempDir()
	f := newSchedulerFixture(t, 5, makeClips(t, dir, 5))

	ledger := []byte(`{"2026-09-01": 3}`)
	require.NoError(t, os.WriteFile(f.scheduler.LedgerPath, ledger, 0644))

	require.NoError(t, f.scheduler.Run(context.Background()))

	assert.Len(t, f.uploader.calls, 2)
}

func TestSchedulerSkipsMissingFileWithoutSleeping(t *testing.T) {
	dir := t.TempDir()
	clips := makeClips(t, dir, 2)
	clips[0].ProcessedPath = filepath.Join(dir, "gone.mp4")
	f := newSchedulerFixture(t, 1, clips)

	require.NoError(t, f.scheduler.Run(context.Background()))

	require.Len(t, f.uploader.calls, 1)
	assert.Contains(t, f.uploader.calls[0].FilePath, "clip-1.mp4")
	assert.Empty(t, f.sleeps, "a skipped clip must not cost a pacing delay")
}

func TestSchedulerContinuesPastFailedUpload(t *testing.T) {
	dir := t.TempDir()
	f := newSchedulerFixture(t, 5, makeClips(t, dir, 3))
	f.uploader.errOn[1] = fmt.Errorf("server error")

	require.NoError(t, f.scheduler.Run(context.Background()))

	assert.Len(t, f.uploader.calls, 3)
	records := savedRecords(t, f)
	assert.Len(t, records, 2, "failed upload must not be recorded")
}

func TestSchedulerUpdatesLedger(t *testing.T) {
	dir := t.TempDir()
	f := newSchedulerFixture(t, 2, makeClips(t, dir, 3))

	require.NoError(t, f.scheduler.Run(context.Background()))

	log, err := storage.OpenUploadLog(f.scheduler.LogPath, f.scheduler.LedgerPath)
	require.NoError(t, err)
	defer log.Close()
	assert.Equal(t, 2, log.CountForDate("2026-09-01"))
}

func TestSchedulerMissingListFails(t *testing.T) {
	f := newSchedulerFixture(t, 2, nil)
	require.NoError(t, os.Remove(f.scheduler.ListPath))

	err := f.scheduler.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
