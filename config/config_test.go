package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Upload.MaxDailyUploads)
	assert.Equal(t, 60*time.Second, cfg.Upload.Interval)
	assert.Equal(t, QuotaTimezoneLocal, cfg.Upload.QuotaTimezone)
	assert.Equal(t, 59*time.Second, cfg.Processing.ShortDuration)
	assert.Equal(t, 1080, cfg.Processing.OutputWidth)
	assert.Equal(t, 1920, cfg.Processing.OutputHeight)
	assert.Equal(t, 10, cfg.Search.MaxResultsPerKeyword)
	assert.True(t, cfg.Search.DedupeResults)
	assert.Len(t, cfg.Search.Keywords, 3)
	assert.Equal(t, "data/uploaded_videos.json", cfg.Paths.UploadLog)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SHORTSAUTO_MAX_DAILY_UPLOADS", "2")
	t.Setenv("SHORTSAUTO_QUOTA_TIMEZONE", "utc")
	t.Setenv("SHORTSAUTO_SEARCH_KEYWORDS", "cats,dogs")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Upload.MaxDailyUploads)
	assert.Equal(t, []string{"cats", "dogs"}, cfg.Search.Keywords)
	assert.Equal(t, time.UTC, cfg.QuotaLocation())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero daily cap", "SHORTSAUTO_MAX_DAILY_UPLOADS", "0"},
		{"bad timezone", "SHORTSAUTO_QUOTA_TIMEZONE", "mars"},
		{"bad privacy", "SHORTSAUTO_UPLOAD_PRIVACY", "secret"},
		{"oversized page", "SHORTSAUTO_MAX_RESULTS_PER_KEYWORD", "100"},
		{"bad log format", "SHORTSAUTO_LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestQuotaLocationLocal(t *testing.T) {
	cfg := &Config{}
	cfg.Upload.QuotaTimezone = QuotaTimezoneLocal
	assert.Equal(t, time.Local, cfg.QuotaLocation())
}
