// Package config manages application configuration. Values come from the
// environment (prefix SHORTSAUTO), optionally seeded from a .env file by
// the caller.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the environment variable prefix for all settings.
const EnvPrefix = "SHORTSAUTO"

// Quota timezone modes. The daily cap resets at midnight in this zone.
const (
	QuotaTimezoneLocal = "local"
	QuotaTimezoneUTC   = "utc"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig
	API        APIConfig
	Search     SearchConfig
	Processing ProcessingConfig
	Upload     UploadConfig
	Paths      PathsConfig
	Tools      ToolsConfig
}

// AppConfig holds logging and driver settings.
type AppConfig struct {
	LogLevel   string        `envconfig:"SHORTSAUTO_LOG_LEVEL" default:"info"`
	LogFormat  string        `envconfig:"SHORTSAUTO_LOG_FORMAT" default:"console" validate:"oneof=console json"`
	StagePause time.Duration `envconfig:"SHORTSAUTO_STAGE_PAUSE" default:"2s" validate:"min=0"`
}

// APIConfig holds YouTube API authentication settings. The API key grants
// read-only search; uploads and stats need the OAuth credential file.
type APIConfig struct {
	Key               string `envconfig:"SHORTSAUTO_API_KEY"`
	ClientSecretsFile string `envconfig:"SHORTSAUTO_CLIENT_SECRETS_FILE" default:"data/client_secrets.json"`
	CredentialsFile   string `envconfig:"SHORTSAUTO_CREDENTIALS_FILE" default:"data/credentials.json"`
}

// SearchConfig controls the collection stage.
type SearchConfig struct {
	Keywords             []string `envconfig:"SHORTSAUTO_SEARCH_KEYWORDS" default:"interesting moments,funny clips,satisfying videos" validate:"min=1"`
	MaxResultsPerKeyword int      `envconfig:"SHORTSAUTO_MAX_RESULTS_PER_KEYWORD" default:"10" validate:"gt=0,lte=50"`
	// DedupeResults removes duplicate video IDs across keywords. The
	// original pipeline kept duplicates; disable to preserve that.
	DedupeResults bool `envconfig:"SHORTSAUTO_DEDUPE_RESULTS" default:"true"`
}

// ProcessingConfig controls the download/transcode stage.
type ProcessingConfig struct {
	ShortDuration time.Duration `envconfig:"SHORTSAUTO_SHORT_DURATION" default:"59s" validate:"gt=0"`
	OutputWidth   int           `envconfig:"SHORTSAUTO_OUTPUT_WIDTH" default:"1080" validate:"gt=0"`
	OutputHeight  int           `envconfig:"SHORTSAUTO_OUTPUT_HEIGHT" default:"1920" validate:"gt=0"`
}

// UploadConfig controls the quota-gated upload scheduler and the metadata
// applied to every upload.
type UploadConfig struct {
	MaxDailyUploads int           `envconfig:"SHORTSAUTO_MAX_DAILY_UPLOADS" default:"5" validate:"gt=0"`
	Interval        time.Duration `envconfig:"SHORTSAUTO_UPLOAD_INTERVAL" default:"60s" validate:"min=0"`
	QuotaTimezone   string        `envconfig:"SHORTSAUTO_QUOTA_TIMEZONE" default:"local" validate:"oneof=local utc"`

	TitlePrefix string   `envconfig:"SHORTSAUTO_UPLOAD_TITLE_PREFIX" default:"Cool Short - "`
	Description string   `envconfig:"SHORTSAUTO_UPLOAD_DESCRIPTION" default:"Check out this cool YouTube Short! #shorts"`
	Tags        []string `envconfig:"SHORTSAUTO_UPLOAD_TAGS" default:"shorts,funny,trending"`
	CategoryID  string   `envconfig:"SHORTSAUTO_UPLOAD_CATEGORY_ID" default:"24"`
	Privacy     string   `envconfig:"SHORTSAUTO_UPLOAD_PRIVACY" default:"private" validate:"oneof=private public unlisted"`
}

// PathsConfig holds every artifact path the stages hand off through.
type PathsConfig struct {
	VideoList     string `envconfig:"SHORTSAUTO_VIDEO_LIST_FILE" default:"data/video_list.json"`
	ProcessedList string `envconfig:"SHORTSAUTO_PROCESSED_LIST_FILE" default:"data/processed_videos.json"`
	UploadLog     string `envconfig:"SHORTSAUTO_UPLOAD_LOG_FILE" default:"data/uploaded_videos.json"`
	QuotaLedger   string `envconfig:"SHORTSAUTO_QUOTA_LEDGER_FILE" default:"data/upload_quota.json"`
	Report        string `envconfig:"SHORTSAUTO_REPORT_FILE" default:"data/analytics_report.csv"`
	DownloadsDir  string `envconfig:"SHORTSAUTO_DOWNLOADS_DIR" default:"output/downloads"`
	ProcessedDir  string `envconfig:"SHORTSAUTO_PROCESSED_DIR" default:"output/processed"`
}

// ToolsConfig holds external tool locations and timeouts.
type ToolsConfig struct {
	YtdlpPath        string        `envconfig:"SHORTSAUTO_YTDLP_PATH" default:"yt-dlp"`
	FFmpegPath       string        `envconfig:"SHORTSAUTO_FFMPEG_PATH" default:"ffmpeg"`
	FFprobePath      string        `envconfig:"SHORTSAUTO_FFPROBE_PATH" default:"ffprobe"`
	DownloadTimeout  time.Duration `envconfig:"SHORTSAUTO_DOWNLOAD_TIMEOUT" default:"10m" validate:"gt=0"`
	TranscodeTimeout time.Duration `envconfig:"SHORTSAUTO_TRANSCODE_TIMEOUT" default:"10m" validate:"gt=0"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Processing.ShortDuration < time.Second {
		return fmt.Errorf("short_duration must be at least 1s")
	}
	return nil
}

// QuotaLocation returns the time.Location the daily quota resets in.
func (c *Config) QuotaLocation() *time.Location {
	if c.Upload.QuotaTimezone == QuotaTimezoneUTC {
		return time.UTC
	}
	return time.Local
}
