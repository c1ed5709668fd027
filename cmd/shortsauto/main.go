// Command shortsauto automates a YouTube Shorts channel: collect candidate
// videos by keyword search, cut them into vertical clips, upload them under
// a daily quota, and report per-video statistics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"shortsauto/auth"
	"shortsauto/config"
	"shortsauto/logging"
	"shortsauto/media"
	"shortsauto/pipeline"
	"shortsauto/youtube"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "collect", "process", "upload", "analyze", "run", "auth":
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", command)
		printUsage()
		os.Exit(1)
	}

	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(logging.Options{
		Service: "shortsauto",
		Level:   cfg.App.LogLevel,
		Format:  cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, command, cfg, log); err != nil {
		log.Error().Err(err).Str("command", command).Msg("command failed")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `shortsauto - YouTube Shorts automation pipeline

Usage:
  shortsauto collect    Search keywords and write the candidate list
  shortsauto process    Download candidates and cut them into shorts
  shortsauto upload     Upload processed shorts under the daily quota
  shortsauto analyze    Write the CSV statistics report
  shortsauto run        Run all four stages in order
  shortsauto auth       Authorize the app and store the OAuth credential
  shortsauto help       Show this help message

Configuration comes from SHORTSAUTO_* environment variables, optionally
loaded from a .env file in the working directory.
`)
}

func dispatch(ctx context.Context, command string, cfg *config.Config, log zerolog.Logger) error {
	switch command {
	case "collect":
		stage, err := collectStage(ctx, cfg, log)
		if err != nil {
			return err
		}
		return stage.Run(ctx)
	case "process":
		return processStage(cfg, log).Run(ctx)
	case "upload":
		stage, err := uploadStage(ctx, cfg, log)
		if err != nil {
			return err
		}
		return stage.Run(ctx)
	case "analyze":
		stage, err := analyzeStage(ctx, cfg, log)
		if err != nil {
			return err
		}
		return stage.Run(ctx)
	case "run":
		return runAll(ctx, cfg, log)
	case "auth":
		return auth.Authorize(ctx, cfg.API.ClientSecretsFile, cfg.API.CredentialsFile, os.Stdin, os.Stdout)
	}
	return fmt.Errorf("unknown command %q", command)
}

func runAll(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	collect, err := collectStage(ctx, cfg, log)
	if err != nil {
		return err
	}
	upload, err := uploadStage(ctx, cfg, log)
	if err != nil {
		return err
	}
	analyze, err := analyzeStage(ctx, cfg, log)
	if err != nil {
		return err
	}

	driver := &pipeline.Driver{
		Pause: cfg.App.StagePause,
		Log:   log,
		Stages: []pipeline.Stage{
			{Name: "collect", Run: collect.Run},
			{Name: "process", Run: processStage(cfg, log).Run},
			{Name: "upload", Run: upload.Run},
			{Name: "analyze", Run: analyze.Run},
		},
	}
	return driver.Run(ctx)
}

func collectStage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pipeline.Collector, error) {
	client, err := searchClient(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &pipeline.Collector{
		Searcher:   client,
		Keywords:   cfg.Search.Keywords,
		MaxResults: cfg.Search.MaxResultsPerKeyword,
		Dedupe:     cfg.Search.DedupeResults,
		OutputPath: cfg.Paths.VideoList,
		Log:        log,
	}, nil
}

func processStage(cfg *config.Config, log zerolog.Logger) *pipeline.Processor {
	downloader := media.NewDownloader()
	downloader.Path = cfg.Tools.YtdlpPath
	downloader.Timeout = cfg.Tools.DownloadTimeout

	transcoder := media.NewTranscoder()
	transcoder.FFmpegPath = cfg.Tools.FFmpegPath
	transcoder.FFprobePath = cfg.Tools.FFprobePath
	transcoder.Timeout = cfg.Tools.TranscodeTimeout

	return &pipeline.Processor{
		Downloader:    downloader,
		Transcoder:    transcoder,
		ShortDuration: cfg.Processing.ShortDuration,
		OutputWidth:   cfg.Processing.OutputWidth,
		OutputHeight:  cfg.Processing.OutputHeight,
		ListPath:      cfg.Paths.VideoList,
		OutputPath:    cfg.Paths.ProcessedList,
		DownloadsDir:  cfg.Paths.DownloadsDir,
		ProcessedDir:  cfg.Paths.ProcessedDir,
		Log:           log,
	}
}

func uploadStage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pipeline.UploadScheduler, error) {
	client, err := oauthClient(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &pipeline.UploadScheduler{
		Uploader:        client,
		MaxDailyUploads: cfg.Upload.MaxDailyUploads,
		Interval:        cfg.Upload.Interval,
		Location:        cfg.QuotaLocation(),
		TitlePrefix:     cfg.Upload.TitlePrefix,
		Description:     cfg.Upload.Description,
		Tags:            cfg.Upload.Tags,
		CategoryID:      cfg.Upload.CategoryID,
		Privacy:         cfg.Upload.Privacy,
		ListPath:        cfg.Paths.ProcessedList,
		LogPath:         cfg.Paths.UploadLog,
		LedgerPath:      cfg.Paths.QuotaLedger,
		Log:             log,
	}, nil
}

func analyzeStage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pipeline.Analyzer, error) {
	client, err := oauthClient(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &pipeline.Analyzer{
		Details:    client,
		LogPath:    cfg.Paths.UploadLog,
		ReportPath: cfg.Paths.Report,
		Log:        log,
	}, nil
}

// searchClient prefers the API key for collection since it spends no OAuth
// quota; it falls back to the stored credential when no key is set.
func searchClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*youtube.Client, error) {
	if cfg.API.Key != "" {
		return youtube.NewReadOnly(ctx, cfg.API.Key, log)
	}
	return oauthClient(ctx, cfg, log)
}

func oauthClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*youtube.Client, error) {
	provider, err := auth.NewProvider(cfg.API.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("load credentials (run 'shortsauto auth' first): %w", err)
	}
	return youtube.New(ctx, provider.TokenSource(ctx), log)
}
