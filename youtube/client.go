// Package youtube wraps the three Data API v3 operations the pipeline
// needs: keyword search, video details, and resumable upload.
package youtube

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"shortsauto/storage"
)

// Client is a thin wrapper around the YouTube Data API v3 service. Every
// call is stateless given a valid credential; failed calls are not retried
// here.
type Client struct {
	svc *yt.Service
	log zerolog.Logger
}

// New creates a client authorized via OAuth2, suitable for all operations.
func New(ctx context.Context, source oauth2.TokenSource, log zerolog.Logger) (*Client, error) {
	svc, err := yt.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{svc: svc, log: log}, nil
}

// NewReadOnly creates a client authorized with an API key. Only Search is
// usable; uploads and owned-video details require OAuth.
func NewReadOnly(ctx context.Context, apiKey string, log zerolog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	svc, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{svc: svc, log: log}, nil
}

// Search finds videos matching the keyword. A response with zero matches
// returns an empty slice, not an error. Durations come from a follow-up
// videos.list call since search.list omits contentDetails.
func (c *Client) Search(ctx context.Context, keyword string, maxResults int64) ([]storage.VideoCandidate, error) {
	resp, err := c.svc.Search.List([]string{"snippet"}).
		Q(keyword).
		Type("video").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapAPIError("search", err)
	}

	candidates := make([]storage.VideoCandidate, 0, len(resp.Items))
	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		candidate := storage.VideoCandidate{ID: item.Id.VideoId}
		if item.Snippet != nil {
			candidate.Title = item.Snippet.Title
			candidate.Description = item.Snippet.Description
			if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
				candidate.PublishedAt = t
			}
		}
		candidates = append(candidates, candidate)
		ids = append(ids, candidate.ID)
	}

	if len(ids) > 0 {
		if err := c.fillDurations(ctx, ids, candidates); err != nil {
			// Durations are best-effort; candidates stay usable without them.
			c.log.Warn().Err(err).Str("keyword", keyword).Msg("could not fetch durations")
		}
	}
	return candidates, nil
}

// fillDurations resolves contentDetails.duration for the searched IDs.
func (c *Client) fillDurations(ctx context.Context, ids []string, candidates []storage.VideoCandidate) error {
	resp, err := c.svc.Videos.List([]string{"contentDetails"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return wrapAPIError("details", err)
	}

	byID := make(map[string]int, len(resp.Items))
	for _, item := range resp.Items {
		if item.ContentDetails == nil {
			continue
		}
		d, err := parseISODuration(item.ContentDetails.Duration)
		if err != nil {
			continue
		}
		byID[item.Id] = int(d.Seconds())
	}
	for i := range candidates {
		candidates[i].Duration = byID[candidates[i].ID]
	}
	return nil
}

// VideoDetails is the statistics snapshot the analysis stage reads.
type VideoDetails struct {
	ID          string
	Title       string
	PublishedAt time.Time
	Duration    time.Duration
	Views       uint64
	Likes       uint64
}

// GetDetails fetches details for one video. Returns (nil, nil) when the ID
// does not resolve, e.g. the video was deleted or made private.
func (c *Client) GetDetails(ctx context.Context, videoID string) (*VideoDetails, error) {
	resp, err := c.svc.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapAPIError("details", err)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}

	item := resp.Items[0]
	details := &VideoDetails{ID: item.Id}
	if item.Snippet != nil {
		details.Title = item.Snippet.Title
		if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			details.PublishedAt = t
		}
	}
	if item.Statistics != nil {
		details.Views = item.Statistics.ViewCount
		details.Likes = item.Statistics.LikeCount
	}
	if item.ContentDetails != nil {
		if d, err := parseISODuration(item.ContentDetails.Duration); err == nil {
			details.Duration = d
		}
	}
	return details, nil
}

// UploadRequest describes one video to upload.
type UploadRequest struct {
	FilePath    string
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string // "private", "public", or "unlisted"
}

// Upload sends the media file with videos.insert. The client library
// transfers the payload as a resumable chunked upload, so files larger
// than a single request body are fine. Returns the platform-assigned
// UploadRecord on success.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (*storage.UploadRecord, error) {
	f, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open media file: %w", err)
	}
	defer f.Close()

	video := &yt.Video{
		Snippet: &yt.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryId:  req.CategoryID,
		},
		Status: &yt.VideoStatus{PrivacyStatus: req.Privacy},
	}

	c.log.Debug().Str("file", req.FilePath).Str("title", req.Title).Msg("starting upload")
	resp, err := c.svc.Videos.Insert([]string{"snippet", "status"}, video).
		Media(f).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapAPIError("upload", err)
	}

	return &storage.UploadRecord{ID: resp.Id, Title: req.Title}, nil
}
