package storage

import "time"

// VideoCandidate is a video discovered by the collection stage.
// Candidates are immutable once written to the video list file.
type VideoCandidate struct {
	// ID is the YouTube video ID (e.g., "dQw4w9WgXcQ").
	ID string `json:"id"`

	// Title is the video title as returned by search.
	Title string `json:"title"`

	// Description is the video description. May be truncated by the API.
	Description string `json:"description,omitempty"`

	// Duration is the video length in seconds. Zero when unknown.
	Duration int `json:"duration"`

	// PublishedAt is when the video was published.
	PublishedAt time.Time `json:"published_at"`
}

// ProcessedVideo describes a transcoded, ready-to-upload clip.
type ProcessedVideo struct {
	// OriginalID is the source YouTube video ID.
	OriginalID string `json:"original_id"`

	// Title is the title carried over from the candidate.
	Title string `json:"title"`

	// ProcessedPath is the filesystem path of the transcoded clip.
	ProcessedPath string `json:"processed_path"`

	// Duration is the clip length in seconds after trimming.
	Duration int `json:"duration,omitempty"`

	// CreatedAt is when the transcode finished.
	CreatedAt time.Time `json:"created_at"`
}

// UploadRecord is appended to the upload log the moment a remote upload
// call succeeds. Records are never mutated afterwards and uploaded_at is
// non-decreasing across the log.
type UploadRecord struct {
	// ID is the platform-assigned video ID of the uploaded clip.
	ID string `json:"id"`

	// Title is the title the clip was uploaded under.
	Title string `json:"title"`

	// UploadedAt is the timestamp of the successful upload call.
	UploadedAt time.Time `json:"uploaded_at"`
}
