// Package storage persists the pipeline's file-based artifacts: the video
// list, the processed-video list, the upload log, and the daily quota
// ledger. All writes are atomic (temp file + rename) and the upload log is
// guarded by an advisory file lock so concurrent runs cannot jointly exceed
// the daily cap.
package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested artifact does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrStorageCorrupt indicates an artifact file could not be parsed.
	ErrStorageCorrupt = errors.New("storage: data corruption detected")
	// ErrLockTimeout indicates a timeout acquiring a file lock.
	ErrLockTimeout = errors.New("storage: lock acquisition timeout")
)

// StorageError wraps storage errors with operation and entity context.
// Use errors.As() to extract it, or errors.Is() against the sentinels above.
type StorageError struct {
	// Op is the operation: "read", "write", "lock".
	Op string
	// Entity is the artifact: "video_list", "processed_list", "upload_log",
	// "quota_ledger", "report".
	Entity string
	// Err is the underlying error.
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
