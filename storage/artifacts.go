package storage

import (
	"encoding/json"
	"errors"
	"os"
)

// LoadCandidates reads the video list file written by the collection stage.
// Returns ErrNotFound (wrapped) if the file does not exist and
// ErrStorageCorrupt if it cannot be parsed.
func LoadCandidates(path string) ([]VideoCandidate, error) {
	var candidates []VideoCandidate
	if err := readJSONArray(path, "video_list", &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// SaveCandidates writes the video list file atomically.
func SaveCandidates(path string, candidates []VideoCandidate) error {
	return writeJSONArray(path, "video_list", candidates)
}

// LoadProcessed reads the processed-video list produced by the processing
// stage.
func LoadProcessed(path string) ([]ProcessedVideo, error) {
	var processed []ProcessedVideo
	if err := readJSONArray(path, "processed_list", &processed); err != nil {
		return nil, err
	}
	return processed, nil
}

// SaveProcessed writes the processed-video list atomically.
func SaveProcessed(path string, processed []ProcessedVideo) error {
	return writeJSONArray(path, "processed_list", processed)
}

func readJSONArray(path, entity string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &StorageError{Op: "read", Entity: entity, Err: ErrNotFound}
		}
		return &StorageError{Op: "read", Entity: entity, Err: err}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return &StorageError{Op: "read", Entity: entity, Err: ErrStorageCorrupt}
	}
	return nil
}

func writeJSONArray(path, entity string, v any) error {
	writer, err := NewAtomicWriter(path)
	if err != nil {
		return &StorageError{Op: "write", Entity: entity, Err: err}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		writer.Abort()
		return &StorageError{Op: "write", Entity: entity, Err: err}
	}

	if err := writer.Commit(); err != nil {
		return &StorageError{Op: "write", Entity: entity, Err: err}
	}
	return nil
}
