package storage

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

const lockTimeout = 5 * time.Second

// UploadLog is the read-modify-write view of the persisted upload log plus
// the per-day quota ledger. Opening it acquires an exclusive file lock, so
// two concurrent runs cannot both read the same daily count and jointly
// exceed the cap. The ledger (date -> count) replaces rescanning the whole
// log for today's uploads; both files are saved in the same call.
type UploadLog struct {
	path       string
	ledgerPath string
	lock       *FileLock

	records []UploadRecord
	ledger  map[string]int
}

// OpenUploadLog loads the upload log and quota ledger, creating empty state
// when neither file exists yet. The caller must Close() to release the lock.
func OpenUploadLog(path, ledgerPath string) (*UploadLog, error) {
	l := &UploadLog{
		path:       path,
		ledgerPath: ledgerPath,
		lock:       NewFileLock(path),
		ledger:     make(map[string]int),
	}

	if err := l.lock.Lock(lockTimeout); err != nil {
		return nil, err
	}

	if err := l.load(); err != nil {
		l.lock.Unlock()
		return nil, err
	}
	return l, nil
}

func (l *UploadLog) load() error {
	if err := readJSONArray(l.path, "upload_log", &l.records); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		l.records = nil
	}

	data, err := os.ReadFile(l.ledgerPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &StorageError{Op: "read", Entity: "quota_ledger", Err: err}
	}
	if err := json.Unmarshal(data, &l.ledger); err != nil {
		return &StorageError{Op: "read", Entity: "quota_ledger", Err: ErrStorageCorrupt}
	}
	return nil
}

// Records returns the log entries in append order.
func (l *UploadLog) Records() []UploadRecord {
	return l.records
}

// CountForDate returns the number of uploads recorded for the given
// calendar date ("2006-01-02").
func (l *UploadLog) CountForDate(date string) int {
	return l.ledger[date]
}

// Append adds a record to the in-memory log and bumps the ledger count for
// the given date. Nothing is persisted until Save().
func (l *UploadLog) Append(rec UploadRecord, date string) {
	l.records = append(l.records, rec)
	l.ledger[date]++
}

// Save persists the full log and the ledger atomically.
func (l *UploadLog) Save() error {
	records := l.records
	if records == nil {
		records = []UploadRecord{}
	}
	if err := writeJSONArray(l.path, "upload_log", records); err != nil {
		return err
	}

	writer, err := NewAtomicWriter(l.ledgerPath)
	if err != nil {
		return &StorageError{Op: "write", Entity: "quota_ledger", Err: err}
	}
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(l.ledger); err != nil {
		writer.Abort()
		return &StorageError{Op: "write", Entity: "quota_ledger", Err: err}
	}
	if err := writer.Commit(); err != nil {
		return &StorageError{Op: "write", Entity: "quota_ledger", Err: err}
	}
	return nil
}

// Close releases the file lock. It does not save.
func (l *UploadLog) Close() error {
	return l.lock.Unlock()
}

// LoadUploadRecords reads the upload log without taking the lock, for
// read-only consumers like the analysis stage.
func LoadUploadRecords(path string) ([]UploadRecord, error) {
	var records []UploadRecord
	if err := readJSONArray(path, "upload_log", &records); err != nil {
		return nil, err
	}
	return records, nil
}
