package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// CheckpointWriter persists full-dataset snapshots to a single rolling file.
// Save is atomic with respect to a crash: a reader of the checkpoint path
// observes either the previous complete snapshot or the new one, never a
// half-written file.
type CheckpointWriter struct {
	path string
}

// NewCheckpointWriter creates a writer for the given checkpoint location.
func NewCheckpointWriter(path string) *CheckpointWriter {
	return &CheckpointWriter{path: path}
}

// Path returns the checkpoint file location.
func (cw *CheckpointWriter) Path() string {
	return cw.path
}

// Save replaces the checkpoint with a snapshot of the dataset. The snapshot
// is written to a temp file in the same directory and renamed over the old
// checkpoint, so the replacement is atomic on POSIX filesystems.
func (cw *CheckpointWriter) Save(dataset Dataset) error {
	dir := filepath.Dir(cw.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(cw.path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp checkpoint: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		tempFile.Close()
		os.Remove(tempPath)
	}()

	if err := writeDataset(tempFile, dataset); err != nil {
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("closing temp checkpoint: %w", err)
	}

	if err := os.Rename(tempPath, cw.path); err != nil {
		return fmt.Errorf("replacing checkpoint: %w", err)
	}
	return nil
}

// Load reads the last checkpoint. Returns (nil, nil) when no checkpoint
// exists, so a fresh run starts from the source dataset alone.
func (cw *CheckpointWriter) Load() (Dataset, error) {
	f, err := os.Open(cw.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening checkpoint: %w", err)
	}
	defer f.Close()

	dataset, err := readDataset(f)
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}
	return dataset, nil
}

// Clear removes the checkpoint file. Called once a run has completed and the
// final output is safely written.
func (cw *CheckpointWriter) Clear() error {
	err := os.Remove(cw.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing checkpoint: %w", err)
	}
	return nil
}
