package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// maxHistory bounds the number of results kept on disk.
const maxHistory = 100

// ResultStore persists finished games locally.
type ResultStore interface {
	Append(r Result) error
	List() ([]Result, error) // oldest first; empty when nothing has been recorded
	Path() string
}

// diskStore is the concrete ResultStore that writes to the XDG data directory.
type diskStore struct {
	path string // full path to history.json
}

// NewResultStore returns a ResultStore backed by the XDG data directory.
// Path: $XDG_DATA_HOME/clickrush/history.json or ~/.local/share/clickrush/history.json
func NewResultStore() (ResultStore, error) {
	dir, err := DataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &diskStore{path: filepath.Join(dir, "history.json")}, nil
}

// DataDir returns the clickrush-specific XDG data directory.
func DataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "clickrush"), nil
}

func (d *diskStore) Path() string { return d.path }

// Append adds r to the history, dropping the oldest entries past maxHistory.
func (d *diskStore) Append(r Result) error {
	results, err := d.List()
	if err != nil {
		return err
	}
	results = append(results, r)
	if len(results) > maxHistory {
		results = results[len(results)-maxHistory:]
	}
	return d.write(results)
}

// write marshals results to JSON and writes them atomically via a temp file + os.Rename.
func (d *diskStore) write(results []Result) (err error) {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}

	// Write to a temp file in the same directory so os.Rename is atomic.
	tmp, err := os.CreateTemp(filepath.Dir(d.path), "history-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist history: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}
	if err = os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}
	return nil
}

// List reads the history file. A missing file is an empty history.
func (d *diskStore) List() ([]Result, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Result{}, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var results []Result
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	if results == nil {
		results = []Result{}
	}
	return results, nil
}
