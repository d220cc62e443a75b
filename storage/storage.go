package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// timestampLayout renders to e.g. "2024-11-05_04-13-22.081"; the "+UTC"
// marker is appended literally. Names sort lexicographically in capture
// order.
const timestampLayout = "2006-01-02_15-04-05.000"

// Root is the base directory all snapshot kinds live under.
type Root struct {
	basePath string
}

// NewRoot ensures the base directory exists and returns a Root.
func NewRoot(basePath string) (*Root, error) {
	if err := ensureDirectory(basePath); err != nil {
		return nil, err
	}
	return &Root{basePath: basePath}, nil
}

// Path returns the base directory.
func (r *Root) Path() string {
	return r.basePath
}

// Stations returns the directory for station-details snapshots.
func (r *Root) Stations() (*Dir, error) {
	return newDir(filepath.Join(r.basePath, "stations"), "station-details")
}

// Routes returns the directory for route-details snapshots.
func (r *Root) Routes() (*Dir, error) {
	return newDir(filepath.Join(r.basePath, "routes"), "route-details")
}

// Arrivals returns the per-route directory for arrival snapshots.
func (r *Root) Arrivals(routeLabel string) (*Dir, error) {
	return newDir(filepath.Join(r.basePath, "arrival-snapshots", routeLabel), "arrival")
}

// Dir is one snapshot directory holding files of a single kind.
type Dir struct {
	path   string
	prefix string
}

func newDir(path, prefix string) (*Dir, error) {
	if err := ensureDirectory(path); err != nil {
		return nil, err
	}
	return &Dir{path: path, prefix: prefix}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// FilePath returns the snapshot file name for the given capture time.
func (d *Dir) FilePath(capturedAt time.Time) string {
	name := fmt.Sprintf("%s_%s+UTC.json", d.prefix, capturedAt.UTC().Format(timestampLayout))
	return filepath.Join(d.path, name)
}

// WriteJSON serializes v into a new snapshot file named after capturedAt.
// The write fails if the exact file already exists: snapshots are
// append-only and two cycles cannot share a millisecond timestamp.
func (d *Dir) WriteJSON(capturedAt time.Time, v any) (string, error) {
	path := d.FilePath(capturedAt)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("opening snapshot file %s: %w", path, err)
	}

	writer := bufio.NewWriter(file)
	if err := json.NewEncoder(writer).Encode(v); err != nil {
		file.Close()
		return "", fmt.Errorf("writing snapshot JSON to %s: %w", path, err)
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return "", fmt.Errorf("flushing snapshot file %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing snapshot file %s: %w", path, err)
	}

	return path, nil
}

func ensureDirectory(path string) error {
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		return fmt.Errorf("expected %s to be a directory", path)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	return nil
}
