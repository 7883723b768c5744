package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/2beens/gymlog/internal/gymlog/repo"
)

// FileExporter writes the snapshot as indented JSON into dir/gym_backup.json,
// replacing the previous export.
type FileExporter struct {
	dir string
}

func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{dir: dir}
}

func (e *FileExporter) Path() string {
	return filepath.Join(e.dir, ExportFileName)
}

func (e *FileExporter) Export(snapshot repo.Snapshot) (string, error) {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	// write next to the target and rename, so a crash never leaves half a file
	tmp, err := os.CreateTemp(e.dir, ExportFileName+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close snapshot file: %w", err)
	}

	path := e.Path()
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename snapshot file: %w", err)
	}
	return path, nil
}

// ReadSnapshotFile loads and validates a previously exported snapshot.
func ReadSnapshotFile(path string) (repo.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return repo.Snapshot{}, fmt.Errorf("read snapshot file: %w", err)
	}
	return ParseSnapshot(data)
}
