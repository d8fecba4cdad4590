// storage/file.go
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"Gin_postgres_redis_library_tool/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FileGateway stores the snapshot as one JSON document on disk. Commits
// write a temp file in the same directory and rename it over the old one, so
// readers never observe a half-written snapshot.
type FileGateway struct {
	path string
}

func NewFileGateway(path string) *FileGateway {
	return &FileGateway{path: path}
}

func (g *FileGateway) Load(_ context.Context) (models.Snapshot, error) {
	data, err := os.ReadFile(g.path)
	if os.IsNotExist(err) {
		return models.Empty(), nil
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("read snapshot %s: %w", g.path, err)
	}

	snap := models.Empty()
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, &CorruptStateError{Source: g.path, Err: err}
	}
	return snap, nil
}

func (g *FileGateway) Commit(_ context.Context, snap models.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(g.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(g.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), g.path); err != nil {
		return fmt.Errorf("replace snapshot %s: %w", g.path, err)
	}
	return nil
}
