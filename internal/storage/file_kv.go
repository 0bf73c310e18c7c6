package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileKV stores each key as a JSON file under a data directory. Writes go
// through a temp file and rename so a crash never leaves a half-written
// record behind.
type FileKV struct {
	dir string
}

func NewFileKV(dir string) (*FileKV, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, fmt.Errorf("storage: empty data directory")
	}
	if err := os.MkdirAll(trimmed, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileKV{dir: trimmed}, nil
}

func (f *FileKV) Get(key string) ([]byte, bool, error) {
	raw, err := os.ReadFile(f.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

func (f *FileKV) Set(key string, value []byte) error {
	path := f.pathFor(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (f *FileKV) Delete(key string) error {
	err := os.Remove(f.pathFor(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileKV) Close() error { return nil }

func (f *FileKV) pathFor(key string) string {
	return filepath.Join(f.dir, key+".json")
}
