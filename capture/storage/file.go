package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const fileScheme = "file://"

// FileImageStore writes photos under a local directory
type FileImageStore struct {
	Dir string
}

func NewFileImageStore(dir string) *FileImageStore {
	return &FileImageStore{Dir: dir}
}

func (f *FileImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	path := filepath.Join(f.Dir, filepath.Base(key))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return fileScheme + path, nil
}

func (f *FileImageStore) Get(ctx context.Context, ref string) ([]byte, error) {
	path, ok := strings.CutPrefix(ref, fileScheme)
	if !ok {
		return nil, fmt.Errorf("not a file ref: %q", ref)
	}
	return os.ReadFile(path)
}
