package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

func loadFromFS(filesystem fs.FS, name string, limit int64) ([]byte, error) {
	if filesystem == nil {
		return nil, errors.New("openapi loader: filesystem is not configured")
	}
	if name == "" {
		return nil, errors.New("openapi loader: fs path is required")
	}
	f, err := filesystem.Open(name)
	if err != nil {
		return nil, fmt.Errorf("openapi loader: open %s: %w", name, err)
	}
	defer f.Close()
	return readLimited(f, limit, name)
}

func loadFile(path string, limit int64) ([]byte, error) {
	if path == "" {
		return nil, errors.New("openapi loader: file path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("openapi loader: resolve %s: %w", path, err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("openapi loader: open %s: %w", path, err)
	}
	defer f.Close()
	return readLimited(f, limit, path)
}

// readLimited reads at most limit+1 bytes so oversized payloads are detected
// without buffering them whole.
func readLimited(r io.Reader, limit int64, location string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("openapi loader: read %s: %w", location, err)
	}
	if err := checkSize(data, limit, location); err != nil {
		return nil, err
	}
	return data, nil
}
