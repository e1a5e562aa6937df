// Package fsxlocal implements fsx.FileSystem on local disk, for
// development and tests.
package fsxlocal

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/openhire/openhire/pkg/fsx"
)

// LocalFileSystem stores objects under a single base directory.
type LocalFileSystem struct {
	basePath string
}

// NewLocalFileSystem creates the base directory if needed and returns the
// file system rooted there.
func NewLocalFileSystem(basePath string) (*LocalFileSystem, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory: %w", err)
	}
	return &LocalFileSystem{basePath: abs}, nil
}

// BasePath returns the resolved root directory.
func (l *LocalFileSystem) BasePath() string { return l.basePath }

func (l *LocalFileSystem) ReadFile(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(l.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func (l *LocalFileSystem) ReadFileStream(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(l.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (l *LocalFileSystem) Stat(_ context.Context, path string) (fsx.FileInfo, error) {
	info, err := os.Stat(l.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return fsx.FileInfo{}, fmt.Errorf("file not found: %s", path)
		}
		return fsx.FileInfo{}, fmt.Errorf("stat file: %w", err)
	}
	return fsx.FileInfo{
		Name:        info.Name(),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: contentTypeByExt(path),
		Metadata:    map[string]string{},
	}, nil
}

func (l *LocalFileSystem) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(l.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (l *LocalFileSystem) WriteFile(_ context.Context, path string, data []byte) error {
	full := l.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create parent directories: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (l *LocalFileSystem) WriteFileStream(_ context.Context, path string, r io.Reader) error {
	full := l.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create parent directories: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("copy data: %w", err)
	}
	return nil
}

func (l *LocalFileSystem) DeleteFile(_ context.Context, path string) error {
	if err := os.Remove(l.fullPath(path)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (l *LocalFileSystem) Join(elem ...string) string {
	return filepath.Join(elem...)
}

func (l *LocalFileSystem) fullPath(path string) string {
	return filepath.Join(l.basePath, path)
}

func contentTypeByExt(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
