// Package fsx abstracts the blob store where resumes live. Two providers
// exist: local disk for development and S3 for production.
package fsx

import (
	"context"
	"io"
	"time"
)

// FileInfo describes one stored object.
type FileInfo struct {
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
	Metadata    map[string]string
}

// FileReader reads stored objects.
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error)
	Stat(ctx context.Context, path string) (FileInfo, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// FileWriter writes stored objects.
type FileWriter interface {
	WriteFile(ctx context.Context, path string, data []byte) error
	WriteFileStream(ctx context.Context, path string, r io.Reader) error
}

// FileDeleter removes stored objects.
type FileDeleter interface {
	DeleteFile(ctx context.Context, path string) error
}

// PathJoiner builds provider-appropriate object keys.
type PathJoiner interface {
	Join(elem ...string) string
}

// FileSystem is the full contract the application depends on.
type FileSystem interface {
	FileReader
	FileWriter
	FileDeleter
	PathJoiner
}

// PresignedURLGenerator is implemented by providers that can hand out
// time-limited download links (S3). The local provider does not.
type PresignedURLGenerator interface {
	GetPresignedDownloadURL(ctx context.Context, path string, expiration time.Duration) (string, error)
}
