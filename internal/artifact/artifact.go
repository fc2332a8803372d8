// Package artifact persists trained model artifacts. The default backend is
// the local filesystem; an S3-compatible backend is available for durable
// storage across instances.
package artifact

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrNotFound = errors.New("artifact not found")

type Info struct {
	Key          string
	Size         int64
	LastModified time.Time
}

type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (Info, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Stat(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) error
}
