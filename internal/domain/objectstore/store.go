// Package objectstore describes the object storage operations the lifelog pipeline relies on.
package objectstore

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectInfo describes a stored object without its body.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Store is the subset of object storage used by the validator, transformer and media processor.
type Store interface {
	Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Copy(ctx context.Context, srcKey, dstKey string) error
	// List returns every object under prefix in lexicographic key order.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// Presigner mints time-limited download URLs.
type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ReadAll downloads key and returns its body, reading at most limit bytes when limit > 0.
func ReadAll(ctx context.Context, store Store, key string, limit int64) ([]byte, *ObjectInfo, error) {
	body, info, err := store.Get(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	defer body.Close()

	var reader io.Reader = body
	if limit > 0 {
		reader = io.LimitReader(body, limit)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, err
	}
	return data, info, nil
}
