// Package objectstoretest provides an in-memory objectstore.Store for tests.
package objectstoretest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"jan-server/services/lifelog-api/internal/domain/objectstore"
)

type object struct {
	data        []byte
	contentType string
	modified    time.Time
}

// Memory is a map backed objectstore.Store. Every object gets the LastModified held in Modified.
type Memory struct {
	mu       sync.Mutex
	objects  map[string]object
	Puts     []string
	Deletes  []string
	Copies   [][2]string
	Modified time.Time
	PutErr   error
	GetErr   error
}

// NewMemory returns an empty store stamping objects with a fixed March 2024 timestamp.
func NewMemory() *Memory {
	return &Memory{
		objects:  make(map[string]object),
		Modified: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

// Seed stores content under key.
func (m *Memory) Seed(key, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = object{data: []byte(content), contentType: "text/plain", modified: m.Modified}
}

// SeedBytes stores data under key with contentType.
func (m *Memory) SeedBytes(key string, data []byte, contentType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = object{data: append([]byte(nil), data...), contentType: contentType, modified: m.Modified}
}

// Bytes returns a copy of the object at key, or nil when missing.
func (m *Memory) Bytes(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil
	}
	return append([]byte(nil), obj.data...)
}

func (m *Memory) Get(ctx context.Context, key string) (io.ReadCloser, *objectstore.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, nil, m.GetErr
	}
	obj, ok := m.objects[key]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", objectstore.ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), &objectstore.ObjectInfo{
		Key:          key,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		LastModified: obj.modified,
	}, nil
}

func (m *Memory) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = object{data: data, contentType: contentType, modified: m.Modified}
	m.Puts = append(m.Puts, key)
	return nil
}

func (m *Memory) Copy(ctx context.Context, srcKey, dstKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[srcKey]
	if !ok {
		return fmt.Errorf("%w: %s", objectstore.ErrNotFound, srcKey)
	}
	m.objects[dstKey] = obj
	m.Copies = append(m.Copies, [2]string{srcKey, dstKey})
	return nil
}

func (m *Memory) List(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []objectstore.ObjectInfo
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, objectstore.ObjectInfo{Key: key, Size: int64(len(obj.data)), LastModified: obj.modified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.Deletes = append(m.Deletes, key)
	return nil
}
