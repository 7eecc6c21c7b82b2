package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"jan-server/services/lifelog-api/internal/domain/objectstore"
)

var errLocalStorageDisabled = errors.New("local storage is not configured; set LIFELOG_LOCAL_STORAGE_PATH to enable")

const healthCheckFile = ".health_check"

// LocalStorage keeps lake objects on the local filesystem, one file per key.
type LocalStorage struct {
	basePath string
	baseURL  string
	log      zerolog.Logger
	disabled bool
	now      func() time.Time
}

// NewLocalStorage creates a new local filesystem storage backend.
func NewLocalStorage(basePath, baseURL string, log zerolog.Logger) (*LocalStorage, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		logger.Warn().Msg("LIFELOG_LOCAL_STORAGE_PATH is not set; local storage will be disabled")
		return &LocalStorage{
			log:      logger,
			disabled: true,
			now:      time.Now,
		}, nil
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}

	storage := &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimSpace(baseURL),
		log:      logger,
		now:      time.Now,
	}

	logger.Info().
		Str("path", basePath).
		Str("base_url", storage.baseURL).
		Msg("local storage initialized")

	return storage, nil
}

func (l *LocalStorage) ensureEnabled() error {
	if l.disabled {
		return errLocalStorageDisabled
	}
	return nil
}

func (l *LocalStorage) fullPath(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}

// Get opens the file stored under key.
func (l *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, *objectstore.ObjectInfo, error) {
	if err := l.ensureEnabled(); err != nil {
		return nil, nil, err
	}

	fullPath := l.fullPath(key)
	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", objectstore.ErrNotFound, key)
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return file, &objectstore.ObjectInfo{
		Key:          key,
		Size:         stat.Size(),
		ContentType:  detectContentTypeFromPath(fullPath),
		LastModified: stat.ModTime().UTC(),
	}, nil
}

// Put stores a file on the local filesystem, replacing any previous content.
func (l *LocalStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if err := l.ensureEnabled(); err != nil {
		return err
	}

	fullPath := l.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to a sibling temp file and rename so readers never observe a half written object.
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	written, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	l.log.Debug().
		Str("key", key).
		Int64("bytes", written).
		Msg("file written to local storage")

	return nil
}

// Copy duplicates srcKey onto dstKey.
func (l *LocalStorage) Copy(ctx context.Context, srcKey, dstKey string) error {
	body, info, err := l.Get(ctx, srcKey)
	if err != nil {
		return err
	}
	defer body.Close()
	return l.Put(ctx, dstKey, body, info.Size, info.ContentType)
}

// List walks the storage directory and returns every key starting with prefix, sorted.
func (l *LocalStorage) List(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
	if err := l.ensureEnabled(); err != nil {
		return nil, err
	}

	var objects []objectstore.ObjectInfo
	err := filepath.WalkDir(l.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(l.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		stat, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, objectstore.ObjectInfo{
			Key:          key,
			Size:         stat.Size(),
			ContentType:  detectContentTypeFromPath(path),
			LastModified: stat.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := l.ensureEnabled(); err != nil {
		return err
	}
	if err := os.Remove(l.fullPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// PresignGet returns a direct URL to the file carrying an expiry hint; local storage has no signing.
// If LocalStorageBaseURL is set, it returns a URL, otherwise returns a file:// URL.
// Like S3 presigning it never checks that the key exists.
func (l *LocalStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := l.ensureEnabled(); err != nil {
		return "", err
	}

	expires := strconv.FormatInt(l.now().Add(ttl).Unix(), 10)
	if l.baseURL != "" {
		return fmt.Sprintf("%s/%s?expires=%s", strings.TrimSuffix(l.baseURL, "/"), filepath.ToSlash(key), url.QueryEscape(expires)), nil
	}

	return fmt.Sprintf("file://%s?expires=%s", l.fullPath(key), expires), nil
}

// Health checks if the storage directory is accessible.
func (l *LocalStorage) Health(ctx context.Context) error {
	if l.disabled {
		return nil
	}

	testFile := filepath.Join(l.basePath, healthCheckFile)
	if err := os.WriteFile(testFile, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("storage directory not writable: %w", err)
	}
	_ = os.Remove(testFile)

	return nil
}

// detectContentTypeFromPath attempts to determine content type from file extension.
func detectContentTypeFromPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".parquet":
		return "application/vnd.apache.parquet"
	default:
		return "application/octet-stream"
	}
}
