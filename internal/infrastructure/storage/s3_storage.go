package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"jan-server/services/lifelog-api/internal/config"
	"jan-server/services/lifelog-api/internal/domain/objectstore"
	"jan-server/services/lifelog-api/internal/infrastructure/metrics"
)

var errStorageDisabled = errors.New("object storage backend is not configured; set BUCKET_NAME to enable it")

// S3Storage reads and writes lake objects in one S3 bucket.
type S3Storage struct {
	bucket         string
	publicEndpoint string
	client         *s3.Client
	presigner      *s3.PresignClient
	log            zerolog.Logger
	disabled       bool
}

func NewS3Storage(cfg *config.Config, client *s3.Client, log zerolog.Logger) *S3Storage {
	logger := log.With().Str("component", "s3-storage").Logger()
	storage := &S3Storage{
		bucket:         strings.TrimSpace(cfg.S3Bucket),
		publicEndpoint: cfg.S3PublicEndpoint,
		log:            logger,
	}
	if storage.bucket == "" || client == nil {
		logger.Warn().Msg("BUCKET_NAME is not set; object storage will be disabled until configured")
		storage.disabled = true
		return storage
	}
	storage.client = client
	storage.presigner = s3.NewPresignClient(client)
	return storage
}

func (s *S3Storage) ensureEnabled() error {
	if s.disabled {
		return errStorageDisabled
	}
	return nil
}

func observe(operation string, start time.Time, err error) {
	metrics.RecordStorageOperation(operation, metrics.StatusLabel(err), time.Since(start).Seconds())
}

func (s *S3Storage) Get(ctx context.Context, key string) (body io.ReadCloser, info *objectstore.ObjectInfo, err error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, nil, err
	}
	start := time.Now()
	defer func() { observe("get", start, err) }()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil, fmt.Errorf("%w: %s", objectstore.ErrNotFound, key)
		}
		return nil, nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	return out.Body, &objectstore.ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		LastModified: aws.ToTime(out.LastModified).UTC(),
	}, nil
}

func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (err error) {
	if err := s.ensureEnabled(); err != nil {
		return err
	}
	start := time.Now()
	defer func() { observe("put", start, err) }()

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// Copy performs a server-side copy inside the bucket. Copying onto an existing key overwrites it.
func (s *S3Storage) Copy(ctx context.Context, srcKey, dstKey string) (err error) {
	if err := s.ensureEnabled(); err != nil {
		return err
	}
	start := time.Now()
	defer func() { observe("copy", start, err) }()

	_, err = s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(url.PathEscape(s.bucket + "/" + srcKey)),
		Key:        aws.String(dstKey),
	})
	if err != nil {
		return fmt.Errorf("copy s3://%s/%s to %s: %w", s.bucket, srcKey, dstKey, err)
	}
	return nil
}

func (s *S3Storage) List(ctx context.Context, prefix string) (objects []objectstore.ObjectInfo, err error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { observe("list", start, err) }()

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, objectstore.ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified).UTC(),
			})
		}
	}
	return objects, nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) (err error) {
	if err := s.ensureEnabled(); err != nil {
		return err
	}
	start := time.Now()
	defer func() { observe("delete", start, err) }()

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// PresignGet signs a GET request for key. Signing is local; it never calls S3.
func (s *S3Storage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := s.ensureEnabled(); err != nil {
		return "", err
	}
	start := time.Now()
	defer func() { metrics.RecordPresign(time.Since(start).Seconds()) }()

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign s3://%s/%s: %w", s.bucket, key, err)
	}
	return externalizeURL(req.URL, s.publicEndpoint), nil
}

// Health performs a simple HeadBucket request.
func (s *S3Storage) Health(ctx context.Context) error {
	if s.disabled {
		return nil
	}
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

// externalizeURL rewrites a presigned URL onto the public endpoint when the bucket is reached through a proxy.
func externalizeURL(raw, publicEndpoint string) string {
	publicEndpoint = strings.TrimSpace(publicEndpoint)
	if publicEndpoint == "" || strings.TrimSpace(raw) == "" {
		return raw
	}

	target, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	external, err := url.Parse(publicEndpoint)
	if err != nil || external.Scheme == "" || external.Host == "" {
		return raw
	}

	target.Scheme = external.Scheme
	target.Host = external.Host

	if path := strings.TrimSpace(external.Path); path != "" && path != "/" {
		target.Path = joinPublicPath(path, target.Path)
	}

	return target.String()
}

func joinPublicPath(basePath, objectPath string) string {
	base := strings.TrimSuffix(basePath, "/")
	if base == "" {
		return ensureLeadingSlash(objectPath)
	}

	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}

	relative := strings.TrimPrefix(objectPath, "/")
	if relative == "" {
		return base
	}
	return base + "/" + relative
}

func ensureLeadingSlash(path string) string {
	if path == "" {
		return "/"
	}
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
