// Package blobstore persists original image bytes and derived thumbnails in a
// MinIO bucket, keyed by content identifier.
package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no object exists for the requested id.
var ErrNotFound = errors.New("blob not found")

// Config defines the blob store configuration
type Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
}

// Store is a MinIO-backed content store. Originals are stored under
// "<id>.png" and thumbnails under "<id>_thumb.jpg".
type Store struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// New creates a Store and ensures the configured bucket exists.
func New(ctx context.Context, cfg *Config, log *zap.Logger) (*Store, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, errors.New("blobstore: endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("blobstore: bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Info("created blob bucket", zap.String("bucket", cfg.Bucket))
	}

	return &Store{
		client: client,
		bucket: cfg.Bucket,
		logger: log,
	}, nil
}

// Save writes the original bytes and the thumbnail for one content id.
// The original is written first so a partial failure never leaves a
// thumbnail without its full-size counterpart.
func (s *Store) Save(ctx context.Context, id string, original, thumbnail []byte) error {
	if err := s.put(ctx, originalKey(id), original, "image/png"); err != nil {
		return err
	}
	return s.put(ctx, thumbnailKey(id), thumbnail, "image/jpeg")
}

// LoadOriginal returns the original bytes for id.
func (s *Store) LoadOriginal(ctx context.Context, id string) ([]byte, error) {
	return s.get(ctx, originalKey(id))
}

// LoadThumbnail returns the thumbnail for id, falling back to the original
// when no thumbnail object exists.
func (s *Store) LoadThumbnail(ctx context.Context, id string) ([]byte, error) {
	data, err := s.get(ctx, thumbnailKey(id))
	if errors.Is(err, ErrNotFound) {
		s.logger.Debug("thumbnail missing, serving original", zap.String("id", id))
		return s.LoadOriginal(ctx, id)
	}
	return data, err
}

// Remove deletes both objects for id. Missing objects are not an error.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, thumbnailKey(id), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove thumbnail: %w", err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, originalKey(id), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove original: %w", err)
	}
	return nil
}

func (s *Store) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", key, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(obj); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

func originalKey(id string) string  { return id + ".png" }
func thumbnailKey(id string) string { return id + "_thumb.jpg" }
