package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"google.golang.org/api/option"
)

// BlobStore keeps photo bytes under opaque slash-separated keys.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ── local disk ──

type localStore struct{ dir string }

// NewLocalStore stores blobs as files below dir.
func NewLocalStore(dir string) (BlobStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &localStore{dir: abs}, nil
}

func (s *localStore) path(key string) (string, error) {
	p := filepath.Join(s.dir, filepath.FromSlash(key))
	if !strings.HasPrefix(p, s.dir+string(filepath.Separator)) {
		return "", apperr.Validation("invalid object key %q", key)
	}
	return p, nil
}

func (s *localStore) Put(_ context.Context, key, _ string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return apperr.Storage("photo store write failed", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return apperr.Storage("photo store write failed", err)
	}
	return nil
}

func (s *localStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperr.NotFound("photo content not found")
	}
	if err != nil {
		return nil, apperr.Storage("photo store read failed", err)
	}
	return f, nil
}

func (s *localStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperr.Storage("photo store delete failed", err)
	}
	return nil
}

// ── Google Cloud Storage ──

// GCSStore keeps blobs in one bucket. Close releases the client.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore uses credJSON when given, otherwise application default credentials.
func NewGCSStore(ctx context.Context, bucket, credJSON string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}
	var opts []option.ClientOption
	if strings.TrimSpace(credJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("gcs bucket %q not found or not accessible: %w", bucket, err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, bytes.NewReader(data)); err != nil {
		wc.Close()
		return apperr.Storage("photo store write failed", err)
	}
	if err := wc.Close(); err != nil {
		return apperr.Storage("photo store write failed", err)
	}
	return nil
}

func (s *GCSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, apperr.NotFound("photo content not found")
	}
	if err != nil {
		return nil, apperr.Storage("photo store read failed", err)
	}
	return rc, nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return apperr.Storage("photo store delete failed", err)
	}
	return nil
}

func (s *GCSStore) Close() error { return s.client.Close() }
