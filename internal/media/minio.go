package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// Internal adapter interface to enable mocking without a real MinIO server.
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}
func (w minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}
func (w minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}
func (w minioClientWrapper) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucketName, objectName, opts)
}

var _ Store = (*MinioStore)(nil)

type MinioStore struct {
	api       objectAPI
	bucket    string
	publicURL string
}

// NewMinio creates a media store backed by a real *minio.Client.
func NewMinio(ctx context.Context, client *minio.Client, bucket, publicURL string) (*MinioStore, error) {
	return NewMinioWithAPI(ctx, minioClientWrapper{c: client}, bucket, publicURL)
}

// NewMinioWithAPI allows injecting a mockable API (used in tests).
func NewMinioWithAPI(ctx context.Context, api objectAPI, bucket, publicURL string) (*MinioStore, error) {
	s := &MinioStore{
		api:       api,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
	if err := s.ensureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket exists: %w", err)
	}
	return s, nil
}

func (s *MinioStore) ensureBucketExists(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// Upload stores a base64 data URL as a new object and returns its
// durable URL. An already-hosted http(s) URL is returned unchanged.
func (s *MinioStore) Upload(ctx context.Context, data string) (string, error) {
	if strings.HasPrefix(data, "http://") || strings.HasPrefix(data, "https://") {
		return data, nil
	}

	payload, contentType, ext, err := decodeDataURL(data)
	if err != nil {
		return "", err
	}

	key := uuid.NewString() + ext
	_, err = s.api.PutObject(ctx, s.bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	return s.publicURL + "/" + key, nil
}

// Delete removes the object whose key is derived from a previously
// returned URL.
func (s *MinioStore) Delete(ctx context.Context, objectURL string) error {
	key := s.keyFromURL(objectURL)
	if key == "" {
		return nil
	}
	if err := s.api.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *MinioStore) keyFromURL(objectURL string) string {
	if objectURL == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(objectURL, s.publicURL+"/"); ok {
		return rest
	}
	parsed, err := url.Parse(objectURL)
	if err != nil {
		return ""
	}
	return path.Base(parsed.Path)
}
