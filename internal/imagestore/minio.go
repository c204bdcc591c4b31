package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig configures an S3-compatible bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base clients fetch objects from. Defaults to the endpoint.
	PublicURL string
}

// objectClient is the subset of *minio.Client the store calls.
type objectClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinioStore keeps images in a MinIO or S3 bucket.
type MinioStore struct {
	client    objectClient
	bucket    string
	publicURL string
}

// NewMinioStore connects to the bucket, creating it when missing.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: check bucket %s: %v", ErrStore, cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%w: create bucket %s: %v", ErrStore, cfg.Bucket, err)
		}
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = client.EndpointURL().String()
	}
	return newMinioStore(client, cfg.Bucket, publicURL), nil
}

func newMinioStore(client objectClient, bucket, publicURL string) *MinioStore {
	return &MinioStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (s *MinioStore) Upload(ctx context.Context, in UploadInput) (Asset, error) {
	if len(in.Content) == 0 {
		return Asset{}, fmt.Errorf("%w: empty payload", ErrRejected)
	}
	data, err := applyTransform(in.Content, in.ContentType, in.Transform)
	if err != nil {
		return Asset{}, err
	}

	id := newObjectID(in.Folder, in.ContentType, in.Filename)
	_, err = s.client.PutObject(ctx, s.bucket, id, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: normalizeContentType(in.ContentType),
	})
	if err != nil {
		return Asset{}, fmt.Errorf("%w: put %s: %v", ErrStore, id, err)
	}
	return Asset{ID: id, URL: s.objectURL(id)}, nil
}

func (s *MinioStore) Destroy(ctx context.Context, id string) error {
	if IsPlaceholder(id) || !isValidObjectID(id) {
		return nil
	}
	err := s.client.RemoveObject(ctx, s.bucket, id, minio.RemoveObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("%w: remove %s: %v", ErrStore, id, err)
	}
	return nil
}

func (s *MinioStore) objectURL(id string) string {
	return s.publicURL + "/" + s.bucket + "/" + id
}
