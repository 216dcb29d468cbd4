package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioOptions configures the MinIO-backed blob store.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicBaseURL overrides the endpoint when building public URLs, for
	// setups that serve the bucket through a CDN or reverse proxy.
	PublicBaseURL string
}

// MinioStore persists blobs into a MinIO (or other S3-compatible) bucket.
type MinioStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// NewMinioStore creates a MinIO-backed blob store and verifies the bucket
// exists.
func NewMinioStore(ctx context.Context, opts MinioOptions) (*MinioStore, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("storage: minio endpoint is required")
	}
	if opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, errors.New("storage: minio credentials are required")
	}
	if opts.Bucket == "" {
		return nil, errors.New("storage: minio bucket is required")
	}

	u, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("storage: invalid minio endpoint %q: %w", opts.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("storage: minio endpoint scheme %q: must be http or https", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("storage: minio endpoint %q: missing hostname", opts.Endpoint)
	}

	client, err := minio.New(u.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create minio client for %s: %w", u.Host, err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: check bucket %q: %w", opts.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("storage: bucket %q does not exist", opts.Bucket)
	}

	publicBase := strings.TrimRight(opts.PublicBaseURL, "/")
	if publicBase == "" {
		publicBase = strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
	}

	return &MinioStore{
		client:        client,
		bucket:        opts.Bucket,
		publicBaseURL: publicBase,
	}, nil
}

// Put uploads data under key with the given content type. The bucket policy
// is expected to allow anonymous reads, so the returned public URL is
// immediately retrievable.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) (StoredObject, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return StoredObject{}, err
	}
	_, err = s.client.PutObject(ctx, s.bucket, cleanKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return StoredObject{}, fmt.Errorf("storage: put %s: %w", cleanKey, err)
	}
	return StoredObject{
		StoreURI:  s.storeURI(cleanKey),
		PublicURL: s.publicURL(cleanKey),
	}, nil
}

// List returns the blobs under prefix, skipping directory markers.
func (s *MinioStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var items []ObjectInfo
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objects {
		if object.Err != nil {
			return nil, fmt.Errorf("storage: list %q: %w", prefix, object.Err)
		}
		if strings.HasSuffix(object.Key, "/") {
			continue
		}
		items = append(items, ObjectInfo{
			Key:       object.Key,
			Name:      path.Base(object.Key),
			Size:      object.Size,
			StoreURI:  s.storeURI(object.Key),
			PublicURL: s.publicURL(object.Key),
		})
	}
	return items, nil
}

func (s *MinioStore) storeURI(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}

func (s *MinioStore) publicURL(key string) string {
	return s.publicBaseURL + "/" + key
}

var _ BlobStore = (*MinioStore)(nil)
