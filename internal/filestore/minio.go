package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds the settings needed to reach an S3-compatible bucket.
type MinioConfig struct {
	// Endpoint is host:port, or a URL whose scheme selects TLS.
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	UseSSL    bool
	// PartSize bounds the buffer used for each multipart chunk. Uploads are
	// streamed with an unknown length, so the SDK would otherwise allocate
	// its 5 TiB / 10000 part default for every upload.
	PartSize uint64
}

const (
	minPartSize     = 5 << 20
	maxPartSize     = 64 << 20
	defaultPartSize = 16 << 20
)

// PartSizeFor picks a multipart chunk size for uploads of at most maxUpload
// bytes, kept between the S3 minimum and maxPartSize.
func PartSizeFor(maxUpload int64) uint64 {
	if maxUpload <= 0 {
		return defaultPartSize
	}
	return uint64(min(max(maxUpload, minPartSize), maxPartSize))
}

// MinioStorage implements FileStorage on top of a single bucket of an
// S3-compatible service (MinIO, AWS, DigitalOcean Spaces).
type MinioStorage struct {
	client   *minio.Client
	bucket   string
	partSize uint64
}

// NewMinioStorage connects to the object store and checks that the bucket
// exists. Like the disk root, the bucket is never created here.
func NewMinioStorage(ctx context.Context, cfg MinioConfig) (*MinioStorage, error) {
	endpoint, secure, err := normaliseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, newError("init", cfg.Endpoint, ErrConfiguration, err)
	}
	if cfg.Bucket == "" {
		return nil, newError("init", cfg.Endpoint, ErrConfiguration, errors.New("bucket name is empty"))
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure || cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, newError("init", cfg.Endpoint, ErrConfiguration, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, newError("init", cfg.Bucket, ErrConfiguration, err)
	}
	if !exists {
		return nil, newError("init", cfg.Bucket, ErrConfiguration, errors.New("bucket does not exist"))
	}

	partSize := cfg.PartSize
	if partSize == 0 {
		partSize = defaultPartSize
	}

	return &MinioStorage{client: client, bucket: cfg.Bucket, partSize: partSize}, nil
}

// Location returns the bucket URL.
func (s *MinioStorage) Location() string {
	return fmt.Sprintf("%s/%s", s.client.EndpointURL(), s.bucket)
}

// Store uploads content as a single object; the object store only makes it
// visible once the upload has completed.
func (s *MinioStorage) Store(ctx context.Context, name string, content io.Reader) (StoredFile, error) {
	key, err := SanitizeName(name)
	if err != nil {
		return StoredFile{}, err
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, content, -1, s.putOptions(key))
	if err != nil {
		return StoredFile{}, newError("store", key, ErrWrite, err)
	}

	return StoredFile{Name: key, Size: info.Size}, nil
}

func (s *MinioStorage) putOptions(key string) minio.PutObjectOptions {
	return minio.PutObjectOptions{
		ContentType: ContentTypeFor(key),
		PartSize:    s.partSize,
	}
}

// Retrieve opens a streaming handle to the object stored under name.
func (s *MinioStorage) Retrieve(ctx context.Context, name string) (*Object, error) {
	key, err := CleanKey(name)
	if err != nil {
		return nil, err
	}

	var stat minio.ObjectInfo
	var mapped *Error
	for _, candidate := range lookupKeys(key) {
		stat, err = s.client.StatObject(ctx, s.bucket, candidate, minio.StatObjectOptions{})
		if err == nil {
			key, mapped = candidate, nil
			break
		}
		if mapped = mapMinioError("retrieve", key, ErrRead, err); !errors.Is(mapped, ErrNotFound) {
			break
		}
	}
	if mapped != nil {
		return nil, mapped
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioError("retrieve", key, ErrRead, err)
	}

	return &Object{
		ReadCloser:  obj,
		Name:        baseName(key),
		ContentType: ContentTypeFor(key),
		Size:        stat.Size,
		ModTime:     stat.LastModified,
	}, nil
}

// List returns the top-level keys of the bucket. Common prefixes are
// reported without their trailing slash.
func (s *MinioStorage) List(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	names := make([]string, 0)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: false}) {
		if obj.Err != nil {
			return nil, newError("list", "", ErrList, obj.Err)
		}
		names = append(names, strings.TrimSuffix(obj.Key, "/"))
	}
	return names, nil
}

// mapMinioError translates an SDK error into a storage Error, falling back to kind.
func mapMinioError(op, key string, kind error, err error) *Error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchObject":
		return newError(op, key, ErrNotFound, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return newError(op, key, ErrNotFound, err)
	}
	return newError(op, key, kind, err)
}

// normaliseEndpoint accepts either "minio:9000" or "http(s)://minio:9000".
func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, errors.New("empty endpoint")
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, errors.New("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, errors.New("endpoint must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}

	return raw, false, nil
}

func baseName(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}
