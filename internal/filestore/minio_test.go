package filestore

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
	minioBucket   = "uploads"
)

func TestNormaliseEndpoint(t *testing.T) {
	tests := []struct {
		raw        string
		want       string
		wantSecure bool
		wantErr    bool
	}{
		{raw: "minio:9000", want: "minio:9000"},
		{raw: " http://minio:9000 ", want: "minio:9000"},
		{raw: "https://s3.example.com", want: "s3.example.com", wantSecure: true},
		{raw: "https://s3.example.com/", want: "s3.example.com", wantSecure: true},
		{raw: "", wantErr: true},
		{raw: "http://", wantErr: true},
		{raw: "http://minio:9000/bucket", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, secure, err := normaliseEndpoint(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSecure, secure)
		})
	}
}

func TestPartSizeFor(t *testing.T) {
	tests := []struct {
		maxUpload int64
		want      uint64
	}{
		{maxUpload: 0, want: 16 << 20},
		{maxUpload: -1, want: 16 << 20},
		{maxUpload: 64, want: 5 << 20},
		{maxUpload: 32 << 20, want: 32 << 20},
		{maxUpload: 10 << 30, want: 64 << 20},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PartSizeFor(tt.maxUpload), "maxUpload=%d", tt.maxUpload)
	}
}

func TestMinioStorage_PutOptionsBoundPartSize(t *testing.T) {
	s := &MinioStorage{bucket: minioBucket, partSize: PartSizeFor(32 << 20)}

	opts := s.putOptions("report.pdf")
	assert.Equal(t, "application/pdf", opts.ContentType)
	assert.Equal(t, uint64(32<<20), opts.PartSize)

	// An unset part size makes minio-go size each buffer for a 5 TiB object.
	assert.NotZero(t, opts.PartSize)
	assert.LessOrEqual(t, opts.PartSize, uint64(64<<20))
}

func TestNewMinioStorage_InvalidConfig(t *testing.T) {
	_, err := NewMinioStorage(context.Background(), MinioConfig{Bucket: minioBucket})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewMinioStorage(context.Background(), MinioConfig{Endpoint: "localhost:9000"})
	assert.ErrorIs(t, err, ErrConfiguration)
}

// startMinio runs a throwaway MinIO server and returns its host:port.
func startMinio(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MinIO container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:RELEASE.2024-01-16T16-07-38Z",
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     minioUser,
				"MINIO_ROOT_PASSWORD": minioPassword,
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	endpoint, err := ctr.PortEndpoint(ctx, "9000/tcp", "")
	require.NoError(t, err)
	return endpoint
}

func TestMinioStorage(t *testing.T) {
	endpoint := startMinio(t)
	ctx := context.Background()

	cfg := MinioConfig{
		Endpoint:  endpoint,
		AccessKey: minioUser,
		SecretKey: minioPassword,
		Bucket:    minioBucket,
	}

	_, err := NewMinioStorage(ctx, cfg)
	require.ErrorIs(t, err, ErrConfiguration, "missing bucket must be fatal")

	admin, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(minioUser, minioPassword, ""),
	})
	require.NoError(t, err)
	require.NoError(t, admin.MakeBucket(ctx, minioBucket, minio.MakeBucketOptions{}))

	store, err := NewMinioStorage(ctx, cfg)
	require.NoError(t, err)
	assert.Contains(t, store.Location(), minioBucket)

	t.Run("round trip", func(t *testing.T) {
		stored, err := store.Store(ctx, "report.pdf", strings.NewReader("%PDF-1.4 17 bytes"))
		require.NoError(t, err)
		assert.Equal(t, "report.pdf", stored.Name)

		obj, err := store.Retrieve(ctx, "report.pdf")
		require.NoError(t, err)
		defer obj.Close()

		data, err := io.ReadAll(obj)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 17 bytes", string(data))
		assert.Equal(t, "application/pdf", obj.ContentType)
		assert.Equal(t, int64(17), obj.Size)
	})

	t.Run("overwrite", func(t *testing.T) {
		_, err := store.Store(ctx, "a.txt", strings.NewReader("b1"))
		require.NoError(t, err)
		_, err = store.Store(ctx, "a.txt", strings.NewReader("b2"))
		require.NoError(t, err)

		obj, err := store.Retrieve(ctx, "a.txt")
		require.NoError(t, err)
		defer obj.Close()

		data, err := io.ReadAll(obj)
		require.NoError(t, err)
		assert.Equal(t, "b2", string(data))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.Retrieve(ctx, "never-stored.txt")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("traversal", func(t *testing.T) {
		_, err := store.Retrieve(ctx, "../../etc/passwd")
		assert.ErrorIs(t, err, ErrPathTraversal)
	})

	t.Run("list", func(t *testing.T) {
		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a.txt", "report.pdf"}, names)
	})
}
