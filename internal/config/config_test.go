package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/i-christian/fileDrop/internal/filestore"
	"github.com/i-christian/fileDrop/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "ENV", "DOMAIN", "MAX_UPLOAD_SIZE", "MAX_CONNECTIONS", "CORS_ORIGINS",
	"LIMITER_ENABLED", "LIMITER_RPS", "LIMITER_BURST",
	"STORAGE_TYPE", "UPLOADS_DIR",
	"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_REGION", "S3_BUCKET", "S3_USE_SSL",
}

// clearEnv blanks every key Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		t.Setenv(key+"_FILE", "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_EnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPLOADS_DIR", "/srv/uploads")
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LIMITER_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/srv/uploads", cfg.Storage.UploadsDir)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadSize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.Limiter.Enabled)
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
port: 9000
env: production
domain: files.example.com
max_upload_size: 1048576
limiter:
  enabled: true
  rps: 10
  burst: 20
storage:
  type: local
  uploads_dir: /data/from-file
`)
	t.Setenv("UPLOADS_DIR", "/data/from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, "files.example.com", cfg.Domain)
	assert.Equal(t, int64(1<<20), cfg.MaxUploadSize)
	assert.Equal(t, Limiter{Enabled: true, RPS: 10, Burst: 20}, cfg.Limiter)
	assert.Equal(t, "/data/from-env", cfg.Storage.UploadsDir)
}

func TestLoad_SecretFromFile(t *testing.T) {
	clearEnv(t)
	secret := writeFile(t, "s3_secret", "  s3cr3t\n")
	t.Setenv("STORAGE_TYPE", "cloud")
	t.Setenv("S3_ENDPOINT", "http://minio:9000")
	t.Setenv("S3_BUCKET", "uploads")
	t.Setenv("S3_ACCESS_KEY", "minio")
	t.Setenv("S3_SECRET_KEY_FILE", secret)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", cfg.Storage.S3.SecretKey)

	fs := cfg.FileStore()
	assert.Equal(t, filestore.StorageS3, fs.Type)
	assert.Equal(t, "uploads", fs.Minio.Bucket)
	assert.Equal(t, "s3cr3t", fs.Minio.SecretKey)
	assert.Equal(t, uint64(32<<20), fs.Minio.PartSize)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing uploads dir", func(t *testing.T) {
		clearEnv(t)

		_, err := Load("")
		require.Error(t, err)

		var verr *validator.Error
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Errors, "UPLOADS_DIR")
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("UPLOADS_DIR", "/srv/uploads")
		t.Setenv("PORT", "70000")
		t.Setenv("ENV", "qa")
		t.Setenv("LIMITER_RPS", "0")

		_, err := Load("")
		var verr *validator.Error
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Errors, "PORT")
		assert.Contains(t, verr.Errors, "ENV")
		assert.Contains(t, verr.Errors, "LIMITER_RPS")
	})

	t.Run("cloud storage needs credentials", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORAGE_TYPE", "cloud")

		_, err := Load("")
		var verr *validator.Error
		require.ErrorAs(t, err, &verr)
		for _, key := range []string{"S3_ENDPOINT", "S3_BUCKET", "S3_ACCESS_KEY", "S3_SECRET_KEY"} {
			assert.Contains(t, verr.Errors, key)
		}
	})

	t.Run("unknown storage type", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORAGE_TYPE", "ftp")

		_, err := Load("")
		var verr *validator.Error
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Errors, "STORAGE_TYPE")
	})

	t.Run("malformed numbers", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("UPLOADS_DIR", "/srv/uploads")
		t.Setenv("PORT", "eighty")
		t.Setenv("LIMITER_ENABLED", "maybe")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PORT: must be an integer")
		assert.Contains(t, err.Error(), "LIMITER_ENABLED: must be a boolean")
	})

	t.Run("unknown yaml key", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, "config.yaml", "prot: 9000\n")

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config file")
	})

	t.Run("missing config file", func(t *testing.T) {
		clearEnv(t)

		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unreadable secret file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("UPLOADS_DIR_FILE", filepath.Join(t.TempDir(), "missing"))

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "UPLOADS_DIR")
	})
}

func TestLoad_EmptyConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPLOADS_DIR", "/srv/uploads")
	path := writeFile(t, "config.yaml", "\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Port, cfg.Port)
}
