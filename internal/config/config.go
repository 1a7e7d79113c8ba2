// Package config loads service settings from an optional YAML file and the
// environment. Environment variables always win over the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/i-christian/fileDrop/internal/filestore"
	"github.com/i-christian/fileDrop/internal/utils"
	"github.com/i-christian/fileDrop/internal/validator"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

type Config struct {
	Port           int      `yaml:"port"`
	Env            string   `yaml:"env"`
	Domain         string   `yaml:"domain"`
	MaxUploadSize  int64    `yaml:"max_upload_size"`
	MaxConnections int      `yaml:"max_connections"`
	CORSOrigins    []string `yaml:"cors_origins"`
	Limiter        Limiter  `yaml:"limiter"`
	Storage        Storage  `yaml:"storage"`
}

type Limiter struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

type Storage struct {
	Type       string `yaml:"type"`
	UploadsDir string `yaml:"uploads_dir"`
	S3         S3     `yaml:"s3"`
}

type S3 struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Default returns the settings used for anything not configured.
func Default() Config {
	return Config{
		Port:          4000,
		Env:           EnvDevelopment,
		Domain:        "localhost",
		MaxUploadSize: 32 << 20,
		Limiter: Limiter{
			Enabled: true,
			RPS:     4,
			Burst:   8,
		},
		Storage: Storage{
			Type: string(filestore.StorageDisk),
		},
	}
}

// Load builds the configuration from the YAML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config file: %w", err)
		}
		defer f.Close()

		if err := decodeYAML(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	v := validator.New()

	v.Check(c.Port > 0 && c.Port <= 65535, "PORT", "must be between 1 and 65535")
	v.Check(validator.PermittedValue(c.Env, EnvDevelopment, EnvStaging, EnvProduction, EnvTesting), "ENV", "must be one of development, staging, production, testing")
	v.Check(c.Domain != "", "DOMAIN", "must be provided")
	v.Check(c.MaxUploadSize > 0, "MAX_UPLOAD_SIZE", "must be greater than zero")
	v.Check(c.MaxConnections >= 0, "MAX_CONNECTIONS", "must not be negative")

	if c.Limiter.Enabled {
		v.Check(c.Limiter.RPS > 0, "LIMITER_RPS", "must be greater than zero")
		v.Check(c.Limiter.Burst > 0, "LIMITER_BURST", "must be greater than zero")
	}

	switch filestore.StorageType(c.Storage.Type) {
	case filestore.StorageDisk:
		v.Check(strings.TrimSpace(c.Storage.UploadsDir) != "", "UPLOADS_DIR", "must be provided for local storage")
	case filestore.StorageS3:
		v.Check(c.Storage.S3.Endpoint != "", "S3_ENDPOINT", "must be provided for cloud storage")
		v.Check(c.Storage.S3.Bucket != "", "S3_BUCKET", "must be provided for cloud storage")
		v.Check(c.Storage.S3.AccessKey != "", "S3_ACCESS_KEY", "must be provided for cloud storage")
		v.Check(c.Storage.S3.SecretKey != "", "S3_SECRET_KEY", "must be provided for cloud storage")
	default:
		v.AddError("STORAGE_TYPE", "must be one of local, cloud")
	}

	return v.Err()
}

// FileStore converts the storage settings for filestore.New.
func (c Config) FileStore() filestore.Config {
	return filestore.Config{
		Type:       filestore.StorageType(c.Storage.Type),
		UploadsDir: c.Storage.UploadsDir,
		Minio: filestore.MinioConfig{
			Endpoint:  c.Storage.S3.Endpoint,
			AccessKey: c.Storage.S3.AccessKey,
			SecretKey: c.Storage.S3.SecretKey,
			Region:    c.Storage.S3.Region,
			Bucket:    c.Storage.S3.Bucket,
			UseSSL:    c.Storage.S3.UseSSL,
			PartSize:  filestore.PartSizeFor(c.MaxUploadSize),
		},
	}
}

func (c *Config) applyEnv() error {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	collect(envInt("PORT", &c.Port))
	collect(envString("ENV", &c.Env))
	collect(envString("DOMAIN", &c.Domain))
	collect(envInt64("MAX_UPLOAD_SIZE", &c.MaxUploadSize))
	collect(envInt("MAX_CONNECTIONS", &c.MaxConnections))
	collect(envList("CORS_ORIGINS", &c.CORSOrigins))

	collect(envBool("LIMITER_ENABLED", &c.Limiter.Enabled))
	collect(envFloat("LIMITER_RPS", &c.Limiter.RPS))
	collect(envInt("LIMITER_BURST", &c.Limiter.Burst))

	collect(envString("STORAGE_TYPE", &c.Storage.Type))
	collect(envString("UPLOADS_DIR", &c.Storage.UploadsDir))
	collect(envString("S3_ENDPOINT", &c.Storage.S3.Endpoint))
	collect(envString("S3_ACCESS_KEY", &c.Storage.S3.AccessKey))
	collect(envString("S3_SECRET_KEY", &c.Storage.S3.SecretKey))
	collect(envString("S3_REGION", &c.Storage.S3.Region))
	collect(envString("S3_BUCKET", &c.Storage.S3.Bucket))
	collect(envBool("S3_USE_SSL", &c.Storage.S3.UseSSL))

	return errors.Join(errs...)
}

func lookup(key string) (string, bool, error) {
	v, ok, err := utils.LookupEnvOrFile(key)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", key, err)
	}
	return strings.TrimSpace(v), ok && strings.TrimSpace(v) != "", nil
}

func envString(key string, dst *string) error {
	v, ok, err := lookup(key)
	if ok {
		*dst = v
	}
	return err
}

func envList(key string, dst *[]string) error {
	v, ok, err := lookup(key)
	if !ok {
		return err
	}

	var list []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	*dst = list
	return nil
}

func envInt(key string, dst *int) error {
	v, ok, err := lookup(key)
	if !ok {
		return err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func envInt64(key string, dst *int64) error {
	v, ok, err := lookup(key)
	if !ok {
		return err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v, ok, err := lookup(key)
	if !ok {
		return err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: must be a number: %w", key, err)
	}
	*dst = f
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok, err := lookup(key)
	if !ok {
		return err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: must be a boolean: %w", key, err)
	}
	*dst = b
	return nil
}
