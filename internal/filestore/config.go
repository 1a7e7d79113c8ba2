package filestore

import (
	"context"
	"fmt"
)

// Config selects and configures a storage backend.
type Config struct {
	Type StorageType

	// UploadsDir is the root directory for StorageDisk.
	UploadsDir string

	// Minio is used for StorageS3.
	Minio MinioConfig
}

// New initialises the backend described by cfg. Any error it returns is a
// configuration error and the process should not serve traffic.
func New(ctx context.Context, cfg Config) (FileStorage, error) {
	switch cfg.Type {
	case StorageDisk, "":
		store, err := NewDiskStorage(cfg.UploadsDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageS3:
		store, err := NewMinioStorage(ctx, cfg.Minio)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, newError("init", string(cfg.Type), ErrConfiguration, fmt.Errorf("unknown storage type %q", cfg.Type))
	}
}
