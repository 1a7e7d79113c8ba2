// Package files defines the service and handlers used for file manipulation
package files

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"

	"github.com/i-christian/fileDrop/internal/filestore"
	"golang.org/x/crypto/blake2b"
)

// UploadedFile describes a file after it has been stored.
type UploadedFile struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}

type FileService struct {
	store  filestore.FileStorage
	logger *slog.Logger
}

func NewFileService(store filestore.FileStorage, logger *slog.Logger) *FileService {
	return &FileService{
		store:  store,
		logger: logger,
	}
}

// UploadFile streams the file to storage while calculating the checksum simultaneously.
func (s *FileService) UploadFile(ctx context.Context, fileName string, fileStream io.Reader) (UploadedFile, error) {
	hasher, err := blake2b.New256(nil)
	if err != nil {
		return UploadedFile{}, err
	}
	tee := io.TeeReader(fileStream, hasher)

	stored, err := s.store.Store(ctx, fileName, tee)
	if err != nil {
		return UploadedFile{}, err
	}

	uploaded := UploadedFile{
		Name:     stored.Name,
		Size:     stored.Size,
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}

	s.logger.Info("file stored", "name", uploaded.Name, "size", uploaded.Size, "checksum", uploaded.Checksum)
	return uploaded, nil
}

// DownloadFile opens a stored file. The caller must close the returned object.
func (s *FileService) DownloadFile(ctx context.Context, fileName string) (*filestore.Object, error) {
	return s.store.Retrieve(ctx, fileName)
}

// ListFiles returns the names of every stored file.
func (s *FileService) ListFiles(ctx context.Context) ([]string, error) {
	names, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
