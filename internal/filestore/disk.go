package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	tempPrefix = ".upload-"
	tempSuffix = ".tmp"
)

// DiskStorage is an implementation of the FileStorage interface that stores files on the local disk.
type DiskStorage struct {
	dir  string
	root *os.Root
}

// NewDiskStorage is a constructor for DiskStorage.
// It resolves `baseDir` to its absolute, symlink-free form and opens an
// os.Root there. The directory must already exist; it is never created.
// All subsequent file operations are confined within that directory.
func NewDiskStorage(baseDir string) (*DiskStorage, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, newError("init", baseDir, ErrConfiguration, errors.New("empty path"))
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, newError("init", baseDir, ErrConfiguration, err)
	}

	dir, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, newError("init", baseDir, ErrConfiguration, err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, newError("init", baseDir, ErrConfiguration, err)
	}
	if !info.IsDir() {
		return nil, newError("init", baseDir, ErrConfiguration, fmt.Errorf("%s is not a directory", dir))
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, newError("init", baseDir, ErrConfiguration, err)
	}

	return &DiskStorage{dir: dir, root: root}, nil
}

// Location returns the canonical root directory.
func (s *DiskStorage) Location() string {
	return s.dir
}

// Close releases the root directory handle.
func (s *DiskStorage) Close() error {
	return s.root.Close()
}

// Store writes content to a temporary file inside the root and renames it
// over the final name once it is fully on disk.
func (s *DiskStorage) Store(ctx context.Context, name string, content io.Reader) (StoredFile, error) {
	fileName, err := SanitizeName(name)
	if err != nil {
		return StoredFile{}, err
	}

	if err := ctx.Err(); err != nil {
		return StoredFile{}, newError("store", fileName, ErrWrite, err)
	}

	tmpName := tempPrefix + uuid.NewString() + tempSuffix
	out, err := s.root.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return StoredFile{}, newError("store", fileName, ErrWrite, err)
	}

	size, err := io.Copy(out, content)
	if err == nil {
		err = out.Sync()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		err = s.root.Rename(tmpName, fileName)
	}
	if err != nil {
		_ = s.root.Remove(tmpName)
		return StoredFile{}, newError("store", fileName, ErrWrite, err)
	}

	return StoredFile{Name: fileName, Size: size}, nil
}

// Retrieve opens the file stored under name for streaming.
func (s *DiskStorage) Retrieve(ctx context.Context, name string) (*Object, error) {
	fullPath, err := ResolvePath(s.dir, name)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, newError("retrieve", name, ErrRead, err)
	}

	rel, err := filepath.Rel(s.dir, fullPath)
	if err != nil {
		return nil, newError("retrieve", name, ErrPathTraversal, err)
	}

	var f *os.File
	for _, key := range lookupKeys(rel) {
		if f, err = s.root.Open(key); err == nil || !errors.Is(err, fs.ErrNotExist) {
			rel = key
			break
		}
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError("retrieve", name, ErrNotFound, err)
		}
		if s.throughSymlink(rel) {
			return nil, newError("retrieve", name, ErrPathTraversal, err)
		}
		return nil, newError("retrieve", name, ErrRead, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, newError("retrieve", name, ErrRead, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, newError("retrieve", name, ErrNotFound, nil)
	}

	return &Object{
		ReadCloser:  f,
		Name:        info.Name(),
		ContentType: ContentTypeFor(info.Name()),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
	}, nil
}

// List returns the direct entries of the root directory. Uploads still in
// flight are not reported.
func (s *DiskStorage) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, newError("list", "", ErrList, err)
	}

	entries, err := s.readRoot()
	if err != nil {
		return nil, newError("list", "", ErrList, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if isTempName(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func isTempName(name string) bool {
	return strings.HasPrefix(name, tempPrefix) && strings.HasSuffix(name, tempSuffix)
}

// readRoot lists the directory held by the root handle, so a directory
// swapped in at the same path after startup is never enumerated.
func (s *DiskStorage) readRoot() ([]fs.DirEntry, error) {
	d, err := s.root.Open(".")
	if err != nil {
		return nil, err
	}
	defer d.Close()

	return d.ReadDir(-1)
}

// throughSymlink reports whether a component of rel is a symbolic link.
// os.Root refuses to follow one only when it leads outside the root.
func (s *DiskStorage) throughSymlink(rel string) bool {
	var prefix string
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		prefix = filepath.Join(prefix, part)
		info, err := s.root.Lstat(prefix)
		if err != nil {
			return false
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return true
		}
	}
	return false
}

// RemoveStaleUploads deletes temporary upload files older than maxAge, which
// are left behind only when the process dies mid-upload.
func (s *DiskStorage) RemoveStaleUploads(ctx context.Context, maxAge time.Duration) (int, error) {
	entries, err := s.readRoot()
	if err != nil {
		return 0, newError("cleanup", "", ErrList, err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() || !isTempName(entry.Name()) {
			continue
		}

		info, err := s.root.Lstat(entry.Name())
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := s.root.Remove(entry.Name()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, newError("cleanup", entry.Name(), ErrWrite, err)
		}
		removed++
	}
	return removed, nil
}
