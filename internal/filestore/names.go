package filestore

import (
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxNameLength is the longest file name, in bytes, most filesystems accept.
const MaxNameLength = 255

// SanitizeName turns a client supplied file name into a flat name that is
// safe to join to the storage root. Empty, "." and ".." segments are dropped
// and the last remaining segment is kept.
func SanitizeName(name string) (string, error) {
	cleaned := norm.NFC.String(strings.ReplaceAll(name, `\`, "/"))

	var last string
	for _, segment := range strings.Split(cleaned, "/") {
		segment = strings.TrimSpace(segment)
		if segment == "" || segment == "." || segment == ".." {
			continue
		}
		last = segment
	}

	if err := checkName(last); err != nil {
		return "", newError("sanitize", name, err, nil)
	}
	return last, nil
}

// CleanKey validates an untrusted lookup name and returns its cleaned,
// slash-separated form relative to the root. Unicode normalisation is left
// to lookupKeys so names placed in the root by other tools stay reachable.
// Temporary upload files are never served.
func CleanKey(name string) (string, error) {
	slashed := strings.ReplaceAll(name, `\`, "/")
	if strings.TrimSpace(slashed) == "" {
		return "", newError("resolve", name, ErrInvalidName, nil)
	}
	if path.IsAbs(slashed) || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", newError("resolve", name, ErrPathTraversal, nil)
	}

	key := path.Clean(slashed)
	if key == ".." || strings.HasPrefix(key, "../") {
		return "", newError("resolve", name, ErrPathTraversal, nil)
	}
	if key == "." {
		return "", newError("resolve", name, ErrInvalidName, nil)
	}
	if strings.ContainsRune(key, 0) || isTempName(path.Base(key)) {
		return "", newError("resolve", name, ErrInvalidName, nil)
	}
	return key, nil
}

// lookupKeys returns the keys to try for a cleaned lookup name: the name as
// given, then its NFC form, which is how Store writes names.
func lookupKeys(key string) []string {
	if composed := norm.NFC.String(key); composed != key {
		return []string{key, composed}
	}
	return []string{key}
}

// ResolvePath joins name to root and asserts the result is still inside root.
// root must already be absolute and clean.
func ResolvePath(root, name string) (string, error) {
	key, err := CleanKey(name)
	if err != nil {
		return "", err
	}

	full := filepath.Join(root, filepath.FromSlash(key))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", newError("resolve", name, ErrPathTraversal, err)
	}
	return full, nil
}

func checkName(name string) error {
	if name == "" || len(name) > MaxNameLength || isTempName(name) {
		return ErrInvalidName
	}
	for _, r := range name {
		if r == 0 || unicode.IsControl(r) {
			return ErrInvalidName
		}
	}
	return nil
}
