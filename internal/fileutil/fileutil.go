// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// File permission constants.
const (
	DirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	FilePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// unsafeStemChars are replaced in file stems on every platform.
const unsafeStemChars = `/\:*?"<>|` + "\x00"

// CertificateStem turns a display name into a file name stem.
// Spaces become underscores and path-unsafe characters are replaced, so
// distinct names may share a stem.
//
// Examples:
//   - "Alice Smith" -> "Alice_Smith"
//   - "Ana/Maria"   -> "Ana_Maria"
//   - ""            -> "_"
func CertificateStem(name string) string {
	stem := strings.Map(func(r rune) rune {
		if r == ' ' || strings.ContainsRune(unsafeStemChars, r) {
			return '_'
		}
		return r
	}, name)

	if stem == "" || stem == "." || stem == ".." {
		return "_"
	}
	return stem
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// RemoveFile deletes path. A missing file is not an error; removed reports
// whether something was deleted.
func RemoveFile(path string) (removed bool, err error) {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("removing %s: %w", path, err)
	}
	return true, nil
}

// RemoveDirIfEmpty deletes dir only when it has no entries.
// A missing directory is not an error.
func RemoveDirIfEmpty(dir string) (removed bool, err error) {
	empty, err := IsDirEmpty(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if !empty {
		return false, nil
	}
	if err := os.Remove(dir); err != nil {
		return false, fmt.Errorf("removing directory %s: %w", dir, err)
	}
	return true, nil
}

// IsDirEmpty reports whether dir has no entries.
func IsDirEmpty(dir string) (bool, error) {
	f, err := os.Open(dir) // #nosec G304 -- caller-provided directory
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

// EnsureWritableDir creates dir if needed and checks a file can be created
// in it. created reports whether dir did not exist before.
func EnsureWritableDir(dir string) (created bool, err error) {
	created = !DirExists(dir)
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return false, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".certgen-write-*")
	if err != nil {
		return created, fmt.Errorf("directory %s is not writable: %w", dir, err)
	}
	name := tmp.Name()
	_ = tmp.Close()
	_ = os.Remove(name)
	return created, nil
}

// ParentDir returns the directory that will hold path, "." for bare names.
func ParentDir(path string) string {
	return filepath.Dir(filepath.Clean(path))
}
