package util

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/monorel/monorel/internal/errors"
)

// FileExists returns true if the given file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir returns true if the path points to a directory.
func IsDir(path string) bool {
	fileInfo, err := os.Stat(path)
	return err == nil && fileInfo.IsDir()
}

// IsFile returns true if the path points to a file.
func IsFile(path string) bool {
	fileInfo, err := os.Stat(path)
	return err == nil && fileInfo.Mode().IsRegular()
}

// ExpandPath expands a leading `~` and makes the path canonical relative to basePath.
func ExpandPath(path, basePath string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errors.New(err)
	}

	return CanonicalPath(expanded, basePath)
}

// CanonicalPath returns the canonical version of the given path, relative to the given base path. That is, if the given path is a
// relative path, assume it is relative to the given base path. A canonical path is an absolute path with all relative
// components (e.g. "../") fully resolved, which makes it safe to compare paths as strings.
func CanonicalPath(path string, basePath string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(basePath, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", errors.New(err)
	}

	return filepath.ToSlash(filepath.Clean(absPath)), nil
}

// RelPath returns `path` relative to `basePath` using forward slashes.
func RelPath(path, basePath string) (string, error) {
	rel, err := filepath.Rel(basePath, path)
	if err != nil {
		return "", errors.New(err)
	}

	return filepath.ToSlash(rel), nil
}

// HasPathPrefix returns true if `path` is `prefix` or lies below it. Both are slash separated.
func HasPathPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" || prefix == "." {
		return true
	}

	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// WriteFileWithSamePermissions writes contents to destination, keeping the permissions of the existing file if any.
func WriteFileWithSamePermissions(destination string, contents []byte) error {
	mode := os.FileMode(0o644)

	if fileInfo, err := os.Stat(destination); err == nil {
		mode = fileInfo.Mode()
	}

	return errors.New(os.WriteFile(destination, contents, mode))
}
