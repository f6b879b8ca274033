package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Dir reads files below a root directory.
type Dir struct {
	Root string
}

// Path resolves name below the root. Names that would escape the root, once
// cleaned, are rejected with ErrInvalidPath.
func (d Dir) Path(name string) (string, error) {
	if len(strings.TrimSpace(name)) == 0 || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}

	root, err := filepath.Abs(d.Root)
	if err != nil {
		return "", err
	}
	full := filepath.Join(root, filepath.FromSlash(name))

	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return full, nil
}

// Fetch reads the file name below the root.
func (d Dir) Fetch(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := d.Path(name)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return "", err
	}
	defer f.Close()

	return readAll(f)
}

// ModTime returns the modification time of name, for watching changes.
func (d Dir) ModTime(name string) (int64, error) {
	path, err := d.Path(name)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.ModTime().UnixNano(), nil
}
