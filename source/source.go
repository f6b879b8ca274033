// Package source fetches the text of papers and bibliographies from a local
// directory, a web server or an S3 bucket.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrNotFound is returned when the requested file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrInvalidPath is returned for names escaping the root of a source.
	ErrInvalidPath = errors.New("invalid path")
)

// Fetcher returns the text of a named file.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// StatusError is returned by HTTP sources for responses other than 2xx.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.Code)
}

// Is makes a 404 match ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == 404
}

// Decode converts raw file contents to a string. A byte order mark selects
// the encoding (UTF-8 or UTF-16) and is removed; without one, UTF-8 is assumed.
func Decode(raw []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", fmt.Errorf("decoding text: %w", err)
	}
	return string(out), nil
}

// readAll reads and decodes r.
func readAll(r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return Decode(raw)
}
