// Package blobstore keeps gallery image bytes in a category-scoped tree.
// Every blob is addressed by a relative path of the form
// gallery/<category>/<filename>, which is also what the catalog stores.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// PathPrefix is the first segment of every relative blob path
const PathPrefix = "gallery"

var (
	// ErrInvalidName is returned for category or file names that are empty or
	// would escape their directory.
	ErrInvalidName = errors.New("blobstore: invalid name")

	// ErrInvalidPath is returned when a relative path is not gallery/<category>/<file>
	ErrInvalidPath = errors.New("blobstore: invalid path")
)

// Store is implemented by every blob backend
type Store interface {
	// EnsureCategory creates the category directory if it does not exist.
	EnsureCategory(ctx context.Context, category string) error

	// Put streams r into <category>/<filename>, overwriting any blob with the
	// same name, and returns the relative path. A failed copy leaves no blob.
	Put(ctx context.Context, category, filename string, r io.Reader) (string, error)

	// Delete removes a blob by relative path. A missing blob is not an error.
	Delete(ctx context.Context, relPath string) error

	// DeleteCategory removes a category and everything below it.
	DeleteCategory(ctx context.Context, category string) error

	// Categories lists first-level category directories in lexical order.
	Categories(ctx context.Context) ([]string, error)

	// Files lists the file names of a category in lexical order.
	Files(ctx context.Context, category string) ([]string, error)

	Close() error
}

// ValidateName checks a single path segment
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// RelPath builds the relative path of a blob
func RelPath(category, filename string) string {
	return PathPrefix + "/" + category + "/" + filename
}

// CategoryPrefix is the relative path prefix shared by all blobs of a category
func CategoryPrefix(category string) string {
	return PathPrefix + "/" + category + "/"
}

// SplitPath validates a relative path and returns its category and file name
func SplitPath(relPath string) (string, string, error) {
	if path.Clean(relPath) != relPath {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, relPath)
	}

	parts := strings.Split(relPath, "/")
	if len(parts) != 3 || parts[0] != PathPrefix {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, relPath)
	}
	if err := ValidateName(parts[1]); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if err := ValidateName(parts[2]); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	return parts[1], parts[2], nil
}

func validatePair(category, filename string) error {
	if err := ValidateName(category); err != nil {
		return err
	}
	return ValidateName(filename)
}
