package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

const (
	dirPerms  = 0755
	filePerms = 0644
)

// LocalStore keeps blobs on the local filesystem below a root directory
type LocalStore struct {
	root string
}

// NewLocalStore creates the root directory if needed
func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("local blob store: root directory cannot be empty")
	}
	if err := os.MkdirAll(root, dirPerms); err != nil {
		return nil, fmt.Errorf("local blob store: failed to create root directory: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Root returns the directory that holds the category folders
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) categoryDir(category string) string {
	return filepath.Join(s.root, category)
}

// EnsureCategory creates the category directory and any missing parents
func (s *LocalStore) EnsureCategory(_ context.Context, category string) error {
	if err := ValidateName(category); err != nil {
		return err
	}
	if err := os.MkdirAll(s.categoryDir(category), dirPerms); err != nil {
		return fmt.Errorf("local blob store: failed to create category %q: %w", category, err)
	}
	return nil
}

// Put writes the blob, removing the partial file if the copy fails
func (s *LocalStore) Put(ctx context.Context, category, filename string, r io.Reader) (string, error) {
	if err := validatePair(category, filename); err != nil {
		return "", err
	}
	if err := s.EnsureCategory(ctx, category); err != nil {
		return "", err
	}

	target := filepath.Join(s.categoryDir(category), filename)
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerms)
	if err != nil {
		return "", fmt.Errorf("local blob store: failed to create %q: %w", target, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("local blob store: failed to write %q: %w", target, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("local blob store: failed to close %q: %w", target, err)
	}

	return RelPath(category, filename), nil
}

// Delete removes a single blob
func (s *LocalStore) Delete(_ context.Context, relPath string) error {
	category, filename, err := SplitPath(relPath)
	if err != nil {
		return err
	}

	err = os.Remove(filepath.Join(s.categoryDir(category), filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local blob store: failed to delete %q: %w", relPath, err)
	}
	return nil
}

// DeleteCategory removes the category directory recursively
func (s *LocalStore) DeleteCategory(_ context.Context, category string) error {
	if err := ValidateName(category); err != nil {
		return err
	}
	if err := os.RemoveAll(s.categoryDir(category)); err != nil {
		return fmt.Errorf("local blob store: failed to delete category %q: %w", category, err)
	}
	return nil
}

// Categories lists the sub-directories of the root
func (s *LocalStore) Categories(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("local blob store: failed to list categories: %w", err)
	}

	categories := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			categories = append(categories, e.Name())
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// Files lists the regular files of a category
func (s *LocalStore) Files(_ context.Context, category string) ([]string, error) {
	if err := ValidateName(category); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.categoryDir(category))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("local blob store: failed to list %q: %w", category, err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Close is a no-op for the filesystem
func (s *LocalStore) Close() error {
	return nil
}
