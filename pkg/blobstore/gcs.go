package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSStore keeps blobs in a Google Cloud Storage bucket. Object names are
// the relative blob paths.
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

// NewGCSStore opens a client using application default credentials
func NewGCSStore(ctx context.Context, bucketName string) (*GCSStore, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("gcs blob store: bucket name cannot be empty")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs blob store: failed to create storage client: %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: client.Bucket(bucketName),
	}, nil
}

// EnsureCategory is a no-op: prefixes exist as soon as an object does
func (s *GCSStore) EnsureCategory(_ context.Context, category string) error {
	return ValidateName(category)
}

// Put uploads the blob. Cancelling the writer context on a failed copy
// discards the upload so no partial object is committed.
func (s *GCSStore) Put(ctx context.Context, category, filename string, r io.Reader) (string, error) {
	if err := validatePair(category, filename); err != nil {
		return "", err
	}

	relPath := RelPath(category, filename)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := s.bucket.Object(relPath).NewWriter(ctx)
	if contentType := mime.TypeByExtension(filepath.Ext(filename)); contentType != "" {
		writer.ContentType = contentType
	}

	if _, err := io.Copy(writer, r); err != nil {
		cancel()
		writer.Close()
		return "", fmt.Errorf("gcs blob store: failed to write %q: %w", relPath, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("gcs blob store: failed to commit %q: %w", relPath, err)
	}

	return relPath, nil
}

// Delete removes one object; a missing object is ignored
func (s *GCSStore) Delete(ctx context.Context, relPath string) error {
	if _, _, err := SplitPath(relPath); err != nil {
		return err
	}

	err := s.bucket.Object(relPath).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs blob store: failed to delete %q: %w", relPath, err)
	}
	return nil
}

// DeleteCategory removes every object below the category prefix
func (s *GCSStore) DeleteCategory(ctx context.Context, category string) error {
	if err := ValidateName(category); err != nil {
		return err
	}

	it := s.bucket.Objects(ctx, &storage.Query{Prefix: CategoryPrefix(category)})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("gcs blob store: error iterating objects: %w", err)
		}

		err = s.bucket.Object(attrs.Name).Delete(ctx)
		if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("gcs blob store: failed to delete %q: %w", attrs.Name, err)
		}
	}
	return nil
}

// Categories lists the prefixes directly below gallery/
func (s *GCSStore) Categories(ctx context.Context) ([]string, error) {
	root := PathPrefix + "/"
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: root, Delimiter: "/"})

	categories := []string{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs blob store: error iterating objects: %w", err)
		}
		if attrs.Prefix == "" {
			continue
		}
		categories = append(categories, strings.TrimSuffix(strings.TrimPrefix(attrs.Prefix, root), "/"))
	}
	return categories, nil
}

// Files lists the objects directly inside a category
func (s *GCSStore) Files(ctx context.Context, category string) ([]string, error) {
	if err := ValidateName(category); err != nil {
		return nil, err
	}

	it := s.bucket.Objects(ctx, &storage.Query{Prefix: CategoryPrefix(category), Delimiter: "/"})

	files := []string{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs blob store: error iterating objects: %w", err)
		}
		if attrs.Name == "" {
			continue
		}
		files = append(files, path.Base(attrs.Name))
	}
	return files, nil
}

// Close releases the storage client
func (s *GCSStore) Close() error {
	return s.client.Close()
}
