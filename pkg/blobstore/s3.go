package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ClientAPI is the subset of the S3 client the store uses
type S3ClientAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store keeps blobs in an S3 bucket. Object keys are the relative blob paths.
type S3Store struct {
	Client S3ClientAPI
	Bucket string
}

// NewS3Store loads the default AWS configuration for the given region
func NewS3Store(ctx context.Context, bucket, region string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 blob store: bucket name cannot be empty")
	}

	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 blob store: failed to load aws config: %w", err)
	}

	return &S3Store{
		Client: s3.NewFromConfig(cfg),
		Bucket: bucket,
	}, nil
}

// EnsureCategory is a no-op for object storage
func (s *S3Store) EnsureCategory(_ context.Context, category string) error {
	return ValidateName(category)
}

// Put buffers the body and uploads it in one request, so a failed read
// never reaches the bucket.
func (s *S3Store) Put(ctx context.Context, category, filename string, r io.Reader) (string, error) {
	if err := validatePair(category, filename); err != nil {
		return "", err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("s3 blob store: failed to read %q: %w", filename, err)
	}

	relPath := RelPath(category, filename)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(relPath),
		Body:   bytes.NewReader(data),
	}
	if contentType := mime.TypeByExtension(filepath.Ext(filename)); contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3 blob store: failed to put %q: %w", relPath, err)
	}
	return relPath, nil
}

// Delete removes one object. S3 treats deleting a missing key as success.
func (s *S3Store) Delete(ctx context.Context, relPath string) error {
	if _, _, err := SplitPath(relPath); err != nil {
		return err
	}

	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(relPath),
	})
	if err != nil {
		return fmt.Errorf("s3 blob store: failed to delete %q: %w", relPath, err)
	}
	return nil
}

// DeleteCategory removes every object below the category prefix
func (s *S3Store) DeleteCategory(ctx context.Context, category string) error {
	if err := ValidateName(category); err != nil {
		return err
	}

	keys, _, err := s.list(ctx, CategoryPrefix(category), "")
	if err != nil {
		return err
	}

	for _, key := range keys {
		_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("s3 blob store: failed to delete %q: %w", key, err)
		}
	}
	return nil
}

// Categories lists the common prefixes directly below gallery/
func (s *S3Store) Categories(ctx context.Context) ([]string, error) {
	root := PathPrefix + "/"
	_, prefixes, err := s.list(ctx, root, "/")
	if err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		categories = append(categories, strings.TrimSuffix(strings.TrimPrefix(p, root), "/"))
	}
	return categories, nil
}

// Files lists the objects directly inside a category
func (s *S3Store) Files(ctx context.Context, category string) ([]string, error) {
	if err := ValidateName(category); err != nil {
		return nil, err
	}

	keys, _, err := s.list(ctx, CategoryPrefix(category), "/")
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(keys))
	for _, key := range keys {
		// skip folder marker objects
		if strings.HasSuffix(key, "/") {
			continue
		}
		files = append(files, path.Base(key))
	}
	return files, nil
}

func (s *S3Store) list(ctx context.Context, prefix, delimiter string) ([]string, []string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(prefix),
	}
	if delimiter != "" {
		input.Delimiter = aws.String(delimiter)
	}

	keys := []string{}
	prefixes := []string{}

	paginator := s3.NewListObjectsV2Paginator(s.Client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("s3 blob store: failed to list %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		for _, cp := range page.CommonPrefixes {
			prefixes = append(prefixes, aws.ToString(cp.Prefix))
		}
	}
	return keys, prefixes, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing
func (s *S3Store) Close() error {
	return nil
}
