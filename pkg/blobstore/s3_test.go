package blobstore

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockS3Client implements S3ClientAPI in memory
type mockS3Client struct {
	objects map[string][]byte
}

func (m *mockS3Client) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(params.Body)
	m.objects[aws.ToString(params.Key)] = buf.Bytes()
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(m.objects, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3Client) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	prefix := aws.ToString(params.Prefix)
	delimiter := aws.ToString(params.Delimiter)

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{}
	seen := map[string]bool{}
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := strings.TrimPrefix(k, prefix)
		if delimiter != "" {
			if i := strings.Index(rest, delimiter); i >= 0 {
				cp := prefix + rest[:i+len(delimiter)]
				if !seen[cp] {
					seen[cp] = true
					out.CommonPrefixes = append(out.CommonPrefixes, types.CommonPrefix{Prefix: aws.String(cp)})
				}
				continue
			}
		}
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	client := &mockS3Client{objects: map[string][]byte{}}
	store := &S3Store{Client: client, Bucket: "test-bucket"}

	rel, err := store.Put(ctx, "Modern", "1.jpg", strings.NewReader("content"))
	require.NoError(t, err)
	assert.Equal(t, "gallery/Modern/1.jpg", rel)
	assert.Equal(t, []byte("content"), client.objects[rel])

	_, err = store.Put(ctx, "Modern", "2.png", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = store.Put(ctx, "Classic", "3.jpeg", strings.NewReader("y"))
	require.NoError(t, err)

	categories, err := store.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Classic", "Modern"}, categories)

	files, err := store.Files(ctx, "Modern")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.jpg", "2.png"}, files)

	require.NoError(t, store.Delete(ctx, rel))
	assert.NotContains(t, client.objects, rel)

	require.NoError(t, store.DeleteCategory(ctx, "Modern"))
	assert.NotContains(t, client.objects, "gallery/Modern/2.png")
	assert.Contains(t, client.objects, "gallery/Classic/3.jpeg")

	_, err = store.Put(ctx, "Modern", "../x.jpg", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
}
