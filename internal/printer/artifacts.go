package printer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

// ArtifactStore keeps rendered documents that could not be printed
type ArtifactStore interface {
	Save(ctx context.Context, name string, img image.Image) (string, error)
}

// BlobArtifactStore writes PNG artifacts to a gocloud bucket
// (file:// in production, mem:// in tests).
type BlobArtifactStore struct {
	bucket *blob.Bucket
}

// OpenBlobArtifactStore opens the bucket at url
func OpenBlobArtifactStore(ctx context.Context, url string) (*BlobArtifactStore, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact bucket: %w", err)
	}
	return &BlobArtifactStore{bucket: bucket}, nil
}

// NewBlobArtifactStore wraps an already opened bucket
func NewBlobArtifactStore(bucket *blob.Bucket) *BlobArtifactStore {
	return &BlobArtifactStore{bucket: bucket}
}

// Save encodes img as PNG under name + ".png" and returns the key
func (s *BlobArtifactStore) Save(ctx context.Context, name string, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode artifact: %w", err)
	}

	key := name + ".png"
	if err := s.bucket.WriteAll(ctx, key, buf.Bytes(), &blob.WriterOptions{ContentType: "image/png"}); err != nil {
		return "", fmt.Errorf("failed to write artifact %s: %w", key, err)
	}

	return key, nil
}

// Close releases the bucket
func (s *BlobArtifactStore) Close() error {
	return s.bucket.Close()
}
