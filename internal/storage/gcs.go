package storage

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS is the production ObjectStore over a Google Cloud Storage bucket.
// Object writes overwrite on conflict, which is GCS's default.
type GCS struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

// NewGCS connects to the bucket. credentialsFile may be empty, in which
// case application default credentials are used. publicBaseURL overrides
// the standard storage.googleapis.com URL form when the bucket sits
// behind a CDN.
func NewGCS(ctx context.Context, bucket, credentialsFile, publicBaseURL string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, publicBaseURL: strings.TrimSuffix(publicBaseURL, "/")}, nil
}

func (g *GCS) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	obj := g.client.Bucket(g.bucket).Object(path)
	writer := obj.NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write object %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer for %s: %w", path, err)
	}
	return nil
}

func (g *GCS) Delete(ctx context.Context, path string) error {
	if err := g.client.Bucket(g.bucket).Object(path).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}
	return nil
}

func (g *GCS) PublicURL(path string) string {
	if g.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s", g.publicBaseURL, path)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, path)
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}
