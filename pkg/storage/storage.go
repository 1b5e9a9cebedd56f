// Package storage archives exported captures to a cloud bucket so
// field devices can be audited after the fact.
package storage

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"

	"github.com/edgevision/inferpipe/pkg/logger"
)

// CloudStorage is implemented by capture archives.
type CloudStorage interface {
	Save(ctx context.Context, name string, data []byte) error
	Load(ctx context.Context, name string) ([]byte, error)
}

// Client archives captures to a Google Cloud Storage bucket.
// A nil *Client is a no-op archive.
type Client struct {
	bucket  *storage.BucketHandle
	gclient *storage.Client
	log     *logger.Logger
}

// NewClient opens the named bucket with ambient credentials.
func NewClient(ctx context.Context, bucketName string, log *logger.Logger) (*Client, error) {
	gclient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Client{
		bucket:  gclient.Bucket(bucketName),
		gclient: gclient,
		log:     log,
	}, nil
}

// Save uploads one exported capture under the given object name.
func (c *Client) Save(ctx context.Context, name string, data []byte) error {
	if c == nil {
		return nil
	}
	wc := c.bucket.Object(name).NewWriter(ctx)
	wc.ContentType = "text/plain"
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	c.log.Debug().Str("object", name).Int("size", len(data)).Msg("Capture archived")
	return nil
}

// Load fetches a previously archived capture.
func (c *Client) Load(ctx context.Context, name string) ([]byte, error) {
	if c == nil {
		return nil, errors.New("cloud storage was not initialized")
	}
	rc, err := c.bucket.Object(name).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.gclient.Close()
}
