package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/marcosvillarreal/reelstack-backend/pkg/config"
	"github.com/marcosvillarreal/reelstack-backend/pkg/logger"
)

const (
	uploadTimeout = 2 * time.Minute
	pingTimeout   = 5 * time.Second
)

// Client wraps the GCS bucket used for asset objects.
type Client struct {
	storageClient *storage.Client
	bucketName    string
	publicURL     string
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient dials GCS using the configured credentials. When no explicit
// credentials are set, application default credentials apply.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	switch {
	case gcp.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case gcp.ApplicationCredentials != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}

	storageClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketName), "gcs client ready")
	}

	return &Client{
		storageClient: storageClient,
		bucketName:    cfg.BucketName,
		publicURL:     strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// Upload streams the reader into the bucket under key.
func (c *Client) Upload(ctx context.Context, key string, body io.Reader) error {
	if key == "" {
		return errors.New("object key is required")
	}
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := c.storageClient.Bucket(c.bucketName).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("writing object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing writer for %q: %w", key, err)
	}
	return nil
}

// Download opens a reader for the object at key. The caller owns the closer.
func (c *Client) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, errors.New("object key is required")
	}
	r, err := c.storageClient.Bucket(c.bucketName).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening object %q: %w", key, err)
	}
	return r, nil
}

// Delete removes the object at key. Missing objects are not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("object key is required")
	}
	err := c.storageClient.Bucket(c.bucketName).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("deleting object %q: %w", key, err)
	}
	return nil
}

// PublicURL returns the externally reachable URL for an object key.
func (c *Client) PublicURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, key)
}

// KeyFromURL maps a public URL produced by PublicURL back to its object key.
func (c *Client) KeyFromURL(url string) string {
	for _, prefix := range []string{
		c.publicURL + "/",
		fmt.Sprintf("https://storage.googleapis.com/%s/", c.bucketName),
	} {
		if prefix != "/" && strings.HasPrefix(url, prefix) {
			return strings.TrimPrefix(url, prefix)
		}
	}
	return ""
}

// Ping verifies the bucket is reachable and readable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	_, err := c.storageClient.Bucket(c.bucketName).Attrs(ctx)
	if err != nil {
		return fmt.Errorf("bucket attrs: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.storageClient.Close()
}

func contentTypeForKey(key string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(key)))
	if ext == "" {
		return ""
	}
	return mime.TypeByExtension(ext)
}
