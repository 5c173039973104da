package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/maraichr/conveyor/internal/config"
)

// Client archives finished execution records to object storage so completed
// runs (stage graphs, bake outputs, deployment details) survive database
// retention.
type Client struct {
	mc     *minio.Client
	bucket string
}

func NewClient(cfg config.MinIOConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Client{mc: mc, bucket: cfg.Bucket}, nil
}

func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// ArchiveExecution uploads the JSON-encoded execution record under
// executions/{id}.json.
func (c *Client) ArchiveExecution(ctx context.Context, executionID uuid.UUID, record []byte) error {
	_, err := c.mc.PutObject(ctx, c.bucket, executionObject(executionID),
		bytes.NewReader(record), int64(len(record)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("archive execution: %w", err)
	}
	return nil
}

// FetchExecution streams an archived execution record back.
func (c *Client) FetchExecution(ctx context.Context, executionID uuid.UUID) (io.ReadCloser, error) {
	obj, err := c.mc.GetObject(ctx, c.bucket, executionObject(executionID), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetch execution: %w", err)
	}
	return obj, nil
}

func (c *Client) Bucket() string {
	return c.bucket
}

func executionObject(id uuid.UUID) string {
	return "executions/" + id.String() + ".json"
}
