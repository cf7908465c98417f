// Package storage issues presigned upload URLs for menu images against
// an S3-compatible object store. The service never proxies image bytes;
// clients PUT directly to the returned URL.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// UploadURLTTL is how long a presigned PUT URL stays valid. Enforced by
// the storage provider, not by this service.
const UploadURLTTL = 3600 * time.Second

// Presigner generates time-limited upload URLs. Satisfied by *Client;
// narrow interface so services can be tested without AWS machinery.
type Presigner interface {
	PresignUpload(ctx context.Context, key, contentType string, contentLength int64) (string, error)
}

// Client wraps an S3 presign client for one bucket.
type Client struct {
	presign       *s3.PresignClient
	bucket        string
	imageBasePath string
}

type Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	ImageBasePath string
}

// NewClient builds a Client for an S3-compatible endpoint (R2, minio,
// or plain S3 when Endpoint is empty).
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.Endpoint != ""
	})

	return &Client{
		presign:       s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		imageBasePath: cfg.ImageBasePath,
	}, nil
}

// PresignUpload returns a PUT URL scoped to the exact key, content type
// and length the caller declared.
func (c *Client) PresignUpload(ctx context.Context, key, contentType string, contentLength int64) (string, error) {
	out, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(contentLength),
	}, s3.WithPresignExpires(UploadURLTTL))
	if err != nil {
		return "", fmt.Errorf("presign upload: %w", err)
	}
	return out.URL, nil
}

// NewObjectKey builds the object key for an organization's image.
func NewObjectKey(organizationID string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate object key: %w", err)
	}
	return fmt.Sprintf("%s/%s", organizationID, id), nil
}

// PublicURL is the deterministic serving URL for an uploaded object.
func PublicURL(basePath, key string) string {
	return fmt.Sprintf("%s/%s", basePath, key)
}
