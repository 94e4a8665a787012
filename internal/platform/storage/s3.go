// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

/*
Package storage provides an S3-compatible object store client for user uploads.

It is used by the catalogue layer to persist book cover and gallery images.
The client targets any S3-compatible backend (AWS S3, Cloudflare R2, MinIO)
selected purely through configuration.

Core Responsibilities:

  - Keys: Generates collision-free, time-sortable object keys.
  - Upload: Streams multipart file content into the bucket.
  - Addressing: Maps stored objects to their public URLs.
*/
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/libbyhq/libby/internal/platform/config"
	"github.com/libbyhq/libby/pkg/uuid"
)

// Client wraps the AWS SDK S3 client with bucket-scoped upload helpers.
type Client struct {
	s3Client      *s3.Client
	bucket        string
	publicBaseURL string
	logger        *slog.Logger
}

// NewClient builds an S3 client from application configuration.
//
// # Parameters
//   - ctx: Context for credential resolution.
//   - cfg: Application configuration carrying bucket, region, endpoint, and keys.
//   - logger: Structured logger for storage events.
func NewClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("storage: S3_BUCKET is not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		if cfg.S3Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.S3Endpoint)
			// R2 and MinIO resolve buckets by path, not by virtual host.
			options.UsePathStyle = true
		}
	})

	publicBaseURL := strings.TrimSuffix(cfg.S3PublicBaseURL, "/")
	if publicBaseURL == "" {
		publicBaseURL = strings.TrimSuffix(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	}

	logger.Info("object storage configured",
		slog.String("bucket", cfg.S3Bucket),
		slog.String("region", cfg.S3Region),
	)

	return &Client{
		s3Client:      s3Client,
		bucket:        cfg.S3Bucket,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}, nil
}

// # Object Keys

// NewObjectKey returns a collision-free key under prefix, preserving the
// original file extension (lowercased) for content-type inference by CDNs.
func NewObjectKey(prefix, filename string) string {
	extension := strings.ToLower(path.Ext(filename))
	return prefix + "/" + uuid.New() + extension
}

// # Upload & Delete

/*
Upload streams body into the bucket under key and returns the public URL.

Parameters:
  - ctx: context.Context
  - key: string (Object key, typically from [NewObjectKey])
  - contentType: string (MIME type of the payload)
  - body: io.Reader (File content)

Returns:
  - string: Public URL of the stored object
  - error: Upload failures
*/
func (client *Client) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := client.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(client.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: upload of %q failed: %w", key, err)
	}

	url := client.publicBaseURL + "/" + key
	client.logger.Info("object_uploaded",
		slog.String("key", key),
		slog.String("content_type", contentType),
	)

	return url, nil
}

/*
Delete removes an object from the bucket.

Description: Used when an image record is removed. Deletion is best-effort at
the call sites; the database row remains the source of truth.

Parameters:
  - ctx: context.Context
  - key: string

Returns:
  - error: Deletion failures
*/
func (client *Client) Delete(ctx context.Context, key string) error {
	_, err := client.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(client.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: delete of %q failed: %w", key, err)
	}
	return nil
}
