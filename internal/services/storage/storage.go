// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package storage stores document blobs in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/legaldocs/legaldocs/internal/config"
)

// PresignTTL is how long a generated preview link stays valid.
const PresignTTL = time.Hour

// Service wraps the S3 client for document storage.
type Service struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

// NewService builds the S3 client from the storage configuration. A custom
// endpoint enables MinIO and other S3-compatible backends.
func NewService(ctx context.Context, cfg config.StorageConfig) (*Service, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Service{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
	}, nil
}

// ObjectKey builds the bucket key for an uploaded file. The millisecond
// prefix keeps identically named uploads from colliding.
func ObjectKey(filename string) string {
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), filename)
}

// Upload writes the object under the given key.
func (s *Service) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %q: %w", key, err)
	}
	return nil
}

// Download fetches the object body. The caller must close the reader.
func (s *Service) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download object %q: %w", key, err)
	}
	return out.Body, nil
}

// PresignGet returns a time-limited URL for direct browser access.
func (s *Service) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %q: %w", key, err)
	}
	return req.URL, nil
}

// Delete removes the object.
func (s *Service) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}
