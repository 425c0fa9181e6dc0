// Package storage resolves media paths to URLs served by object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/storefront/backend/internal/domain/shop"
	infraconfig "github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ shop.MediaURLResolver = (*S3MediaURLResolver)(nil)

// S3MediaURLResolver resolves media paths to presigned GET URLs.
// It is compatible with any S3-compatible storage (AWS S3, MinIO, etc.)
type S3MediaURLResolver struct {
	presignClient     *s3.PresignClient
	bucket            string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3MediaURLResolverOption is a functional option for configuring S3MediaURLResolver
type S3MediaURLResolverOption func(*S3MediaURLResolver)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3MediaURLResolverOption {
	return func(r *S3MediaURLResolver) {
		r.logger = logger
	}
}

// WithPresignExpiration sets a custom presign expiration duration
func WithPresignExpiration(d time.Duration) S3MediaURLResolverOption {
	return func(r *S3MediaURLResolver) {
		r.presignExpiration = d
	}
}

// NewS3MediaURLResolver creates a resolver from configuration. Without static
// credentials the default AWS credential chain is used.
func NewS3MediaURLResolver(cfg *infraconfig.StorageConfig, opts ...S3MediaURLResolverOption) (*S3MediaURLResolver, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	var endpoint string
	if cfg.Endpoint != "" {
		endpoint = cfg.Endpoint
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	r := &S3MediaURLResolver{
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		presignExpiration: cfg.PresignExpiry,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.presignExpiration == 0 {
		r.presignExpiration = 15 * time.Minute
	}
	return r, nil
}

// Resolve returns a presigned GET URL for the media path
func (r *S3MediaURLResolver) Resolve(ctx context.Context, path string) (string, error) {
	key := strings.TrimPrefix(path, "/")
	if key == "" {
		return "", errors.New("media path is required")
	}

	req, err := r.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(r.presignExpiration))
	if err != nil {
		r.logger.Error("Failed to presign media URL", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to presign media %s: %w", key, err)
	}
	return req.URL, nil
}
