package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/storefront/backend/internal/domain/shop"
	infraconfig "github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ shop.MediaURLResolver = (*PublicMediaURLResolver)(nil)

// PublicMediaURLResolver joins media paths onto a public base URL, such as a CDN
type PublicMediaURLResolver struct {
	base *url.URL
}

// NewPublicMediaURLResolver creates a resolver for baseURL
func NewPublicMediaURLResolver(baseURL string) (*PublicMediaURLResolver, error) {
	if baseURL == "" {
		return nil, errors.New("public base URL is required")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid public base URL: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return &PublicMediaURLResolver{base: base}, nil
}

// Resolve returns the public URL of the media path
func (r *PublicMediaURLResolver) Resolve(_ context.Context, path string) (string, error) {
	rel, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid media path %q: %w", path, err)
	}
	return r.base.ResolveReference(rel).String(), nil
}

// NewMediaURLResolver creates the resolver selected by cfg.Driver
func NewMediaURLResolver(cfg *infraconfig.StorageConfig, logger *zap.Logger) (shop.MediaURLResolver, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3MediaURLResolver(cfg, WithLogger(logger))
	case "public", "":
		return NewPublicMediaURLResolver(cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
