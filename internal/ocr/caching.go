package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/sahayak-edu/sahayak/internal/cache"
	"github.com/sahayak-edu/sahayak/internal/domain"
)

// DefaultCacheTTL bounds how long an extraction is reused.
const DefaultCacheTTL = 24 * time.Hour

// CachingExtractor memoises another Extractor by image content hash. Cache
// failures are logged and treated as misses.
type CachingExtractor struct {
	next      Extractor
	cache     cache.Client
	namespace string
	ttl       time.Duration
	logger    *slog.Logger
}

// NewCachingExtractor wraps next. namespace separates results of different
// extractors sharing one cache.
func NewCachingExtractor(next Extractor, c cache.Client, namespace string, ttl time.Duration, logger *slog.Logger) *CachingExtractor {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingExtractor{next: next, cache: c, namespace: namespace, ttl: ttl, logger: logger}
}

func (c *CachingExtractor) Extract(ctx context.Context, img domain.UploadedImage) (string, error) {
	if len(img.Data) == 0 {
		return "", ErrEmptyImage
	}
	key := cache.Key("ocr", c.namespace, ImageHash(img.Data))

	cached, err := c.cache.Get(ctx, key)
	switch {
	case err == nil && len(cached) > 0:
		return string(cached), nil
	case err != nil && !errors.Is(err, cache.ErrCacheMiss):
		c.logger.WarnContext(ctx, "ocr_cache_get_failed", "key", key, "error", err.Error())
	}

	text, err := c.next.Extract(ctx, img)
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, key, []byte(text), c.ttl); err != nil {
		c.logger.WarnContext(ctx, "ocr_cache_set_failed", "key", key, "error", err.Error())
	}
	return text, nil
}

// ImageHash returns the hex SHA-256 of the image bytes.
func ImageHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
