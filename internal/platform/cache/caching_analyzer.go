// Package cache provides caching implementations for usecase interfaces.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/domain/entity"
	"github.com/rhythem27/AI-Fraud-Detection-System/internal/feature/scan/usecase"
)

// Analyzer は文書解析のユースケースを抽象化します。
// Goの慣例に従い、インターフェースはコンシューマー（cache）側で定義します。
type Analyzer interface {
	Analyze(ctx context.Context, input usecase.ScanInput) (*entity.DocumentReport, error)
	AnalyzeBatch(ctx context.Context, inputs []usecase.ScanInput) (*entity.BatchReport, error)
}

// CachingAnalyzer decorates an Analyzer with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying analyzer. The cache key is the SHA-256 of the
// uploaded bytes, so re-uploads of the same document skip the full pipeline.
type CachingAnalyzer struct {
	inner     Analyzer
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingAnalyzer decorates an Analyzer with Redis caching.
// If ttl is 0, it defaults to 24 hours. If namespace is empty, it uses "scans".
func NewCachingAnalyzer(rdb *redis.Client, ttl time.Duration, inner Analyzer, namespace string) *CachingAnalyzer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if namespace == "" {
		namespace = "scans"
	}
	return &CachingAnalyzer{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Analyze retrieves a report, checking cache first then falling back to the
// full analysis pipeline. Filename and ScanID are request-scoped, so they are
// rewritten on cache hits.
func (c *CachingAnalyzer) Analyze(ctx context.Context, input usecase.ScanInput) (*entity.DocumentReport, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Analyze(ctx, input)
	}

	key := c.cacheKey(input.Data)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.DocumentReport
		if err := json.Unmarshal(b, &out); err == nil {
			out.Filename = input.Filename
			out.ScanID = input.ScanID
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the full pipeline
	out, err := c.inner.Analyze(ctx, input)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// AnalyzeBatch always runs the full pipeline. The cross-document validation
// depends on the combination of uploads, so per-document caching does not
// apply here.
func (c *CachingAnalyzer) AnalyzeBatch(ctx context.Context, inputs []usecase.ScanInput) (*entity.BatchReport, error) {
	return c.inner.AnalyzeBatch(ctx, inputs)
}

// cacheKey generates a content-addressed cache key for an upload.
func (c *CachingAnalyzer) cacheKey(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", c.namespace, hex.EncodeToString(sum[:]))
}
