package invariant

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/dekarrin/ltlplan/internal/domain"
)

// ExtractCached wraps Extract with the on-disk content-addressed cache: a
// cache hit skips the external translator entirely. A nil cache disables
// caching; every call then re-invokes the translator.
func ExtractCached(ctx context.Context, log hclog.Logger, cache *Cache, domainSrc string, dom domain.Domain, objects []string, cfg Config) (Result, error) {
	var key string
	if cache != nil {
		key = Key(domainSrc)
		if r, ok := cache.Get(key); ok {
			log.Named("invariant").Debug("invariant cache hit", "key", key)
			return r, nil
		}
	}

	result, err := Extract(ctx, log, domainSrc, dom, objects, cfg)
	if err != nil {
		return Result{}, err
	}

	if cache != nil {
		if err := cache.Put(key, result); err != nil {
			log.Named("invariant").Warn("failed to persist invariant cache entry", "error", err)
		}
	}

	return result, nil
}
