package repo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/core/cache"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/domain"
)

const genKey = "domains:gen"

// CachedListingRepo serves the public reads from redis. Keys carry a
// generation number that every successful write bumps, so a read never sees
// data older than the last write made through this decorator.
type CachedListingRepo struct {
	next  domain.ListingRepository
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// WithCache wraps next; a nil cache returns next unchanged.
func WithCache(next domain.ListingRepository, c *cache.Cache, ttl time.Duration, l *zap.Logger) domain.ListingRepository {
	if c == nil {
		return next
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &CachedListingRepo{next: next, cache: c, ttl: ttl, log: l}
}

func (r *CachedListingRepo) key(ctx context.Context, suffix string) (string, bool) {
	gen, err := r.cache.Generation(ctx, genKey)
	if err != nil {
		r.log.Warn("cache generation unavailable, reading store", zap.Error(err))
		return "", false
	}
	return fmt.Sprintf("domains:v%d:%s", gen, suffix), true
}

func (r *CachedListingRepo) invalidate(ctx context.Context) {
	if _, err := r.cache.Bump(ctx, genKey); err != nil {
		r.log.Error("cache invalidation failed", zap.Error(err))
	}
}

func (r *CachedListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	if err := r.next.Create(ctx, l); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedListingRepo) Update(ctx context.Context, id uint64, ch domain.ListingChanges) (*domain.Listing, error) {
	l, err := r.next.Update(ctx, id, ch)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return l, nil
}

func (r *CachedListingRepo) ListActive(ctx context.Context) ([]domain.Listing, error) {
	key, ok := r.key(ctx, "active")
	if !ok {
		return r.next.ListActive(ctx)
	}
	return cache.GetOrLoadJSON(r.cache, ctx, key, r.ttl, r.next.ListActive)
}

func (r *CachedListingRepo) FindActiveByName(ctx context.Context, name string) (*domain.Listing, error) {
	key, ok := r.key(ctx, "name:"+url.PathEscape(name))
	if !ok {
		return r.next.FindActiveByName(ctx, name)
	}
	return cache.GetOrLoadJSON(r.cache, ctx, key, r.ttl, func(ctx context.Context) (*domain.Listing, error) {
		return r.next.FindActiveByName(ctx, name)
	})
}

// FindAll is an admin path and always reads the store.
func (r *CachedListingRepo) FindAll(ctx context.Context) ([]domain.Listing, error) {
	return r.next.FindAll(ctx)
}
