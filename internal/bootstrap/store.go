// Package bootstrap turns a *config.Config into the store, cache and rate
// provider shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/core/cache"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/core/config"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/core/database"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/domain"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/rates"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/repo"
)

// Store is the opened listing repository plus whatever must be closed with it.
type Store struct {
	Listings domain.ListingRepository
	closers  []func() error
}

func (s *Store) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

// OpenStore opens the configured store, migrates it when asked and wraps it
// in the redis read cache when redis.addr is set. An unreachable redis is
// logged and skipped.
func OpenStore(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Store, error) {
	s := &Store{}
	var base domain.ListingRepository

	switch cfg.DB.Driver {
	case "memory":
		l.Warn("using in-memory store, data is lost on restart")
		base = repo.NewMemoryListingRepo()
	default:
		db, err := database.NewGorm(database.Opts{
			Driver:             cfg.DB.Driver,
			DSN:                cfg.DB.DSN,
			Username:           cfg.DB.Username,
			Password:           cfg.DB.Password,
			MaxOpenConns:       cfg.DB.MaxOpenConns,
			MaxIdleConns:       cfg.DB.MaxIdleConns,
			ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
			LogLevel:           cfg.DB.LogLevel,
			Logger:             l,
		})
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.DB.Driver, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, sqlDB.Close)
		if err := sqlDB.PingContext(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("ping %s: %w", cfg.DB.Driver, err)
		}
		l.Info("database connected", zap.String("driver", cfg.DB.Driver))

		if cfg.DB.AutoMigrate {
			if err := db.WithContext(ctx).AutoMigrate(&domain.Listing{}); err != nil {
				s.Close()
				return nil, fmt.Errorf("automigrate: %w", err)
			}
			l.Info("automigrate done")
		}
		base = repo.NewListingRepo(db)
	}

	s.Listings = base
	if cfg.Redis.Addr != "" {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := c.Ping(pingCtx)
		cancel()
		if err != nil {
			l.Warn("redis unreachable, read cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = c.Close()
		} else {
			s.closers = append(s.closers, c.Close)
			s.Listings = repo.WithCache(base, c, time.Duration(cfg.Redis.TTLSec)*time.Second, l.Named("cache"))
			l.Info("read cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Int("ttl_sec", cfg.Redis.TTLSec))
		}
	}
	return s, nil
}

// RateProvider builds the provider chosen by rates.policy.
func RateProvider(cfg *config.Config, l *zap.Logger) (rates.Provider, error) {
	fixed, err := cfg.Rates.FixedRate()
	if err != nil {
		return nil, err
	}
	p, err := rates.New(rates.Options{
		Policy:    cfg.Rates.Policy,
		Fixed:     fixed,
		URL:       cfg.Rates.URL,
		AccessKey: cfg.Rates.AccessKey,
		TimeoutMs: cfg.Rates.TimeoutMs,
	}, l.Named("rates"))
	if err != nil {
		return nil, err
	}
	l.Info("rate policy", zap.String("policy", cfg.Rates.Policy), zap.String("fixed", fixed.String()))
	return p, nil
}
