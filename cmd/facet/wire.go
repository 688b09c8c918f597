package main

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/facet"
	"github.com/aretw0/facet/internal/adapters/file"
	"github.com/aretw0/facet/internal/config"
	"github.com/aretw0/facet/internal/metrics"
	"github.com/aretw0/facet/pkg/adapters/memory"
	"github.com/aretw0/facet/pkg/adapters/redis"
	"github.com/aretw0/facet/pkg/httpsession"
	"github.com/aretw0/facet/pkg/persistence/middleware"
)

// newFacet builds a Facet from cfg.
func newFacet(cfg *config.Config, logger *slog.Logger) (*facet.Facet, error) {
	opts := []facet.Option{
		facet.WithLogger(logger),
		facet.WithLockTTL(cfg.Session.LockTTL),
		facet.WithDefaultPrefix(cfg.Session.Prefix),
		facet.WithLifecycleHooks(metrics.Hooks()),
		facet.WithCookie(
			httpsession.WithCookieName(cfg.Cookie.Name),
			httpsession.WithCookieScope(cfg.CookieScope()),
			httpsession.WithSecure(cfg.Cookie.Secure),
		),
	}

	switch cfg.Store.Driver {
	case config.DriverMemory:
		opts = append(opts, facet.WithStore(memory.NewStore()))
	case config.DriverFile:
		opts = append(opts, facet.WithStore(file.New(cfg.Store.Dir)))
	case config.DriverRedis:
		rc := cfg.Store.Redis
		store := redis.New(rc.Addr, rc.Password, rc.DB, redis.WithPrefix(rc.Prefix), redis.WithTTL(rc.TTL))
		opts = append(opts, facet.WithRedis(store))
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	key, err := cfg.EncryptionKey()
	if err != nil {
		return nil, err
	}
	if key != nil {
		opts = append(opts, facet.WithEncryption(middleware.EncryptionConfig{ActiveKey: key}))
	}

	if cfg.Cookie.CrossSubdomain {
		opts = append(opts, facet.WithCrossSubdomain())
	}

	return facet.New(opts...)
}
