package storefront

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/storage"
)

// OpenStorage picks the local storage driver named by cfg.StorageDriver.
// The returned close func releases any connection it opened.
func OpenStorage(ctx context.Context, cfg config.Config) (storage.Storage, func(), error) {
	noop := func() {}
	switch cfg.StorageDriver {
	case "memory":
		return storage.NewMemory(), noop, nil
	case "file", "":
		f, err := storage.NewFile(cfg.StorageDir)
		if err != nil {
			return nil, noop, err
		}
		return f, noop, nil
	case "redis":
		rdb := redisx.New(cfg.RedisAddr)
		if err := redisx.Ping(ctx, rdb); err != nil {
			_ = rdb.Close()
			return nil, noop, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		return &storage.Redis{Client: rdb, Namespace: cfg.ServiceName}, func() { _ = rdb.Close() }, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("postgres: %w", err)
		}
		pg, err := storage.NewPostgres(ctx, db, cfg.ServiceName)
		if err != nil {
			db.Close()
			return nil, noop, err
		}
		return pg, db.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
