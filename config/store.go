package config

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rushteam/trailrank/core"
	"github.com/rushteam/trailrank/store"
)

// OpenStore 按 Driver 创建 KeyValueStore；启用熔断时包一层 BreakerStore。
// onStateChange 可为 nil。
func OpenStore(ctx context.Context, c StoreConfig, logger zerolog.Logger, onStateChange func(name, from, to string)) (core.KeyValueStore, error) {
	var kv core.KeyValueStore
	switch c.Driver {
	case DriverMemory, "":
		kv = store.NewMemoryStore()
	case DriverRedis:
		rs, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:         c.Redis.Addr,
			Password:     c.Redis.Password,
			DB:           c.Redis.DB,
			DialTimeout:  c.Redis.DialTimeout,
			ReadTimeout:  c.Redis.ReadTimeout,
			WriteTimeout: c.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, err
		}
		kv = rs
	default:
		return nil, core.NewDomainError(core.ModuleConfig, core.ErrorCodeNotSupported, fmt.Sprintf("store driver %q", c.Driver))
	}

	if !c.Breaker.Enabled {
		return kv, nil
	}
	return store.NewBreakerStore(kv, store.BreakerOptions{
		Name:             kv.Name(),
		MaxRequests:      c.Breaker.MaxRequests,
		Interval:         c.Breaker.Interval,
		Timeout:          c.Breaker.Timeout,
		FailureThreshold: c.Breaker.FailureThreshold,
		Logger:           &logger,
		OnStateChange:    onStateChange,
	}), nil
}
