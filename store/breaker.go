package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/rushteam/trailrank/core"
)

// BreakerOptions 配置熔断参数，零值字段使用默认值。
type BreakerOptions struct {
	Name string

	// MaxRequests 半开状态允许通过的请求数
	MaxRequests uint32

	// Interval 关闭状态下计数清零的周期
	Interval time.Duration

	// Timeout 打开状态持续多久后进入半开
	Timeout time.Duration

	// FailureThreshold 连续失败多少次后打开
	FailureThreshold uint32

	Logger *zerolog.Logger

	// OnStateChange 状态变化回调（例如上报指标）
	OnStateChange func(name, from, to string)
}

func (o *BreakerOptions) withDefaults() {
	if o.Name == "" {
		o.Name = "store"
	}
	if o.MaxRequests == 0 {
		o.MaxRequests = 3
	}
	if o.Interval == 0 {
		o.Interval = time.Minute
	}
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	if o.FailureThreshold == 0 {
		o.FailureThreshold = 5
	}
}

// BreakerStore 给任意 KeyValueStore 套上熔断：后端连续失败后快速失败，
// 避免每个请求都等满超时。key 不存在与 ctx 取消不计为失败。
type BreakerStore struct {
	inner core.KeyValueStore
	cb    *gobreaker.CircuitBreaker[any]
}

func NewBreakerStore(inner core.KeyValueStore, opts BreakerOptions) *BreakerStore {
	opts.withDefaults()
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "store.breaker").Str("backend", inner.Name()).Logger()
	}
	threshold := opts.FailureThreshold
	onChange := opts.OnStateChange

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: opts.MaxRequests,
		Interval:    opts.Interval,
		Timeout:     opts.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				core.IsStoreNotFound(err) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			if onChange != nil {
				onChange(name, from.String(), to.String())
			}
		},
	})
	return &BreakerStore{inner: inner, cb: cb}
}

// State 返回当前熔断状态（closed / half-open / open）。
func (b *BreakerStore) State() string { return b.cb.State().String() }

func (b *BreakerStore) Name() string { return b.inner.Name() }

func execute[T any](b *BreakerStore, fn func() (T, error)) (T, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, core.ErrStoreUnavailable.Wrap(err)
		}
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

func run(b *BreakerStore, fn func() error) error {
	_, err := execute(b, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

func (b *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	return execute(b, func() ([]byte, error) { return b.inner.Get(ctx, key) })
}

func (b *BreakerStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	return run(b, func() error { return b.inner.Set(ctx, key, value, ttl...) })
}

func (b *BreakerStore) Delete(ctx context.Context, key string) error {
	return run(b, func() error { return b.inner.Delete(ctx, key) })
}

func (b *BreakerStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	return execute(b, func() (map[string][]byte, error) { return b.inner.BatchGet(ctx, keys) })
}

func (b *BreakerStore) BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error {
	return run(b, func() error { return b.inner.BatchSet(ctx, kvs, ttl...) })
}

func (b *BreakerStore) HGet(ctx context.Context, key, field string) ([]byte, error) {
	return execute(b, func() ([]byte, error) { return b.inner.HGet(ctx, key, field) })
}

func (b *BreakerStore) HSet(ctx context.Context, key, field string, value []byte) error {
	return run(b, func() error { return b.inner.HSet(ctx, key, field, value) })
}

func (b *BreakerStore) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	return execute(b, func() (map[string][]byte, error) { return b.inner.HGetAll(ctx, key) })
}

func (b *BreakerStore) RPush(ctx context.Context, key string, values ...[]byte) error {
	return run(b, func() error { return b.inner.RPush(ctx, key, values...) })
}

func (b *BreakerStore) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	return execute(b, func() ([][]byte, error) { return b.inner.LRange(ctx, key, start, stop) })
}

func (b *BreakerStore) Close() error { return b.inner.Close() }

var _ core.KeyValueStore = (*BreakerStore)(nil)
