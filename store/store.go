// Package store 提供 core.Store / core.KeyValueStore 的实现：
//
//	var kv core.KeyValueStore = store.NewMemoryStore()
//	kv, err := store.NewRedisStore(store.RedisOptions{Addr: "localhost:6379"})
//	kv = store.NewBreakerStore(kv, store.BreakerOptions{})
//
// 接口定义在 core 包，本包只包含实现。
package store

import "github.com/rushteam/trailrank/core"

// ErrNotFound 是 core.ErrStoreNotFound 的别名，方便实现内部使用。
var ErrNotFound = core.ErrStoreNotFound

// normalizeRange 把 Redis 风格的 [start, stop]（支持负数下标）换算为切片下标 [lo, hi)。
func normalizeRange(start, stop int64, n int) (int, int, bool) {
	size := int64(n)
	if start < 0 {
		start += size
	}
	if stop < 0 {
		stop += size
	}
	if start < 0 {
		start = 0
	}
	if stop >= size {
		stop = size - 1
	}
	if size == 0 || start > stop {
		return 0, 0, false
	}
	return int(start), int(stop) + 1, true
}
