package feature

import (
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/rushteam/trailrank/core"
)

// VectorCache 是 ItemVector 的内存缓存，按物品 ID 索引，超出容量时淘汰最久未访问的条目。
// 条目带有原始字段的指纹，物品数据变化后旧向量自动失效。
type VectorCache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	maxSize    int
	defaultTTL time.Duration
	now        func() time.Time

	stopCleanup chan struct{}
	closeOnce   sync.Once
}

type cacheEntry struct {
	fingerprint uint64
	vector      core.ItemVector
	missing     []string
	expireTime  time.Time
	accessTime  time.Time
}

// NewVectorCache 创建缓存。maxSize <= 0 表示不限容量，ttl <= 0 表示不过期。
// 调用方负责 Close 以停止后台清理协程。
func NewVectorCache(maxSize int, ttl time.Duration) *VectorCache {
	c := &VectorCache{
		entries:     make(map[string]*cacheEntry),
		maxSize:     maxSize,
		defaultTTL:  ttl,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	if ttl > 0 {
		go c.cleanup(ttl)
	}
	return c
}

func (c *VectorCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *VectorCache) cleanExpired() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, id)
		}
	}
}

func (c *VectorCache) expired(e *cacheEntry, now time.Time) bool {
	return !e.expireTime.IsZero() && now.After(e.expireTime)
}

// Get 返回 raw 对应的缓存向量；未命中、过期或指纹不一致时返回 false。
func (c *VectorCache) Get(raw *core.RawItem) (core.ItemVector, bool) {
	v, _, ok := c.lookup(raw)
	return v, ok
}

// lookup 同 Get，另外返回抽取时记录的缺失字段。
func (c *VectorCache) lookup(raw *core.RawItem) (core.ItemVector, []string, bool) {
	if raw == nil {
		return core.ItemVector{}, nil, false
	}
	fp := fingerprint(raw)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[raw.ID]
	if !ok || e.fingerprint != fp || c.expired(e, now) {
		return core.ItemVector{}, nil, false
	}
	e.accessTime = now
	return cloneVector(e.vector), e.missing, true
}

// Set 写入 raw 对应的向量。
func (c *VectorCache) Set(raw *core.RawItem, v core.ItemVector) {
	c.put(raw, v, nil)
}

func (c *VectorCache) put(raw *core.RawItem, v core.ItemVector, missing []string) {
	if raw == nil {
		return
	}
	now := c.now()
	e := &cacheEntry{
		fingerprint: fingerprint(raw),
		vector:      cloneVector(v),
		missing:     append([]string(nil), missing...),
		accessTime:  now,
	}
	if c.defaultTTL > 0 {
		e.expireTime = now.Add(c.defaultTTL)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[raw.ID]; !exists && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictLRU()
	}
	c.entries[raw.ID] = e
}

func (c *VectorCache) evictLRU() {
	var oldestKey string
	var oldestTime time.Time
	first := true
	for key, e := range c.entries {
		if first || e.accessTime.Before(oldestTime) {
			oldestKey, oldestTime = key, e.accessTime
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

func (c *VectorCache) Invalidate(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, itemID)
}

func (c *VectorCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close 停止后台清理，可重复调用。
func (c *VectorCache) Close() {
	c.closeOnce.Do(func() { close(c.stopCleanup) })
}

func fingerprint(raw *core.RawItem) uint64 {
	d := xxhash.New()
	if raw.Difficulty != nil {
		_, _ = d.WriteString(strconv.Itoa(*raw.Difficulty))
	}
	_, _ = d.WriteString("|")
	if raw.LengthMeters != nil {
		_, _ = d.WriteString(strconv.FormatFloat(*raw.LengthMeters, 'g', -1, 64))
	}
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(raw.TagsJSON)
	return d.Sum64()
}

func cloneVector(v core.ItemVector) core.ItemVector {
	v.Tags = append([]string{}, v.Tags...)
	return v
}
