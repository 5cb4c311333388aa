package feature

import (
	"github.com/rushteam/trailrank/core"
)

const (
	minDifficulty = 0
	maxDifficulty = 3
)

// Extractor 把原始物品记录转换为 ItemVector。
//
// 规则：
//   - 缺失难度按 0 处理，越界值收敛到 [0, 3]
//   - 缺失或非正长度按 0 km 处理，米转换为千米
//   - 标签载荷交给 ParseTags，损坏时为空集合
//
// Extract 是纯函数，同样输入得到同样输出，因此结果可以安全地缓存。
type Extractor struct {
	cache   *VectorCache
	monitor Monitor
}

// ExtractorOption 配置 Extractor。
type ExtractorOption func(*Extractor)

// WithVectorCache 让 ExtractAll 复用缓存中的向量。
func WithVectorCache(c *VectorCache) ExtractorOption {
	return func(e *Extractor) { e.cache = c }
}

// WithMonitor 上报缺失或损坏的字段。
func WithMonitor(m Monitor) ExtractorOption {
	return func(e *Extractor) { e.monitor = m }
}

// NewExtractor 创建特征抽取器。
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) Name() string { return "feature.route" }

// Extract 抽取单个物品的特征向量。
func (e *Extractor) Extract(raw *core.RawItem) core.ItemVector {
	v, missing := extract(raw)
	e.observe(missing)
	return v
}

// extract 返回向量以及缺失或被修正的字段。
func extract(raw *core.RawItem) (core.ItemVector, []string) {
	if raw == nil {
		return core.ItemVector{Tags: []string{}}, nil
	}
	var missing []string
	tags, ok := parseTags(raw.TagsJSON)
	if !ok {
		missing = append(missing, FieldTags)
	}
	v := core.ItemVector{Tags: tags}
	if raw.Difficulty != nil {
		v.Difficulty = clampInt(*raw.Difficulty, minDifficulty, maxDifficulty)
		if v.Difficulty != *raw.Difficulty {
			missing = append(missing, FieldDifficulty)
		}
	} else {
		missing = append(missing, FieldDifficulty)
	}
	if raw.LengthMeters != nil && *raw.LengthMeters > 0 {
		v.LengthKm = *raw.LengthMeters / 1000
	} else {
		missing = append(missing, FieldLength)
	}
	return v, missing
}

func (e *Extractor) observe(fields []string) {
	if e.monitor == nil {
		return
	}
	for _, f := range fields {
		e.monitor.ObserveMissingFeature(f)
	}
}

// ExtractAll 抽取一批物品的特征向量，按物品 ID 索引。
// 命中缓存时按缓存中记录的缺失字段重新上报，监控计数与不开缓存时一致。
func (e *Extractor) ExtractAll(items []*core.RawItem) map[string]core.ItemVector {
	out := make(map[string]core.ItemVector, len(items))
	for _, raw := range items {
		if raw == nil {
			continue
		}
		if e.cache != nil {
			if v, missing, ok := e.cache.lookup(raw); ok {
				e.observe(missing)
				out[raw.ID] = v
				continue
			}
		}
		v, missing := extract(raw)
		e.observe(missing)
		if e.cache != nil {
			e.cache.put(raw, v, missing)
		}
		out[raw.ID] = v
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
