package core

import (
	"strconv"

	"github.com/rushteam/trailrank/pkg/utils"
)

// RawItem 是外部目录中的原始物品记录（路线）。
// Difficulty / LengthMeters 可能缺失，TagsJSON 可能是任意（甚至损坏的）字符串。
type RawItem struct {
	ID           string         `json:"id"`
	Title        string         `json:"title,omitempty"`
	CategoryName string         `json:"category_name,omitempty"`
	Difficulty   *int           `json:"difficulty,omitempty"`
	LengthMeters *float64       `json:"length_meters,omitempty"`
	TagsJSON     string         `json:"tags_json,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// ItemVector 是从 RawItem 抽取出的不可变特征向量。
type ItemVector struct {
	Difficulty int      `json:"difficulty"` // 0..3
	LengthKm   float64  `json:"length_km"`  // >= 0
	Tags       []string `json:"tags"`       // 小写、去重、保持输入顺序
}

// Item 是推荐链路中的统一承载结构：原始记录、特征向量、分数、解释与标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Item struct {
	ID        string
	Raw       *RawItem
	Vector    ItemVector
	Score     float64
	Breakdown *ScoreBreakdown
	Labels    map[string]utils.Label
}

func NewItem(raw *RawItem) *Item {
	it := &Item{Raw: raw, Labels: make(map[string]utils.Label)}
	if raw != nil {
		it.ID = raw.ID
	}
	return it
}

// Category 返回物品的分类名（原始记录缺失时为空）。
func (it *Item) Category() string {
	if it == nil || it.Raw == nil {
		return ""
	}
	return it.Raw.CategoryName
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// LessID 比较两个物品 ID：都是整数时按数值比较，整数排在非整数之前，其余按字典序。
// 排序同分时用它作为确定性的次序键。
func LessID(a, b string) bool {
	ai, errA := strconv.ParseInt(a, 10, 64)
	bi, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return ai < bi
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
