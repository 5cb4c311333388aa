package core

import "github.com/rushteam/trailrank/pkg/utils"

// Mode 是一次排序请求实际走的模式。
type Mode string

const (
	ModeColdStart    Mode = "COLD_START"
	ModePersonalized Mode = "PERSONALIZED"
)

// RecommendContext 承载一次请求的主体、过滤条件与计算中间态，贯穿整个 Pipeline 透传。
// 它只属于一次调用，不跨请求共享。
type RecommendContext struct {
	SubjectID string
	Category  string

	// CategoryNames 是 Category 映射出的物品分类名；为空表示不过滤
	CategoryNames []string

	Limit int
	Mode  Mode

	// BasePreference 是存储中的原始画像，只读
	BasePreference *PreferenceVector

	// Preference 是根据反馈调整后的画像拷贝，打分使用它
	Preference *PreferenceVector

	Feedback []FeedbackEntry

	// FeedbackCounts 是物品 ID -> 反馈条数（不区分原因）
	FeedbackCounts map[string]int

	// Vectors 是本次候选集所有物品的特征向量
	Vectors map[string]ItemVector

	// Labels 是请求级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级参数，暴露给表达式过滤器（rctx.params.xxx）
	Params map[string]any
}

// FeedbackCount 返回物品的反馈条数。
func (rctx *RecommendContext) FeedbackCount(itemID string) int {
	if rctx == nil || rctx.FeedbackCounts == nil {
		return 0
	}
	return rctx.FeedbackCounts[itemID]
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
