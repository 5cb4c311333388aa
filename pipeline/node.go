package pipeline

import (
	"context"

	"github.com/rushteam/trailrank/core"
)

// Kind 用于标记 Node 所属阶段，方便观测与编排。
type Kind string

const (
	KindRecall      Kind = "recall"      // 召回：生成候选集
	KindFilter      Kind = "filter"      // 过滤：剔除不符合约束的候选
	KindRank        Kind = "rank"        // 排序：打分并排序
	KindReRank      Kind = "rerank"      // 重排：截断、打散等
	KindPostProcess Kind = "postprocess" // 后处理
)

// Node 是 Pipeline 的最小可扩展单元，统一采用“输入 items -> 输出 items”的形态。
// Node 不得跨请求保存状态；请求级数据都放在 rctx 中。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}

// NodeBuilder 根据配置构建 Node。
type NodeBuilder func(config map[string]any) (Node, error)
