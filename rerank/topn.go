package rerank

import (
	"context"

	"github.com/rushteam/trailrank/core"
	"github.com/rushteam/trailrank/pipeline"
)

// TopNNode 在排序后截取前 N 个物品。
//
// N <= 0 时使用请求的 rctx.Limit；两者都未设置时不截断。
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.CBFNode{...},     // 排序
//	        &rerank.TopNNode{},     // 截取 Top Limit
//	    },
//	}
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.Limit
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
