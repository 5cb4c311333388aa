package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/trailrank/core"
)

// Pipeline 把一次排序拆成可组合的 Node 链：过滤 -> 打分排序 -> 截断。
type Pipeline struct {
	Name  string
	Nodes []Node
}

// Run 依次执行所有 Node。任一 Node 出错立即返回，错误带上 Node 名称。
// 每个 Node 之前都会检查 ctx，调用方取消后不再继续计算。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// NodeNames 返回所有 Node 的名称，用于日志。
func (p *Pipeline) NodeNames() []string {
	names := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		names = append(names, n.Name())
	}
	return names
}
