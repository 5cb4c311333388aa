package filter

import (
	"context"
	"strconv"

	"github.com/rushteam/trailrank/core"
	"github.com/rushteam/trailrank/pipeline"
	"github.com/rushteam/trailrank/pkg/utils"
)

// LabelPrefix 是请求级过滤统计 Label 的 key 前缀，完整 key 为 LabelPrefix + 过滤器名。
const LabelPrefix = "filtered:"

// FilterNode 组合多个过滤器，任何一个返回 true 物品就会被移除。
// 被移除的物品打上 filtered Label；每个过滤器移除的数量写入请求级 Label。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	dropped := make(map[string]int, len(n.Filters))

	for _, item := range items {
		if item == nil {
			continue
		}

		reason := ""
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				// 单个过滤器出错时保留物品，只记录原因
				item.PutLabel("filter_error", utils.Label{Value: err.Error(), Source: f.Name()})
				continue
			}
			if ok {
				reason = f.Name()
				break
			}
		}

		if reason != "" {
			dropped[reason]++
			item.PutLabel("filtered", utils.Label{Value: "true", Source: reason})
			continue
		}
		out = append(out, item)
	}

	if rctx != nil {
		for name, cnt := range dropped {
			rctx.PutLabel(LabelPrefix+name, utils.Label{Value: strconv.Itoa(cnt), Source: n.Name()})
		}
	}
	return out, nil
}

// DroppedBy 读取某个过滤器在本次请求中移除的物品数。
func DroppedBy(rctx *core.RecommendContext, filterName string) int {
	if rctx == nil {
		return 0
	}
	lbl, ok := rctx.GetLabel(LabelPrefix + filterName)
	if !ok {
		return 0
	}
	n, _ := strconv.Atoi(lbl.Value)
	return n
}
