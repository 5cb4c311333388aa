package filter

import (
	"context"

	"github.com/rushteam/trailrank/core"
)

// CategoryFilter 移除分类名不在 rctx.CategoryNames 中的物品。
// rctx 未指定分类时不过滤。
type CategoryFilter struct{}

func NewCategoryFilter() *CategoryFilter { return &CategoryFilter{} }

func (f *CategoryFilter) Name() string {
	return "filter.category"
}

func (f *CategoryFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if rctx == nil || len(rctx.CategoryNames) == 0 {
		return false, nil
	}
	category := item.Category()
	for _, name := range rctx.CategoryNames {
		if category == name {
			return false, nil
		}
	}
	return true, nil
}
