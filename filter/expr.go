package filter

import (
	"context"

	"github.com/rushteam/trailrank/core"
	"github.com/rushteam/trailrank/pkg/dsl"
)

// ExprFilter 只保留满足 CEL 表达式的物品，例如：
//
//	item.length_km <= 30.0 && !("closed" in item.tags)
type ExprFilter struct {
	program *dsl.Program
}

// NewExprFilter 编译表达式，语法错误时返回错误。
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{program: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	keep, err := f.program.Eval(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
