package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/trailrank/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译好的物品表达式，使用 CEL (Common Expression Language) 语法。
// 编译一次，可被多个请求并发求值。
//
// 可用变量：
//   - item.id / item.title / item.category / item.difficulty / item.length_km
//   - item.tags（小写列表）/ item.score / item.feedback_count
//   - label.<key>（物品 Label 的 value）
//   - rctx.subject_id / rctx.category / rctx.mode / rctx.limit / rctx.params
//
// 示例：
//   - `item.length_km <= 30.0`
//   - `item.difficulty >= 2 && "forest" in item.tags`
//   - `rctx.mode == "PERSONALIZED" && item.feedback_count == 0`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 解析并检查表达式，空表达式恒为 true。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return &Program{}, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

func (p *Program) String() string { return p.expr }

// Eval 对单个物品求值，表达式必须返回布尔值。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if p == nil || p.prg == nil {
		return true, nil
	}
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any)
	itemIn := map[string]any{
		"id":             "",
		"title":          "",
		"category":       "",
		"difficulty":     int64(0),
		"length_km":      0.0,
		"tags":           []string{},
		"score":          0.0,
		"feedback_count": int64(0),
	}
	if item != nil {
		for k, v := range item.Labels {
			labels[k] = v.Value
		}
		tags := item.Vector.Tags
		if tags == nil {
			tags = []string{}
		}
		itemIn["id"] = item.ID
		itemIn["category"] = item.Category()
		itemIn["difficulty"] = int64(item.Vector.Difficulty)
		itemIn["length_km"] = item.Vector.LengthKm
		itemIn["tags"] = tags
		itemIn["score"] = item.Score
		itemIn["feedback_count"] = int64(rctx.FeedbackCount(item.ID))
		if item.Raw != nil {
			itemIn["title"] = item.Raw.Title
		}
	}

	rctxIn := map[string]any{
		"subject_id": "",
		"category":   "",
		"mode":       "",
		"limit":      int64(0),
		"params":     map[string]any{},
	}
	if rctx != nil {
		rctxIn["subject_id"] = rctx.SubjectID
		rctxIn["category"] = rctx.Category
		rctxIn["mode"] = string(rctx.Mode)
		rctxIn["limit"] = int64(rctx.Limit)
		if rctx.Params != nil {
			rctxIn["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item":  itemIn,
		"label": labels,
		"rctx":  rctxIn,
	}
}
