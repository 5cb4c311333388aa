// Package builders 在 init 中把内置 Node 注册到 config 注册表，供 YAML/JSON 配置驱动。
package builders

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rushteam/trailrank/config"
	"github.com/rushteam/trailrank/feedback"
	"github.com/rushteam/trailrank/filter"
	"github.com/rushteam/trailrank/model"
	"github.com/rushteam/trailrank/pipeline"
	"github.com/rushteam/trailrank/pkg/conv"
	"github.com/rushteam/trailrank/rank"
	"github.com/rushteam/trailrank/rerank"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("filter.category", BuildCategoryFilterNode)
	config.Register("filter.feedback", BuildFeedbackFilterNode)
	config.Register("filter.expr", BuildExprFilterNode)
	config.Register("rank.cbf", BuildCBFNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.shuffle", BuildShuffleNode)
}

// BuildFilterNode 组合多个过滤器：
//
//	filters:
//	  - type: category
//	  - type: feedback
//	    exclusion_threshold: 4
//	  - type: expr
//	    expr: 'item.length_km <= 30.0'
func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		f, err := buildFilter(conv.ConfigGet(filterMap, "type", ""), filterMap)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func buildFilter(filterType string, cfg map[string]any) (filter.Filter, error) {
	switch filterType {
	case "category":
		return filter.NewCategoryFilter(), nil
	case "feedback":
		l, err := learnerFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		return filter.NewFeedbackExclusionFilter(l), nil
	case "expr":
		return filter.NewExprFilter(conv.ConfigGet(cfg, "expr", ""))
	default:
		return nil, fmt.Errorf("unknown filter type: %s", filterType)
	}
}

func BuildCategoryFilterNode(cfg map[string]any) (pipeline.Node, error) {
	return single(buildFilter("category", cfg))
}

func BuildFeedbackFilterNode(cfg map[string]any) (pipeline.Node, error) {
	return single(buildFilter("feedback", cfg))
}

func BuildExprFilterNode(cfg map[string]any) (pipeline.Node, error) {
	return single(buildFilter("expr", cfg))
}

func single(f filter.Filter, err error) (pipeline.Node, error) {
	if err != nil {
		return nil, err
	}
	return &filter.FilterNode{Filters: []filter.Filter{f}}, nil
}

// BuildCBFNode 读取 weights（缺省 0.4/0.3/0.3）与反馈惩罚参数。
func BuildCBFNode(cfg map[string]any) (pipeline.Node, error) {
	w := model.DefaultWeights()
	if wm, ok := cfg["weights"].(map[string]any); ok {
		w = model.Weights{
			Difficulty: conv.ConfigGetFloat64(wm, "difficulty", 0),
			Distance:   conv.ConfigGetFloat64(wm, "distance", 0),
			Tags:       conv.ConfigGetFloat64(wm, "tags", 0),
		}
	}
	m, err := model.NewCBFModel(w)
	if err != nil {
		return nil, err
	}
	l, err := learnerFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &rank.CBFNode{Model: m, Learner: l}, nil
}

// BuildTopNNode n 缺省为 0，表示使用请求的 limit。
func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", 0)
	if n < 0 {
		return nil, fmt.Errorf("rerank.topn: n must be >= 0, got %d", n)
	}
	return &rerank.TopNNode{N: int(n)}, nil
}

// BuildShuffleNode seed 非 0 时结果可复现。
func BuildShuffleNode(cfg map[string]any) (pipeline.Node, error) {
	seed := conv.ConfigGetInt64(cfg, "seed", 0)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rerank.NewShuffleNode(rand.New(rand.NewSource(seed))), nil
}

func learnerFromConfig(cfg map[string]any) (*feedback.Learner, error) {
	halfLife, err := conv.ConfigGetDuration(cfg, "half_life", feedback.DefaultHalfLife)
	if err != nil {
		return nil, err
	}
	opts := []feedback.Option{
		feedback.WithHalfLife(halfLife),
		feedback.WithExclusionThreshold(int(conv.ConfigGetInt64(cfg, "exclusion_threshold", feedback.DefaultExclusionThreshold))),
	}
	if raw, ok := cfg["penalties"].([]any); ok {
		penalties := make([]float64, 0, len(raw))
		for _, v := range raw {
			f, ok := conv.ToFloat64(v)
			if !ok {
				return nil, fmt.Errorf("penalties: %v is not a number", v)
			}
			penalties = append(penalties, f)
		}
		if err := feedback.ValidatePenalties(penalties); err != nil {
			return nil, err
		}
		opts = append(opts, feedback.WithPenalties(penalties))
	}
	return feedback.NewLearner(opts...), nil
}
