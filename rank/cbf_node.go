package rank

import (
	"context"
	"sort"
	"strconv"

	"github.com/rushteam/trailrank/core"
	"github.com/rushteam/trailrank/feedback"
	"github.com/rushteam/trailrank/model"
	"github.com/rushteam/trailrank/pipeline"
	"github.com/rushteam/trailrank/pkg/utils"
)

// CBFNode 用 RankModel 对候选打分，再乘以反馈惩罚得到最终分。
//   - 打分使用 rctx.Preference（已按反馈调整的画像）
//   - 写入 item.Score、item.Breakdown 与 rank_model / feedback_penalty Label
//   - 按最终分降序排序，同分按物品 ID 升序，结果可复现
type CBFNode struct {
	Model   model.RankModel
	Learner *feedback.Learner
}

func (n *CBFNode) Name() string        { return "rank.cbf" }
func (n *CBFNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *CBFNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Model == nil || len(items) == 0 {
		return items, nil
	}
	learner := n.Learner
	if learner == nil {
		learner = feedback.NewLearner()
	}
	var pref *core.PreferenceVector
	if rctx != nil {
		pref = rctx.Preference
	}

	out := items[:0]
	for _, it := range items {
		if it == nil {
			continue
		}
		base, bd := n.Model.Score(pref, it.Vector)

		count := rctx.FeedbackCount(it.ID)
		multiplier := learner.PenaltyForCount(count)
		bd.BaseScore = base
		bd.PenaltyMultiplier = multiplier
		bd.FinalScore = base * multiplier
		if multiplier < 1 {
			bd.FeedbackCount = count
			it.PutLabel("feedback_penalty", utils.Label{
				Value:  strconv.FormatFloat(multiplier, 'g', -1, 64),
				Source: "rank",
			})
		}

		it.Score = bd.FinalScore
		it.Breakdown = &bd
		it.PutLabel("rank_model", utils.Label{Value: n.Model.Name(), Source: "rank"})
		out = append(out, it)
	}

	SortByScore(out)
	return out, nil
}

// SortByScore 按 Score 降序稳定排序，同分按物品 ID 升序。
func SortByScore(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return core.LessID(items[i].ID, items[j].ID)
	})
}
