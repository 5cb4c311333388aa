package filter

import (
	"context"

	"github.com/rushteam/trailrank/core"
	"github.com/rushteam/trailrank/feedback"
)

// FeedbackExclusionFilter 移除反馈条数达到排除阈值的物品（默认 4 条）。
// 条数取自 rctx.FeedbackCounts，不区分原因也不考虑新近度。
type FeedbackExclusionFilter struct {
	Learner *feedback.Learner
}

func NewFeedbackExclusionFilter(l *feedback.Learner) *FeedbackExclusionFilter {
	if l == nil {
		l = feedback.NewLearner()
	}
	return &FeedbackExclusionFilter{Learner: l}
}

func (f *FeedbackExclusionFilter) Name() string {
	return "filter.feedback"
}

func (f *FeedbackExclusionFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	return f.Learner.Excluded(rctx.FeedbackCount(item.ID)), nil
}
