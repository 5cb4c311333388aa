// Package trailrank 是一个基于内容的路线推荐引擎。
//
// 设计要点：
// - Pipeline-first: 过滤、打分、截断都是 Node，通过 Pipeline 串联（Filter → Rank → ReRank）
// - Labels-first: 每个 Node 写入的 labels 随物品透传，用于解释与观测
// - Feedback-aware: 负反馈调整本次请求的偏好画像，并按条数惩罚或排除物品
// - 冷启动: 没有可用画像时从候选集中均匀抽样
package trailrank

import (
	"github.com/rushteam/trailrank/pipeline"
	"github.com/rushteam/trailrank/ranker"
)

// 轻量 facade：便于直接 import "trailrank" 使用核心抽象。
type (
	Pipeline = pipeline.Pipeline
	Node     = pipeline.Node
	Kind     = pipeline.Kind

	Ranker  = ranker.Ranker
	Request = ranker.Request
	Result  = ranker.Result
)

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)

// NewRanker 等价于 ranker.New。
var NewRanker = ranker.New
