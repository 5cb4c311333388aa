package model

import "github.com/rushteam/trailrank/core"

// RankModel 是排序阶段的最小抽象：输入偏好画像与物品特征，输出 [0,1] 的相似度及其解释。
// 实现必须是纯函数，可以被多个请求并发调用。
type RankModel interface {
	Name() string
	Score(pref *core.PreferenceVector, vec core.ItemVector) (float64, core.ScoreBreakdown)
}
