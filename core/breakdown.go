package core

// ComponentScore 是单个相似度分量的原始值、权重与加权值。
type ComponentScore struct {
	Score         float64 `json:"score"`
	Weight        float64 `json:"weight"`
	WeightedScore float64 `json:"weighted_score"`
}

type DifficultyBreakdown struct {
	ComponentScore
	UserRange []float64 `json:"user_range"`
	ItemValue int       `json:"item_value"`
}

type DistanceBreakdown struct {
	ComponentScore
	UserRange [2]float64 `json:"user_range"` // [min_km, max_km]
	ItemValue float64    `json:"item_value"`
}

type TagsBreakdown struct {
	ComponentScore
	UserTags []string `json:"user_tags"`
	ItemTags []string `json:"item_tags"`
}

// ScoreBreakdown 解释一个物品的最终得分是如何得到的。
// FeedbackCount 仅在物品被惩罚时出现。
type ScoreBreakdown struct {
	Difficulty        DifficultyBreakdown `json:"difficulty"`
	Distance          DistanceBreakdown   `json:"distance"`
	Tags              TagsBreakdown       `json:"tags"`
	BaseScore         float64             `json:"base_score"`
	PenaltyMultiplier float64             `json:"feedback_penalty"`
	FinalScore        float64             `json:"final_score"`
	FeedbackCount     int                 `json:"feedback_count,omitempty"`
}
