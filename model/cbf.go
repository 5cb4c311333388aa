package model

import (
	"fmt"
	"math"

	"github.com/rushteam/trailrank/core"
)

// Weights 是三个分量的聚合权重，必须非负且和为 1。
type Weights struct {
	Difficulty float64 `json:"difficulty" yaml:"difficulty" koanf:"difficulty"`
	Distance   float64 `json:"distance" yaml:"distance" koanf:"distance"`
	Tags       float64 `json:"tags" yaml:"tags" koanf:"tags"`
}

// DefaultWeights 难度 0.4、距离 0.3、标签 0.3。
func DefaultWeights() Weights {
	return Weights{Difficulty: 0.4, Distance: 0.3, Tags: 0.3}
}

const weightsEpsilon = 1e-9

func (w Weights) Validate() error {
	if w.Difficulty < 0 || w.Distance < 0 || w.Tags < 0 {
		return fmt.Errorf("model: weights must be non-negative, got %+v", w)
	}
	if sum := w.Difficulty + w.Distance + w.Tags; math.Abs(sum-1) > weightsEpsilon {
		return fmt.Errorf("model: weights must sum to 1, got %.6f", sum)
	}
	return nil
}

// CBFModel 是基于内容的相似度模型：三个分量的加权和。
type CBFModel struct {
	Weights Weights
}

// NewCBFModel 创建模型，权重不合法时返回错误。
func NewCBFModel(w Weights) (*CBFModel, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &CBFModel{Weights: w}, nil
}

func (m *CBFModel) Name() string { return "cbf" }

// Score 返回 [0,1] 的相似度以及逐分量解释。pref 为 nil 时按默认画像处理。
// 返回的 breakdown 中惩罚相关字段为中性值（乘数 1.0，final = base），由排序节点补全。
func (m *CBFModel) Score(pref *core.PreferenceVector, vec core.ItemVector) (float64, core.ScoreBreakdown) {
	if pref == nil {
		pref = &core.PreferenceVector{
			DifficultyRange: append([]float64(nil), core.DefaultDifficultyRange...),
			MinDistanceKm:   core.DefaultMinDistanceKm,
			MaxDistanceKm:   core.DefaultMaxDistanceKm,
		}
	}
	w := m.Weights

	diff := DifficultyScore(pref.DifficultyRange, vec.Difficulty)
	dist := DistanceScore(pref.MinDistanceKm, pref.MaxDistanceKm, vec.LengthKm)
	tags := TagScore(pref.PreferredTags, vec.Tags)

	var bd core.ScoreBreakdown
	bd.Difficulty = core.DifficultyBreakdown{
		ComponentScore: component(diff, w.Difficulty),
		UserRange:      append([]float64(nil), pref.DifficultyRange...),
		ItemValue:      vec.Difficulty,
	}
	bd.Distance = core.DistanceBreakdown{
		ComponentScore: component(dist, w.Distance),
		UserRange:      [2]float64{pref.MinDistanceKm, pref.MaxDistanceKm},
		ItemValue:      vec.LengthKm,
	}
	bd.Tags = core.TagsBreakdown{
		ComponentScore: component(tags, w.Tags),
		UserTags:       append([]string{}, pref.PreferredTags...),
		ItemTags:       append([]string{}, vec.Tags...),
	}

	total := unit(bd.Difficulty.WeightedScore + bd.Distance.WeightedScore + bd.Tags.WeightedScore)
	bd.BaseScore = total
	bd.PenaltyMultiplier = 1.0
	bd.FinalScore = total
	return total, bd
}

func component(score, weight float64) core.ComponentScore {
	return core.ComponentScore{Score: score, Weight: weight, WeightedScore: score * weight}
}
