package model

import (
	"math"
	"strings"
)

// 难度分与距离分的衰减底数。
const (
	difficultyDecay = 0.5
	distanceDecay   = 0.7

	// 长度为 0（未知）的物品得到的距离分
	unknownDistanceScore = 0.3

	// 标签两侧都为空 / 只有一侧为空时的分数
	bothTagsEmptyScore = 0.5
	oneTagsEmptyScore  = 0.2
)

// DifficultyScore 计算难度区间匹配度。
//
// 区间不足两个边界时返回 0.5；value 落在 [min,max]（含边界）内返回 1.0；
// 否则按到较近边界的距离 d 返回 0.5^d。
func DifficultyScore(rng []float64, value int) float64 {
	if len(rng) < 2 {
		return 0.5
	}
	lo, hi := rng[0], rng[1]
	v := float64(value)
	if v >= lo && v <= hi {
		return 1.0
	}
	var d float64
	if v < lo {
		d = lo - v
	} else {
		d = v - hi
	}
	return unit(math.Pow(difficultyDecay, d))
}

// DistanceScore 计算路线长度（千米）与偏好距离带的匹配度。
//
// 长度为 0 视为未知，返回 0.3。带内返回 1.0；带外按 0.7^ratio 衰减，
// ratio 是偏离量与 maxKm 的比值。结果始终落在 [0,1]。
func DistanceScore(minKm, maxKm, valueKm float64) float64 {
	if valueKm == 0 {
		return unknownDistanceScore
	}
	if valueKm >= minKm && valueKm <= maxKm {
		return 1.0
	}
	var ratio float64
	if valueKm < minKm {
		ratio = (minKm - valueKm) / maxKm
	} else {
		ratio = (valueKm - maxKm) / maxKm
	}
	return unit(math.Pow(distanceDecay, ratio))
}

// TagScore 计算两组标签的 Jaccard 相似度（不区分大小写）。
// 只做小写化，不裁剪空白也不丢弃空串，空串本身也是一个标签。
// 两侧都为空返回 0.5，只有一侧为空返回 0.2。对称。
func TagScore(a, b []string) float64 {
	sa, sb := lowerSet(a), lowerSet(b)
	switch {
	case len(sa) == 0 && len(sb) == 0:
		return bothTagsEmptyScore
	case len(sa) == 0 || len(sb) == 0:
		return oneTagsEmptyScore
	}
	inter := 0
	for t := range sa {
		if _, ok := sb[t]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func lowerSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}

// unit 把结果收敛到 [0,1]，NaN 视为 0。
func unit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
