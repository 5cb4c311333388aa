// Package feedback 把主体的负反馈转化为两种效果：
// 调整偏好画像（只作用于本次请求的拷贝），以及按物品的惩罚/排除。
package feedback

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rushteam/trailrank/core"
)

const (
	// DefaultHalfLife 是反馈新近度衰减的时间常数
	DefaultHalfLife = 30 * 24 * time.Hour

	// DefaultExclusionThreshold 反馈条数达到该值的物品被排除
	DefaultExclusionThreshold = 4

	maxDifficulty = 3.0

	difficultyStep   = 0.5 // 每条 too-hard / too-easy 平移的难度量
	distanceShrink   = 0.1 // 每条 too-far 收缩 max 的比例
	minDistanceWidth = 2.0 // too-far 之后 max 至少为 min + 2
)

// DefaultPenalties 是按反馈条数索引的惩罚乘数，末项用于更多条数。
func DefaultPenalties() []float64 {
	return []float64{1.0, 0.5, 0.1, 0.01}
}

// Learner 保存反馈学习参数，本身无状态，可并发使用。
type Learner struct {
	HalfLife           time.Duration
	Penalties          []float64
	ExclusionThreshold int
}

// Option 配置 Learner。
type Option func(*Learner)

func WithHalfLife(d time.Duration) Option {
	return func(l *Learner) {
		if d > 0 {
			l.HalfLife = d
		}
	}
}

// WithPenalties 设置惩罚表，表必须非空、首项为 1 且不递增，否则忽略。
func WithPenalties(p []float64) Option {
	return func(l *Learner) {
		if ValidatePenalties(p) == nil {
			l.Penalties = append([]float64(nil), p...)
		}
	}
}

func WithExclusionThreshold(n int) Option {
	return func(l *Learner) {
		if n > 0 {
			l.ExclusionThreshold = n
		}
	}
}

func NewLearner(opts ...Option) *Learner {
	l := &Learner{
		HalfLife:           DefaultHalfLife,
		Penalties:          DefaultPenalties(),
		ExclusionThreshold: DefaultExclusionThreshold,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ValidatePenalties 检查惩罚表：非空、首项为 1、各项非负且不递增。
func ValidatePenalties(p []float64) error {
	if len(p) == 0 || p[0] != 1 {
		return fmt.Errorf("feedback: penalty table must start with 1, got %v", p)
	}
	for i := 1; i < len(p); i++ {
		if p[i] < 0 || p[i] > p[i-1] {
			return fmt.Errorf("feedback: penalty table must be non-negative and non-increasing, got %v", p)
		}
	}
	return nil
}

// RecencyWeight 返回 exp(-days/halfLifeDays)。age <= 0 时为 1.0。
func RecencyWeight(age, halfLife time.Duration) float64 {
	if age <= 0 {
		return 1.0
	}
	if halfLife <= 0 {
		halfLife = DefaultHalfLife
	}
	return math.Exp(-age.Hours() / halfLife.Hours())
}

// Adjust 按反馈调整偏好画像，返回新的拷贝，base 与 entries 都不会被修改。
//
// 规则（w 为该条反馈的新近度权重）：
//   - too-hard：难度区间整体下移 0.5w，下限截到 0；若变成 [0, <1] 则上限补到 1
//   - too-easy：难度区间整体上移 0.5w，上限截到 3；若变成 [>2, 3] 则下限补到 2
//   - too-far：max 距离乘以 (1-0.1w)，但不低于 min+2
//   - not-interested：从偏好标签中移除该物品的全部标签
//
// vectors 中找不到的物品对应的反馈会被跳过；难度区间退化时跳过难度规则。
// 全部应用后若区间倒置则恢复原区间，若 max 距离不为正则恢复原值。
func (l *Learner) Adjust(base *core.PreferenceVector, entries []core.FeedbackEntry, vectors map[string]core.ItemVector) *core.PreferenceVector {
	if base == nil {
		return nil
	}
	adjusted := base.Clone()
	if len(entries) == 0 {
		return adjusted
	}

	for _, e := range entries {
		vec, ok := vectors[e.ItemID]
		if !ok {
			continue
		}
		w := RecencyWeight(e.Age, l.HalfLife)

		switch e.Reason {
		case core.ReasonTooHard:
			if adjusted.HasDifficultyRange() {
				lo := math.Max(0, adjusted.DifficultyRange[0]-difficultyStep*w)
				hi := math.Max(0, adjusted.DifficultyRange[1]-difficultyStep*w)
				if lo == 0 && hi < 1 {
					hi = 1
				}
				adjusted.DifficultyRange[0], adjusted.DifficultyRange[1] = lo, hi
			}
		case core.ReasonTooEasy:
			if adjusted.HasDifficultyRange() {
				lo := math.Min(maxDifficulty, adjusted.DifficultyRange[0]+difficultyStep*w)
				hi := math.Min(maxDifficulty, adjusted.DifficultyRange[1]+difficultyStep*w)
				if hi == maxDifficulty && lo > maxDifficulty-1 {
					lo = maxDifficulty - 1
				}
				adjusted.DifficultyRange[0], adjusted.DifficultyRange[1] = lo, hi
			}
		case core.ReasonTooFar:
			shrunk := adjusted.MaxDistanceKm * (1 - distanceShrink*w)
			adjusted.MaxDistanceKm = math.Max(shrunk, adjusted.MinDistanceKm+minDistanceWidth)
		case core.ReasonNotInterested:
			adjusted.PreferredTags = removeTags(adjusted.PreferredTags, vec.Tags)
		}
	}

	if adjusted.HasDifficultyRange() && adjusted.DifficultyRange[0] > adjusted.DifficultyRange[1] {
		adjusted.DifficultyRange = append([]float64(nil), base.DifficultyRange...)
	}
	if adjusted.MaxDistanceKm <= 0 {
		adjusted.MaxDistanceKm = base.MaxDistanceKm
	}
	return adjusted
}

func removeTags(tags, drop []string) []string {
	if len(tags) == 0 || len(drop) == 0 {
		return tags
	}
	dropSet := make(map[string]struct{}, len(drop))
	for _, t := range drop {
		dropSet[strings.ToLower(t)] = struct{}{}
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := dropSet[strings.ToLower(t)]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

// CountByItem 统计每个物品的反馈条数（不区分原因）。
func CountByItem(entries []core.FeedbackEntry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.ItemID]++
	}
	return counts
}

// Count 返回某物品的反馈条数。
func Count(itemID string, entries []core.FeedbackEntry) int {
	n := 0
	for _, e := range entries {
		if e.ItemID == itemID {
			n++
		}
	}
	return n
}

// PenaltyForCount 返回反馈条数对应的惩罚乘数：0→1.0、1→0.5、2→0.1、≥3→0.01。
func (l *Learner) PenaltyForCount(n int) float64 {
	p := l.Penalties
	if len(p) == 0 {
		p = DefaultPenalties()
	}
	if n <= 0 {
		return p[0]
	}
	if n >= len(p) {
		return p[len(p)-1]
	}
	return p[n]
}

// Penalty 返回物品的惩罚乘数。
func (l *Learner) Penalty(itemID string, entries []core.FeedbackEntry) float64 {
	return l.PenaltyForCount(Count(itemID, entries))
}

// Excluded 报告反馈条数为 n 的物品是否应被排除。
func (l *Learner) Excluded(n int) bool {
	threshold := l.ExclusionThreshold
	if threshold <= 0 {
		threshold = DefaultExclusionThreshold
	}
	return n >= threshold
}
