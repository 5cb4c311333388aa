package core

import (
	"strings"

	"github.com/goccy/go-json"
)

// 存储中缺失字段时使用的默认值。
var (
	DefaultDifficultyRange = []float64{0, 3}
)

const (
	DefaultMinDistanceKm = 0.0
	DefaultMaxDistanceKm = 100.0
)

// PreferenceVector 是主体（用户）的偏好画像。
//
// DifficultyRange 正常为 [min, max]；少于两个边界视为退化区间，
// 难度打分对退化区间返回中性分，反馈调整也会跳过难度规则。
type PreferenceVector struct {
	DifficultyRange []float64 `json:"difficulty_range"`
	MinDistanceKm   float64   `json:"min_distance_km"`
	MaxDistanceKm   float64   `json:"max_distance_km"`
	PreferredTags   []string  `json:"preferred_tags"`
}

// HasDifficultyRange 报告难度区间是否为完整的 [min, max]。
func (p *PreferenceVector) HasDifficultyRange() bool {
	return p != nil && len(p.DifficultyRange) >= 2
}

// Clone 返回深拷贝，调整逻辑只在拷贝上进行。
func (p *PreferenceVector) Clone() *PreferenceVector {
	if p == nil {
		return nil
	}
	cp := *p
	if p.DifficultyRange != nil {
		cp.DifficultyRange = append([]float64(nil), p.DifficultyRange...)
	}
	if p.PreferredTags != nil {
		cp.PreferredTags = append([]string(nil), p.PreferredTags...)
	}
	return &cp
}

// preferenceRecord 是存储格式，指针字段用于区分“缺失”和“零值”。
type preferenceRecord struct {
	DifficultyRange []float64 `json:"difficulty_range"`
	MinDistanceKm   *float64  `json:"min_distance_km"`
	MaxDistanceKm   *float64  `json:"max_distance_km"`
	PreferredTags   []string  `json:"preferred_tags"`
}

// ErrMalformedPreference 表示存储中的偏好画像无法解析
var ErrMalformedPreference = NewDomainError(ModuleRanker, ErrorCodeMalformed, "preference: malformed vector")

// DecodePreference 解析存储中的偏好画像 JSON，缺失字段使用默认值：
// difficulty_range [0,3]、min 0、max 100、tags 空。标签统一小写去重。
func DecodePreference(data []byte) (*PreferenceVector, error) {
	if len(data) == 0 {
		return nil, ErrMalformedPreference
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrMalformedPreference.Wrap(err)
	}
	if raw == nil {
		return nil, ErrMalformedPreference
	}
	var rec preferenceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, ErrMalformedPreference.Wrap(err)
	}

	p := &PreferenceVector{
		DifficultyRange: rec.DifficultyRange,
		MinDistanceKm:   DefaultMinDistanceKm,
		MaxDistanceKm:   DefaultMaxDistanceKm,
		PreferredTags:   NormalizeTags(rec.PreferredTags),
	}
	if _, ok := raw["difficulty_range"]; !ok {
		p.DifficultyRange = append([]float64(nil), DefaultDifficultyRange...)
	} else if p.DifficultyRange == nil {
		p.DifficultyRange = []float64{}
	}
	if rec.MinDistanceKm != nil {
		p.MinDistanceKm = *rec.MinDistanceKm
	}
	if rec.MaxDistanceKm != nil {
		p.MaxDistanceKm = *rec.MaxDistanceKm
	}
	return p, nil
}

// EncodePreference 序列化偏好画像。
func EncodePreference(p *PreferenceVector) ([]byte, error) {
	return json.Marshal(p)
}

// NormalizeTags 小写、去空白、去重，保持首次出现的顺序。
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
