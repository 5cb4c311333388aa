// Package profile 把入门问卷翻译为初始偏好画像。
package profile

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rushteam/trailrank/core"
)

const (
	FitnessBeginner     = "beginner"
	FitnessIntermediate = "intermediate"
	FitnessAdvanced     = "advanced"
)

// Questionnaire 是入门问卷的回答。
type Questionnaire struct {
	Fitness        string   `json:"fitness" validate:"max=32"`
	AdventureTypes []string `json:"type" validate:"min=1,dive,required"`
}

type fitnessBand struct {
	difficulty   [2]float64
	minKm, maxKm float64
}

var fitnessBands = map[string]fitnessBand{
	FitnessBeginner:     {difficulty: [2]float64{0, 1}, minKm: 0, maxKm: 8},
	FitnessIntermediate: {difficulty: [2]float64{1, 2}, minKm: 5, maxKm: 20},
	FitnessAdvanced:     {difficulty: [2]float64{2, 3}, minKm: 10, maxKm: 50},
}

// adventureTags 对应物品数据源中实际出现的标签
var adventureTags = map[string][]string{
	"history-culture": {"culture", "heritage", "architecture", "museum"},
	"natural-scenery": {"flora", "fauna", "panorama", "scenic", "geology"},
	"family-fun":      {"suitableforfamilies", "playground", "dining", "loopTour"},
}

// AdventureTypes 返回支持的冒险类型。
func AdventureTypes() []string {
	return []string{"history-culture", "natural-scenery", "family-fun"}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 检查问卷：至少选择一种冒险类型。
func Validate(q Questionnaire) error {
	if err := validate.Struct(q); err != nil {
		return core.NewDomainError(core.ModuleProfile, core.ErrorCodeInvalidInput, err.Error())
	}
	return nil
}

// Translate 把问卷映射为偏好画像。未知体能等级按 beginner 处理，未知冒险类型被忽略；
// 标签统一小写并按出现顺序去重。
func Translate(q Questionnaire) *core.PreferenceVector {
	band, ok := fitnessBands[strings.ToLower(strings.TrimSpace(q.Fitness))]
	if !ok {
		band = fitnessBands[FitnessBeginner]
	}
	var tags []string
	for _, t := range q.AdventureTypes {
		tags = append(tags, adventureTags[strings.ToLower(strings.TrimSpace(t))]...)
	}
	return &core.PreferenceVector{
		DifficultyRange: []float64{band.difficulty[0], band.difficulty[1]},
		MinDistanceKm:   band.minKm,
		MaxDistanceKm:   band.maxKm,
		PreferredTags:   core.NormalizeTags(tags),
	}
}
