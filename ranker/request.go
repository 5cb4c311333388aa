package ranker

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/rushteam/trailrank/core"
)

// Request 是一次排序请求。SubjectID 为空表示匿名（冷启动），Category 为空表示不过滤。
type Request struct {
	SubjectID string `json:"subject_id"`
	Category  string `json:"category"`
	Limit     int    `json:"limit" validate:"gte=1"`
}

// RankedItem 是结果中的一项。冷启动结果没有分数与解释。
type RankedItem struct {
	Item      *core.RawItem        `json:"item"`
	Score     float64              `json:"score,omitempty"`
	Breakdown *core.ScoreBreakdown `json:"breakdown,omitempty"`
}

// Result 是一次排序的结果。
//
// Preference 是本次调整后的画像拷贝，仅供调用方查看或显式保存，引擎不会回写。
type Result struct {
	RequestID       string                 `json:"request_id"`
	Mode            core.Mode              `json:"mode"`
	Personalized    bool                   `json:"is_personalized"`
	Items           []RankedItem           `json:"items"`
	TotalCandidates int                    `json:"total_candidates"`
	Excluded        int                    `json:"excluded"`
	Preference      *core.PreferenceVector `json:"preference,omitempty"`
}

// 调用方输入违反约定时返回的错误，均为 INVALID_INPUT。
var (
	ErrInvalidLimit    = core.NewDomainError(core.ModuleRanker, core.ErrorCodeInvalidInput, "ranker: limit must be a positive integer")
	ErrUnknownCategory = core.NewDomainError(core.ModuleRanker, core.ErrorCodeInvalidInput, "ranker: unknown category")
	ErrInvalidRequest  = core.NewDomainError(core.ModuleRanker, core.ErrorCodeInvalidInput, "ranker: invalid request")

	// ErrSourceUnavailable 包装数据源的 I/O 错误
	ErrSourceUnavailable = core.NewDomainError(core.ModuleRanker, core.ErrorCodeUnavailable, "ranker: data source unavailable")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

func validateRequest(req Request) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Limit" {
				return ErrInvalidLimit
			}
		}
		return ErrInvalidRequest.Wrap(verrs)
	}
	return ErrInvalidRequest.Wrap(err)
}

// DefaultCategories 是对外分类到物品分类名的映射。
func DefaultCategories() map[string][]string {
	return map[string][]string{
		"running": {"Jogging", "Trail running"},
		"hiking":  {"Theme trail", "Hiking trail"},
		"cycling": {"Cycling", "Mountainbiking", "Long distance cycling"},
	}
}

// resolveCategory 把请求分类映射为物品分类名；空分类返回 nil（不过滤）。
func resolveCategory(categories map[string][]string, category string) ([]string, error) {
	key := strings.ToLower(strings.TrimSpace(category))
	if key == "" {
		return nil, nil
	}
	names, ok := categories[key]
	if !ok {
		return nil, ErrUnknownCategory.Wrap(core.Errorf(core.ModuleRanker, core.ErrorCodeInvalidInput, "category %q", category))
	}
	return append([]string(nil), names...), nil
}
