package feature

import (
	"strings"

	"github.com/goccy/go-json"

	"github.com/rushteam/trailrank/core"
)

// tagElement 是标签载荷中单个元素的变体：纯字符串，或带 name 字段的对象。
type tagElement struct {
	name string
	ok   bool
}

func (e *tagElement) UnmarshalJSON(data []byte) error {
	switch {
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		e.name, e.ok = s, true
	case len(data) > 0 && data[0] == '{':
		var obj struct {
			Name *string `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil || obj.Name == nil {
			return nil
		}
		e.name, e.ok = *obj.Name, true
	}
	// 其它类型（数字、数组、null）直接忽略
	return nil
}

// ParseTags 解析物品的标签载荷。
//
// 接受以下形态：
//   - ["Forest", "Lake"]
//   - [{"name": "Forest"}, {"name": "Lake"}]
//   - 二者混合
//
// 载荷为空、损坏或不是列表时返回空集合，从不报错。结果统一小写并去重。
func ParseTags(payload string) []string {
	tags, _ := parseTags(payload)
	return tags
}

// parseTags 同 ParseTags，ok 为 false 表示载荷为空或无法解析。
func parseTags(payload string) ([]string, bool) {
	payload = strings.TrimSpace(payload)
	if payload == "" || payload[0] != '[' {
		return []string{}, false
	}
	var elems []tagElement
	if err := json.Unmarshal([]byte(payload), &elems); err != nil {
		return []string{}, false
	}
	names := make([]string, 0, len(elems))
	for _, e := range elems {
		if e.ok {
			names = append(names, e.name)
		}
	}
	return core.NormalizeTags(names), true
}
