package recall

import (
	"github.com/rushteam/trailrank/core"
	"github.com/rushteam/trailrank/pkg/utils"
)

// ToItems 把原始记录包装成 Pipeline 承载的 Item，并挂上对应的特征向量。
// source 写入 recall_source Label，便于解释候选来自哪里。
func ToItems(raws []*core.RawItem, vectors map[string]core.ItemVector, source string) []*core.Item {
	items := make([]*core.Item, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		it := core.NewItem(raw)
		it.Vector = vectors[raw.ID]
		if source != "" {
			it.PutLabel("recall_source", utils.Label{Value: source, Source: "recall"})
		}
		items = append(items, it)
	}
	return items
}
