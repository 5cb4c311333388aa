package rerank

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rushteam/trailrank/core"
	"github.com/rushteam/trailrank/pipeline"
	"github.com/rushteam/trailrank/pkg/utils"
)

// ShuffleNode 把候选集均匀打乱，用于冷启动：配合 TopNNode 得到均匀随机的子集。
// Rand 可注入以得到确定性结果；*rand.Rand 非并发安全，这里用互斥锁保护。
type ShuffleNode struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewShuffleNode 创建打乱节点，r 为 nil 时使用以当前时间为种子的随机源。
func NewShuffleNode(r *rand.Rand) *ShuffleNode {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ShuffleNode{rand: r}
}

func (n *ShuffleNode) Name() string {
	return "rerank.shuffle"
}

func (n *ShuffleNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *ShuffleNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) < 2 {
		return items, nil
	}
	n.mu.Lock()
	n.rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	n.mu.Unlock()

	for _, it := range items {
		if it != nil {
			it.PutLabel("rerank", utils.Label{Value: "shuffle", Source: "rerank"})
		}
	}
	return items, nil
}
