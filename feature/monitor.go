package feature

import "sync"

// 特征缺失信号的字段名，同时用作指标 label。
const (
	FieldDifficulty = "difficulty"
	FieldLength     = "length"
	FieldTags       = "tags"
)

// Monitor 接收特征抽取时的数据质量信号：字段缺失、越界或载荷损坏。
// metrics.Manager 实现了它。
type Monitor interface {
	ObserveMissingFeature(field string)
}

// CountingMonitor 是 Monitor 的内存实现，按字段计数。
type CountingMonitor struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewCountingMonitor() *CountingMonitor {
	return &CountingMonitor{counts: make(map[string]int64)}
}

func (m *CountingMonitor) ObserveMissingFeature(field string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[field]++
}

// Count 返回某字段累计的缺失次数。
func (m *CountingMonitor) Count(field string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[field]
}

// Snapshot 返回计数的拷贝。
func (m *CountingMonitor) Snapshot() map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out
}
