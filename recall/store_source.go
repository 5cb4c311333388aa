package recall

import (
	"context"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/trailrank/core"
)

// StoreSource 是基于 core.KeyValueStore 的数据源，实现 core.DataSource。
//
// 存储布局（KeyPrefix 默认 "trailrank"）：
//   - 物品目录：Hash {KeyPrefix}:items，field 为物品 ID，value 为 RawItem JSON
//   - 偏好画像：{KeyPrefix}:pref:{subjectID}，PreferenceVector JSON
//   - 反馈日志：List {KeyPrefix}:feedback:{subjectID}，每个元素是一条反馈 JSON
type StoreSource struct {
	store     core.KeyValueStore
	KeyPrefix string
	now       func() time.Time
}

// StoreSourceOption 配置 StoreSource。
type StoreSourceOption func(*StoreSource)

// WithClock 替换时钟（用于计算反馈的 Age）。
func WithClock(now func() time.Time) StoreSourceOption {
	return func(s *StoreSource) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStoreSource 创建一个基于 core.KeyValueStore 的数据源。
func NewStoreSource(s core.KeyValueStore, keyPrefix string, opts ...StoreSourceOption) *StoreSource {
	if keyPrefix == "" {
		keyPrefix = "trailrank"
	}
	src := &StoreSource{store: s, KeyPrefix: keyPrefix, now: time.Now}
	for _, opt := range opts {
		opt(src)
	}
	return src
}

func (a *StoreSource) itemsKey() string                { return a.KeyPrefix + ":items" }
func (a *StoreSource) prefKey(subjectID string) string { return a.KeyPrefix + ":pref:" + subjectID }
func (a *StoreSource) feedbackKey(subjectID string) string {
	return a.KeyPrefix + ":feedback:" + subjectID
}

// FetchCandidates 读取物品目录，按分类过滤后按物品 ID 排序，再按 Limit 截断。
// 无法解析的记录被跳过。
func (a *StoreSource) FetchCandidates(ctx context.Context, q core.CandidateQuery) ([]*core.RawItem, error) {
	all, err := a.store.HGetAll(ctx, a.itemsKey())
	if err != nil {
		return nil, err
	}

	var allowed map[string]struct{}
	if len(q.Categories) > 0 {
		allowed = make(map[string]struct{}, len(q.Categories))
		for _, c := range q.Categories {
			allowed[c] = struct{}{}
		}
	}

	items := make([]*core.RawItem, 0, len(all))
	for id, data := range all {
		var raw core.RawItem
		if err := json.Unmarshal(data, &raw); err != nil {
			continue
		}
		if raw.ID == "" {
			raw.ID = id
		}
		if allowed != nil {
			if _, ok := allowed[raw.CategoryName]; !ok {
				continue
			}
		}
		items = append(items, &raw)
	}

	sort.Slice(items, func(i, j int) bool { return core.LessID(items[i].ID, items[j].ID) })
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return items, nil
}

// FetchPreference 读取偏好画像；不存在返回 (nil, nil)，无法解析返回 ErrMalformedPreference。
func (a *StoreSource) FetchPreference(ctx context.Context, subjectID string) (*core.PreferenceVector, error) {
	data, err := a.store.Get(ctx, a.prefKey(subjectID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return core.DecodePreference(data)
}

// SavePreference 显式保存画像。引擎不会自动回写调整后的画像。
func (a *StoreSource) SavePreference(ctx context.Context, subjectID string, pref *core.PreferenceVector) error {
	data, err := core.EncodePreference(pref)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, a.prefKey(subjectID), data)
}

// feedbackRecord 是反馈日志中的存储格式。RecordedAt 缺失的历史记录 Age 为 0。
type feedbackRecord struct {
	SubjectID  string     `json:"subject_id"`
	ItemID     string     `json:"item_id"`
	Reason     string     `json:"reason"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// FetchFeedback 读取主体的全部反馈，按记录顺序返回。无法解析的记录被跳过。
func (a *StoreSource) FetchFeedback(ctx context.Context, subjectID string) ([]core.FeedbackEntry, error) {
	raw, err := a.store.LRange(ctx, a.feedbackKey(subjectID), 0, -1)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return []core.FeedbackEntry{}, nil
		}
		return nil, err
	}
	now := a.now()
	entries := make([]core.FeedbackEntry, 0, len(raw))
	for _, data := range raw {
		var rec feedbackRecord
		if err := json.Unmarshal(data, &rec); err != nil || rec.ItemID == "" {
			continue
		}
		e := core.FeedbackEntry{
			SubjectID: subjectID,
			ItemID:    rec.ItemID,
			Reason:    core.Reason(rec.Reason),
		}
		if rec.RecordedAt != nil {
			if age := now.Sub(*rec.RecordedAt); age > 0 {
				e.Age = age
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// RecordFeedback 追加一条反馈。未知原因返回 ErrInvalidReason；at 为零值时使用当前时间。
func (a *StoreSource) RecordFeedback(ctx context.Context, subjectID, itemID string, reason core.Reason, at time.Time) error {
	if !reason.Valid() {
		return core.ErrInvalidReason.Wrap(core.Errorf(core.ModuleFeedback, core.ErrorCodeInvalidInput, "reason %q", reason))
	}
	if subjectID == "" || itemID == "" {
		return core.NewDomainError(core.ModuleFeedback, core.ErrorCodeInvalidInput, "feedback: subject and item are required")
	}
	if at.IsZero() {
		at = a.now()
	}
	at = at.UTC()
	data, err := json.Marshal(feedbackRecord{
		SubjectID:  subjectID,
		ItemID:     itemID,
		Reason:     string(reason),
		RecordedAt: &at,
	})
	if err != nil {
		return err
	}
	return a.store.RPush(ctx, a.feedbackKey(subjectID), data)
}

// SaveItems 写入（或覆盖）物品目录。
func (a *StoreSource) SaveItems(ctx context.Context, items ...*core.RawItem) error {
	for _, it := range items {
		if it == nil || it.ID == "" {
			continue
		}
		data, err := json.Marshal(it)
		if err != nil {
			return err
		}
		if err := a.store.HSet(ctx, a.itemsKey(), it.ID, data); err != nil {
			return err
		}
	}
	return nil
}

var _ core.DataSource = (*StoreSource)(nil)
