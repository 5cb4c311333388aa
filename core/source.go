package core

import "context"

// CandidateQuery 描述候选集的拉取条件。
type CandidateQuery struct {
	// Categories 为空表示不过滤分类
	Categories []string

	// Limit <= 0 表示不限制
	Limit int
}

// DataSource 是引擎依赖的外部数据协作者。
//
// 引擎只读它：候选物品、偏好画像、反馈日志。写入（记录反馈、保存画像）
// 由调用方通过具体实现完成，例如 recall.StoreSource。
type DataSource interface {
	FetchCandidates(ctx context.Context, q CandidateQuery) ([]*RawItem, error)

	// FetchPreference 在画像不存在时返回 (nil, nil)；
	// 画像存在但无法解析时返回 ErrMalformedPreference。
	FetchPreference(ctx context.Context, subjectID string) (*PreferenceVector, error)

	FetchFeedback(ctx context.Context, subjectID string) ([]FeedbackEntry, error)
}
