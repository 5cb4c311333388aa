package core

import "time"

// Reason 是负反馈原因。
type Reason string

const (
	ReasonTooHard       Reason = "too-hard"
	ReasonTooEasy       Reason = "too-easy"
	ReasonTooFar        Reason = "too-far"
	ReasonNotInterested Reason = "not-interested"
)

// Reasons 返回所有合法的反馈原因。
func Reasons() []Reason {
	return []Reason{ReasonTooHard, ReasonTooEasy, ReasonTooFar, ReasonNotInterested}
}

// Valid 报告 r 是否为已知原因。
func (r Reason) Valid() bool {
	switch r {
	case ReasonTooHard, ReasonTooEasy, ReasonTooFar, ReasonNotInterested:
		return true
	}
	return false
}

// FeedbackEntry 是一条只追加的负反馈记录。
// Age 为记录至今经过的时间；没有时间戳的历史记录 Age 为 0（权重按 1.0 计）。
type FeedbackEntry struct {
	SubjectID string        `json:"subject_id"`
	ItemID    string        `json:"item_id"`
	Reason    Reason        `json:"reason"`
	Age       time.Duration `json:"-"`
}

// ErrInvalidReason 表示反馈原因不在已知集合中
var ErrInvalidReason = NewDomainError(ModuleFeedback, ErrorCodeInvalidInput, "feedback: unknown reason")
