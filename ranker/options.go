package ranker

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/trailrank/feature"
	"github.com/rushteam/trailrank/feedback"
	"github.com/rushteam/trailrank/model"
	"github.com/rushteam/trailrank/pipeline"
)

// Recorder 接收排序过程的指标，metrics.Manager 实现了它。
type Recorder interface {
	ObserveRank(mode string, d time.Duration, returned int)
	AddExcluded(n int)
	IncDegraded(reason string)
	IncFailure(code string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRank(string, time.Duration, int) {}
func (nopRecorder) AddExcluded(int)                        {}
func (nopRecorder) IncDegraded(string)                     {}
func (nopRecorder) IncFailure(string)                      {}

// Option 配置 Ranker。
type Option func(*Ranker)

func WithLogger(l zerolog.Logger) Option {
	return func(r *Ranker) { r.logger = l }
}

func WithMetrics(rec Recorder) Option {
	return func(r *Ranker) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithExtractor 替换特征抽取器（例如带缓存或监控的实例）。
func WithExtractor(e *feature.Extractor) Option {
	return func(r *Ranker) {
		if e != nil {
			r.extractor = e
		}
	}
}

func WithModel(m model.RankModel) Option {
	return func(r *Ranker) {
		if m != nil {
			r.model = m
		}
	}
}

func WithLearner(l *feedback.Learner) Option {
	return func(r *Ranker) {
		if l != nil {
			r.learner = l
		}
	}
}

// WithCategories 替换分类映射，key 统一按小写匹配。
func WithCategories(c map[string][]string) Option {
	return func(r *Ranker) {
		if c != nil {
			r.categories = c
		}
	}
}

// WithPipelines 替换默认的个性化/冷启动 Pipeline（例如从 YAML 构建），nil 表示保留默认。
func WithPipelines(personalized, coldStart *pipeline.Pipeline) Option {
	return func(r *Ranker) {
		if personalized != nil {
			r.personalized = personalized
		}
		if coldStart != nil {
			r.coldStart = coldStart
		}
	}
}

// WithFetchTimeout 限制三路数据拉取的总耗时，0 表示只受调用方 ctx 约束。
func WithFetchTimeout(d time.Duration) Option {
	return func(r *Ranker) { r.fetchTimeout = d }
}

// WithColdStartPool 冷启动时只拉取 limit*factor 个候选再随机抽样；0 表示拉取全部。
func WithColdStartPool(factor int) Option {
	return func(r *Ranker) {
		if factor >= 0 {
			r.poolFactor = factor
		}
	}
}

// WithRand 指定默认冷启动打乱使用的随机源（测试中用固定种子）。
func WithRand(rnd *rand.Rand) Option {
	return func(r *Ranker) { r.rand = rnd }
}
