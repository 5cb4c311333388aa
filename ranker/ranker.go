// Package ranker 是排序引擎的入口：拉取数据、决定模式、调用 Pipeline 并组装结果。
package ranker

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/trailrank/core"
	"github.com/rushteam/trailrank/feature"
	"github.com/rushteam/trailrank/feedback"
	"github.com/rushteam/trailrank/filter"
	"github.com/rushteam/trailrank/model"
	"github.com/rushteam/trailrank/pipeline"
	"github.com/rushteam/trailrank/rank"
	"github.com/rushteam/trailrank/recall"
	"github.com/rushteam/trailrank/rerank"
)

// 降级原因，同时用作指标 label。
const (
	degradeMissingPreference   = "missing_preference"
	degradeMalformedPreference = "malformed_preference"
)

// Ranker 对候选物品做基于内容的排序，并根据负反馈调整画像、惩罚或排除物品。
//
// 一次 Rank 调用内的所有状态都放在 core.RecommendContext 中，Ranker 本身可被并发使用。
type Ranker struct {
	source     core.DataSource
	extractor  *feature.Extractor
	model      model.RankModel
	learner    *feedback.Learner
	categories map[string][]string

	personalized *pipeline.Pipeline
	coldStart    *pipeline.Pipeline

	fetchTimeout time.Duration
	poolFactor   int
	rand         *rand.Rand

	logger   zerolog.Logger
	recorder Recorder
}

// New 创建 Ranker。未指定的组件使用默认值：CBF 模型（0.4/0.3/0.3）、
// 默认反馈参数、默认分类映射。
func New(source core.DataSource, opts ...Option) (*Ranker, error) {
	if source == nil {
		return nil, errors.New("ranker: data source is required")
	}
	r := &Ranker{
		source:     source,
		extractor:  feature.NewExtractor(),
		model:      &model.CBFModel{Weights: model.DefaultWeights()},
		learner:    feedback.NewLearner(),
		categories: DefaultCategories(),
		logger:     zerolog.Nop(),
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if cbf, ok := r.model.(*model.CBFModel); ok {
		if err := cbf.Weights.Validate(); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With().Str("component", "ranker").Logger()
	if r.personalized == nil {
		r.personalized = DefaultPersonalizedPipeline(r.model, r.learner)
	}
	if r.coldStart == nil {
		r.coldStart = DefaultColdStartPipeline(r.rand)
	}
	return r, nil
}

// DefaultPersonalizedPipeline：分类过滤 + 反馈排除 -> CBF 打分排序 -> 截断到 limit。
func DefaultPersonalizedPipeline(m model.RankModel, l *feedback.Learner) *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Name: "personalized",
		Nodes: []pipeline.Node{
			&filter.FilterNode{Filters: []filter.Filter{
				filter.NewCategoryFilter(),
				filter.NewFeedbackExclusionFilter(l),
			}},
			&rank.CBFNode{Model: m, Learner: l},
			&rerank.TopNNode{},
		},
	}
}

// DefaultColdStartPipeline：分类过滤 -> 均匀打乱 -> 截断到 limit。
func DefaultColdStartPipeline(rnd *rand.Rand) *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Name: "cold_start",
		Nodes: []pipeline.Node{
			&filter.FilterNode{Filters: []filter.Filter{filter.NewCategoryFilter()}},
			rerank.NewShuffleNode(rnd),
			&rerank.TopNNode{},
		},
	}
}

// Rank 执行一次排序。
//
//   - 输入违反约定（limit <= 0、未知分类）返回 INVALID_INPUT
//   - 画像不存在或无法解析时降级为冷启动，不返回错误
//   - 数据源 I/O 失败返回 UNAVAILABLE
func (r *Ranker) Rank(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := r.logger.With().
		Str("request_id", requestID).
		Str("subject_id", req.SubjectID).
		Str("category", req.Category).
		Int("limit", req.Limit).
		Logger()

	defer func() {
		if err == nil {
			return
		}
		code := core.ErrorCodeInternalError
		if de := core.GetDomainError(err); de != nil {
			code = de.Code
		}
		r.recorder.IncFailure(code)
		log.Error().Err(err).Str("code", code).Msg("rank failed")
	}()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	names, err := resolveCategory(r.categories, req.Category)
	if err != nil {
		return nil, err
	}

	rctx := &core.RecommendContext{
		SubjectID:     req.SubjectID,
		Category:      req.Category,
		CategoryNames: names,
		Limit:         req.Limit,
		Mode:          core.ModeColdStart,
	}

	if req.SubjectID == "" {
		query := core.CandidateQuery{Categories: names}
		if r.poolFactor > 0 {
			query.Limit = req.Limit * r.poolFactor
		}
		fetchCtx, cancel := r.withFetchTimeout(ctx)
		raws, err := r.source.FetchCandidates(fetchCtx, query)
		cancel()
		if err != nil {
			return nil, ErrSourceUnavailable.Wrap(err)
		}
		log.Debug().Int("candidates", len(raws)).Msg("anonymous request, cold start")
		return r.runColdStart(ctx, log, requestID, rctx, raws, start)
	}

	raws, pref, entries, degrade, err := r.fetchPersonal(ctx, log, req.SubjectID, names)
	if err != nil {
		return nil, ErrSourceUnavailable.Wrap(err)
	}
	if degrade != "" {
		r.recorder.IncDegraded(degrade)
		log.Warn().Str("reason", degrade).Msg("preference unusable, falling back to cold start")
		return r.runColdStart(ctx, log, requestID, rctx, raws, start)
	}

	vectors := r.extractor.ExtractAll(raws)
	rctx.Mode = core.ModePersonalized
	rctx.BasePreference = pref
	rctx.Feedback = entries
	rctx.FeedbackCounts = feedback.CountByItem(entries)
	rctx.Vectors = vectors
	rctx.Preference = r.learner.Adjust(pref, entries, vectors)

	log.Debug().
		Int("candidates", len(raws)).
		Int("feedback", len(entries)).
		Floats64("difficulty_range", rctx.Preference.DifficultyRange).
		Float64("max_distance_km", rctx.Preference.MaxDistanceKm).
		Msg("preference adjusted")

	items, err := r.personalized.Run(ctx, rctx, recall.ToItems(raws, vectors, "catalog"))
	if err != nil {
		return nil, err
	}

	res = &Result{
		RequestID:       requestID,
		Mode:            core.ModePersonalized,
		Personalized:    true,
		Items:           make([]RankedItem, 0, len(items)),
		TotalCandidates: len(raws),
		Excluded:        filter.DroppedBy(rctx, "filter.feedback"),
		Preference:      rctx.Preference,
	}
	for _, it := range items {
		res.Items = append(res.Items, RankedItem{Item: it.Raw, Score: it.Score, Breakdown: it.Breakdown})
	}

	elapsed := time.Since(start)
	r.recorder.AddExcluded(res.Excluded)
	r.recorder.ObserveRank(string(res.Mode), elapsed, len(res.Items))
	log.Info().
		Str("mode", string(res.Mode)).
		Int("returned", len(res.Items)).
		Int("excluded", res.Excluded).
		Dur("elapsed", elapsed).
		Msg("rank completed")
	return res, nil
}

// fetchPersonal 并发拉取候选、画像与反馈。画像缺失/损坏时返回降级原因而不是错误。
func (r *Ranker) fetchPersonal(ctx context.Context, log zerolog.Logger, subjectID string, names []string) (
	raws []*core.RawItem,
	pref *core.PreferenceVector,
	entries []core.FeedbackEntry,
	degrade string,
	err error,
) {
	fetchCtx, cancel := r.withFetchTimeout(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(fetchCtx)
	g.Go(func() error {
		var err error
		raws, err = r.source.FetchCandidates(gctx, core.CandidateQuery{Categories: names})
		return err
	})
	g.Go(func() error {
		p, err := r.source.FetchPreference(gctx, subjectID)
		switch {
		case core.IsMalformed(err):
			log.Debug().Err(err).Msg("stored preference is malformed")
			degrade = degradeMalformedPreference
			return nil
		case err != nil:
			return err
		case p == nil:
			degrade = degradeMissingPreference
			return nil
		}
		pref = p
		return nil
	})
	// 反馈错误单独保留：降级到冷启动时用不到反馈，不能因此失败。
	var fbErr error
	g.Go(func() error {
		entries, fbErr = r.source.FetchFeedback(gctx, subjectID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, "", err
	}
	if degrade != "" {
		if fbErr != nil {
			log.Debug().Err(fbErr).Msg("feedback fetch failed, ignored on degrade")
		}
		return raws, nil, nil, degrade, nil
	}
	if fbErr != nil {
		return nil, nil, nil, "", fbErr
	}
	return raws, pref, entries, degrade, nil
}

func (r *Ranker) runColdStart(
	ctx context.Context,
	log zerolog.Logger,
	requestID string,
	rctx *core.RecommendContext,
	raws []*core.RawItem,
	start time.Time,
) (*Result, error) {
	rctx.Mode = core.ModeColdStart
	vectors := r.extractor.ExtractAll(raws)
	items, err := r.coldStart.Run(ctx, rctx, recall.ToItems(raws, vectors, "catalog"))
	if err != nil {
		return nil, err
	}

	res := &Result{
		RequestID:       requestID,
		Mode:            core.ModeColdStart,
		Items:           make([]RankedItem, 0, len(items)),
		TotalCandidates: len(raws),
	}
	for _, it := range items {
		res.Items = append(res.Items, RankedItem{Item: it.Raw})
	}

	elapsed := time.Since(start)
	r.recorder.ObserveRank(string(res.Mode), elapsed, len(res.Items))
	log.Info().
		Str("mode", string(res.Mode)).
		Int("returned", len(res.Items)).
		Dur("elapsed", elapsed).
		Msg("rank completed")
	return res, nil
}

func (r *Ranker) withFetchTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.fetchTimeout > 0 {
		return context.WithTimeout(ctx, r.fetchTimeout)
	}
	return context.WithCancel(ctx)
}
