// Package config 加载并校验 trailrank 的运行配置。
//
// 配置按三层合并（低 -> 高）：内置默认值、YAML 文件（TRAILRANK_CONFIG）、环境变量（TRAILRANK_ 前缀）。
// 环境变量用双下划线表示层级，例如 TRAILRANK_STORE__REDIS__ADDR -> store.redis.addr。
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/rushteam/trailrank/core"
	"github.com/rushteam/trailrank/feature"
	"github.com/rushteam/trailrank/feedback"
	"github.com/rushteam/trailrank/model"
	"github.com/rushteam/trailrank/ranker"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Weights   model.Weights   `koanf:"weights"`
	Features  FeatureConfig   `koanf:"features"`
	Feedback  FeedbackConfig  `koanf:"feedback"`
	ColdStart ColdStartConfig `koanf:"cold_start"`

	// Categories 对外分类 -> 物品分类名
	Categories map[string][]string `koanf:"categories" validate:"min=1,dive,min=1"`

	Store   StoreConfig   `koanf:"store"`
	Metrics MetricsConfig `koanf:"metrics"`

	// PipelinePath 可选，指向个性化 Pipeline 的 YAML/JSON 定义
	PipelinePath string `koanf:"pipeline_path"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

type FeatureConfig struct {
	// CacheSize 为 0 时不缓存物品特征向量
	CacheSize int           `koanf:"cache_size" validate:"gte=0"`
	CacheTTL  time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

type FeedbackConfig struct {
	HalfLife           time.Duration `koanf:"half_life" validate:"gt=0"`
	Penalties          []float64     `koanf:"penalties" validate:"min=1"`
	ExclusionThreshold int           `koanf:"exclusion_threshold" validate:"gte=1"`
}

type ColdStartConfig struct {
	// PoolFactor 冷启动候选池为 limit*PoolFactor，0 表示全部候选
	PoolFactor int `koanf:"pool_factor" validate:"gte=0"`
	// Seed 为 0 时使用当前时间
	Seed int64 `koanf:"seed"`
}

type StoreConfig struct {
	Driver       string        `koanf:"driver" validate:"oneof=memory redis"`
	KeyPrefix    string        `koanf:"key_prefix" validate:"required"`
	FetchTimeout time.Duration `koanf:"fetch_timeout" validate:"gte=0"`
	Redis        RedisConfig   `koanf:"redis"`
	Breaker      BreakerConfig `koanf:"breaker"`
}

type RedisConfig struct {
	Addr         string        `koanf:"addr"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db" validate:"gte=0"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

type BreakerConfig struct {
	Enabled          bool          `koanf:"enabled"`
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
}

type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// Default 返回内置默认配置。
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info", Format: "json"},
		Weights: model.DefaultWeights(),
		Features: FeatureConfig{
			CacheSize: 10000,
			CacheTTL:  10 * time.Minute,
		},
		Feedback: FeedbackConfig{
			HalfLife:           feedback.DefaultHalfLife,
			Penalties:          feedback.DefaultPenalties(),
			ExclusionThreshold: feedback.DefaultExclusionThreshold,
		},
		Categories: ranker.DefaultCategories(),
		Store: StoreConfig{
			Driver:       DriverMemory,
			KeyPrefix:    "trailrank",
			FetchTimeout: 2 * time.Second,
			Redis: RedisConfig{
				Addr:         "localhost:6379",
				DialTimeout:  time.Second,
				ReadTimeout:  500 * time.Millisecond,
				WriteTimeout: 500 * time.Millisecond,
			},
			Breaker: BreakerConfig{
				Enabled:          true,
				MaxRequests:      3,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},
		Metrics: MetricsConfig{Enabled: true, Namespace: "trailrank", Subsystem: "ranker"},
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate 校验结构体约束以及跨字段规则（权重和、惩罚表、redis 地址）。
func (c *Config) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(c); err != nil {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, err.Error())
	}
	if err := c.Weights.Validate(); err != nil {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, err.Error())
	}
	if err := feedback.ValidatePenalties(c.Feedback.Penalties); err != nil {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, err.Error())
	}
	if c.Store.Driver == DriverRedis && c.Store.Redis.Addr == "" {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "store.redis.addr is required for the redis driver")
	}
	return nil
}

// NewExtractor 按配置构造特征抽取器；返回的 VectorCache 可能为 nil，非 nil 时调用方负责 Close。
func (c FeatureConfig) NewExtractor(monitor feature.Monitor) (*feature.Extractor, *feature.VectorCache) {
	opts := []feature.ExtractorOption{}
	if monitor != nil {
		opts = append(opts, feature.WithMonitor(monitor))
	}
	var cache *feature.VectorCache
	if c.CacheSize > 0 {
		cache = feature.NewVectorCache(c.CacheSize, c.CacheTTL)
		opts = append(opts, feature.WithVectorCache(cache))
	}
	return feature.NewExtractor(opts...), cache
}

// Learner 按配置构造反馈学习器。
func (c FeedbackConfig) Learner() *feedback.Learner {
	return feedback.NewLearner(
		feedback.WithHalfLife(c.HalfLife),
		feedback.WithPenalties(c.Penalties),
		feedback.WithExclusionThreshold(c.ExclusionThreshold),
	)
}

// NormalizedCategories 返回 key 统一小写的分类映射。
func (c *Config) NormalizedCategories() map[string][]string {
	out := make(map[string][]string, len(c.Categories))
	for k, v := range c.Categories {
		out[strings.ToLower(strings.TrimSpace(k))] = append([]string(nil), v...)
	}
	return out
}

// NewLogger 按日志配置创建 logger，w 为 nil 时输出到 stderr。
func (c LogConfig) NewLogger(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if c.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func (c *Config) String() string {
	return fmt.Sprintf("driver=%s prefix=%s weights=%+v pool_factor=%d",
		c.Store.Driver, c.Store.KeyPrefix, c.Weights, c.ColdStart.PoolFactor)
}
