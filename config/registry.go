package config

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/trailrank/pipeline"
)

// 使用配置驱动时，需在入口处 import _ "github.com/rushteam/trailrank/config/builders"
// 以触发内置 Node（filter.category、rank.cbf、rerank.topn 等）的 init 注册。

// NodeBuilder 与 pipeline.NodeBuilder 一致：根据 config 构建 Node。
type NodeBuilder = pipeline.NodeBuilder

type registry struct {
	mu       sync.RWMutex
	builders map[string]NodeBuilder
}

var nodes = &registry{builders: make(map[string]NodeBuilder)}

func (r *registry) set(typeName string, b NodeBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[typeName] = b
}

func (r *registry) has(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[typeName]
	return ok
}

// snapshot 返回注册表的拷贝，后续注册不会影响已构建的工厂。
func (r *registry) snapshot() map[string]NodeBuilder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]NodeBuilder, len(r.builders))
	for k, v := range r.builders {
		out[k] = v
	}
	return out
}

// Register 注册一种 Node 的构建逻辑，通常在 init 中调用。同名类型后注册的覆盖先注册的。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	nodes.set(typeName, builder)
}

// SupportedTypes 返回当前已注册的 Node 类型（排序）。
func SupportedTypes() []string {
	all := nodes.snapshot()
	types := make([]string, 0, len(all))
	for t := range all {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回包含所有已注册 Node 类型的 NodeFactory。
func DefaultFactory() *pipeline.NodeFactory {
	f := pipeline.NewNodeFactory()
	for typeName, builder := range nodes.snapshot() {
		f.Register(typeName, builder)
	}
	return f
}

// ValidatePipelineConfig 校验所有 node 类型均已注册，一次性报告全部未知类型。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	var errs []error
	for i, nc := range cfg.Pipeline.Nodes {
		if nc.Type == "" {
			errs = append(errs, fmt.Errorf("node #%d: type is empty", i))
			continue
		}
		if !nodes.has(nc.Type) {
			errs = append(errs, fmt.Errorf("node #%d: unsupported type %q", i, nc.Type))
		}
	}
	if len(errs) > 0 {
		errs = append(errs, fmt.Errorf("supported types: %v", SupportedTypes()))
	}
	return errors.Join(errs...)
}

// LoadPipeline 读取 Pipeline 定义文件（.yaml/.yml/.json），校验类型后构建。
func LoadPipeline(path string) (*pipeline.Pipeline, error) {
	cfg, err := pipeline.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	return cfg.BuildPipeline(DefaultFactory())
}
