package ir

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// AnalysisKind names a cached analysis result.
type AnalysisKind string

// SymbolTableAnalysis maps every name visible inside a function to its
// Def. See Function.SymbolTable.
const SymbolTableAnalysis AnalysisKind = "symbol_table"

// analysisCache holds memoized analysis results for one container
// (module, function or block). Any mutation of the container or a
// descendant invalidates the whole cache: invalidation is coarse, and
// analyses are cheap enough to recompute.
type analysisCache struct {
	results map[AnalysisKind]any
}

func newAnalysisCache() *analysisCache {
	return &analysisCache{results: make(map[AnalysisKind]any)}
}

func (c *analysisCache) invalidate() {
	clear(c.results)
}

// cachedAnalysis returns the memoized result of kind, computing and
// storing it on a miss.
func cachedAnalysis[T any](c *analysisCache, kind AnalysisKind, compute func() T) T {
	if cached, ok := c.results[kind]; ok {
		return cached.(T)
	}
	result := compute()
	c.results[kind] = result
	return result
}

// Analyzable is a container carrying an analysis cache: Module, Function
// or BasicBlock.
type Analyzable interface {
	analyses() *analysisCache
}

func (m *Module) analyses() *analysisCache     { return m.cache }
func (f *Function) analyses() *analysisCache   { return f.cache }
func (b *BasicBlock) analyses() *analysisCache { return b.cache }

// AnalysisOf returns the memoized result of kind on the container,
// computing it on a miss. The result stays cached until the container or
// one of its descendants mutates.
func AnalysisOf[T any](c Analyzable, kind AnalysisKind, compute func() T) T {
	return cachedAnalysis(c.analyses(), kind, compute)
}

// SymbolTable returns a map from every name visible in the function
// (function arguments, block arguments and operation results) to its
// Def. The result is cached on the function and recomputed after any
// mutation; callers must not modify the returned map.
func (f *Function) SymbolTable() map[string]*Def {
	return AnalysisOf(f, SymbolTableAnalysis, func() map[string]*Def {
		table := make(map[string]*Def)
		for _, arg := range f.args {
			table[arg.Name()] = arg.Def()
		}
		for _, b := range f.blocks {
			for _, arg := range b.args {
				table[arg.Name()] = arg.Def()
			}
			for _, instr := range b.instructions {
				if instr.def != nil {
					table[instr.def.name] = instr.def
				}
			}
		}
		return table
	})
}

// Transform is a module-level rewrite. Run reports whether it changed
// the module.
type Transform interface {
	Name() string
	Run(m *Module) (changed bool, err error)
}

// ErrStageViolation is returned when a transform is applied to a module
// still under construction.
var ErrStageViolation = errors.New("module is not finished, transforms require the optimizable stage")

// RunTransform applies t to the module. Modules still on the raw stage
// reject all transforms: Finish the module first.
func (m *Module) RunTransform(t Transform) error {
	if m.stage != StageOptimizable {
		return errors.Wrapf(ErrStageViolation, "cannot run transform %q on module @%s", t.Name(), m.name)
	}
	changed, err := t.Run(m)
	if err != nil {
		return errors.WithMessagef(err, "transform %q on module @%s", t.Name(), m.name)
	}
	klog.V(1).Infof("transform %q on module @%s: changed=%v", t.Name(), m.name, changed)
	if changed {
		m.mutated()
	}
	return nil
}
