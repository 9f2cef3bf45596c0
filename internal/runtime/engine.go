package runtime

import (
	"log/slog"
	"sort"

	"github.com/Jembe/jembe-sub000/internal/logging"
	"github.com/Jembe/jembe-sub000/pkg/component"
	"github.com/Jembe/jembe-sub000/pkg/domain"
)

// Engine runs reconciliation passes.
type Engine struct {
	merger *Merger
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine merging through merger.
func NewEngine(merger *Merger, opts ...EngineOption) *Engine {
	e := &Engine{merger: merger, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Report summarizes one pass.
type Report struct {
	Root     string
	Outcomes map[string]Outcome
	// Order is the breadth-first merge order.
	Order []string
	// Dropped were registered before the pass and are no longer reachable.
	Dropped []string
	// Removed were targeted by the removal directive (descendants included).
	Removed []string
	// Orphans were referenced by a placeholder but have no instance.
	Orphans []string
}

// Reconcile merges incoming into old and returns the new registry. old is never
// modified. When a merge fails the pass stops: the returned registry holds the
// instances merged so far plus the old ones the pass did not reach, matching
// what the document shows.
func (e *Engine) Reconcile(old, incoming component.Registry, remove []string) (component.Registry, *Report, error) {
	working := old.Clone()
	for name, c := range incoming {
		working[name] = c
	}

	report := &Report{Outcomes: make(map[string]Outcome)}

	root := e.selectRoot(working, incoming)
	if root == nil {
		return nil, report, domain.ErrNoRoot
	}
	report.Root = root.ExecName

	processed := make(component.Registry, len(working))
	parents := make(map[string]*component.Component)
	queue := []string{root.ExecName}
	seen := map[string]struct{}{root.ExecName: {}}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		node, ok := working[name]
		if !ok {
			e.logger.Warn("orphan reference", "exec_name", name)
			report.Orphans = append(report.Orphans, name)
			continue
		}

		parent := parents[name]
		outcome, err := e.merger.Merge(node, parent, old[name])
		if err != nil {
			for _, n := range old.Names() {
				if _, ok := processed[n]; !ok {
					processed[n] = old[n]
				}
			}
			return processed, report, &domain.MergeError{ExecName: name, Cause: err}
		}
		processed[name] = node
		report.Outcomes[name] = outcome
		report.Order = append(report.Order, name)

		for _, child := range node.ChildNames() {
			if _, dup := seen[child]; dup {
				continue
			}
			seen[child] = struct{}{}
			parents[child] = node
			queue = append(queue, child)
		}
	}

	for _, name := range old.Names() {
		if _, ok := processed[name]; ok {
			continue
		}
		old[name].Unmount(nil)
		report.Dropped = append(report.Dropped, name)
	}

	for _, name := range remove {
		node, ok := processed[name]
		if !ok {
			continue
		}
		removed := node.Remove(processed)
		if parent := parents[name]; parent != nil {
			delete(parent.Placeholders, name)
		}
		for _, r := range removed {
			delete(processed, r)
		}
		report.Removed = append(report.Removed, removed...)
	}

	e.logger.Debug("reconciliation pass finished",
		"root", report.Root,
		"merged", len(report.Order),
		"dropped", len(report.Dropped),
		"removed", len(report.Removed))
	return processed, report, nil
}

// selectRoot picks the root to start from: incoming roots first, then roots not
// on the document, then the smallest name.
func (e *Engine) selectRoot(working, incoming component.Registry) *component.Component {
	var roots []*component.Component
	for _, name := range working.Names() {
		if c := working[name]; c.IsRoot {
			roots = append(roots, c)
		}
	}
	if len(roots) == 0 {
		return nil
	}

	pool := roots[:0:0]
	for _, c := range roots {
		if _, ok := incoming[c.ExecName]; ok {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = roots
	}
	if len(pool) == 1 {
		return pool[0]
	}

	names := make([]string, len(pool))
	for i, c := range pool {
		names[i] = c.ExecName
	}
	e.logger.Warn("duplicate root candidate", "candidates", names)

	sort.SliceStable(pool, func(i, j int) bool {
		return !pool[i].OnDocument && pool[j].OnDocument
	})
	return pool[0]
}
